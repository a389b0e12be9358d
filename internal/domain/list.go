package domain

// FilterCriteria is the filter form of the users table. Empty fields impose no constraint.
type FilterCriteria struct {
	Organization string `json:"organization"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Date         string `json:"date"`
	PhoneNumber  string `json:"phoneNumber"`
	Status       string `json:"status"`
}

// IsZero reports whether no criterion is set.
func (c FilterCriteria) IsZero() bool {
	return c == FilterCriteria{}
}

// PaginationMeta captures pagination metadata returned to API clients.
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}
