package domain

import (
	"errors"
	"fmt"
)

// Status is the lifecycle state of a user account.
type Status string

const (
	StatusActive      Status = "Active"
	StatusInactive    Status = "Inactive"
	StatusPending     Status = "Pending"
	StatusBlacklisted Status = "Blacklisted"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusActive, StatusInactive, StatusPending, StatusBlacklisted}

var (
	// ErrUserNotFound is returned when a user id does not resolve.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidStatus is returned for statuses outside the enumeration.
	ErrInvalidStatus = errors.New("invalid user status")
	// ErrMissingUserID is returned when an operation is invoked without a user id.
	ErrMissingUserID = errors.New("user ID not provided")
	// ErrInvalidPageSize is returned for page sizes outside the allowed set.
	ErrInvalidPageSize = errors.New("invalid page size")
)

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	for _, candidate := range Statuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// ParseStatus validates a raw status string. Matching is exact.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// PersonalInfo groups the identity fields shown on the general tab.
type PersonalInfo struct {
	FullName        string `json:"fullName"`
	PhoneNumber     string `json:"phoneNumber"`
	EmailAddress    string `json:"emailAddress"`
	BVN             string `json:"bvn"`
	Gender          string `json:"gender"`
	MaritalStatus   string `json:"maritalStatus"`
	Children        string `json:"children"`
	TypeOfResidence string `json:"typeOfResidence"`
}

// EducationAndEmployment groups the employment history fields.
type EducationAndEmployment struct {
	LevelOfEducation     string `json:"levelOfEducation"`
	EmploymentStatus     string `json:"employmentStatus"`
	SectorOfEmployment   string `json:"sectorOfEmployment"`
	DurationOfEmployment string `json:"durationOfEmployment"`
	OfficeEmail          string `json:"officeEmail"`
	MonthlyIncome        string `json:"monthlyIncome"`
	LoanRepayment        string `json:"loanRepayment"`
}

// Socials holds the user's social handles.
type Socials struct {
	Twitter   string `json:"twitter"`
	Facebook  string `json:"facebook"`
	Instagram string `json:"instagram"`
}

// Guarantor is owned by its parent User and has no identity of its own.
type Guarantor struct {
	FullName     string `json:"fullName"`
	PhoneNumber  string `json:"phoneNumber"`
	EmailAddress string `json:"emailAddress"`
	Relationship string `json:"relationship"`
}

// User aggregates the back-office view of a borrower account.
type User struct {
	ID                     string                 `json:"id"`
	Organization           string                 `json:"organization"`
	Username               string                 `json:"username"`
	Email                  string                 `json:"email"`
	PhoneNumber            string                 `json:"phoneNumber"`
	DateJoined             string                 `json:"dateJoined"`
	Status                 Status                 `json:"status"`
	PersonalInfo           PersonalInfo           `json:"personalInfo"`
	EducationAndEmployment EducationAndEmployment `json:"educationAndEmployment"`
	Socials                Socials                `json:"socials"`
	Guarantors             []Guarantor            `json:"guarantors"`
	AccountBalance         string                 `json:"accountBalance"`
	AccountNumber          string                 `json:"accountNumber"`
	BankName               string                 `json:"bankName"`
	Tier                   int                    `json:"tier"`
}

// Clone returns a deep copy so callers can hold a record without sharing the guarantor slice.
func (u User) Clone() User {
	if u.Guarantors != nil {
		u.Guarantors = append([]Guarantor(nil), u.Guarantors...)
	}
	return u
}

// ValidTier reports whether tier is within the 1..3 star rating.
func ValidTier(tier int) bool {
	return tier >= 1 && tier <= 3
}

// UsersStats is derived on every request and never stored.
type UsersStats struct {
	TotalUsers       int `json:"totalUsers"`
	ActiveUsers      int `json:"activeUsers"`
	UsersWithLoans   int `json:"usersWithLoans"`
	UsersWithSavings int `json:"usersWithSavings"`
}

// DetailTab identifies a section of the user detail view.
type DetailTab struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// DetailTabs are the sections of the user detail view; only "general" has content.
var DetailTabs = []DetailTab{
	{ID: "general", Label: "General Details"},
	{ID: "documents", Label: "Documents"},
	{ID: "bank", Label: "Bank Details"},
	{ID: "loans", Label: "Loans"},
	{ID: "savings", Label: "Savings"},
	{ID: "app", Label: "App and System"},
}
