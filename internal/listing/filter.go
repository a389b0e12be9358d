// Package listing derives the visible page of the users table from the full
// record collection and the table's filter and paging state. It is pure: no
// I/O, no clocks, no shared state.
package listing

import (
	"strings"

	"github.com/Boluski2/lendsqr-admin/internal/domain"
)

// ApplyFilters keeps the records matching every non-empty criterion, in input
// order. Organization and status match exactly; username, email and join date
// match as case-insensitive substrings; phone matches as a plain substring.
// Criteria are matched as given, surrounding whitespace included. Empty
// criteria return records as-is.
func ApplyFilters(records []domain.User, criteria domain.FilterCriteria) []domain.User {
	if criteria.IsZero() {
		return records
	}

	username := strings.ToLower(criteria.Username)
	email := strings.ToLower(criteria.Email)
	date := strings.ToLower(criteria.Date)

	out := make([]domain.User, 0, len(records))
	for _, u := range records {
		if criteria.Organization != "" && u.Organization != criteria.Organization {
			continue
		}
		if criteria.Status != "" && string(u.Status) != criteria.Status {
			continue
		}
		if username != "" && !strings.Contains(strings.ToLower(u.Username), username) {
			continue
		}
		if email != "" && !strings.Contains(strings.ToLower(u.Email), email) {
			continue
		}
		if criteria.PhoneNumber != "" && !strings.Contains(u.PhoneNumber, criteria.PhoneNumber) {
			continue
		}
		if date != "" && !strings.Contains(strings.ToLower(u.DateJoined), date) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// Organizations lists the distinct organizations in first-seen order.
func Organizations(records []domain.User) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, u := range records {
		if u.Organization == "" {
			continue
		}
		if _, ok := seen[u.Organization]; ok {
			continue
		}
		seen[u.Organization] = struct{}{}
		out = append(out, u.Organization)
	}
	return out
}
