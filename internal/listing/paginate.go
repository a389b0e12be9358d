package listing

import (
	"encoding/json"
	"strconv"

	"github.com/Boluski2/lendsqr-admin/internal/domain"
)

// DefaultPageSize is the page size of a fresh table.
const DefaultPageSize = 10

// PageSizes are the page sizes offered by the page-size selector.
var PageSizes = []int{10, 25, 50, 100}

// ValidPageSize reports whether n is one of PageSizes.
func ValidPageSize(n int) bool {
	for _, size := range PageSizes {
		if n == size {
			return true
		}
	}
	return false
}

// Paginate returns the 1-indexed page of records. Out of range pages are empty.
func Paginate(records []domain.User, page, pageSize int) []domain.User {
	if page < 1 || pageSize <= 0 {
		return []domain.User{}
	}
	start := (page - 1) * pageSize
	if start >= len(records) {
		return []domain.User{}
	}
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}
	return records[start:end:end]
}

// PageCount is the number of pages needed for total items. A non-positive
// pageSize yields 0.
func PageCount(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Ellipsis is the display text of a gap in the page strip.
const Ellipsis = "..."

// Label is one entry of the page strip: a page number or a gap.
type Label struct {
	Page int
	Gap  bool
}

func (l Label) String() string {
	if l.Gap {
		return Ellipsis
	}
	return strconv.Itoa(l.Page)
}

// MarshalJSON renders a page as a number and a gap as "...".
func (l Label) MarshalJSON() ([]byte, error) {
	if l.Gap {
		return json.Marshal(Ellipsis)
	}
	return json.Marshal(l.Page)
}

// UnmarshalJSON accepts either form written by MarshalJSON.
func (l *Label) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil && text == Ellipsis {
		*l = Label{Gap: true}
		return nil
	}
	var page int
	if err := json.Unmarshal(data, &page); err != nil {
		return err
	}
	*l = Label{Page: page}
	return nil
}

const maxUncollapsedPages = 7

// PageLabels builds the page strip. Up to seven pages are listed in full;
// beyond that the strip keeps the first page, the window around current and
// the last page, with a gap wherever pages are skipped.
func PageLabels(current, totalPages int) []Label {
	if totalPages <= 0 {
		return []Label{}
	}
	labels := make([]Label, 0, maxUncollapsedPages)
	if totalPages <= maxUncollapsedPages {
		for p := 1; p <= totalPages; p++ {
			labels = append(labels, Label{Page: p})
		}
		return labels
	}

	labels = append(labels, Label{Page: 1})
	if current > 3 {
		labels = append(labels, Label{Gap: true})
	}
	for p := max(2, current-1); p <= min(totalPages-1, current+1); p++ {
		labels = append(labels, Label{Page: p})
	}
	if current < totalPages-2 {
		labels = append(labels, Label{Gap: true})
	}
	return append(labels, Label{Page: totalPages})
}
