package listing

import (
	"fmt"

	"github.com/Boluski2/lendsqr-admin/internal/domain"
)

// ViewState is the filter and paging state of one users table. Draft holds
// the filter form as edited; only Applied takes part in filtering.
type ViewState struct {
	Draft    domain.FilterCriteria `json:"draft"`
	Applied  domain.FilterCriteria `json:"applied"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"pageSize"`
}

// NewViewState returns the state of a freshly opened table.
func NewViewState() ViewState {
	return ViewState{Page: 1, PageSize: DefaultPageSize}
}

// SetDraft replaces the draft criteria. The visible page is unaffected.
func (s *ViewState) SetDraft(criteria domain.FilterCriteria) {
	s.Draft = criteria
}

// Apply commits the draft and returns to the first page.
func (s *ViewState) Apply() {
	s.Applied = s.Draft
	s.Page = 1
}

// Reset clears both filter layers and returns to the first page.
func (s *ViewState) Reset() {
	s.Draft = domain.FilterCriteria{}
	s.Applied = domain.FilterCriteria{}
	s.Page = 1
}

// SetPageSize switches to an allowed page size and returns to the first page.
func (s *ViewState) SetPageSize(n int) error {
	if !ValidPageSize(n) {
		return fmt.Errorf("%w: %d", domain.ErrInvalidPageSize, n)
	}
	s.PageSize = n
	s.Page = 1
	return nil
}

// SetPage moves to page, never below 1.
func (s *ViewState) SetPage(page int) {
	s.Page = max(page, 1)
}

// Next advances one page unless already on the last of totalPages.
func (s *ViewState) Next(totalPages int) {
	if s.Page < totalPages {
		s.Page++
	}
}

// Prev goes back one page unless already on the first.
func (s *ViewState) Prev() {
	if s.Page > 1 {
		s.Page--
	}
}

// View is the rendered table: the current page plus what the paging controls need.
type View struct {
	Items      []domain.User         `json:"items"`
	Visible    int                   `json:"visible"`
	Total      int                   `json:"total"`
	Pagination domain.PaginationMeta `json:"pagination"`
	Labels     []Label               `json:"labels"`
	HasPrev    bool                  `json:"hasPrev"`
	HasNext    bool                  `json:"hasNext"`
}

// Render filters records by the applied criteria and slices out the current page.
func Render(records []domain.User, state ViewState) View {
	pageSize := state.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	page := max(state.Page, 1)

	filtered := ApplyFilters(records, state.Applied)
	pages := PageCount(len(filtered), pageSize)

	return View{
		Items:   Paginate(filtered, page, pageSize),
		Visible: len(filtered),
		Total:   len(records),
		Pagination: domain.PaginationMeta{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: len(filtered),
			TotalPages: pages,
		},
		Labels:  PageLabels(page, pages),
		HasPrev: page > 1,
		HasNext: page < pages,
	}
}
