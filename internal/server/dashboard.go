package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Boluski2/lendsqr-admin/internal/dashboard"
	"github.com/Boluski2/lendsqr-admin/internal/domain"
	"github.com/Boluski2/lendsqr-admin/internal/listing"
)

// DashboardHandlers serves the stateful users page of a dashboard session.
// Every state change responds with the freshly rendered page.
type DashboardHandlers struct {
	logger    *slog.Logger
	dashboard *dashboard.Dashboard
}

// NewDashboardHandlers constructs a DashboardHandlers instance.
func NewDashboardHandlers(logger *slog.Logger, d *dashboard.Dashboard) *DashboardHandlers {
	return &DashboardHandlers{logger: logger, dashboard: d}
}

type pageRequest struct {
	Page      int    `json:"page"`
	Direction string `json:"direction"` // next|prev, takes precedence over page
}

type pageSizeRequest struct {
	PageSize int `json:"pageSize"`
}

func (h *DashboardHandlers) handleView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	h.render(w, r)
}

func (h *DashboardHandlers) handleViewSubtree(w http.ResponseWriter, r *http.Request) {
	action := strings.Trim(strings.TrimPrefix(r.URL.Path, "/dashboard/users/"), "/")
	switch action {
	case "filters":
		h.setDraft(w, r)
	case "filters/apply":
		h.update(w, r, http.MethodPost, func(s *listing.ViewState) error { s.Apply(); return nil })
	case "filters/reset":
		h.update(w, r, http.MethodPost, func(s *listing.ViewState) error { s.Reset(); return nil })
	case "page":
		h.setPage(w, r)
	case "page-size":
		h.setPageSize(w, r)
	case "refresh":
		h.refresh(w, r)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *DashboardHandlers) setDraft(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, http.MethodPut)
		return
	}
	var criteria domain.FilterCriteria
	if err := decodeJSON(r, &criteria); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.update(w, r, http.MethodPut, func(s *listing.ViewState) error {
		s.SetDraft(criteria)
		return nil
	})
}

func (h *DashboardHandlers) setPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, http.MethodPut)
		return
	}
	var payload pageRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch payload.Direction {
	case "":
		h.update(w, r, http.MethodPut, func(s *listing.ViewState) error {
			s.SetPage(payload.Page)
			return nil
		})
	case "prev":
		h.update(w, r, http.MethodPut, func(s *listing.ViewState) error {
			s.Prev()
			return nil
		})
	case "next":
		if _, err := h.dashboard.Next(r.Context(), sessionFrom(r.Context())); err != nil {
			h.respondError(w, err)
			return
		}
		h.render(w, r)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown direction %q", payload.Direction))
	}
}

func (h *DashboardHandlers) setPageSize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, http.MethodPut)
		return
	}
	var payload pageSizeRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.update(w, r, http.MethodPut, func(s *listing.ViewState) error {
		return s.SetPageSize(payload.PageSize)
	})
}

// refresh re-fetches records and stats, e.g. after a failed load.
func (h *DashboardHandlers) refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if err := h.dashboard.Refresh(r.Context()); err != nil {
		h.respondError(w, err)
		return
	}
	h.render(w, r)
}

// StatusChanged drops the held snapshot so the next view sees the new status.
func (h *DashboardHandlers) StatusChanged(domain.User) {
	h.dashboard.Invalidate()
}

func (h *DashboardHandlers) update(w http.ResponseWriter, r *http.Request, method string, fn func(*listing.ViewState) error) {
	if r.Method != method {
		methodNotAllowed(w, method)
		return
	}
	if _, err := h.dashboard.Update(sessionFrom(r.Context()), fn); err != nil {
		h.respondError(w, err)
		return
	}
	h.render(w, r)
}

func (h *DashboardHandlers) render(w http.ResponseWriter, r *http.Request) {
	page, err := h.dashboard.Render(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *DashboardHandlers) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidPageSize):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("pageSize must be one of %v", listing.PageSizes))
	case dashboard.IsLoadError(err):
		respondLoadFailure(w)
	default:
		h.logger.Error("dashboard request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "dashboard request failed")
	}
}
