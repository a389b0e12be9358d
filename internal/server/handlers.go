package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Boluski2/lendsqr-admin/internal/dashboard"
	"github.com/Boluski2/lendsqr-admin/internal/domain"
	"github.com/Boluski2/lendsqr-admin/internal/listing"
	"github.com/Boluski2/lendsqr-admin/internal/service"
)

// APIHandlers exposes the stateless users API.
type APIHandlers struct {
	logger   *slog.Logger
	query    *service.QueryService
	resolver *service.Resolver
	mutation *service.MutationService
	onChange []func(domain.User)
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, query *service.QueryService, resolver *service.Resolver, mutation *service.MutationService) *APIHandlers {
	return &APIHandlers{
		logger:   logger,
		query:    query,
		resolver: resolver,
		mutation: mutation,
	}
}

// OnStatusChange registers fn to run after every successful status change.
func (h *APIHandlers) OnStatusChange(fn func(domain.User)) {
	h.onChange = append(h.onChange, fn)
}

type userDetailResponse struct {
	User domain.User        `json:"user"`
	Tabs []domain.DetailTab `json:"tabs"`
}

type listUsersResponse struct {
	listing.View
	Filters domain.FilterCriteria `json:"filters"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *APIHandlers) handleUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	h.listUsers(w, r)
}

// handleUserSubtree routes /users/stats, /users/organizations, /users/{id}
// and the per-user actions.
func (h *APIHandlers) handleUserSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/users/"), "/")
	if rest == "" {
		writeError(w, http.StatusBadRequest, "User ID not provided")
		return
	}
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 1 && parts[0] == "stats":
		h.stats(w, r)
	case len(parts) == 1 && parts[0] == "organizations":
		h.organizations(w, r)
	case len(parts) == 1:
		h.userDetail(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "blacklist":
		h.statusIntent(w, r, parts[0], domain.StatusBlacklisted)
	case len(parts) == 2 && parts[1] == "activate":
		h.statusIntent(w, r, parts[0], domain.StatusActive)
	case len(parts) == 2 && parts[1] == "status":
		h.patchStatus(w, r, parts[0])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *APIHandlers) listUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	criteria := domain.FilterCriteria{
		Organization: query.Get("organization"),
		Username:     query.Get("username"),
		Email:        query.Get("email"),
		Date:         query.Get("date"),
		PhoneNumber:  query.Get("phoneNumber"),
		Status:       query.Get("status"),
	}

	state := listing.NewViewState()
	if err := state.SetPageSize(parseInt(query.Get("pageSize"), listing.DefaultPageSize)); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("pageSize must be one of %v", listing.PageSizes))
		return
	}
	state.SetDraft(criteria)
	state.Apply()
	state.SetPage(parseInt(query.Get("page"), 1))

	records, err := h.query.ListAll(r.Context())
	if err != nil {
		h.respondLoadError(w, &dashboard.LoadError{Err: err})
		return
	}

	respondJSON(w, http.StatusOK, listUsersResponse{
		View:    listing.Render(records, state),
		Filters: criteria,
	})
}

func (h *APIHandlers) stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	stats, err := h.query.ComputeStats(r.Context())
	if err != nil {
		h.respondLoadError(w, &dashboard.LoadError{Err: err})
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *APIHandlers) organizations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	records, err := h.query.ListAll(r.Context())
	if err != nil {
		h.respondLoadError(w, &dashboard.LoadError{Err: err})
		return
	}
	respondJSON(w, http.StatusOK, map[string][]string{"organizations": listing.Organizations(records)})
}

func (h *APIHandlers) userDetail(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	user, ok, err := h.resolver.Resolve(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to resolve user", "error", err, "userId", id)
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, userDetailResponse{User: user, Tabs: domain.DetailTabs})
}

func (h *APIHandlers) statusIntent(w http.ResponseWriter, r *http.Request, id string, status domain.Status) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	h.applyStatus(w, r, id, status)
}

func (h *APIHandlers) patchStatus(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPatch {
		methodNotAllowed(w, http.MethodPatch)
		return
	}
	var payload statusRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	status, err := domain.ParseStatus(payload.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.applyStatus(w, r, id, status)
}

func (h *APIHandlers) applyStatus(w http.ResponseWriter, r *http.Request, id string, status domain.Status) {
	user, err := h.mutation.SetUserStatus(r.Context(), id, status)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, domain.ErrInvalidStatus), errors.Is(err, domain.ErrMissingUserID):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		h.logger.Error("failed to update user status", "error", err, "userId", id, "status", status)
		writeError(w, http.StatusInternalServerError, "failed to update user status")
	default:
		for _, fn := range h.onChange {
			fn(user)
		}
		respondJSON(w, http.StatusOK, userDetailResponse{User: user, Tabs: domain.DetailTabs})
	}
}

func (h *APIHandlers) respondLoadError(w http.ResponseWriter, err error) {
	h.logger.Error("failed to load users", "error", err)
	respondLoadFailure(w)
}

func respondLoadFailure(w http.ResponseWriter) {
	respondJSON(w, http.StatusServiceUnavailable, map[string]any{
		"error":     dashboard.LoadFailureMessage,
		"retryable": true,
	})
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	return nil
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
