package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Boluski2/lendsqr-admin/internal/auth"
)

// TokenValidator verifies session tokens.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

const (
	sessionHeader    = "X-Session-ID"
	anonymousSession = "anonymous"
)

// authMiddleware guards the users and dashboard routes. When a valid bearer
// token is present its id becomes the dashboard session; otherwise the
// X-Session-ID header is used.
func authMiddleware(tokens TokenValidator, required bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		guarded := isGuarded(r.URL.Path)
		session := r.Header.Get(sessionHeader)

		raw, hasToken := bearerToken(r)
		switch {
		case hasToken && tokens != nil:
			claims, err := tokens.ValidateToken(raw)
			if err != nil {
				if guarded && required {
					writeError(w, http.StatusUnauthorized, "invalid or expired session")
					return
				}
				break
			}
			session = claims.ID
		case guarded && required:
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		if session == "" {
			session = anonymousSession
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionIDKey, session)))
	})
}

func isGuarded(path string) bool {
	for _, prefix := range []string{"/users", "/dashboard"} {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

func sessionFrom(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok && id != "" {
		return id
	}
	return anonymousSession
}

// AuthHandlers exposes the stub login endpoints.
type AuthHandlers struct {
	logger *slog.Logger
	auth   *auth.Service
}

// NewAuthHandlers constructs an AuthHandlers instance.
func NewAuthHandlers(logger *slog.Logger, svc *auth.Service) *AuthHandlers {
	return &AuthHandlers{logger: logger, auth: svc}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var payload loginRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.auth.Login(r.Context(), strings.TrimSpace(payload.Email), payload.Password)
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	respondJSON(w, http.StatusOK, session)
}

func (h *AuthHandlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if err := h.auth.Logout(r.Context()); err != nil {
		h.logger.Error("logout failed", "error", err)
		writeError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandlers) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"authenticated": h.auth.Authenticated(r.Context())})
}
