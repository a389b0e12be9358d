package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Boluski2/lendsqr-admin/internal/metrics"
)

// RouterDependencies collects handler dependencies.
type RouterDependencies struct {
	Health           HealthService
	API              *APIHandlers
	Dashboard        *DashboardHandlers
	Auth             *AuthHandlers
	Tokens           TokenValidator
	AuthRequired     bool
	Metrics          *metrics.Metrics
	MetricsEnabled   bool
	AllowedOrigins   []string
	AllowCredentials bool
}

// NewRouter wires the HTTP routes exposed by the admin API.
func NewRouter(logger *slog.Logger, deps RouterDependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		payload := map[string]any{
			"status": "ok",
		}

		if deps.Health != nil {
			if err := deps.Health.Probe(ctx); err != nil {
				logger.Error("health probe failed", "error", err)
				status = http.StatusServiceUnavailable
				payload["status"] = "degraded"
				payload["error"] = err.Error()
			}
		}

		respondJSON(w, status, payload)
	})

	if deps.MetricsEnabled && deps.Metrics != nil {
		mux.Handle("/metrics", deps.Metrics.Handler())
	}
	if deps.Auth != nil {
		mux.HandleFunc("/auth/login", deps.Auth.handleLogin)
		mux.HandleFunc("/auth/logout", deps.Auth.handleLogout)
		mux.HandleFunc("/auth/session", deps.Auth.handleSession)
	}
	if deps.API != nil {
		mux.HandleFunc("/users", deps.API.handleUsers)
		mux.HandleFunc("/users/", deps.API.handleUserSubtree)
	}
	if deps.Dashboard != nil {
		mux.HandleFunc("/dashboard/users", deps.Dashboard.handleView)
		mux.HandleFunc("/dashboard/users/", deps.Dashboard.handleViewSubtree)
	}

	handler := authMiddleware(deps.Tokens, deps.AuthRequired, mux)
	handler = metricsMiddleware(deps.Metrics, handler)
	handler = loggingMiddleware(logger, handler)
	handler = requestIDMiddleware(handler)
	if len(deps.AllowedOrigins) > 0 {
		handler = corsMiddleware(deps.AllowedOrigins, deps.AllowCredentials)(handler)
	}
	return handler
}

type ctxKey int

const (
	requestIDKey ctxKey = iota
	sessionIDKey
)

const requestIDHeader = "X-Request-ID"

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", requestIDFrom(r.Context()),
		)
	})
}

func metricsMiddleware(m *metrics.Metrics, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.ObserveRequest(r.Method, routeLabel(r.URL.Path), rec.status, time.Since(start))
	})
}

// routeLabel collapses user ids so metric cardinality stays bounded.
func routeLabel(path string) string {
	rest, ok := strings.CutPrefix(path, "/users/")
	if !ok {
		return path
	}
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	switch {
	case len(parts) == 1 && (parts[0] == "stats" || parts[0] == "organizations"):
		return path
	case len(parts) == 2:
		return "/users/{id}/" + parts[1]
	default:
		return "/users/{id}"
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func corsMiddleware(allowedOrigins []string, allowCredentials bool) func(http.Handler) http.Handler {
	normalized := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		normalized[origin] = struct{}{}
	}
	wildcard := containsOrigin(normalized, "*")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			listed := containsOrigin(normalized, origin)
			if origin == "" || (!listed && !wildcard) {
				if r.Method == http.MethodOptions {
					// bare pre-flight from an unknown origin
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if listed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
				if allowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			} else {
				// origins admitted only by the wildcard never get credentials
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Session-ID, X-Request-ID")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, OPTIONS")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func containsOrigin(set map[string]struct{}, origin string) bool {
	_, ok := set[origin]
	return ok
}
