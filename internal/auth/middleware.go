package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/pcpedia/leasing-api/internal/platform/httpx"
	"github.com/pcpedia/leasing-api/internal/platform/i18n"
	"github.com/pcpedia/leasing-api/internal/shared"
)

// Middleware resolves bearer tokens into caller context and gates routes by
// role. Callers downstream always receive already-resolved identity.
type Middleware struct {
	service *Service
	printer *i18n.Printer
	logger  *slog.Logger
}

// NewMiddleware constructs Middleware.
func NewMiddleware(service *Service, printer *i18n.Printer, logger *slog.Logger) *Middleware {
	return &Middleware{service: service, printer: printer, logger: logger}
}

// Authenticate requires a valid bearer token and stores the caller in context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
			return
		}

		caller, err := m.service.ResolveCaller(r.Context(), token)
		if err != nil {
			if err != ErrTokenNotFound {
				m.logger.Error("resolve caller", slog.Any("error", err))
			}
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.ContextWithCaller(r.Context(), caller)))
	})
}

// RequireAdmin allows only administrators.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := shared.CallerFromContext(r.Context())
		if caller == nil || !caller.Admin {
			httpx.Problem(w, http.StatusForbidden, "Forbidden", m.printer.T("auth.access.denied"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireClient allows only non-admin client accounts.
func (m *Middleware) RequireClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := shared.CallerFromContext(r.Context())
		if caller == nil || caller.Admin {
			httpx.Problem(w, http.StatusForbidden, "Forbidden", m.printer.T("auth.access.denied"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
