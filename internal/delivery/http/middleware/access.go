package middleware

import (
	"log/slog"
	"net/http"

	h "compassevent/internal/delivery/http/helpers"
	"compassevent/internal/domain"
)

// Middleware wraps a handler function.
type Middleware func(http.HandlerFunc) http.HandlerFunc

// Chain applies mws to next so that the first middleware runs first.
func Chain(next http.HandlerFunc, mws ...Middleware) http.HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		next = mws[i](next)
	}
	return next
}

// RequireRoles admits principals holding one of roles. It must run after RequireAuth.
func RequireRoles(access domain.AccessService, logger *slog.Logger, roles ...domain.Role) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			p, _ := PrincipalFromContext(r.Context())
			if err := access.CheckRoles(p, roles...); err != nil {
				h.WriteServiceError(w, r, logger, err)
				return
			}
			next(w, r)
		}
	}
}

// RequireEmailConfirmed admits principals whose stored user has confirmed the email.
func RequireEmailConfirmed(access domain.AccessService, logger *slog.Logger) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			p, _ := PrincipalFromContext(r.Context())
			if err := access.CheckEmailConfirmed(r.Context(), p); err != nil {
				h.WriteServiceError(w, r, logger, err)
				return
			}
			next(w, r)
		}
	}
}

// RequireSelfOrAdmin admits admins and the user whose id is in the path parameter param.
func RequireSelfOrAdmin(access domain.AccessService, logger *slog.Logger, param string) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			p, _ := PrincipalFromContext(r.Context())
			if err := access.CheckSelfOrAdmin(p, r.PathValue(param)); err != nil {
				h.WriteServiceError(w, r, logger, err)
				return
			}
			next(w, r)
		}
	}
}
