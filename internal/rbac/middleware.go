package rbac

import (
	"log/slog"
	"net/http"

	"github.com/pharmadesk/pharmadesk/internal/platform/httpx"
	"github.com/pharmadesk/pharmadesk/internal/shared"
)

// Middleware wires authorization checks into HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
}

// Require ensures the authenticated principal may perform op.
func (m Middleware) Require(op Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := shared.PrincipalFromContext(r.Context())
			if p == nil {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}
			role, err := ParseRole(p.Role)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("rbac parse role", slog.String("role", p.Role), slog.Int64("user_id", p.UserID))
				}
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "unrecognized role")
				return
			}
			if !Allowed(op, role) {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "not enough permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
