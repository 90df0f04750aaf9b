package middleware

import (
	"context"
	"errors"
	"net/http"

	"ecommerce-platform/internal/models"

	"github.com/sirupsen/logrus"
)

type adminKey struct{}

// AdminLoader looks up the admin behind a session subject.
type AdminLoader interface {
	GetByID(ctx context.Context, id string) (*models.Admin, error)
}

// RequireSession rejects requests that reached it without session claims.
// It must run after Gate.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ClaimsFromContext(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin loads the session's admin into the context. When superAdmin is
// set, only SuperAdmin accounts pass.
func RequireAdmin(admins AdminLoader, superAdmin bool, logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			admin, err := admins.GetByID(r.Context(), claims.SubjectID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					writeError(w, http.StatusUnauthorized, "authentication required")
					return
				}
				logger.WithError(err).WithField("admin_id", claims.SubjectID).Error("Failed to load admin")
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			if superAdmin && !admin.IsSuperAdmin() {
				logger.WithField("admin_id", admin.ID).Warn("SuperAdmin procedure denied")
				writeError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), adminKey{}, admin)))
		})
	}
}

// AdminFromContext returns the admin loaded by RequireAdmin, or nil.
func AdminFromContext(ctx context.Context) *models.Admin {
	admin, _ := ctx.Value(adminKey{}).(*models.Admin)
	return admin
}
