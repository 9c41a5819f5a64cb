package middleware

import (
	"net/http"

	"github.com/kintai-cloud/kintai-backend-go/internal/domain/staff"
	"github.com/kintai-cloud/kintai-backend-go/internal/handler/http/response"
	"github.com/kintai-cloud/kintai-backend-go/internal/pkg/jwt"
)

// RequireApprover requires approver or admin role
func RequireApprover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := jwt.FromContext(r.Context())
		if !ok {
			response.Forbidden(w, "Approver access required")
			return
		}

		role := staff.Role(claims.Role)
		if role != staff.RoleApprover && role != staff.RoleAdmin {
			response.Forbidden(w, "Approver access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAdmin requires admin role
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := jwt.FromContext(r.Context())
		if !ok {
			response.Forbidden(w, "Admin access required")
			return
		}

		if staff.Role(claims.Role) != staff.RoleAdmin {
			response.Forbidden(w, "Admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
