package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/jwt"
)

// RequirePermission checks the caller's role and explicit grants against policy.
func RequirePermission(policy user.Policy, permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := jwt.IdentityFromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, "Authentication required")
				return
			}

			if !policy.Allows(id, permission) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s'", permission))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
