package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-summary-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// RequireTenant rejects tokens without a corp_id or issued to a pending user.
func RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, user.ErrInvalidToken)
			return
		}

		corpID, ok := claims["corp_id"].(string)
		if !ok || corpID == "" {
			response.HandleError(w, user.ErrTenantRequired)
			return
		}

		if role, _ := claims["role"].(string); user.Role(role) == user.RolePending {
			response.HandleError(w, user.ErrTenantRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
