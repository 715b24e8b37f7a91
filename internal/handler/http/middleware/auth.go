package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hrm-backend-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired rejects requests without a verified access token. It runs after jwtauth.Verifier.
func AuthRequired(next http.Handler) http.Handler {
	hfn := func(w http.ResponseWriter, r *http.Request) {
		token, _, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, "Invalid or missing token")
			return
		}

		if token == nil {
			response.Unauthorized(w, "Invalid or missing token")
			return
		}

		claims, err := token.AsMap(r.Context())
		if err != nil {
			response.Unauthorized(w, "Invalid or missing token")
			return
		}
		tokenType, ok := claims["type"].(string)
		if tokenType != "access" || !ok {
			response.Unauthorized(w, "Invalid token type")
			return
		}

		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hfn)
}
