package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/kintai-cloud/kintai-backend-go/internal/handler/http/response"
	"github.com/kintai-cloud/kintai-backend-go/internal/pkg/jwt"
)

// AuthRequired rejects requests whose bearer token did not verify or whose
// claims are missing the staff identity.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}
		if token == nil {
			response.Unauthorized(w, "Missing bearer token")
			return
		}

		if _, ok := jwt.FromContext(r.Context()); !ok {
			response.Unauthorized(w, "Token is missing the staff identity")
			return
		}

		next.ServeHTTP(w, r)
	})
}
