package middleware

import (
	"net/http"

	"user-activation/pkg/utils"

	"go.uber.org/zap"
)

// BasicCredentials requires HTTP Basic credentials and puts them in the
// request context. Checking them is left to the service.
func BasicCredentials(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, password, ok := r.BasicAuth()
			if !ok || email == "" {
				logger.Warn("Missing basic credentials",
					zap.String("path", r.URL.Path),
					zap.String("ip", r.RemoteAddr))
				utils.ResponseUnauthorized(w, "Not authenticated")
				return
			}

			ctx := utils.SetCredentialsContext(r.Context(), email, password)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
