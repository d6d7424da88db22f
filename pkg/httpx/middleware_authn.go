package httpx

import (
	"net/http"
	"strings"

	"github.com/enotes/enotes/pkg/slogx"
	"github.com/enotes/enotes/pkg/tokens"
)

// AuthnMiddleware guards a route with bearer access-token authentication.
// The validator only needs the public key, so this middleware can run in
// front of any resource handler without access to signing material. On
// success the token subject is placed in the request context.
func AuthnMiddleware(v tokens.Validator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			info := v.Validate(raw)
			if !info.Valid {
				writeBearerError(w, "token verification failed")
				log.Warn("access token rejected")
				return
			}

			ctx = contextWithUsername(ctx, info.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
