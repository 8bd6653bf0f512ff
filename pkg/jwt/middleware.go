package jwt

import (
	"net/http"
	"strings"

	"github.com/zafarimam8588/ayo-portal/pkg/httpx"
)

// Middleware verifies the Bearer token on every request and stores the
// claims in the request context. Requests without a valid token are
// rejected with 401.
func Middleware(svc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				httpx.Error(w, httpx.ErrUnauthorized)
				return
			}

			claims, err := svc.Parse(token)
			if err != nil {
				httpx.Error(w, httpx.ErrUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(auth[len(prefix):]), true
}
