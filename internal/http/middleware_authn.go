package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Undertone0809/ecjtu/internal/service"
	"github.com/Undertone0809/ecjtu/pkg/httpx"
	"github.com/Undertone0809/ecjtu/pkg/slogx"
)

// authn resolves the presented access token to a student id and stashes it in
// the request context. Expired and invalid tokens both end in 401 but with
// distinct messages so clients know whether a refresh will help.
func (rt *Router) authn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := accessToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "missing access token")
			return
		}

		studentID, err := rt.TokenService.ResolveStudentID(r.Context(), token)
		if err != nil {
			log := slogx.FromContext(r.Context())
			switch {
			case errors.Is(err, service.ErrTokenExpired):
				respondError(w, http.StatusUnauthorized, "access token expired, refresh required")
			case errors.Is(err, service.ErrTokenInvalid):
				respondError(w, http.StatusUnauthorized, "invalid access token")
			default:
				log.Error("token resolution failed", "err", err)
				respondError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		ctx := context.WithValue(r.Context(), httpx.CtxKeyStudentID, studentID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessToken pulls the token from the Authorization header, falling back to
// the bare "token" header older clients send.
func accessToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.Header.Get("token"))
}
