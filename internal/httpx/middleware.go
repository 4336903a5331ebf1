package httpx

import (
	"context"
	"net/http"
	"strings"
)

// TokenResolver resolve bearer token jadi user id (lihat auth.Service).
type TokenResolver interface {
	UserID(ctx context.Context, token string) (string, error)
}

type ctxKey int

const userIDKey ctxKey = 0

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// RequireAuth menolak request tanpa session valid; user id masuk ke context.
func RequireAuth(resolver TokenResolver, production bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := resolver.UserID(r.Context(), bearerToken(r))
			if err != nil {
				writeError(w, err, production)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, id)))
		})
	}
}

// OptionalAuth: kalau ada token valid, user id masuk context; kalau tidak,
// request tetap lewat sebagai anonymous.
func OptionalAuth(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := bearerToken(r); tok != "" {
				if id, err := resolver.UserID(r.Context(), tok); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), userIDKey, id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserID dari context; kosong kalau anonymous.
func UserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}
