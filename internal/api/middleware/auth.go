package middleware

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const tokenKey ctxKey = "auth_token"

// authScheme is the Authorization scheme carrying bearer tokens
const authScheme = "token"

// ParseAuthorization extracts the opaque token from an
// "Authorization: Token <t>" header. The scheme is case-insensitive and the
// header must have exactly two parts; anything else yields "".
func ParseAuthorization(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], authScheme) {
		return ""
	}
	return parts[1]
}

// Authenticate stores the request's bearer token in the context. It never
// rejects a request; handlers decide which role, if any, they require.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := ParseAuthorization(r.Header.Get("Authorization")); token != "" {
			r = r.WithContext(WithToken(r.Context(), token))
		}
		next.ServeHTTP(w, r)
	})
}

// WithToken returns a context carrying token
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext returns the bearer token of the request, or ""
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}
