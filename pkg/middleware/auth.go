package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/deviceexpress/pkg/auth"
	"github.com/shashiranjanraj/deviceexpress/pkg/response"
)

type emailKey struct{}

// EmailFromCtx returns the verified token email stored by VerifyJWT.
func EmailFromCtx(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailKey{}).(string)
	return email, ok
}

// WithEmail stores email in ctx. Exported for handler tests that bypass the
// middleware chain.
func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailKey{}, email)
}

// VerifyJWT fails closed: a missing bearer header is unauthorized, a token
// that does not verify (bad signature, expired) is forbidden. On success the
// email claim is placed in the request context for downstream handlers.
func VerifyJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			response.Unauthorized(w)
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := auth.ValidateToken(token)
		if err != nil {
			response.Forbidden(w)
			return
		}

		ctx := WithEmail(r.Context(), claims.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RoleSource looks up a user's stored role. The concrete implementation is
// the user repository; middleware takes it as an explicit dependency rather
// than closing over a store handle.
type RoleSource interface {
	RoleByEmail(ctx context.Context, email string) (string, error)
}

// RequireRole gates a route to the given roles. The role is re-read from
// storage on every request — a role change takes effect on the next call,
// with no cache to invalidate. Run VerifyJWT first so the email is in
// context.
func RequireRole(src RoleSource, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, ok := EmailFromCtx(r.Context())
			if !ok {
				response.Unauthorized(w)
				return
			}

			role, err := src.RoleByEmail(r.Context(), email)
			if err != nil || !allowed[role] {
				response.Forbidden(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
