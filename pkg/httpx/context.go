package httpx

import "context"

type ctxKey string

const ctxKeyUsername ctxKey = "username"

// UsernameFromContext returns the authenticated username placed in the
// context by AuthnMiddleware, or "" when the request is unauthenticated.
func UsernameFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyUsername).(string); ok {
		return v
	}
	return ""
}

func contextWithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, ctxKeyUsername, username)
}
