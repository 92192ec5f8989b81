package logbuffer

import "context"

type ctxKey int

const (
	urlKey ctxKey = iota
	userIDKey
)

// WithURL attaches the location an entry was recorded at.
func WithURL(ctx context.Context, url string) context.Context {
	return context.WithValue(ctx, urlKey, url)
}

// WithUserID attaches the acting user to entries recorded under ctx.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

func urlFrom(ctx context.Context) string {
	s, _ := ctx.Value(urlKey).(string)
	return s
}

func userIDFrom(ctx context.Context) string {
	s, _ := ctx.Value(userIDKey).(string)
	return s
}
