package shared

import "context"

// Caller is the already-resolved identity attached to every request.
type Caller struct {
	UserID  int64
	Name    string
	Company string
	Admin   bool
}

type callerContextKey struct{}

// ContextWithCaller stores the caller in context.
func ContextWithCaller(ctx context.Context, c *Caller) context.Context {
	return context.WithValue(ctx, callerContextKey{}, c)
}

// CallerFromContext extracts the caller from context, nil when absent.
func CallerFromContext(ctx context.Context) *Caller {
	c, _ := ctx.Value(callerContextKey{}).(*Caller)
	return c
}
