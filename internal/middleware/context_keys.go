package middleware

import "context"

// callerCtxKey is the key used to store the authenticated caller in the
// request context.
const callerCtxKey = contextKey("caller")

// Caller is the security context of an authenticated request: who is calling
// and which roles the token grants. Privilege resolution happens in the
// service layer, not here.
type Caller struct {
	Subject string
	RoleIDs []string
}

// WithCaller stores the authenticated caller in the context.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerCtxKey, caller)
}

// GetCallerFromCtx retrieves the authenticated caller from the context.
// It returns the caller and a boolean indicating if it was found.
func GetCallerFromCtx(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerCtxKey).(Caller)
	return caller, ok
}
