// Package actor carries the acting user's identity through a request.
// The identity is asserted by the caller (HTTP header or CLI flag) and is
// not verified here.
package actor

import "context"

type ctxKey struct{}

// WithUserID returns a context tagged with the acting user's ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserID returns the acting user's ID, if one was attached.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

type systemKey struct{}

// AsSystem marks ctx as a trusted local operator, such as the CLI run
// without --as. Ownership checks are skipped for it.
func AsSystem(ctx context.Context) context.Context {
	return context.WithValue(ctx, systemKey{}, true)
}

// IsSystem reports whether ctx was marked by AsSystem.
func IsSystem(ctx context.Context) bool {
	v, _ := ctx.Value(systemKey{}).(bool)
	return v
}
