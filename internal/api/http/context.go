package http

import (
	"context"
)

type contextKey int

const (
	principalKey contextKey = iota
	requestIDKey
)

// Principal is the authenticated caller of a request.
type Principal struct {
	MemberID int32
	Email    string
	Admin    bool
}

// CanActFor reports whether the caller may read or act on the member's records.
func (p Principal) CanActFor(memberID int32) bool {
	return p.Admin || p.MemberID == memberID
}

func withPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the caller set by the auth middleware.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
