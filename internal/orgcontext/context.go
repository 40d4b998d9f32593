package orgcontext

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Principal is the authenticated caller as resolved by the auth middleware.
// OrgID and StaffID may be zero for identities that have not finished
// onboarding; the scope layer treats those as fail-closed.
type Principal struct {
	IdentityID string
	StaffID    snowflake.ID
	OrgID      snowflake.ID
	Role       string
	OrgRole    string
}

type principalKey struct{}

// WithPrincipal stores the authenticated principal in the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the authenticated principal, if set.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// OrgIDFromContext returns the active organization ID from context, if set.
func OrgIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	p, ok := PrincipalFromContext(ctx)
	if !ok || p.OrgID == 0 {
		return 0, false
	}
	return p.OrgID, true
}
