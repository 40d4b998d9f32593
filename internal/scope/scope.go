// Package scope derives row-visibility predicates from the authenticated
// principal. Every tenant-scoped query goes through here; the zero value of
// Scope denies everything, so a missing or half-migrated principal can never
// widen visibility.
package scope

import (
	"github.com/bwmarrin/snowflake"
	"github.com/taxdesk/taxdesk/internal/orgcontext"
)

type Kind int

const (
	// KindDenied matches no rows. This is the zero value on purpose.
	KindDenied Kind = iota
	// KindOrg matches every row in the principal's organization.
	KindOrg
	// KindAssignment matches rows in the organization that are reachable
	// through a client assignment for the principal's staff record.
	KindAssignment
	// KindUnrestricted matches all rows. Only internal jobs use it.
	KindUnrestricted
)

// Scope is the tagged visibility decision for one principal.
type Scope struct {
	Kind    Kind
	OrgID   snowflake.ID
	StaffID snowflake.ID
}

const (
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF"
	RoleCPA   = "CPA"

	OrgRoleAdmin  = "ADMIN"
	OrgRoleMember = "MEMBER"
)

// ForPrincipal maps a principal onto its visibility scope. It never fails;
// principals without an organization resolve to Denied.
func ForPrincipal(p orgcontext.Principal) Scope {
	if p.OrgID == 0 {
		return Scope{Kind: KindDenied}
	}

	if p.Role == RoleAdmin || p.OrgRole == OrgRoleAdmin {
		return Scope{Kind: KindOrg, OrgID: p.OrgID}
	}

	if p.StaffID != 0 {
		return Scope{Kind: KindAssignment, OrgID: p.OrgID, StaffID: p.StaffID}
	}

	return Scope{Kind: KindOrg, OrgID: p.OrgID}
}

// Unrestricted is the scope for trusted internal callers.
func Unrestricted() Scope {
	return Scope{Kind: KindUnrestricted}
}
