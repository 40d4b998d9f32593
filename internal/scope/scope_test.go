package scope

import (
	"testing"

	"github.com/taxdesk/taxdesk/internal/orgcontext"
)

func TestForPrincipal(t *testing.T) {
	tests := []struct {
		name string
		p    orgcontext.Principal
		want Kind
	}{
		{
			name: "no organization denies everything",
			p:    orgcontext.Principal{StaffID: 7, Role: RoleAdmin},
			want: KindDenied,
		},
		{
			name: "global admin sees the whole org",
			p:    orgcontext.Principal{StaffID: 7, OrgID: 11, Role: RoleAdmin},
			want: KindOrg,
		},
		{
			name: "org admin sees the whole org",
			p:    orgcontext.Principal{StaffID: 7, OrgID: 11, Role: RoleStaff, OrgRole: OrgRoleAdmin},
			want: KindOrg,
		},
		{
			name: "member staff is limited to assignments",
			p:    orgcontext.Principal{StaffID: 7, OrgID: 11, Role: RoleStaff, OrgRole: OrgRoleMember},
			want: KindAssignment,
		},
		{
			name: "cpa without admin rank is limited to assignments",
			p:    orgcontext.Principal{StaffID: 7, OrgID: 11, Role: RoleCPA, OrgRole: OrgRoleMember},
			want: KindAssignment,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ForPrincipal(tt.p)
			if got.Kind != tt.want {
				t.Fatalf("kind = %d, want %d", got.Kind, tt.want)
			}
			if tt.want != KindDenied && got.OrgID != tt.p.OrgID {
				t.Fatalf("org = %v, want %v", got.OrgID, tt.p.OrgID)
			}
			if tt.want == KindAssignment && got.StaffID != tt.p.StaffID {
				t.Fatalf("staff = %v, want %v", got.StaffID, tt.p.StaffID)
			}
		})
	}
}

func TestZeroValueDenies(t *testing.T) {
	var s Scope
	if s.Kind != KindDenied {
		t.Fatal("the zero scope must deny")
	}
}
