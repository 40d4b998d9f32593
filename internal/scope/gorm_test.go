package scope_test

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/taxdesk/taxdesk/internal/client/domain"
	documentdomain "github.com/taxdesk/taxdesk/internal/document/domain"
	messagedomain "github.com/taxdesk/taxdesk/internal/message/domain"
	"github.com/taxdesk/taxdesk/internal/scope"
	taxcasedomain "github.com/taxdesk/taxdesk/internal/taxcase/domain"
	"github.com/taxdesk/taxdesk/pkg/db"
	"gorm.io/gorm"
)

type fixture struct {
	conn *gorm.DB

	orgA, orgB       snowflake.ID
	staffA           snowflake.ID
	clientA, clientB snowflake.ID
	unassignedA      snowflake.ID
	caseA, caseB     snowflake.ID
	caseUnassignedA  snowflake.ID
}

// newFixture seeds two organizations. Org A has two clients, one of which is
// assigned to staffA; org B has one client. Every case carries a document
// and a message.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := conn.AutoMigrate(
		&clientdomain.Client{},
		&clientdomain.Assignment{},
		&taxcasedomain.TaxCase{},
		&documentdomain.Document{},
		&messagedomain.Message{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(2)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	gen := node.Generate

	f := &fixture{
		conn:   conn,
		orgA:   gen(),
		orgB:   gen(),
		staffA: gen(),
	}

	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	newClient := func(org snowflake.ID, name string) snowflake.ID {
		c := clientdomain.Client{
			ID: gen(), OrgID: org, LegalName: name,
			Metadata:  map[string]any{},
			CreatedAt: now, UpdatedAt: now,
		}
		if err := conn.Create(&c).Error; err != nil {
			t.Fatalf("seed client: %v", err)
		}
		return c.ID
	}
	newCase := func(org, client snowflake.ID) snowflake.ID {
		tc := taxcasedomain.TaxCase{
			ID: gen(), OrgID: org, ClientID: client,
			Status:    taxcasedomain.StatusIntake,
			CreatedAt: now, UpdatedAt: now,
		}
		if err := conn.Create(&tc).Error; err != nil {
			t.Fatalf("seed case: %v", err)
		}
		doc := documentdomain.Document{
			ID: gen(), OrgID: org, CaseID: tc.ID,
			StorageKey:  "cases/" + tc.ID.String() + "/docs/w2.pdf",
			DisplayName: "w2", Extension: ".pdf",
			ContentType: "application/pdf", SizeBytes: 128,
			Category: documentdomain.CategoryW2, Status: documentdomain.DocStatusUploaded,
			CreatedAt: now, UpdatedAt: now,
		}
		if err := conn.Create(&doc).Error; err != nil {
			t.Fatalf("seed document: %v", err)
		}
		msg := messagedomain.Message{
			ID: gen(), OrgID: org, CaseID: tc.ID,
			AuthorKind: messagedomain.AuthorClient,
			Body:       "uploaded my W-2",
			CreatedAt:  now,
		}
		if err := conn.Create(&msg).Error; err != nil {
			t.Fatalf("seed message: %v", err)
		}
		return tc.ID
	}

	f.clientA = newClient(f.orgA, "Assigned LLC")
	f.unassignedA = newClient(f.orgA, "Unassigned LLC")
	f.clientB = newClient(f.orgB, "Other Firm Client")

	f.caseA = newCase(f.orgA, f.clientA)
	f.caseUnassignedA = newCase(f.orgA, f.unassignedA)
	f.caseB = newCase(f.orgB, f.clientB)

	assignment := clientdomain.Assignment{
		ID: gen(), ClientID: f.clientA, StaffID: f.staffA,
		AssignedBy: f.staffA, CreatedAt: now,
	}
	if err := conn.Create(&assignment).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}

	return f
}

func countClients(t *testing.T, f *fixture, s scope.Scope) int64 {
	t.Helper()
	var n int64
	if err := f.conn.Model(&clientdomain.Client{}).Scopes(s.Clients()).Count(&n).Error; err != nil {
		t.Fatalf("count clients: %v", err)
	}
	return n
}

func countCases(t *testing.T, f *fixture, s scope.Scope) int64 {
	t.Helper()
	var n int64
	if err := f.conn.Model(&taxcasedomain.TaxCase{}).Scopes(s.Cases()).Count(&n).Error; err != nil {
		t.Fatalf("count cases: %v", err)
	}
	return n
}

func countDocuments(t *testing.T, f *fixture, s scope.Scope) int64 {
	t.Helper()
	var n int64
	if err := f.conn.Model(&documentdomain.Document{}).Scopes(s.Documents()).Count(&n).Error; err != nil {
		t.Fatalf("count documents: %v", err)
	}
	return n
}

func countMessages(t *testing.T, f *fixture, s scope.Scope) int64 {
	t.Helper()
	var n int64
	if err := f.conn.Model(&messagedomain.Message{}).Scopes(s.Messages()).Count(&n).Error; err != nil {
		t.Fatalf("count messages: %v", err)
	}
	return n
}

func TestOrgScopeSeesOnlyItsOrg(t *testing.T) {
	f := newFixture(t)
	s := scope.Scope{Kind: scope.KindOrg, OrgID: f.orgA}

	if n := countClients(t, f, s); n != 2 {
		t.Fatalf("clients = %d, want 2", n)
	}
	if n := countCases(t, f, s); n != 2 {
		t.Fatalf("cases = %d, want 2", n)
	}
	if n := countDocuments(t, f, s); n != 2 {
		t.Fatalf("documents = %d, want 2", n)
	}
	if n := countMessages(t, f, s); n != 2 {
		t.Fatalf("messages = %d, want 2", n)
	}
}

func TestAssignmentScopeFollowsTheClientHop(t *testing.T) {
	f := newFixture(t)
	s := scope.Scope{Kind: scope.KindAssignment, OrgID: f.orgA, StaffID: f.staffA}

	if n := countClients(t, f, s); n != 1 {
		t.Fatalf("clients = %d, want 1", n)
	}
	if n := countCases(t, f, s); n != 1 {
		t.Fatalf("cases = %d, want 1", n)
	}
	if n := countDocuments(t, f, s); n != 1 {
		t.Fatalf("documents = %d, want 1", n)
	}
	if n := countMessages(t, f, s); n != 1 {
		t.Fatalf("messages = %d, want 1", n)
	}

	var got taxcasedomain.TaxCase
	if err := f.conn.Scopes(s.Cases()).First(&got).Error; err != nil {
		t.Fatalf("load visible case: %v", err)
	}
	if got.ID != f.caseA {
		t.Fatalf("visible case = %v, want %v", got.ID, f.caseA)
	}
}

// An assignment in another organization must not leak rows across the org
// boundary even if assignment rows somehow point at them.
func TestAssignmentScopeStopsAtTheOrgBoundary(t *testing.T) {
	f := newFixture(t)

	rogue := clientdomain.Assignment{
		ID: f.staffA + 1, ClientID: f.clientB, StaffID: f.staffA,
		AssignedBy: f.staffA, CreatedAt: time.Now(),
	}
	if err := f.conn.Create(&rogue).Error; err != nil {
		t.Fatalf("seed rogue assignment: %v", err)
	}

	s := scope.Scope{Kind: scope.KindAssignment, OrgID: f.orgA, StaffID: f.staffA}
	if n := countClients(t, f, s); n != 1 {
		t.Fatalf("clients = %d, want 1", n)
	}
	if n := countCases(t, f, s); n != 1 {
		t.Fatalf("cases = %d, want 1", n)
	}
}

func TestDeniedScopeMatchesNothing(t *testing.T) {
	f := newFixture(t)

	var denied scope.Scope
	if n := countClients(t, f, denied); n != 0 {
		t.Fatalf("clients = %d, want 0", n)
	}
	if n := countCases(t, f, denied); n != 0 {
		t.Fatalf("cases = %d, want 0", n)
	}
	if n := countDocuments(t, f, denied); n != 0 {
		t.Fatalf("documents = %d, want 0", n)
	}
	if n := countMessages(t, f, denied); n != 0 {
		t.Fatalf("messages = %d, want 0", n)
	}
}

func TestUnrestrictedScopeSeesEverything(t *testing.T) {
	f := newFixture(t)
	s := scope.Unrestricted()

	if n := countClients(t, f, s); n != 3 {
		t.Fatalf("clients = %d, want 3", n)
	}
	if n := countCases(t, f, s); n != 3 {
		t.Fatalf("cases = %d, want 3", n)
	}
}
