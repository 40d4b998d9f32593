package server

import (
	"net/http"
	"testing"
	"time"

	orgdomain "github.com/taxdesk/taxdesk/internal/organization/domain"
)

type caseEnvelope struct {
	Case struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"case"`
}

type clientEnvelope struct {
	Client struct {
		ID string `json:"id"`
	} `json:"client"`
}

func (e *testEnv) createClientAndCase(t *testing.T, token string) (clientID, caseID string) {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/clients", token, map[string]any{
		"legal_name": "Acme Holdings LLC",
	})
	mustStatus(t, w, http.StatusCreated)
	var cl clientEnvelope
	decodeJSON(t, w, &cl)

	w = e.do(t, http.MethodPost, "/api/cases", token, map[string]any{
		"client_id": cl.Client.ID,
		"tax_year":  2025,
	})
	mustStatus(t, w, http.StatusCreated)
	var tc caseEnvelope
	decodeJSON(t, w, &tc)

	return cl.Client.ID, tc.Case.ID
}

func TestRequestsWithoutTokenAreUnauthorized(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodGet, "/api/clients", "", nil)
	mustStatus(t, w, http.StatusUnauthorized)
}

func TestCrossOrgCaseReadsAsNotFound(t *testing.T) {
	e := newTestEnv(t)

	orgA := e.seedOrg(t, "Org A")
	orgB := e.seedOrg(t, "Org B")
	_, adminA := e.seedStaff(t, orgA, "idp|admin-a", orgdomain.RoleAdmin, orgdomain.OrgRoleAdmin)
	_, staffB := e.seedStaff(t, orgB, "idp|staff-b", orgdomain.RoleStaff, orgdomain.OrgRoleMember)

	_, caseID := e.createClientAndCase(t, adminA)

	// Same org sees it.
	w := e.do(t, http.MethodGet, "/api/cases/"+caseID, adminA, nil)
	mustStatus(t, w, http.StatusOK)

	// Another org gets 404, never 403.
	w = e.do(t, http.MethodGet, "/api/cases/"+caseID, staffB, nil)
	mustStatus(t, w, http.StatusNotFound)
}

func TestPrincipalWithoutOrgSeesNothing(t *testing.T) {
	e := newTestEnv(t)

	orgA := e.seedOrg(t, "Org A")
	_, adminA := e.seedStaff(t, orgA, "idp|admin-a", orgdomain.RoleAdmin, orgdomain.OrgRoleAdmin)
	_, orphan := e.seedStaff(t, 0, "idp|orphan", orgdomain.RoleStaff, orgdomain.OrgRoleMember)

	_, caseID := e.createClientAndCase(t, adminA)

	w := e.do(t, http.MethodGet, "/api/cases/"+caseID, orphan, nil)
	mustStatus(t, w, http.StatusNotFound)

	w = e.do(t, http.MethodGet, "/api/clients", orphan, nil)
	mustStatus(t, w, http.StatusOK)
	var list struct {
		Clients []any `json:"clients"`
	}
	decodeJSON(t, w, &list)
	if len(list.Clients) != 0 {
		t.Fatalf("orphan principal saw %d clients", len(list.Clients))
	}
}

func TestAssignmentScopeForNonAdminStaff(t *testing.T) {
	e := newTestEnv(t)

	orgA := e.seedOrg(t, "Org A")
	_, admin := e.seedStaff(t, orgA, "idp|admin", orgdomain.RoleAdmin, orgdomain.OrgRoleAdmin)
	staffID, staff := e.seedStaff(t, orgA, "idp|staff", orgdomain.RoleStaff, orgdomain.OrgRoleMember)

	assignedClient, _ := e.createClientAndCase(t, admin)
	otherClient, _ := e.createClientAndCase(t, admin)

	w := e.do(t, http.MethodPost, "/api/clients/"+assignedClient+"/assignments", admin, map[string]any{
		"staff_id": staffID.String(),
	})
	mustStatus(t, w, http.StatusCreated)

	// Duplicate assignment conflicts rather than silently succeeding.
	w = e.do(t, http.MethodPost, "/api/clients/"+assignedClient+"/assignments", admin, map[string]any{
		"staff_id": staffID.String(),
	})
	mustStatus(t, w, http.StatusConflict)

	// The staff member sees the assigned client, not the other one.
	w = e.do(t, http.MethodGet, "/api/clients/"+assignedClient, staff, nil)
	mustStatus(t, w, http.StatusOK)
	w = e.do(t, http.MethodGet, "/api/clients/"+otherClient, staff, nil)
	mustStatus(t, w, http.StatusNotFound)

	// Assignment management is admin-only.
	w = e.do(t, http.MethodPost, "/api/clients/"+otherClient+"/assignments", staff, map[string]any{
		"staff_id": staffID.String(),
	})
	mustStatus(t, w, http.StatusForbidden)

	// Staff from another organization cannot be assigned; the id reads as
	// absent.
	orgB := e.seedOrg(t, "Org B")
	foreignStaffID, _ := e.seedStaff(t, orgB, "idp|foreign", orgdomain.RoleStaff, orgdomain.OrgRoleMember)
	w = e.do(t, http.MethodPost, "/api/clients/"+otherClient+"/assignments", admin, map[string]any{
		"staff_id": foreignStaffID.String(),
	})
	mustStatus(t, w, http.StatusNotFound)
}

func TestCaseTransitionHappyPathAndRejection(t *testing.T) {
	e := newTestEnv(t)

	orgA := e.seedOrg(t, "Org A")
	_, admin := e.seedStaff(t, orgA, "idp|admin", orgdomain.RoleAdmin, orgdomain.OrgRoleAdmin)
	_, caseID := e.createClientAndCase(t, admin)

	w := e.do(t, http.MethodPost, "/api/cases/"+caseID+"/status", admin, map[string]any{
		"status": "WAITING_DOCS",
	})
	mustStatus(t, w, http.StatusOK)
	var tc caseEnvelope
	decodeJSON(t, w, &tc)
	if tc.Case.Status != "WAITING_DOCS" {
		t.Fatalf("status = %q", tc.Case.Status)
	}

	// An illegal jump is rejected with the corrective information.
	w = e.do(t, http.MethodPost, "/api/cases/"+caseID+"/status", admin, map[string]any{
		"status": "FILED",
	})
	mustStatus(t, w, http.StatusUnprocessableEntity)
	var rejection struct {
		Error struct {
			Type          string   `json:"type"`
			CurrentStatus string   `json:"current_status"`
			ValidStatuses []string `json:"valid_statuses"`
		} `json:"error"`
	}
	decodeJSON(t, w, &rejection)
	if rejection.Error.Type != "invalid_transition" {
		t.Fatalf("type = %q", rejection.Error.Type)
	}
	if rejection.Error.CurrentStatus != "WAITING_DOCS" {
		t.Fatalf("current = %q", rejection.Error.CurrentStatus)
	}
	if len(rejection.Error.ValidStatuses) != 1 || rejection.Error.ValidStatuses[0] != "IN_PROGRESS" {
		t.Fatalf("valid = %v", rejection.Error.ValidStatuses)
	}
}

func TestPortalLinkLifecycle(t *testing.T) {
	e := newTestEnv(t)

	orgA := e.seedOrg(t, "Org A")
	_, admin := e.seedStaff(t, orgA, "idp|admin", orgdomain.RoleAdmin, orgdomain.OrgRoleAdmin)
	_, caseID := e.createClientAndCase(t, admin)

	ttl := 24
	w := e.do(t, http.MethodPost, "/api/cases/"+caseID+"/links", admin, map[string]any{
		"type":      "PORTAL",
		"ttl_hours": &ttl,
	})
	mustStatus(t, w, http.StatusCreated)
	var issued struct {
		URL  string `json:"url"`
		Link struct {
			ID string `json:"id"`
		} `json:"link"`
	}
	decodeJSON(t, w, &issued)

	token := issued.URL[len("http://localhost:5173/portal/"):]

	w = e.do(t, http.MethodGet, "/portal/links/"+token, "", nil)
	mustStatus(t, w, http.StatusOK)
	var validated struct {
		Valid   bool   `json:"valid"`
		CaseID  string `json:"case_id"`
		OrgName string `json:"org_name"`
	}
	decodeJSON(t, w, &validated)
	if !validated.Valid || validated.CaseID != caseID {
		t.Fatalf("validated = %+v", validated)
	}
	if validated.OrgName != "Org A" {
		t.Fatalf("org_name = %q", validated.OrgName)
	}

	// Past its TTL the portal reports EXPIRED_TOKEN specifically.
	e.clock.Advance(24 * time.Hour)
	w = e.do(t, http.MethodGet, "/portal/links/"+token, "", nil)
	mustStatus(t, w, http.StatusGone)
	var failed struct {
		Valid bool   `json:"valid"`
		Error string `json:"error"`
	}
	decodeJSON(t, w, &failed)
	if failed.Error != "EXPIRED_TOKEN" {
		t.Fatalf("error = %q", failed.Error)
	}

	// Garbage tokens report INVALID_TOKEN.
	w = e.do(t, http.MethodGet, "/portal/links/nosuchtoken", "", nil)
	mustStatus(t, w, http.StatusNotFound)
	decodeJSON(t, w, &failed)
	if failed.Error != "INVALID_TOKEN" {
		t.Fatalf("error = %q", failed.Error)
	}
}

func TestCrossOrgLinkRevokeReadsAsNotFound(t *testing.T) {
	e := newTestEnv(t)

	orgA := e.seedOrg(t, "Org A")
	orgB := e.seedOrg(t, "Org B")
	_, adminA := e.seedStaff(t, orgA, "idp|admin-a", orgdomain.RoleAdmin, orgdomain.OrgRoleAdmin)
	_, staffB := e.seedStaff(t, orgB, "idp|staff-b", orgdomain.RoleStaff, orgdomain.OrgRoleMember)
	_, caseID := e.createClientAndCase(t, adminA)

	w := e.do(t, http.MethodPost, "/api/cases/"+caseID+"/links", adminA, map[string]any{
		"type": "PORTAL",
	})
	mustStatus(t, w, http.StatusCreated)
	var issued struct {
		URL  string `json:"url"`
		Link struct {
			ID string `json:"id"`
		} `json:"link"`
	}
	decodeJSON(t, w, &issued)
	token := issued.URL[len("http://localhost:5173/portal/"):]

	// Another tenant cannot revoke the link, and cannot learn it exists.
	w = e.do(t, http.MethodDelete, "/api/links/"+issued.Link.ID, staffB, nil)
	mustStatus(t, w, http.StatusNotFound)

	w = e.do(t, http.MethodGet, "/portal/links/"+token, "", nil)
	mustStatus(t, w, http.StatusOK)

	// The owning org can, and the portal stops honoring the token.
	w = e.do(t, http.MethodDelete, "/api/links/"+issued.Link.ID, adminA, nil)
	mustStatus(t, w, http.StatusNoContent)

	w = e.do(t, http.MethodGet, "/portal/links/"+token, "", nil)
	mustStatus(t, w, http.StatusGone)
}

func TestPortalFormFlow(t *testing.T) {
	e := newTestEnv(t)

	orgA := e.seedOrg(t, "Org A")
	_, admin := e.seedStaff(t, orgA, "idp|admin", orgdomain.RoleAdmin, orgdomain.OrgRoleAdmin)
	_, caseID := e.createClientAndCase(t, admin)

	w := e.do(t, http.MethodPost, "/api/cases/"+caseID+"/links", admin, map[string]any{
		"type": "SCHEDULE_C",
	})
	mustStatus(t, w, http.StatusCreated)
	var issued struct {
		URL string `json:"url"`
	}
	decodeJSON(t, w, &issued)
	token := issued.URL[len("http://localhost:5173/forms/schedule-c/"):]

	w = e.do(t, http.MethodGet, "/portal/forms/"+token, "", nil)
	mustStatus(t, w, http.StatusOK)

	w = e.do(t, http.MethodPut, "/portal/forms/"+token, "", map[string]any{
		"gross_receipts": 120000,
	})
	mustStatus(t, w, http.StatusOK)

	w = e.do(t, http.MethodPost, "/portal/forms/"+token+"/lock", "", nil)
	mustStatus(t, w, http.StatusNoContent)

	// A locked form is unreachable: its links died with the lock.
	w = e.do(t, http.MethodGet, "/portal/forms/"+token, "", nil)
	mustStatus(t, w, http.StatusGone)
}

func TestPortalRateLimit(t *testing.T) {
	e := newTestEnv(t)

	for i := 0; i < 60; i++ {
		e.do(t, http.MethodGet, "/portal/links/whatever", "", nil)
	}
	w := e.do(t, http.MethodGet, "/portal/links/whatever", "", nil)
	mustStatus(t, w, http.StatusTooManyRequests)

	// A fresh window clears the budget.
	e.clock.Advance(time.Minute)
	w = e.do(t, http.MethodGet, "/portal/links/whatever", "", nil)
	mustStatus(t, w, http.StatusNotFound)
}
