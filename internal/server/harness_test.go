package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	auditrepo "github.com/taxdesk/taxdesk/internal/audit/repository"
	auditservice "github.com/taxdesk/taxdesk/internal/audit/service"
	"github.com/taxdesk/taxdesk/internal/auth"
	"github.com/taxdesk/taxdesk/internal/cache"
	"github.com/taxdesk/taxdesk/internal/clock"
	clientrepo "github.com/taxdesk/taxdesk/internal/client/repository"
	clientservice "github.com/taxdesk/taxdesk/internal/client/service"
	"github.com/taxdesk/taxdesk/internal/config"
	documentrepo "github.com/taxdesk/taxdesk/internal/document/repository"
	documentservice "github.com/taxdesk/taxdesk/internal/document/service"
	magiclinkrepo "github.com/taxdesk/taxdesk/internal/magiclink/repository"
	magiclinkservice "github.com/taxdesk/taxdesk/internal/magiclink/service"
	messagerepo "github.com/taxdesk/taxdesk/internal/message/repository"
	messageservice "github.com/taxdesk/taxdesk/internal/message/service"
	"github.com/taxdesk/taxdesk/internal/migration"
	obsmetrics "github.com/taxdesk/taxdesk/internal/observability/metrics"
	orgdomain "github.com/taxdesk/taxdesk/internal/organization/domain"
	orgrepo "github.com/taxdesk/taxdesk/internal/organization/repository"
	orgservice "github.com/taxdesk/taxdesk/internal/organization/service"
	"github.com/taxdesk/taxdesk/internal/ratelimit"
	taxcaserepo "github.com/taxdesk/taxdesk/internal/taxcase/repository"
	taxcaseservice "github.com/taxdesk/taxdesk/internal/taxcase/service"
	"github.com/taxdesk/taxdesk/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testJWTSecret = "server-test-secret-server-test-secret"

// fakeObjectStore is an in-memory object store for handler tests.
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func (f *fakeObjectStore) Put(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeObjectStore) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, "", errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader(data)), "application/octet-stream", nil
}

func (f *fakeObjectStore) Copy(_ context.Context, srcKey, dstKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[srcKey]
	if !ok {
		return errors.New("copy source missing")
	}
	f.objects[dstKey] = data
	return nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeObjectStore) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeObjectStore) PresignDownload(_ context.Context, key, filename string) (string, error) {
	return "https://store.test/" + key + "?dl=" + filename, nil
}

type testEnv struct {
	srv    *Server
	engine *gin.Engine
	conn   *gorm.DB
	clock  *clock.FakeClock
	genID  *snowflake.Node
	orgs   orgdomain.Repository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := migration.Run(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	fc := clock.NewFakeClock(time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
	log := zap.NewNop()
	cfg := config.Config{
		HTTPAddr:      ":0",
		AuthJWTSecret: testJWTSecret,
	}

	orgRepository := orgrepo.NewRepository(conn)
	orgSvc := orgservice.New(orgservice.Params{
		DB: conn, Log: log, GenID: node, Clock: fc, Repo: orgRepository,
	})

	clientRepository := clientrepo.NewRepository(conn)
	clientSvc := clientservice.New(clientservice.Params{
		DB: conn, Log: log, GenID: node, Clock: fc, Repo: clientRepository,
	})

	caseRepository := taxcaserepo.NewRepository(conn)
	caseSvc := taxcaseservice.New(taxcaseservice.Params{
		DB: conn, Log: log, GenID: node, Clock: fc,
		Repo: caseRepository, ClientRepo: clientRepository,
	})

	linkRepository := magiclinkrepo.NewRepository(conn)
	linkSvc := magiclinkservice.New(magiclinkservice.Params{
		DB: conn, Log: log, GenID: node, Clock: fc,
		Portal: config.NewStaticPortalConfigHolder(config.DefaultPortalConfig()),
		Repo:   linkRepository,
	})

	docRepository := documentrepo.NewRepository(conn)
	docSvc := documentservice.New(documentservice.Params{
		DB: conn, Log: log, GenID: node, Clock: fc,
		Store: newFakeObjectStore(),
		Repo:  docRepository,
		Cases: caseSvc,
	})

	msgRepository := messagerepo.NewRepository(conn)
	msgSvc := messageservice.New(messageservice.Params{
		Log: log, GenID: node, Clock: fc,
		Repo:  msgRepository,
		Cases: caseSvc,
	})

	auditSvc := auditservice.New(auditservice.Params{
		Log: log, GenID: node, Clock: fc,
		Repo: auditrepo.NewRepository(conn),
	})

	authn := auth.New(auth.Params{
		Config: cfg, Log: log, GenID: node, Clock: fc, Staff: orgRepository,
	})

	engine := NewEngine(obsmetrics.New())
	srv := NewServer(ServerParams{
		Gin:           engine,
		Cfg:           cfg,
		Log:           log,
		GenID:         node,
		Clock:         fc,
		Authn:         authn,
		OrgSvc:        orgSvc,
		OrgRepo:       orgRepository,
		OrgCache:      cache.NewOrgCache(fc),
		ClientSvc:     clientSvc,
		CaseSvc:       caseSvc,
		CaseRepo:      caseRepository,
		DocumentSvc:   docSvc,
		DocRepo:       docRepository,
		MessageSvc:    msgSvc,
		MsgRepo:       msgRepository,
		LinkSvc:       linkSvc,
		AuditSvc:      auditSvc,
		PortalLimiter: ratelimit.NewPortalLimiter(fc),
	})

	return &testEnv{
		srv:    srv,
		engine: engine,
		conn:   conn,
		clock:  fc,
		genID:  node,
		orgs:   orgRepository,
	}
}

func (e *testEnv) seedOrg(t *testing.T, name string) snowflake.ID {
	t.Helper()

	org := &orgdomain.Organization{
		ID:        e.genID.Generate(),
		Name:      name,
		Slug:      strings.ToLower(strings.ReplaceAll(name, " ", "-")),
		CreatedAt: e.clock.Now(),
		UpdatedAt: e.clock.Now(),
	}
	if err := e.orgs.CreateOrganization(context.Background(), org); err != nil {
		t.Fatalf("seed org: %v", err)
	}
	return org.ID
}

// seedStaff inserts an organization member directly, bypassing the invite
// flow, and returns their id and a signed bearer token.
func (e *testEnv) seedStaff(t *testing.T, orgID snowflake.ID, identity, role, orgRole string) (snowflake.ID, string) {
	t.Helper()

	staff := &orgdomain.StaffMember{
		ID:         e.genID.Generate(),
		OrgID:      orgID,
		IdentityID: identity,
		Email:      identity + "@firm.test",
		Role:       role,
		OrgRole:    orgRole,
		Active:     true,
		CreatedAt:  e.clock.Now(),
		UpdatedAt:  e.clock.Now(),
	}
	if err := e.orgs.CreateStaff(context.Background(), staff); err != nil {
		t.Fatalf("seed staff: %v", err)
	}
	return staff.ID, e.signToken(t, identity)
}

func (e *testEnv) signToken(t *testing.T, identity string) string {
	t.Helper()

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			ExpiresAt: jwt.NewNumericDate(e.clock.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(e.clock.Now()),
		},
		Email: identity + "@firm.test",
	}).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return raw
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, want, w.Body.String())
	}
}
