package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/fortask/user-service/internal/api/handler"
	"github.com/fortask/user-service/internal/core/domain"
	"github.com/fortask/user-service/internal/core/ports"
	"github.com/fortask/user-service/internal/core/service"
	"github.com/fortask/user-service/internal/infrastructure/security"
)

// memoryRepo is an in-memory ports.UserRepository.
type memoryRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[string]domain.User)}
}

func (r *memoryRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; ok {
		return domain.ErrUserExists
	}
	r.users[u.ID] = *u
	return nil
}

func (r *memoryRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *memoryRepo) List(_ context.Context, limit int64) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryRepo) Update(_ context.Context, id string, upd domain.UserUpdate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return false, nil
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.IsActive != nil {
		u.IsActive = *upd.IsActive
	}
	if upd.LastLogin != nil {
		u.LastLogin = *upd.LastLogin
	}
	r.users[id] = u
	return true, nil
}

func (r *memoryRepo) RecordLogin(_ context.Context, id, at string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLogin = at
	u.IsActive = "true"
	r.users[id] = u
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return 0, nil
	}
	delete(r.users, id)
	return 1, nil
}

type testServer struct {
	e    *echo.Echo
	repo *memoryRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	repo := newMemoryRepo()
	users := service.NewUserService(
		repo,
		security.NewBcryptHasher(bcrypt.MinCost),
		security.NewTokenManager("test-secret"),
		zerolog.Nop(),
	)
	if err := users.EnsureAdmin(context.Background(), ports.CreateUserInput{ID: "root", Password: "rootpw"}); err != nil {
		t.Fatalf("bootstrap admin: %v", err)
	}

	reg := prometheus.NewRegistry()
	e := NewRouter(Deps{
		Users:  users,
		Logger: zerolog.Nop(),
		Readiness: map[string]handler.DependencyCheck{
			"mongodb": func(context.Context) error { return nil },
		},
		Registerer: reg,
		Gatherer:   reg,
	})
	return &testServer{e: e, repo: repo}
}

func (s *testServer) do(method, target, body, contentType string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) createUser(t *testing.T, id, role, password string) {
	t.Helper()
	body := `{"_id":"` + id + `","first_name":"F","last_name":"L","role":"` + role + `","password":"` + password + `"}`
	rec := s.do(http.MethodPost, "/", body, echo.MIMEApplicationJSON, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create %s: expected 201, got %d %s", id, rec.Code, rec.Body.String())
	}
}

func (s *testServer) token(t *testing.T, id, password string) string {
	t.Helper()
	form := url.Values{"username": {id}, "password": {password}}
	rec := s.do(http.MethodPost, "/token", form.Encode(), echo.MIMEApplicationForm, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("token %s: expected 200, got %d %s", id, rec.Code, rec.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if resp.TokenType != "bearer" || resp.AccessToken == "" {
		t.Fatalf("unexpected token response: %+v", resp)
	}
	return resp.AccessToken
}

func bearerHeader(tok string) map[string]string {
	return map[string]string{echo.HeaderAuthorization: "Bearer " + tok}
}

func TestRouter_CreateLoginCurrent(t *testing.T) {
	s := newTestServer(t)
	s.createUser(t, "alice", "dev", "s3cret")

	stored, _ := s.repo.FindByID(context.Background(), "alice")
	if stored.PasswordHash == "" || stored.PasswordHash == "s3cret" {
		t.Fatalf("expected bcrypt digest stored, got %q", stored.PasswordHash)
	}
	if stored.CreatedAt == "" {
		t.Fatalf("expected created_at stamped")
	}

	tok := s.token(t, "alice", "s3cret")

	rec := s.do(http.MethodGet, "/current", "", "", bearerHeader(tok))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	var view map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &view)
	if view["_id"] != "alice" || view["is_active"] != "true" || view["last_login"] == "" {
		t.Fatalf("unexpected current view: %v", view)
	}
	if _, leaked := view["hashed_pass"]; leaked {
		t.Fatalf("digest leaked in view")
	}
}

func TestRouter_DuplicateCreate(t *testing.T) {
	s := newTestServer(t)
	s.createUser(t, "alice", "dev", "s3cret")

	body := `{"_id":"alice","first_name":"F","last_name":"L","role":"dev","password":"other"}`
	rec := s.do(http.MethodPost, "/", body, echo.MIMEApplicationJSON, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestRouter_InvalidRoleNotPersisted(t *testing.T) {
	s := newTestServer(t)

	body := `{"_id":"eve","first_name":"F","last_name":"L","role":"superuser","password":"pw"}`
	rec := s.do(http.MethodPost, "/", body, echo.MIMEApplicationJSON, nil)
	if rec.Code != http.StatusNotAcceptable {
		t.Fatalf("expected 406, got %d", rec.Code)
	}
	if _, err := s.repo.FindByID(context.Background(), "eve"); err == nil {
		t.Fatalf("user must not be persisted")
	}
}

func TestRouter_MultibytePasswordOverBcryptLimit(t *testing.T) {
	s := newTestServer(t)

	// 40 runes, 80 bytes.
	body := `{"_id":"eve","first_name":"F","last_name":"L","role":"dev","password":"` + strings.Repeat("é", 40) + `"}`
	rec := s.do(http.MethodPost, "/", body, echo.MIMEApplicationJSON, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d %s", rec.Code, rec.Body.String())
	}
	if _, err := s.repo.FindByID(context.Background(), "eve"); err == nil {
		t.Fatalf("user must not be persisted")
	}
}

func TestRouter_WrongPasswordChallenges(t *testing.T) {
	s := newTestServer(t)
	s.createUser(t, "alice", "dev", "s3cret")

	for _, form := range []url.Values{
		{"username": {"alice"}, "password": {"wrong"}},
		{"username": {"nobody"}, "password": {"s3cret"}},
	} {
		rec := s.do(http.MethodPost, "/token", form.Encode(), echo.MIMEApplicationForm, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if rec.Header().Get(echo.HeaderWWWAuthenticate) != "Bearer" {
			t.Fatalf("expected WWW-Authenticate: Bearer")
		}
		if !strings.Contains(rec.Body.String(), "Incorrect ID or password") {
			t.Fatalf("unexpected body %s", rec.Body.String())
		}
	}
}

func TestRouter_TokenViaBasic(t *testing.T) {
	s := newTestServer(t)
	s.createUser(t, "alice", "dev", "s3cret")

	creds := base64.StdEncoding.EncodeToString([]byte("alice:s3cret"))
	rec := s.do(http.MethodPost, "/token", "", "", map[string]string{
		echo.HeaderAuthorization: "Basic " + creds,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_MalformedBasicHeader(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/health", "", "", map[string]string{
		echo.HeaderAuthorization: "Basic",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRouter_ProtectedRoutesRequireBearer(t *testing.T) {
	s := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/list"},
		{http.MethodGet, "/current"},
		{http.MethodPut, "/admin/alice"},
		{http.MethodDelete, "/alice"},
	} {
		rec := s.do(tc.method, tc.path, "", "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", tc.method, tc.path, rec.Code)
		}
		if rec.Header().Get(echo.HeaderWWWAuthenticate) != "Bearer" {
			t.Fatalf("%s %s: expected bearer challenge", tc.method, tc.path)
		}
	}

	rec := s.do(http.MethodGet, "/current", "", "", bearerHeader("not-a-jwt"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for forged token, got %d", rec.Code)
	}
}

func TestRouter_ListDerivesActivity(t *testing.T) {
	s := newTestServer(t)
	s.createUser(t, "alice", "dev", "s3cret")
	s.createUser(t, "bob", "simple mortal", "pw")

	// bob logged in long ago.
	old := "01/02/20 10:00:00"
	if _, err := s.repo.Update(context.Background(), "bob", domain.UserUpdate{LastLogin: &old}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tok := s.token(t, "alice", "s3cret")
	rec := s.do(http.MethodGet, "/list", "", "", bearerHeader(tok))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var list []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	active := map[any]any{}
	for _, u := range list {
		active[u["_id"]] = u["is_active"]
	}
	if active["alice"] != "true" || active["bob"] != "false" || active["root"] != "false" {
		t.Fatalf("unexpected activity: %v", active)
	}

	stored, _ := s.repo.FindByID(context.Background(), "root")
	if stored.IsActive != "" {
		t.Fatalf("projection must not be written back, got %q", stored.IsActive)
	}
}

func TestRouter_AdminUpdateAndDelete(t *testing.T) {
	s := newTestServer(t)
	s.createUser(t, "alice", "dev", "s3cret")
	adminTok := s.token(t, "root", "rootpw")
	devTok := s.token(t, "alice", "s3cret")

	// Non-admin is refused before the payload is read.
	rec := s.do(http.MethodPut, "/admin/alice", `{not json`, echo.MIMEApplicationJSON, bearerHeader(devTok))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	before, _ := s.repo.FindByID(context.Background(), "alice")
	rec = s.do(http.MethodPut, "/admin/alice",
		`{"last_name":"Liddell","created_at":"1999-01-01T00:00:00Z"}`, echo.MIMEApplicationJSON, bearerHeader(adminTok))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	after, _ := s.repo.FindByID(context.Background(), "alice")
	if after.LastName != "Liddell" || after.FirstName != before.FirstName || after.CreatedAt != before.CreatedAt {
		t.Fatalf("unexpected merge: before=%+v after=%+v", before, after)
	}

	rec = s.do(http.MethodPut, "/admin/alice", `{"role":"overlord"}`, echo.MIMEApplicationJSON, bearerHeader(adminTok))
	if rec.Code != http.StatusNotAcceptable {
		t.Fatalf("expected 406, got %d", rec.Code)
	}

	rec = s.do(http.MethodPut, "/admin/ghost", `{"last_name":"X"}`, echo.MIMEApplicationJSON, bearerHeader(adminTok))
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "User ghost not found") {
		t.Fatalf("expected 404, got %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(http.MethodDelete, "/alice", "", "", bearerHeader(devTok))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	rec = s.do(http.MethodDelete, "/alice", "", "", bearerHeader(adminTok))
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 204, got %d %q", rec.Code, rec.Body.String())
	}

	rec = s.do(http.MethodDelete, "/alice", "", "", bearerHeader(adminTok))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}

	// The deleted user's token no longer resolves.
	rec = s.do(http.MethodGet, "/current", "", "", bearerHeader(devTok))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for deleted subject, got %d", rec.Code)
	}
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	s := newTestServer(t)

	if rec := s.do(http.MethodGet, "/health", "", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/health/ready", "", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("ready: expected 200, got %d", rec.Code)
	}

	s.do(http.MethodGet, "/health", "", "", nil)
	rec := s.do(http.MethodGet, "/metrics", "", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("metrics: expected exposition, got %d", rec.Code)
	}
}
