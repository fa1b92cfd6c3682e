package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/commission-desk-go/internal/domain"
	"github.com/boddenberg/commission-desk-go/internal/handler"
	"github.com/boddenberg/commission-desk-go/internal/infra/observability"
	"github.com/boddenberg/commission-desk-go/internal/service"

	"go.uber.org/zap"
)

// --- Mock store ---

type mockStore struct {
	pingErr error
}

func (m *mockStore) Name() string { return "mock" }

func (m *mockStore) LoadAll(ctx context.Context) (*domain.Snapshot, error) {
	return &domain.Snapshot{}, nil
}

func (m *mockStore) SaveCollection(ctx context.Context, name domain.Collection, value any) error {
	return nil
}

func (m *mockStore) Ping(ctx context.Context) error { return m.pingErr }

// --- Fixtures ---

var testUsers = []domain.User{
	{ID: "1", Username: "admin", Password: "123", Name: "Dr. Augusto Seabra", Role: domain.RoleAdmin, Department: domain.DeptGeneral},
	{ID: "2", Username: "gestor", Password: "123", Name: "Mariana Sousa", Role: domain.RoleManager, Department: domain.DeptControllership},
	{ID: "3", Username: "colaborador", Password: "123", Name: "Pedro Santos", Role: domain.RoleCollaborator, Department: domain.DeptCommercial},
}

type testEnv struct {
	router http.Handler
	desk   *service.Desk
	queue  *service.SyncQueue
	store  *mockStore
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	store := &mockStore{}
	queue := service.NewSyncQueue(store, time.Hour, 2, metrics, logger)
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	desk := service.NewDesk(&domain.Snapshot{Users: testUsers, Clients: []domain.Client{}}, queue.Enqueue, metrics, logger,
		service.WithClock(func() time.Time { return now }))
	auth := service.NewAuthService(desk, "test-secret", time.Hour, logger)

	router := handler.NewRouter(handler.Deps{
		Desk:           desk,
		Auth:           auth,
		Queue:          queue,
		Store:          store,
		Metrics:        metrics,
		AllowedOrigins: []string{"*"},
		Logger:         logger,
	})
	return &testEnv{router: router, desk: desk, queue: queue, store: store}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, username string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/v1/auth/login", "", domain.LoginRequest{Username: username, Password: "123"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", username, rec.Code, rec.Body.String())
	}
	var resp domain.LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if resp.User.Password != "" {
		t.Error("login response must not carry the password")
	}
	return resp.AccessToken
}

// --- Operational endpoints ---

func TestHealthz(t *testing.T) {
	router := handler.NewRouter(handler.Deps{Metrics: observability.NewMetrics(), Logger: zap.NewNop()})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHealthz_DegradedWhenStoreUnreachable(t *testing.T) {
	env := newEnv(t)
	env.store.pingErr = errors.New("connection refused")

	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var health domain.HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "degraded" || health.Backend != "mock" {
		t.Errorf("health = %+v", health)
	}
}

func TestReadyz(t *testing.T) {
	router := handler.NewRouter(handler.Deps{Metrics: observability.NewMetrics(), Logger: zap.NewNop()})

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz_StoreDown(t *testing.T) {
	env := newEnv(t)
	env.store.pingErr = errors.New("timeout")

	if rec := env.do(t, http.MethodGet, "/readyz", "", nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	router := handler.NewRouter(handler.Deps{Metrics: observability.NewMetrics(), Logger: zap.NewNop()})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestPing(t *testing.T) {
	env := newEnv(t)
	if rec := env.do(t, http.MethodGet, "/ping", "", nil); rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

// --- Authentication ---

func TestProtectedRoutes_RequireToken(t *testing.T) {
	env := newEnv(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/commissions", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			env.router.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, http.MethodPost, "/v1/auth/login", "", domain.LoginRequest{Username: "admin", Password: "nope"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestLogin_MalformedBody(t *testing.T) {
	env := newEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestMe_ReturnsPublicUser(t *testing.T) {
	env := newEnv(t)
	token := env.login(t, "colaborador")

	rec := env.do(t, http.MethodGet, "/v1/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var u domain.User
	if err := json.NewDecoder(rec.Body).Decode(&u); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if u.ID != "3" || u.Password != "" {
		t.Errorf("me = %+v", u)
	}
}

// --- Commission flow ---

func TestCommissionFlow(t *testing.T) {
	env := newEnv(t)
	token := env.login(t, "colaborador")

	rec := env.do(t, http.MethodPost, "/v1/commissions", token, domain.CommissionInput{
		ClientName:   "Maria Oliveira",
		ContractDate: "2026-01-15",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created domain.CommissionResult
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Commission.CommissionValue != 10 || created.Commission.LawyerID != "3" {
		t.Errorf("commission = %+v", created.Commission)
	}
	if len(created.Clients) != 1 || created.Clients[0].Status != domain.ClientContracted {
		t.Errorf("clients = %+v", created.Clients)
	}

	id := created.Commission.ID
	if rec := env.do(t, http.MethodGet, "/v1/commissions/"+id, token, nil); rec.Code != http.StatusOK {
		t.Errorf("get: expected 200, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/v1/commissions?year=2026&month=1", token, nil)
	var list []domain.Commission
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 commission listed, got %d", len(list))
	}

	// a collaborator's status change is ignored
	rec = env.do(t, http.MethodPut, "/v1/commissions/"+id, token, domain.CommissionUpdate{Status: domain.CommissionPaid})
	if rec.Code != http.StatusOK {
		t.Fatalf("collaborator update: expected 200, got %d", rec.Code)
	}
	var updated domain.CommissionResult
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("decode update: %v", err)
	}
	if updated.Commission.Status != domain.CommissionPending {
		t.Errorf("status = %q, want unchanged", updated.Commission.Status)
	}
	if rec := env.do(t, http.MethodDelete, "/v1/commissions/"+id, token, nil); rec.Code != http.StatusForbidden {
		t.Errorf("collaborator delete: expected 403, got %d", rec.Code)
	}

	managerToken := env.login(t, "gestor")
	rec = env.do(t, http.MethodPut, "/v1/commissions/"+id, managerToken, domain.CommissionUpdate{Status: domain.CommissionPaid})
	if rec.Code != http.StatusOK {
		t.Fatalf("manager pay: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if rec := env.do(t, http.MethodDelete, "/v1/commissions/missing", managerToken, nil); rec.Code != http.StatusNotFound {
		t.Errorf("delete missing: expected 404, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/v1/commissions/"+id, managerToken, nil); rec.Code != http.StatusOK {
		t.Errorf("delete: expected 200, got %d", rec.Code)
	}
}

func TestAddCommission_AdminForbidden(t *testing.T) {
	env := newEnv(t)
	token := env.login(t, "admin")

	rec := env.do(t, http.MethodPost, "/v1/commissions", token, domain.CommissionInput{ClientName: "X", ContractDate: "2026-01-15"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

// --- Clients, goal, administration ---

func TestAddClient_CreatedThenExisting(t *testing.T) {
	env := newEnv(t)
	token := env.login(t, "colaborador")

	if rec := env.do(t, http.MethodPost, "/v1/clients", token, map[string]string{"name": "Ana Costa"}); rec.Code != http.StatusCreated {
		t.Errorf("first add: expected 201, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/v1/clients", token, map[string]string{"name": "ana costa"}); rec.Code != http.StatusOK {
		t.Errorf("second add: expected 200, got %d", rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/v1/clients?q=ana", token, nil)
	var clients []domain.Client
	if err := json.NewDecoder(rec.Body).Decode(&clients); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(clients) != 1 {
		t.Errorf("expected 1 client, got %d", len(clients))
	}
}

func TestGoal_UpdateAndRead(t *testing.T) {
	env := newEnv(t)
	token := env.login(t, "admin")

	if rec := env.do(t, http.MethodPut, "/v1/goal", token, map[string]float64{"goal": 12.7}); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec := env.do(t, http.MethodGet, "/v1/goal", token, nil)
	var body map[string]int
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["goal"] != 12 {
		t.Errorf("goal = %d, want 12", body["goal"])
	}

	collabToken := env.login(t, "colaborador")
	if rec := env.do(t, http.MethodPut, "/v1/goal", collabToken, map[string]float64{"goal": 3}); rec.Code != http.StatusForbidden {
		t.Errorf("collaborator goal: expected 403, got %d", rec.Code)
	}
}

func TestAuditLogs_AdminOnly(t *testing.T) {
	env := newEnv(t)

	collabToken := env.login(t, "colaborador")
	if rec := env.do(t, http.MethodGet, "/v1/audit-logs", collabToken, nil); rec.Code != http.StatusForbidden {
		t.Errorf("collaborator: expected 403, got %d", rec.Code)
	}

	adminToken := env.login(t, "admin")
	rec := env.do(t, http.MethodGet, "/v1/audit-logs", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin: expected 200, got %d", rec.Code)
	}
	var logs []domain.AuditLog
	if err := json.NewDecoder(rec.Body).Decode(&logs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(logs) < 2 {
		t.Errorf("expected both logins audited, got %d entries", len(logs))
	}
}

func TestSyncStatus(t *testing.T) {
	env := newEnv(t)

	collabToken := env.login(t, "colaborador")
	if rec := env.do(t, http.MethodGet, "/v1/sync/status", collabToken, nil); rec.Code != http.StatusForbidden {
		t.Errorf("collaborator: expected 403, got %d", rec.Code)
	}

	adminToken := env.login(t, "admin")
	rec := env.do(t, http.MethodGet, "/v1/sync/status", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin: expected 200, got %d", rec.Code)
	}
	var status []domain.CollectionSync
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(status) == 0 {
		t.Error("expected pending audit writes to be reported")
	}
}

func TestStats_ScopedToViewer(t *testing.T) {
	env := newEnv(t)
	token := env.login(t, "colaborador")
	env.do(t, http.MethodPost, "/v1/commissions", token, domain.CommissionInput{ClientName: "Maria", ContractDate: "2026-01-15"})

	rec := env.do(t, http.MethodGet, "/v1/dashboard/stats", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stats domain.DashboardStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.TotalCommission != 10 {
		t.Errorf("total = %v, want 10", stats.TotalCommission)
	}
}

func TestCommercialChart_BadMonth(t *testing.T) {
	env := newEnv(t)
	token := env.login(t, "gestor")

	if rec := env.do(t, http.MethodGet, "/v1/dashboard/commercial-chart?month=2026-13", token, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/v1/dashboard/commercial-chart?month=2026-01", token, nil); rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
