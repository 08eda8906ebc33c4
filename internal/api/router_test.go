package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andremonteiro/diagnostico/internal/middleware"
	"github.com/andremonteiro/diagnostico/internal/utils"
)

func newTestServer(t *testing.T) (*httptest.Server, Store) {
	t.Helper()
	return newTestServerWithStore(t, NewMemoryStore())
}

func newTestServerWithStore(t *testing.T, store Store) (*httptest.Server, Store) {
	t.Helper()
	mux := http.NewServeMux()
	NewRouter(store, middleware.SignToken).Register(mux)
	srv := httptest.NewServer(middleware.WithAuth(mux))
	t.Cleanup(srv.Close)
	return srv, store
}

// brokenResultStore accepts everything except result writes, mimicking a
// store whose database went away mid-flight.
type brokenResultStore struct {
	Store
}

func (s *brokenResultStore) AddResult(r *DiagnosticResult) error {
	return errors.New("database is closed")
}

type brokenCatalogStore struct {
	Store
}

func (s *brokenCatalogStore) ListPillars() ([]*Pillar, error) {
	return nil, errors.New("database is closed")
}

func doJSON(t *testing.T, method, url, token string, body any, out any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	if out != nil {
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp
}

func TestDiagnosticFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	// First registered account is the admin.
	var admin struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{"email": "admin@diag.com", "password": "s3cret"}, &admin)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register status = %d", resp.StatusCode)
	}
	if admin.Role != "admin" {
		t.Fatalf("first account role = %s, want admin", admin.Role)
	}

	var pillar struct {
		ID string `json:"id"`
	}
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/pillars", admin.Token, map[string]string{"name": "Financeiro"}, &pillar)
	if resp.StatusCode != http.StatusOK || pillar.ID == "" {
		t.Fatalf("create pillar failed: status=%d id=%q", resp.StatusCode, pillar.ID)
	}

	var q struct {
		ID string `json:"id"`
	}
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/pillars/"+pillar.ID+"/questions", admin.Token, map[string]any{
		"text": "A empresa controla o fluxo de caixa?", "points": 10,
	}, &q)
	if resp.StatusCode != http.StatusOK || q.ID == "" {
		t.Fatalf("add question failed: status=%d", resp.StatusCode)
	}

	// Regular respondent submits a diagnostic.
	var user struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{"email": "dono@padaria.com", "password": "s3cret"}, &user)
	if user.Role != "user" {
		t.Fatalf("second account role = %s, want user", user.Role)
	}

	var result struct {
		ID              string  `json:"id"`
		TotalScore      float64 `json:"total_score"`
		PercentageScore float64 `json:"percentage_score"`
	}
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/diagnostics", user.Token, map[string]any{
		"company_data": map[string]any{"name": "Ana", "company": "Padaria Pão Quente"},
		"answers":      map[string]string{q.ID: "YES"},
	}, &result)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit status = %d", resp.StatusCode)
	}
	if result.TotalScore != 10 || result.PercentageScore != 100 {
		t.Fatalf("score = %v / %v%%, want 10 / 100%%", result.TotalScore, result.PercentageScore)
	}

	var latest struct {
		ID string `json:"id"`
	}
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/diagnostics/latest", user.Token, nil, &latest)
	if resp.StatusCode != http.StatusOK || latest.ID != result.ID {
		t.Fatalf("latest = %q (status %d), want %q", latest.ID, resp.StatusCode, result.ID)
	}
}

func TestCatalogRequiresAdmin(t *testing.T) {
	srv, _ := newTestServer(t)

	var admin, user struct {
		Token string `json:"token"`
	}
	doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{"email": "admin@diag.com", "password": "s3cret"}, &admin)
	doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{"email": "user@diag.com", "password": "s3cret"}, &user)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/pillars", user.Token, map[string]string{"name": "Financeiro"}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-admin create pillar status = %d, want 403", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/pillars", "", map[string]string{"name": "Financeiro"}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous create pillar status = %d, want 401", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/settings", user.Token, map[string]string{"logo": "x.png"}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-admin settings update status = %d, want 403", resp.StatusCode)
	}
}

func TestSubmitFailedWriteReturns502(t *testing.T) {
	srv, _ := newTestServerWithStore(t, &brokenResultStore{Store: NewMemoryStore()})

	var user struct {
		Token string `json:"token"`
	}
	doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{"email": "dono@padaria.com", "password": "s3cret"}, &user)

	var errBody struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/diagnostics", user.Token, map[string]any{
		"company_data": map[string]any{"company": "Padaria Pão Quente"},
		"answers":      map[string]string{},
	}, &errBody)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status on failed write = %d, want 502", resp.StatusCode)
	}
	if errBody.Error != "bad_gateway" {
		t.Fatalf("error code = %q, want bad_gateway", errBody.Error)
	}
	if want := utils.T("pt", "result.save_failed"); errBody.Message != want {
		t.Fatalf("message = %q, want %q", errBody.Message, want)
	}

	var list struct {
		Results []json.RawMessage `json:"results"`
	}
	doJSON(t, http.MethodGet, srv.URL+"/api/diagnostics", user.Token, nil, &list)
	if len(list.Results) != 0 {
		t.Fatalf("failed submission must not be listed, got %d results", len(list.Results))
	}
}

func TestSubmitUnreadableCatalogReturns502(t *testing.T) {
	srv, _ := newTestServerWithStore(t, &brokenCatalogStore{Store: NewMemoryStore()})

	var user struct {
		Token string `json:"token"`
	}
	doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{"email": "dono@padaria.com", "password": "s3cret"}, &user)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/diagnostics", user.Token, map[string]any{
		"company_data": map[string]any{"company": "Padaria Pão Quente"},
		"answers":      map[string]string{"q1": "YES"},
	}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status with unreadable catalog = %d, want 502", resp.StatusCode)
	}
}

func TestDiagnosticsAreOwnerScoped(t *testing.T) {
	srv, _ := newTestServer(t)

	var a, b struct {
		Token string `json:"token"`
	}
	doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{"email": "a@diag.com", "password": "s3cret"}, &a)
	doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{"email": "b@diag.com", "password": "s3cret"}, &b)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/diagnostics", a.Token, map[string]any{
		"company_data": map[string]any{"company": "Empresa A"},
		"answers":      map[string]string{},
	}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit status = %d", resp.StatusCode)
	}

	var list struct {
		Results []json.RawMessage `json:"results"`
	}
	doJSON(t, http.MethodGet, srv.URL+"/api/diagnostics", b.Token, nil, &list)
	if len(list.Results) != 0 {
		t.Fatalf("owner b sees %d results, want 0", len(list.Results))
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/diagnostics/latest", b.Token, nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("latest for empty owner status = %d, want 404", resp.StatusCode)
	}
}
