package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"fintrack/internal/auth"
	"fintrack/internal/hub"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

type testStack struct {
	server   *Server
	provider *auth.Provider
	repo     *store.Memory
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	logger := log.New(log.DefaultConfig())
	repo := store.NewMemory()
	provider := auth.NewProvider(repo, logger)
	docs := hub.New(repo, logger)

	if _, err := provider.Register(context.Background(), "alice@example.com", "hunter2"); err != nil {
		t.Fatalf("Register alice: %v", err)
	}
	if _, err := provider.Register(context.Background(), "bob@example.com", "hunter2"); err != nil {
		t.Fatalf("Register bob: %v", err)
	}

	srv := NewServer(":0", provider, docs, repo, logger, 5*time.Second)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})
	return &testStack{server: srv, provider: provider, repo: repo}
}

func (ts *testStack) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.server.Handler.ServeHTTP(w, req)
	return w
}

func (ts *testStack) login(t *testing.T, email string) string {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"email":    email,
		"password": "hunter2",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body.String())
	}
	var resp loginResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.Token
}

func TestLoginEndpoint(t *testing.T) {
	ts := newTestStack(t)

	tests := []struct {
		name     string
		email    string
		password string
		want     int
	}{
		{"valid credentials", "alice@example.com", "hunter2", http.StatusOK},
		{"wrong password", "alice@example.com", "nope", http.StatusUnauthorized},
		{"unknown user", "nobody@example.com", "hunter2", http.StatusUnauthorized},
		{"empty password", "alice@example.com", "", http.StatusBadRequest},
		{"empty email", "", "hunter2", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/login", "", map[string]string{
				"email":    tt.email,
				"password": tt.password,
			})
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}

	t.Run("GET not allowed", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/login", "", nil)
		if w.Code != http.StatusMethodNotAllowed {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
		}
	})
}

func TestTransactionsRequireAuth(t *testing.T) {
	ts := newTestStack(t)

	if w := ts.do(t, http.MethodGet, "/api/transactions", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("GET without token status = %d, want 401", w.Code)
	}
	if w := ts.do(t, http.MethodGet, "/api/transactions", "bogus", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("GET with bogus token status = %d, want 401", w.Code)
	}
}

func TestTransactionsCreateAndList(t *testing.T) {
	ts := newTestStack(t)
	token := ts.login(t, "alice@example.com")

	create := func(amount, category, kind string) *httptest.ResponseRecorder {
		return ts.do(t, http.MethodPost, "/api/transactions", token, map[string]string{
			"amount":   amount,
			"category": category,
			"kind":     kind,
		})
	}

	if w := create("50", "Salary", "income"); w.Code != http.StatusCreated {
		t.Fatalf("create income status = %d, body %s", w.Code, w.Body.String())
	}
	if w := create("12.50", "Food", "expense"); w.Code != http.StatusCreated {
		t.Fatalf("create expense status = %d, body %s", w.Code, w.Body.String())
	}

	w := ts.do(t, http.MethodGet, "/api/transactions", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var snap snapshotJSON
	if err := json.NewDecoder(w.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(snap.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(snap.Records))
	}
	if snap.Balance != "$37.50" || snap.BalanceCents != 3750 {
		t.Errorf("balance = %q (%d cents), want $37.50", snap.Balance, snap.BalanceCents)
	}
}

func TestTransactionsRejectMalformedDrafts(t *testing.T) {
	ts := newTestStack(t)
	token := ts.login(t, "alice@example.com")

	tests := []struct {
		name string
		body map[string]string
	}{
		{"empty amount", map[string]string{"amount": "", "category": "Food", "kind": "expense"}},
		{"non-numeric amount", map[string]string{"amount": "abc", "category": "Food", "kind": "expense"}},
		{"negative amount", map[string]string{"amount": "-5", "category": "Food", "kind": "expense"}},
		{"bad category", map[string]string{"amount": "5", "category": "Crypto", "kind": "expense"}},
		{"bad kind", map[string]string{"amount": "5", "category": "Food", "kind": "transfer"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/transactions", token, tt.body)
			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422 (body %s)", w.Code, w.Body.String())
			}
		})
	}

	// None of the rejects may have reached the store.
	records, err := ts.repo.ListByOwner(context.Background(), tokenUID(t, ts, token))
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("store holds %d records after rejected drafts", len(records))
	}
}

func tokenUID(t *testing.T, ts *testStack, token string) string {
	t.Helper()
	sess, ok := ts.provider.SessionForToken(token)
	if !ok {
		t.Fatal("token does not resolve")
	}
	return sess.Identity.UID
}

func TestTransactionsOwnerIsolation(t *testing.T) {
	ts := newTestStack(t)
	aliceToken := ts.login(t, "alice@example.com")
	bobToken := ts.login(t, "bob@example.com")

	w := ts.do(t, http.MethodPost, "/api/transactions", aliceToken, map[string]string{
		"amount": "50", "category": "Salary", "kind": "income",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}

	w = ts.do(t, http.MethodGet, "/api/transactions", bobToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var snap snapshotJSON
	if err := json.NewDecoder(w.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(snap.Records) != 0 {
		t.Fatalf("bob sees %d of alice's records", len(snap.Records))
	}
	if snap.Balance != "$0.00" {
		t.Errorf("empty balance = %q, want $0.00", snap.Balance)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	ts := newTestStack(t)
	token := ts.login(t, "alice@example.com")

	if w := ts.do(t, http.MethodPost, "/api/logout", token, nil); w.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", w.Code)
	}
	if w := ts.do(t, http.MethodGet, "/api/transactions", token, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("status after logout = %d, want 401", w.Code)
	}
}

func TestHealthAndReady(t *testing.T) {
	ts := newTestStack(t)

	if w := ts.do(t, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusOK {
		t.Errorf("healthz status = %d", w.Code)
	}
	if w := ts.do(t, http.MethodGet, "/readyz", "", nil); w.Code != http.StatusOK {
		t.Errorf("readyz status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestDashboardShell(t *testing.T) {
	ts := newTestStack(t)

	w := ts.do(t, http.MethodGet, "/", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"No transactions yet", "login-form", "tx-form"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard shell missing %q", want)
		}
	}

	if w := ts.do(t, http.MethodGet, "/nope", "", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", w.Code)
	}
}

func TestLedgerStream(t *testing.T) {
	ts := newTestStack(t)
	token := ts.login(t, "alice@example.com")

	httpSrv := httptest.NewServer(ts.server.Handler)
	defer httpSrv.Close()
	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/ws/ledger?token=" + token

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readMessage := func() wsMessage {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read message: %v", err)
		}
		return msg
	}

	initial := readMessage()
	if initial.Type != "snapshot" || len(initial.Records) != 0 {
		t.Fatalf("initial message = %+v, want empty snapshot", initial)
	}

	w := ts.do(t, http.MethodPost, "/api/transactions", token, map[string]string{
		"amount": "12.50", "category": "Food", "kind": "expense",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}

	update := readMessage()
	if update.Type != "snapshot" || len(update.Records) != 1 {
		t.Fatalf("update message = %+v, want one record", update)
	}
	if update.BalanceCents != -1250 {
		t.Errorf("balance = %d cents, want -1250", update.BalanceCents)
	}
}

func TestLedgerStreamClosesOnRevoke(t *testing.T) {
	ts := newTestStack(t)
	token := ts.login(t, "alice@example.com")

	httpSrv := httptest.NewServer(ts.server.Handler)
	defer httpSrv.Close()
	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/ws/ledger?token=" + token

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg wsMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}

	ts.provider.Revoke(token)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
				t.Fatalf("close error = %v, want policy violation", err)
			}
			return
		}
	}
}

func TestLedgerStreamRequiresAuth(t *testing.T) {
	ts := newTestStack(t)

	if w := ts.do(t, http.MethodGet, "/ws/ledger", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
