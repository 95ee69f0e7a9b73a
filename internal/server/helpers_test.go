package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Veraticus/wealthease/internal/analysis"
	"github.com/Veraticus/wealthease/internal/auth"
	"github.com/Veraticus/wealthease/internal/forecast"
	"github.com/Veraticus/wealthease/internal/llm"
	"github.com/Veraticus/wealthease/internal/storage"
)

var testNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

const testSecret = "server-test-secret-0123456789abcdef"

const analysisJSON = `{"analysis":"Solid month.","recommendations":"Keep saving.","predictions":{"nextWeekBalance":2400,"nextMonthBalance":2900,"trend":"Bullish","summary":"Up."},"warnings":"None.","score":{"financialHealth":82,"spendingDiscipline":75,"savingsRate":76.7,"volatility":60.6,"confidence":88}}`

// fakeClock is a settable time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type testEnv struct {
	server *Server
	store  *storage.SQLiteStorage
	tokens *auth.Issuer
	clock  *fakeClock
}

// newTestEnv wires a server over an in-memory store. Nil completers leave the
// corresponding AI feature unconfigured.
func newTestEnv(t *testing.T, analyst, chat *llm.FakeCompleter, opts ...func(*Config)) *testEnv {
	t.Helper()

	clock := &fakeClock{now: testNow}

	store, err := storage.Open(context.Background(), storage.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	prompts, err := analysis.NewPromptBuilder()
	require.NoError(t, err)

	deps := analysis.Deps{
		Prompts: prompts,
		Engine:  forecast.NewEngine(forecast.DefaultPolicy()),
		Clock:   clock.Now,
	}
	if analyst != nil {
		deps.Analyst = analyst
	}
	if chat != nil {
		deps.Chat = chat
	}
	svc, err := analysis.NewService(deps)
	require.NoError(t, err)

	tokens, err := auth.NewIssuer(testSecret, time.Hour)
	require.NoError(t, err)

	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	srv, err := New(Deps{Analyzer: svc, Store: store, Tokens: tokens, Clock: clock.Now}, cfg)
	require.NoError(t, err)

	return &testEnv{server: srv, store: store, tokens: tokens, clock: clock}
}

// login creates a user through the API and returns its bearer token.
func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func scenarioPayload() map[string]any {
	return map[string]any{
		"userProfile": map[string]any{"name": "Ana"},
		"transactions": []map[string]any{
			{"date": "2024-03-01", "type": "income", "amount": 3000, "category": "salary"},
			{"date": "2024-03-02", "type": "expense", "amount": 500, "category": "food"},
			{"date": "2024-03-03", "type": "expense", "amount": "200", "category": "transport"},
		},
	}
}

func storeScenario(t *testing.T, e *testEnv, token string) {
	t.Helper()
	rec := e.do(t, http.MethodPut, "/api/transactions", token, map[string]any{
		"transactions": scenarioPayload()["transactions"],
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
