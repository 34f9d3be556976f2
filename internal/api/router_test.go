package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gccn-chatbot/session-service/internal/core/domain"
	"github.com/gccn-chatbot/session-service/internal/core/service"
	"github.com/gccn-chatbot/session-service/internal/infrastructure/db/memory"
	"github.com/gccn-chatbot/session-service/internal/pkg/validate"
)

// switchGate lets a test decide whether the next chat request passes.
type switchGate struct{ deny atomic.Bool }

func (g *switchGate) Allow(context.Context) (bool, error) { return !g.deny.Load(), nil }

type echoGenerator struct{ calls atomic.Int32 }

func (g *echoGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.calls.Add(1)
	return "Hello! How can I help with Chapter 2?", nil
}

type testServer struct {
	handler http.Handler
	gate    *switchGate
	gen     *echoGenerator
	history *memory.HistoryRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zerolog.Nop()

	tokens, err := service.NewJWTService("test-secret", service.DefaultTokenTTL)
	require.NoError(t, err)

	users := memory.NewUserRepository()
	history := memory.NewHistoryRepository()
	gate := &switchGate{}
	gen := &echoGenerator{}

	accounts := service.NewAccountService(users, tokens, bcrypt.MinCost, log)
	chat := service.NewChatService(gate, validate.New(), service.NewPromptBuilder("", 10),
		gen, history, nil, service.ChatConfig{}, log)

	e := NewRouter(Deps{Accounts: accounts, Chat: chat, Tokens: tokens, Log: log})
	return &testServer{handler: e, gate: gate, gen: gen, history: history}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func creds(u, p string) map[string]string {
	return map[string]string{"username": u, "password": p}
}

func TestRouter_FullSession(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodPost, "/api/auth/register", "", creds("alice", "secret1"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user := body["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.NotEmpty(t, user["id"])
	assert.NotContains(t, rec.Body.String(), "password")
	t1 := body["token"].(string)

	rec, body = s.do(t, http.MethodPost, "/api/auth/login", "", creds("alice", "secret1"))
	require.Equal(t, http.StatusOK, rec.Code)
	t2 := body["token"].(string)
	assert.NotEqual(t, t1, t2)

	rec, body = s.do(t, http.MethodPost, "/api/chat", t2, map[string]any{"message": "Hello", "history": []any{}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, body["reply"])

	rec, body = s.do(t, http.MethodGet, "/api/chat/history", t2, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "Hello", msgs[0].(map[string]any)["text"])
	assert.Equal(t, "assistant", msgs[1].(map[string]any)["role"])

	// The registration token still works after login.
	rec, _ = s.do(t, http.MethodGet, "/api/chat/history", t1, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = s.do(t, http.MethodDelete, "/api/chat/history", t2, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "chat history cleared", body["message"])

	rec, body = s.do(t, http.MethodGet, "/api/chat/history", t2, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["messages"])
}

func TestRouter_ChatWithoutTokenIsRejected(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodPost, "/api/chat", "", map[string]any{"message": "Hello"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, domain.ErrUnauthenticated.Error(), body["error"])
	assert.Zero(t, s.gen.calls.Load())

	rec, _ = s.do(t, http.MethodGet, "/api/chat/history", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = s.do(t, http.MethodDelete, "/api/chat/history", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ExpiredTokenIsRejected(t *testing.T) {
	s := newTestServer(t)

	issuer, err := service.NewJWTService("test-secret", time.Hour)
	require.NoError(t, err)
	issuer.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	expired, err := issuer.Issue("u1")
	require.NoError(t, err)

	rec, _ := s.do(t, http.MethodGet, "/api/chat/history", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_RegisterErrors(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodPost, "/api/auth/register", "", creds("bob", "12345"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/auth/register", "", creds("", "secret1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/auth/register", "", creds("bob", "secret1"))
	require.Equal(t, http.StatusOK, rec.Code)
	rec, body := s.do(t, http.MethodPost, "/api/auth/register", "", creds("bob", "other-pass"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.ErrDuplicateUsername.Error(), body["error"])
}

func TestRouter_LoginFailuresLookAlike(t *testing.T) {
	s := newTestServer(t)
	rec, _ := s.do(t, http.MethodPost, "/api/auth/register", "", creds("dave", "goodpass"))
	require.Equal(t, http.StatusOK, rec.Code)

	wrongRec, wrongBody := s.do(t, http.MethodPost, "/api/auth/login", "", creds("dave", "badpass"))
	ghostRec, ghostBody := s.do(t, http.MethodPost, "/api/auth/login", "", creds("ghost", "goodpass"))

	assert.Equal(t, http.StatusUnauthorized, wrongRec.Code)
	assert.Equal(t, wrongRec.Code, ghostRec.Code)
	assert.Equal(t, wrongBody, ghostBody)
}

func TestRouter_ChatThrottledAndInvalid(t *testing.T) {
	s := newTestServer(t)
	_, body := s.do(t, http.MethodPost, "/api/auth/register", "", creds("erin", "secret1"))
	token := body["token"].(string)

	s.gate.deny.Store(true)
	rec, _ := s.do(t, http.MethodPost, "/api/chat", token, map[string]any{"message": "Hello"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	s.gate.deny.Store(false)
	rec, _ = s.do(t, http.MethodPost, "/api/chat", token, map[string]any{"message": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/chat", token, map[string]any{
		"message": "Hi",
		"history": []map[string]string{{"role": "system", "text": "x"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Zero(t, s.gen.calls.Load())
	turns, _ := s.history.Get(context.Background(), body["user"].(map[string]any)["id"].(string))
	assert.Empty(t, turns)
}

func TestRouter_HistoryIsPerUser(t *testing.T) {
	s := newTestServer(t)
	_, a := s.do(t, http.MethodPost, "/api/auth/register", "", creds("amy", "secret1"))
	_, b := s.do(t, http.MethodPost, "/api/auth/register", "", creds("ben", "secret1"))

	rec, _ := s.do(t, http.MethodPost, "/api/chat", a["token"].(string), map[string]any{"message": "Hello"})
	require.Equal(t, http.StatusOK, rec.Code)

	_, hist := s.do(t, http.MethodGet, "/api/chat/history", b["token"].(string), nil)
	assert.Empty(t, hist["messages"])
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])

	rec, _ = s.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
