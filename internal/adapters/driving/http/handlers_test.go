package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
	"github.com/hardline-labs/scanwise-core/internal/core/ports/driven/mocks"
	"github.com/hardline-labs/scanwise-core/internal/core/ports/driving"
)

// Stub services

type stubAssistant struct {
	askFn   func(ctx context.Context, sessionID, question string) (*domain.AnswerResult, error)
	queryFn func(ctx context.Context, question string) (string, error)
	session *domain.Session
}

func (s *stubAssistant) Ask(ctx context.Context, sessionID, question string) (*domain.AnswerResult, error) {
	return s.askFn(ctx, sessionID, question)
}

func (s *stubAssistant) Query(ctx context.Context, question string) (string, error) {
	if s.queryFn == nil {
		return "", errors.New("not implemented")
	}
	return s.queryFn(ctx, question)
}

func (s *stubAssistant) OpenSession(ctx context.Context) (*domain.Session, error) {
	if s.session != nil {
		return s.session, nil
	}
	return domain.NewSession(""), nil
}

type stubIndexer struct {
	status *driving.IndexStatus
}

func (s *stubIndexer) Rebuild(ctx context.Context, docs []domain.FindingDocument) (int, error) {
	return len(docs), nil
}

func (s *stubIndexer) RebuildFromDir(ctx context.Context, dir string) (int, error) {
	return 0, nil
}

func (s *stubIndexer) Status(ctx context.Context) (*driving.IndexStatus, error) {
	return s.status, nil
}

type stubSettings struct {
	status    *driving.AISettingsStatus
	updateErr error
}

func (s *stubSettings) GetAISettings(ctx context.Context) (*driving.AISettingsStatus, error) {
	return s.status, nil
}

func (s *stubSettings) UpdateAISettings(ctx context.Context, req driving.UpdateAISettingsRequest) (*driving.AISettingsStatus, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return s.status, nil
}

// stubAuth is a trivial SessionAuth: token = "tok:" + session ID
type stubAuth struct {
	password string
}

func (a *stubAuth) VerifyPassword(password, hash string) bool {
	return password == a.password
}

func (a *stubAuth) GenerateToken(sessionID string) (string, error) {
	return "tok:" + sessionID, nil
}

func (a *stubAuth) ParseToken(token string) (string, error) {
	if !strings.HasPrefix(token, "tok:") {
		return "", domain.ErrTokenInvalid
	}
	return strings.TrimPrefix(token, "tok:"), nil
}

func newTestServer(t *testing.T, assistant *stubAssistant, auth SessionAuth, passwordHash string) *Server {
	t.Helper()

	if assistant == nil {
		assistant = &stubAssistant{
			askFn: func(ctx context.Context, sessionID, question string) (*domain.AnswerResult, error) {
				return &domain.AnswerResult{Answer: "ok", Intent: domain.IntentBaseline}, nil
			},
		}
	}

	cfg := DefaultConfig()
	cfg.Version = "test"
	cfg.OperatorPasswordHash = passwordHash

	return NewServer(cfg,
		assistant,
		&stubIndexer{status: &driving.IndexStatus{Documents: 4, Available: true}},
		&stubSettings{status: &driving.AISettingsStatus{Settings: domain.DefaultAISettings()}},
		mocks.NewMockTaskQueue(),
		auth,
		nil,
		nil,
	)
}

func doRequest(s *Server, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, nil, nil, "")

	rec := doRequest(s, "GET", "/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandleVersion(t *testing.T) {
	s := newTestServer(t, nil, nil, "")

	rec := doRequest(s, "GET", "/version", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["version"] != "test" {
		t.Errorf("expected version test, got %s", resp["version"])
	}
}

func TestHandleOpenSession_NoAuth(t *testing.T) {
	s := newTestServer(t, nil, nil, "")

	rec := doRequest(s, "POST", "/api/v1/session", nil, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SessionID == "" {
		t.Error("expected a session ID")
	}
	if resp.Token != "" {
		t.Error("expected no token with auth disabled")
	}
}

func TestHandleOpenSession_WithAuth(t *testing.T) {
	auth := &stubAuth{password: "hunter2"}
	s := newTestServer(t, nil, auth, "somehash")

	// Wrong password rejected
	rec := doRequest(s, "POST", "/api/v1/session", map[string]string{"password": "wrong"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong password, got %d", rec.Code)
	}

	// Correct password yields session + token
	rec = doRequest(s, "POST", "/api/v1/session", map[string]string{"password": "hunter2"}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token != "tok:"+resp.SessionID {
		t.Errorf("expected token bound to session, got %q", resp.Token)
	}
}

func TestHandleAsk_SessionFromHeader(t *testing.T) {
	var gotSession string
	assistant := &stubAssistant{
		askFn: func(ctx context.Context, sessionID, question string) (*domain.AnswerResult, error) {
			gotSession = sessionID
			reward := 0.55
			return &domain.AnswerResult{
				Answer:       "SSH on 22.",
				Intent:       domain.IntentExtract,
				Instructions: "Provide a short, list-based factual answer. No extra commentary.",
				Reward:       &reward,
				Components:   &domain.RewardComponents{C: 0.67, H: 0, V: 0.12},
			}, nil
		},
	}
	s := newTestServer(t, assistant, nil, "")

	rec := doRequest(s, "POST", "/api/v1/ask",
		AskRequest{Question: "what ports are open?"},
		map[string]string{"X-Session-ID": "sess-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotSession != "sess-1" {
		t.Errorf("expected session sess-1, got %s", gotSession)
	}

	var resp domain.AnswerResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Reward == nil || *resp.Reward != 0.55 {
		t.Errorf("expected reward 0.55, got %v", resp.Reward)
	}
	if resp.Components == nil || resp.Components.C != 0.67 {
		t.Errorf("unexpected components: %v", resp.Components)
	}
}

func TestHandleAsk_BaselineTurnSerialisesNullReward(t *testing.T) {
	assistant := &stubAssistant{
		askFn: func(ctx context.Context, sessionID, question string) (*domain.AnswerResult, error) {
			return &domain.AnswerResult{Answer: "baseline", Intent: domain.IntentBaseline}, nil
		},
	}
	s := newTestServer(t, assistant, nil, "")

	rec := doRequest(s, "POST", "/api/v1/ask",
		AskRequest{Question: "hello"},
		map[string]string{"X-Session-ID": "sess-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(raw["reward"]) != "null" {
		t.Errorf("expected null reward on baseline turn, got %s", raw["reward"])
	}
}

func TestHandleAsk_MissingSession(t *testing.T) {
	s := newTestServer(t, nil, nil, "")

	rec := doRequest(s, "POST", "/api/v1/ask", AskRequest{Question: "hi"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without a session, got %d", rec.Code)
	}
}

func TestHandleAsk_AuthRequired(t *testing.T) {
	s := newTestServer(t, nil, &stubAuth{}, "")

	// No token
	rec := doRequest(s, "POST", "/api/v1/ask", AskRequest{Question: "hi"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	// Bad token
	rec = doRequest(s, "POST", "/api/v1/ask", AskRequest{Question: "hi"},
		map[string]string{"Authorization": "Bearer garbage"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad token, got %d", rec.Code)
	}

	// Valid token carries the session
	rec = doRequest(s, "POST", "/api/v1/ask", AskRequest{Question: "hi"},
		map[string]string{"Authorization": "Bearer tok:sess-42"})
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with valid token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleAsk_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{fmt.Errorf("%w: index file missing", domain.ErrIndexUnavailable), http.StatusServiceUnavailable},
		{fmt.Errorf("%w: no embedder configured", domain.ErrServiceUnavailable), http.StatusServiceUnavailable},
		{fmt.Errorf("%w: timeout", domain.ErrGeneration), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assistant := &stubAssistant{
			askFn: func(ctx context.Context, sessionID, question string) (*domain.AnswerResult, error) {
				return nil, tc.err
			},
		}
		s := newTestServer(t, assistant, nil, "")

		rec := doRequest(s, "POST", "/api/v1/ask", AskRequest{Question: "hi"},
			map[string]string{"X-Session-ID": "sess-1"})
		if rec.Code != tc.want {
			t.Errorf("error %v: expected %d, got %d", tc.err, tc.want, rec.Code)
		}
	}
}

func TestHandleQuery(t *testing.T) {
	assistant := &stubAssistant{
		askFn: func(ctx context.Context, sessionID, question string) (*domain.AnswerResult, error) {
			return nil, nil
		},
		queryFn: func(ctx context.Context, question string) (string, error) {
			return "Port 80 serves HTTP.", nil
		},
	}
	s := newTestServer(t, assistant, nil, "")

	rec := doRequest(s, "POST", "/api/v1/query", QueryRequest{Question: "what about port 80?"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Answer != "Port 80 serves HTTP." {
		t.Errorf("unexpected answer: %q", resp.Answer)
	}
}

func TestHandleRebuildIndex(t *testing.T) {
	s := newTestServer(t, nil, nil, "")

	rec := doRequest(s, "POST", "/api/v1/index/rebuild", nil, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp TaskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Type != string(domain.TaskTypeRebuildIndex) {
		t.Errorf("expected rebuild task, got %s", resp.Type)
	}

	// Task is pollable
	rec = doRequest(s, "GET", "/api/v1/tasks/"+resp.TaskID, nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 polling task, got %d", rec.Code)
	}
}

func TestHandleRebuildIndex_WithTarget(t *testing.T) {
	s := newTestServer(t, nil, nil, "")

	rec := doRequest(s, "POST", "/api/v1/index/rebuild",
		RebuildRequest{Target: "https://example.com"}, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	var resp TaskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Type != string(domain.TaskTypeScanPipeline) {
		t.Errorf("expected scan pipeline task, got %s", resp.Type)
	}
}

func TestHandleGetTask_NotFound(t *testing.T) {
	s := newTestServer(t, nil, nil, "")

	rec := doRequest(s, "GET", "/api/v1/tasks/nope", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleIndexStatus(t *testing.T) {
	s := newTestServer(t, nil, nil, "")

	rec := doRequest(s, "GET", "/api/v1/index/status", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var status driving.IndexStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Documents != 4 || !status.Available {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestHandleGetAISettings_RedactsKeys(t *testing.T) {
	s := newTestServer(t, nil, nil, "")

	rec := doRequest(s, "GET", "/api/v1/settings/ai", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "api_key") {
		t.Errorf("API key leaked in response: %s", rec.Body.String())
	}
}

func TestHandleUpdateAISettings_ErrorMapping(t *testing.T) {
	cfg := DefaultConfig()

	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrInvalidProvider, http.StatusBadRequest},
		{fmt.Errorf("%w: embedder: connect refused", domain.ErrServiceUnavailable), http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		s := NewServer(cfg,
			&stubAssistant{askFn: func(ctx context.Context, sessionID, question string) (*domain.AnswerResult, error) {
				return nil, nil
			}},
			&stubIndexer{status: &driving.IndexStatus{}},
			&stubSettings{updateErr: tc.err},
			mocks.NewMockTaskQueue(),
			nil, nil, nil,
		)

		rec := doRequest(s, "PUT", "/api/v1/settings/ai",
			map[string]interface{}{"llm": map[string]string{"provider": "ollama", "model": "phi3.5:3.8b"}}, nil)
		if rec.Code != tc.want {
			t.Errorf("error %v: expected %d, got %d", tc.err, tc.want, rec.Code)
		}
	}
}
