package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
	"github.com/hardline-labs/scanwise-core/internal/core/ports/driving"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// SessionResponse is returned when a session is opened
// @Description New session with optional bearer token
type SessionResponse struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token,omitempty"`
}

// AskRequest is the body of an ask request
type AskRequest struct {
	Question string `json:"question"`
}

// QueryRequest is the body of a standalone query request
type QueryRequest struct {
	Question string `json:"question"`
}

// QueryResponse is the standalone query answer
type QueryResponse struct {
	Answer string `json:"answer"`
}

// RebuildRequest optionally names a target to scan before reindexing
type RebuildRequest struct {
	Target string `json:"target,omitempty"`
}

// TaskResponse reports an enqueued or polled task
type TaskResponse struct {
	TaskID string `json:"task_id"`
	Type   string `json:"type"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns the readiness status of the API (checks backing stores)
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "A backing store is unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Session endpoints

// handleOpenSession godoc
// @Summary      Open a conversation session
// @Description  Creates a fresh session. When an operator password is configured it must be supplied; when auth is enabled the response carries a bearer token bound to the session.
// @Tags         Session
// @Accept       json
// @Produce      json
// @Param        request  body      map[string]string  false  "Optional operator password"
// @Success      201      {object}  SessionResponse
// @Failure      401      {object}  ErrorResponse  "Wrong or missing operator password"
// @Router       /api/v1/session [post]
func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	// Body is optional
	_ = json.NewDecoder(r.Body).Decode(&req)

	if s.passwordHash != "" {
		if s.auth == nil || !s.auth.VerifyPassword(req.Password, s.passwordHash) {
			writeError(w, http.StatusUnauthorized, "invalid operator password")
			return
		}
	}

	session, err := s.assistant.OpenSession(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to open session")
		return
	}

	resp := SessionResponse{SessionID: session.ID}
	if s.auth != nil {
		token, err := s.auth.GenerateToken(session.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to mint session token")
			return
		}
		resp.Token = token
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Assistant endpoints

// handleAsk godoc
// @Summary      Ask a question about the indexed scan findings
// @Description  Answers within a session. The session's first turn is the un-steered baseline; later turns return a reward and its components.
// @Tags         Assistant
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      AskRequest  true  "Question"
// @Success      200      {object}  domain.AnswerResult
// @Failure      400      {object}  ErrorResponse  "Empty question or missing session"
// @Failure      502      {object}  ErrorResponse  "Generation backend failed"
// @Failure      503      {object}  ErrorResponse  "Index or AI services unavailable"
// @Router       /api/v1/ask [post]
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.assistant.Ask(r.Context(), GetSessionID(r.Context()), req.Question)
	if err != nil {
		writeAskError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleQuery godoc
// @Summary      One-shot question without a session
// @Description  Standalone grounded answer: no policy steering, no reward.
// @Tags         Assistant
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      QueryRequest  true  "Question"
// @Success      200      {object}  QueryResponse
// @Failure      400      {object}  ErrorResponse  "Empty question"
// @Failure      503      {object}  ErrorResponse  "Index or AI services unavailable"
// @Router       /api/v1/query [post]
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := s.assistant.Query(r.Context(), req.Question)
	if err != nil {
		writeAskError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, QueryResponse{Answer: answer})
}

// writeAskError maps assistant errors to HTTP statuses
func writeAskError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "question is required")
	case errors.Is(err, domain.ErrIndexUnavailable):
		writeError(w, http.StatusServiceUnavailable, "index unavailable: run a scan or rebuild first")
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, "AI services not configured")
	case errors.Is(err, domain.ErrGeneration):
		writeError(w, http.StatusBadGateway, "generation failed")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// Index endpoints

// handleRebuildIndex godoc
// @Summary      Rebuild the vector index
// @Description  Enqueues a rebuild task. With a target in the body the full scan pipeline runs first.
// @Tags         Index
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      RebuildRequest  false  "Optional scan target"
// @Success      202      {object}  TaskResponse
// @Failure      503      {object}  ErrorResponse  "Task queue unavailable"
// @Router       /api/v1/index/rebuild [post]
func (s *Server) handleRebuildIndex(w http.ResponseWriter, r *http.Request) {
	if s.taskQueue == nil {
		writeError(w, http.StatusServiceUnavailable, "task queue unavailable")
		return
	}

	var req RebuildRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	var task *domain.Task
	if req.Target != "" {
		task = domain.NewTask(domain.TaskTypeScanPipeline, map[string]string{"target": req.Target})
	} else {
		task = domain.NewTask(domain.TaskTypeRebuildIndex, nil)
	}

	if err := s.taskQueue.Enqueue(r.Context(), task); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to enqueue task")
		return
	}

	writeJSON(w, http.StatusAccepted, TaskResponse{
		TaskID: task.ID,
		Type:   string(task.Type),
		Status: string(task.Status),
	})
}

// handleIndexStatus godoc
// @Summary      Index status
// @Description  Reports whether the index can serve queries and how many documents it holds
// @Tags         Index
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  driving.IndexStatus
// @Router       /api/v1/index/status [get]
func (s *Server) handleIndexStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.indexer.Status(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read index status")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// handleGetTask godoc
// @Summary      Poll a background task
// @Tags         Index
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  TaskResponse
// @Failure      404  {object}  ErrorResponse  "Unknown task"
// @Router       /api/v1/tasks/{id} [get]
func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	if s.taskQueue == nil {
		writeError(w, http.StatusServiceUnavailable, "task queue unavailable")
		return
	}

	task, err := s.taskQueue.GetTask(r.Context(), r.PathValue("id"))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	writeJSON(w, http.StatusOK, TaskResponse{
		TaskID: task.ID,
		Type:   string(task.Type),
		Status: string(task.Status),
		Error:  task.Error,
	})
}

// AI settings endpoints

// handleGetAISettings godoc
// @Summary      Get AI settings
// @Description  Returns the current AI provider configuration with API keys redacted
// @Tags         Settings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  driving.AISettingsStatus
// @Router       /api/v1/settings/ai [get]
func (s *Server) handleGetAISettings(w http.ResponseWriter, r *http.Request) {
	status, err := s.settingsService.GetAISettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get settings")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// updateAISettingsRequest mirrors driving.UpdateAISettingsRequest but
// accepts API keys in the request body (the domain types never serialize
// keys outward).
type updateAISettingsRequest struct {
	Embedding *struct {
		Provider string `json:"provider"`
		Model    string `json:"model"`
		APIKey   string `json:"api_key"`
		BaseURL  string `json:"base_url"`
	} `json:"embedding"`
	LLM *struct {
		Provider string `json:"provider"`
		Model    string `json:"model"`
		APIKey   string `json:"api_key"`
		BaseURL  string `json:"base_url"`
	} `json:"llm"`
}

// handleUpdateAISettings godoc
// @Summary      Update AI settings
// @Description  Validates the new configuration against the live provider, hot-swaps services and persists. An empty API key keeps the stored key.
// @Tags         Settings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      updateAISettingsRequest  true  "New configuration"
// @Success      200      {object}  driving.AISettingsStatus
// @Failure      400      {object}  ErrorResponse  "Unknown provider"
// @Failure      503      {object}  ErrorResponse  "Provider validation failed"
// @Router       /api/v1/settings/ai [put]
func (s *Server) handleUpdateAISettings(w http.ResponseWriter, r *http.Request) {
	var req updateAISettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	update := driving.UpdateAISettingsRequest{}
	if req.Embedding != nil {
		update.Embedding = &domain.EmbeddingSettings{
			Provider: domain.AIProvider(req.Embedding.Provider),
			Model:    req.Embedding.Model,
			APIKey:   req.Embedding.APIKey,
			BaseURL:  req.Embedding.BaseURL,
		}
	}
	if req.LLM != nil {
		update.LLM = &domain.LLMSettings{
			Provider: domain.AIProvider(req.LLM.Provider),
			Model:    req.LLM.Model,
			APIKey:   req.LLM.APIKey,
			BaseURL:  req.LLM.BaseURL,
		}
	}

	status, err := s.settingsService.UpdateAISettings(r.Context(), update)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidProvider):
			writeError(w, http.StatusBadRequest, "unknown provider")
		case errors.Is(err, domain.ErrServiceUnavailable):
			writeError(w, http.StatusServiceUnavailable, "provider validation failed")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update settings")
		}
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// Helpers

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
