package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/signalboard/signalboard/internal/domain"
	"github.com/signalboard/signalboard/internal/service"
)

// ThreadHandler serves chat thread CRUD operations.
type ThreadHandler struct {
	threads *service.ThreadService
	logger  *slog.Logger
}

// NewThreadHandler creates a ThreadHandler.
func NewThreadHandler(threads *service.ThreadService, logger *slog.Logger) *ThreadHandler {
	return &ThreadHandler{
		threads: threads,
		logger:  logHandler(logger, "thread"),
	}
}

// createThreadRequest is the body of POST /api/threads.
type createThreadRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// CreateThread starts a new chat thread.
// POST /api/threads
func (h *ThreadHandler) CreateThread(w http.ResponseWriter, r *http.Request) {
	var req createThreadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	thread, err := h.threads.Create(r.Context(), req.Title, req.Message)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "create thread failed",
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, thread)
}

// ListThreads returns thread summaries, most recently updated first.
// GET /api/threads
func (h *ThreadHandler) ListThreads(w http.ResponseWriter, r *http.Request) {
	threads, err := h.threads.List(r.Context(), parseListOpts(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list threads failed",
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"threads": threads,
		"count":   len(threads),
	})
}

// GetThread returns one thread with its full message history.
// GET /api/threads/{id}
func (h *ThreadHandler) GetThread(w http.ResponseWriter, r *http.Request) {
	thread, err := h.threads.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, thread)
}

// DeleteThread removes a thread and its messages.
// DELETE /api/threads/{id}
func (h *ThreadHandler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	if err := h.threads.Delete(r.Context(), pathParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// appendMessageRequest is the body of POST /api/threads/{id}/messages.
type appendMessageRequest struct {
	Role          string            `json:"role"`
	Content       string            `json:"content"`
	MarketContext *domain.MarketRef `json:"market_context,omitempty"`
}

// AppendMessage adds a message to an existing thread.
// POST /api/threads/{id}/messages
func (h *ThreadHandler) AppendMessage(w http.ResponseWriter, r *http.Request) {
	var req appendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role := domain.ChatRole(req.Role)
	if role != domain.ChatRoleUser && role != domain.ChatRoleAssistant {
		writeError(w, http.StatusBadRequest, "role must be user or assistant")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "missing message content")
		return
	}

	msg, err := h.threads.AppendMessage(r.Context(), pathParam(r, "id"), role, req.Content, req.MarketContext)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}
