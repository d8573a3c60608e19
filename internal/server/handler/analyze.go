package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/signalboard/signalboard/internal/domain"
	"github.com/signalboard/signalboard/internal/service"
)

// AnalyzeHandler serves signal generation requests.
type AnalyzeHandler struct {
	signals *service.SignalService
	logger  *slog.Logger
}

// NewAnalyzeHandler creates an AnalyzeHandler.
func NewAnalyzeHandler(signals *service.SignalService, logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		signals: signals,
		logger:  logHandler(logger, "analyze"),
	}
}

// analyzeRequest is the body of POST /api/analyze.
type analyzeRequest struct {
	Provider string `json:"provider"`
	ID       string `json:"id"`
}

// Analyze produces a probability signal for one market.
// POST /api/analyze
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	provider, err := domain.ParseProvider(req.Provider)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	analysis, err := h.signals.Analyze(r.Context(), provider, req.ID, clientIP(r))
	if err != nil {
		h.logger.WarnContext(r.Context(), "analyze failed",
			slog.String("provider", string(provider)),
			slog.String("market_id", req.ID),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}
