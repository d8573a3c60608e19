package handler

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	s3blob "github.com/signalboard/signalboard/internal/blob/s3"
	"github.com/signalboard/signalboard/internal/domain"
)

// SignalsHandler serves archived analyses from blob storage.
type SignalsHandler struct {
	blobs  domain.BlobReader
	logger *slog.Logger
}

// NewSignalsHandler creates a SignalsHandler.
func NewSignalsHandler(blobs domain.BlobReader, logger *slog.Logger) *SignalsHandler {
	return &SignalsHandler{
		blobs:  blobs,
		logger: logHandler(logger, "signals"),
	}
}

// ListArchives returns metadata for every archived month.
// GET /api/signals/archive
func (h *SignalsHandler) ListArchives(w http.ResponseWriter, r *http.Request) {
	infos, err := h.blobs.List(r.Context(), "archive/signals/")
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list archives failed",
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"archives": infos,
		"count":    len(infos),
	})
}

// GetArchive streams one month's archived analyses as JSONL.
// GET /api/signals/archive/{month}   (month format: 2026-01)
func (h *SignalsHandler) GetArchive(w http.ResponseWriter, r *http.Request) {
	month, err := time.Parse("2006-01", pathParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "month must look like 2026-01")
		return
	}

	body, err := h.blobs.Get(r.Context(), s3blob.ArchivePath(month))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/x-ndjson")
	if _, err := io.Copy(w, body); err != nil {
		h.logger.WarnContext(r.Context(), "archive stream interrupted",
			slog.String("error", err.Error()),
		)
	}
}
