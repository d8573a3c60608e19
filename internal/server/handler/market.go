package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/signalboard/signalboard/internal/domain"
	"github.com/signalboard/signalboard/internal/service"
)

// MarketHandler serves normalized market listings, detail lookups, ranked
// search, and URL resolution.
type MarketHandler struct {
	markets *service.MarketService
	logger  *slog.Logger
}

// NewMarketHandler creates a MarketHandler.
func NewMarketHandler(markets *service.MarketService, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		markets: markets,
		logger:  logHandler(logger, "market"),
	}
}

// ListMarkets returns normalized listings, optionally filtered to one
// provider.
// GET /api/markets?provider=&limit=&offset=
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	var provider domain.Provider
	if p := r.URL.Query().Get("provider"); p != "" {
		parsed, err := domain.ParseProvider(p)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		provider = parsed
	}

	markets, err := h.markets.List(r.Context(), provider, parseListOpts(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list markets failed",
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"markets": markets,
		"count":   len(markets),
	})
}

// GetMarket returns one normalized market.
// GET /api/markets/{provider}/{id}
func (h *MarketHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	provider, err := domain.ParseProvider(pathParam(r, "provider"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	market, err := h.markets.Get(r.Context(), provider, id)
	if err != nil {
		h.logger.WarnContext(r.Context(), "get market failed",
			slog.String("provider", string(provider)),
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, market)
}

// SearchMarkets returns cross-provider search results ranked by relevance.
// GET /api/markets/search?q=&limit=
func (h *MarketHandler) SearchMarkets(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	results, err := h.markets.Search(r.Context(), query, parseListOpts(r).Limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "search failed",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}

// resolveRequest is the body of POST /api/markets/resolve.
type resolveRequest struct {
	Text string `json:"text"`
}

// ResolveMarket extracts a provider market reference from pasted text.
// POST /api/markets/resolve
func (h *MarketHandler) ResolveMarket(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ref, ok := h.markets.Resolve(req.Text)
	if !ok {
		writeError(w, http.StatusNotFound, "no market reference found")
		return
	}

	writeJSON(w, http.StatusOK, ref)
}
