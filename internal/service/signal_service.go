package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/signalboard/signalboard/internal/domain"
	"github.com/signalboard/signalboard/internal/llm"
	"github.com/signalboard/signalboard/internal/signal"
)

// Bus channel and stream names shared between the signal service, the
// refresh service, and the WebSocket hub.
const (
	ChannelSignals = "ch:signal"
	ChannelRefresh = "ch:markets"
	StreamSignals  = "signals"
)

// analyzeRateWindow bounds per-client analysis calls; LLM requests are the
// expensive path.
const (
	analyzeRateLimit  = 10
	analyzeRateWindow = time.Minute
)

// completer is the slice of the LLM client the signal service needs.
type completer interface {
	Configured() bool
	Complete(ctx context.Context, messages []llm.Message) (string, error)
}

// searcher is the slice of the web-search client the signal service needs.
type searcher interface {
	Configured() bool
	Search(ctx context.Context, query string) (domain.SearchContext, error)
}

// notifier dispatches operator notifications for selected events.
type notifier interface {
	Notify(ctx context.Context, event, title, message string) error
}

// SignalService produces probability signals for markets: it fetches the
// market, optionally enriches the prompt with web search, calls the LLM,
// parses the response, and fans the finished analysis out to the bus, the
// durable stream, and operator notifications.
type SignalService struct {
	markets  *MarketService
	llm      completer
	search   searcher
	bus      domain.SignalBus
	limiter  domain.RateLimiter
	notifier notifier
	logger   *slog.Logger
}

// NewSignalService creates a SignalService. search and notifier may be nil
// when the corresponding integrations are not configured.
func NewSignalService(
	markets *MarketService,
	llmClient completer,
	searchClient searcher,
	bus domain.SignalBus,
	limiter domain.RateLimiter,
	n notifier,
	logger *slog.Logger,
) *SignalService {
	return &SignalService{
		markets:  markets,
		llm:      llmClient,
		search:   searchClient,
		bus:      bus,
		limiter:  limiter,
		notifier: n,
		logger:   logger.With(slog.String("component", "signal_service")),
	}
}

// Analyze produces a signal for one market. clientKey identifies the caller
// for rate limiting (typically the client IP). LLM failures are fatal to the
// request; search, bus, and notification failures are logged and absorbed.
func (s *SignalService) Analyze(ctx context.Context, provider domain.Provider, id, clientKey string) (domain.Analysis, error) {
	if !s.llm.Configured() {
		return domain.Analysis{}, fmt.Errorf("signal_service: analyze: %w", domain.ErrNoAPIKey)
	}

	allowed, err := s.limiter.Allow(ctx, "analyze:"+clientKey, analyzeRateLimit, analyzeRateWindow)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("signal_service: rate limit check: %w", err)
	}
	if !allowed {
		return domain.Analysis{}, fmt.Errorf("signal_service: analyze: %w", domain.ErrRateLimited)
	}

	market, err := s.markets.Get(ctx, provider, id)
	if err != nil {
		return domain.Analysis{}, err
	}

	searchCtx := s.enrich(ctx, market.Question)

	raw, err := s.llm.Complete(ctx, signal.BuildPrompt(market, searchCtx))
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("signal_service: complete: %w", err)
	}

	analysis := domain.Analysis{
		ID:        uuid.New().String(),
		Provider:  market.Provider,
		MarketID:  market.ID,
		Question:  market.Question,
		Result:    signal.ParseResponse(raw, market.OutcomeNames()),
		CreatedAt: time.Now().UTC(),
	}

	s.record(ctx, analysis)

	return analysis, nil
}

// enrich runs the optional web search. A missing key or a search failure
// yields an empty context; analysis proceeds either way.
func (s *SignalService) enrich(ctx context.Context, question string) domain.SearchContext {
	if s.search == nil || !s.search.Configured() {
		return domain.SearchContext{}
	}

	searchCtx, err := s.search.Search(ctx, question)
	if err != nil {
		s.logger.WarnContext(ctx, "search enrichment failed",
			slog.String("error", err.Error()),
		)
		return domain.SearchContext{}
	}
	return searchCtx
}

// record publishes the analysis to the bus, appends it to the durable stream,
// and notifies operators. None of these can fail the analysis itself.
func (s *SignalService) record(ctx context.Context, analysis domain.Analysis) {
	payload, err := json.Marshal(analysis)
	if err != nil {
		s.logger.ErrorContext(ctx, "marshal analysis failed",
			slog.String("analysis_id", analysis.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := s.bus.Publish(ctx, ChannelSignals, payload); err != nil {
		s.logger.WarnContext(ctx, "publish analysis failed",
			slog.String("analysis_id", analysis.ID),
			slog.String("error", err.Error()),
		)
	}
	if err := s.bus.StreamAppend(ctx, StreamSignals, payload); err != nil {
		s.logger.WarnContext(ctx, "stream append failed",
			slog.String("analysis_id", analysis.ID),
			slog.String("error", err.Error()),
		)
	}

	if s.notifier != nil {
		msg := fmt.Sprintf("%s → %s (%d%% confidence)",
			analysis.Question, analysis.Result.Outcome, analysis.Result.Confidence)
		if err := s.notifier.Notify(ctx, "analysis_completed", "Analysis completed", msg); err != nil {
			s.logger.WarnContext(ctx, "notify failed",
				slog.String("analysis_id", analysis.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}
