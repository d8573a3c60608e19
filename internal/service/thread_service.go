package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/signalboard/signalboard/internal/domain"
)

// maxTitleLen bounds auto-generated thread titles.
const maxTitleLen = 80

// ThreadService manages persisted chat threads through the ThreadStore port.
type ThreadService struct {
	store  domain.ThreadStore
	logger *slog.Logger
	now    func() time.Time
}

// NewThreadService creates a ThreadService.
func NewThreadService(store domain.ThreadStore, logger *slog.Logger) *ThreadService {
	return &ThreadService{
		store:  store,
		logger: logger.With(slog.String("component", "thread_service")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create starts a new thread from the first user message. The thread title is
// derived from the message content when none is supplied.
func (s *ThreadService) Create(ctx context.Context, title, firstMessage string) (domain.ChatThread, error) {
	now := s.now()

	if strings.TrimSpace(title) == "" {
		title = deriveTitle(firstMessage)
	}

	thread := domain.ChatThread{
		ID:        uuid.New().String(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if strings.TrimSpace(firstMessage) != "" {
		thread.Messages = []domain.ChatMessage{{
			ID:        uuid.New().String(),
			Role:      domain.ChatRoleUser,
			Content:   firstMessage,
			CreatedAt: now,
		}}
	}

	if err := s.store.Create(ctx, thread); err != nil {
		return domain.ChatThread{}, fmt.Errorf("thread_service: create: %w", err)
	}

	s.logger.InfoContext(ctx, "thread created", slog.String("thread_id", thread.ID))
	return thread, nil
}

// Get returns one thread with its full message history.
func (s *ThreadService) Get(ctx context.Context, id string) (domain.ChatThread, error) {
	thread, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.ChatThread{}, fmt.Errorf("thread_service: get %s: %w", id, err)
	}
	return thread, nil
}

// List returns thread summaries, most recently updated first.
func (s *ThreadService) List(ctx context.Context, opts domain.ListOpts) ([]domain.ChatThread, error) {
	threads, err := s.store.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("thread_service: list: %w", err)
	}
	return threads, nil
}

// AppendMessage adds a message to an existing thread. marketCtx may be nil;
// it is attached to assistant replies produced for a specific market.
func (s *ThreadService) AppendMessage(ctx context.Context, threadID string, role domain.ChatRole, content string, marketCtx *domain.MarketRef) (domain.ChatMessage, error) {
	msg := domain.ChatMessage{
		ID:            uuid.New().String(),
		Role:          role,
		Content:       content,
		MarketContext: marketCtx,
		CreatedAt:     s.now(),
	}

	if err := s.store.AppendMessage(ctx, threadID, msg); err != nil {
		return domain.ChatMessage{}, fmt.Errorf("thread_service: append %s: %w", threadID, err)
	}
	return msg, nil
}

// Delete removes a thread and its messages.
func (s *ThreadService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("thread_service: delete %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "thread deleted", slog.String("thread_id", id))
	return nil
}

// deriveTitle builds a thread title from the first message, truncated on a
// rune boundary.
func deriveTitle(message string) string {
	title := strings.TrimSpace(message)
	if title == "" {
		return "New thread"
	}
	runes := []rune(title)
	if len(runes) > maxTitleLen {
		title = string(runes[:maxTitleLen]) + "..."
	}
	return title
}
