package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/signalboard/signalboard/internal/domain"
	"github.com/signalboard/signalboard/internal/llm"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClient is an in-memory ProviderClient.
type fakeClient struct {
	provider  domain.Provider
	markets   []domain.NormalizedMarket
	err       error
	listCalls int
	getCalls  int
}

func (f *fakeClient) ListMarkets(ctx context.Context, opts domain.ListOpts) ([]domain.NormalizedMarket, error) {
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.markets, nil
}

func (f *fakeClient) GetMarket(ctx context.Context, id string) (domain.NormalizedMarket, error) {
	f.getCalls++
	if f.err != nil {
		return domain.NormalizedMarket{}, f.err
	}
	for _, m := range f.markets {
		if m.ID == id || m.Slug == id {
			return m, nil
		}
	}
	return domain.NormalizedMarket{}, domain.ErrNotFound
}

func (f *fakeClient) Provider() domain.Provider { return f.provider }

// fakeCache is an in-memory domain.MarketCache.
type fakeCache struct {
	entries map[string]domain.NormalizedMarket
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]domain.NormalizedMarket)}
}

func cacheKey(p domain.Provider, id string) string { return string(p) + "/" + id }

func (f *fakeCache) Set(ctx context.Context, m domain.NormalizedMarket) error {
	f.sets++
	f.entries[cacheKey(m.Provider, m.ID)] = m
	return nil
}

func (f *fakeCache) Get(ctx context.Context, p domain.Provider, id string) (domain.NormalizedMarket, error) {
	m, ok := f.entries[cacheKey(p, id)]
	if !ok {
		return domain.NormalizedMarket{}, domain.ErrNotFound
	}
	return m, nil
}

func (f *fakeCache) Invalidate(ctx context.Context, p domain.Provider, id string) error {
	delete(f.entries, cacheKey(p, id))
	return nil
}

// fakeBus records publishes and stream appends.
type fakeBus struct {
	published map[string][][]byte
	appended  map[string][][]byte
}

func newFakeBus() *fakeBus {
	return &fakeBus{
		published: make(map[string][][]byte),
		appended:  make(map[string][][]byte),
	}
}

func (f *fakeBus) Publish(ctx context.Context, channel string, payload []byte) error {
	f.published[channel] = append(f.published[channel], payload)
	return nil
}

func (f *fakeBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, nil
}

func (f *fakeBus) StreamAppend(ctx context.Context, stream string, payload []byte) error {
	f.appended[stream] = append(f.appended[stream], payload)
	return nil
}

func (f *fakeBus) StreamRead(ctx context.Context, stream, lastID string, count int) ([]domain.StreamMessage, error) {
	return nil, nil
}

// fakeLimiter allows or denies every request.
type fakeLimiter struct {
	allowed bool
	keys    []string
}

func (f *fakeLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allowed, nil
}

// fakeLocks grants or refuses the refresh lock.
type fakeLocks struct {
	held     bool
	acquired int
}

func (f *fakeLocks) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if f.held {
		return nil, domain.ErrLockHeld
	}
	f.acquired++
	return func() {}, nil
}

// fakeCompleter is a canned LLM client.
type fakeCompleter struct {
	configured bool
	response   string
	err        error
	messages   []llm.Message
}

func (f *fakeCompleter) Configured() bool { return f.configured }

func (f *fakeCompleter) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	f.messages = messages
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

// fakeSearcher is a canned web-search client.
type fakeSearcher struct {
	configured bool
	result     domain.SearchContext
	err        error
	queries    []string
}

func (f *fakeSearcher) Configured() bool { return f.configured }

func (f *fakeSearcher) Search(ctx context.Context, query string) (domain.SearchContext, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return domain.SearchContext{}, f.err
	}
	return f.result, nil
}

// fakeNotifier records dispatched events.
type fakeNotifier struct {
	events []string
}

func (f *fakeNotifier) Notify(ctx context.Context, event, title, message string) error {
	f.events = append(f.events, event)
	return nil
}

// fakeThreadStore is an in-memory domain.ThreadStore.
type fakeThreadStore struct {
	threads map[string]domain.ChatThread
}

func newFakeThreadStore() *fakeThreadStore {
	return &fakeThreadStore{threads: make(map[string]domain.ChatThread)}
}

func (f *fakeThreadStore) Create(ctx context.Context, thread domain.ChatThread) error {
	if _, ok := f.threads[thread.ID]; ok {
		return domain.ErrAlreadyExists
	}
	f.threads[thread.ID] = thread
	return nil
}

func (f *fakeThreadStore) Get(ctx context.Context, id string) (domain.ChatThread, error) {
	t, ok := f.threads[id]
	if !ok {
		return domain.ChatThread{}, domain.ErrNotFound
	}
	return t, nil
}

func (f *fakeThreadStore) List(ctx context.Context, opts domain.ListOpts) ([]domain.ChatThread, error) {
	var out []domain.ChatThread
	for _, t := range f.threads {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeThreadStore) AppendMessage(ctx context.Context, threadID string, msg domain.ChatMessage) error {
	t, ok := f.threads[threadID]
	if !ok {
		return domain.ErrNotFound
	}
	t.Messages = append(t.Messages, msg)
	t.UpdatedAt = msg.CreatedAt
	f.threads[threadID] = t
	return nil
}

func (f *fakeThreadStore) Delete(ctx context.Context, id string) error {
	if _, ok := f.threads[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.threads, id)
	return nil
}
