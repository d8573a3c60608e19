package domain

import "context"

// ThreadStore persists chat threads. The core never touches storage directly;
// it is always handed a ThreadStore so it stays testable with an in-memory
// implementation.
type ThreadStore interface {
	Create(ctx context.Context, thread ChatThread) error
	Get(ctx context.Context, id string) (ChatThread, error)
	List(ctx context.Context, opts ListOpts) ([]ChatThread, error)
	AppendMessage(ctx context.Context, threadID string, msg ChatMessage) error
	Delete(ctx context.Context, id string) error
}
