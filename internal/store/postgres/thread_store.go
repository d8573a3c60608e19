package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/signalboard/signalboard/internal/domain"
)

// ThreadStore implements domain.ThreadStore using PostgreSQL.
type ThreadStore struct {
	pool *pgxpool.Pool
}

// NewThreadStore creates a new ThreadStore backed by the given connection pool.
func NewThreadStore(pool *pgxpool.Pool) *ThreadStore {
	return &ThreadStore{pool: pool}
}

// Create inserts a new thread together with any initial messages.
func (s *ThreadStore) Create(ctx context.Context, thread domain.ChatThread) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin create thread: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insertThread = `
		INSERT INTO chat_threads (id, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4)`

	if _, err := tx.Exec(ctx, insertThread,
		thread.ID, thread.Title, thread.CreatedAt, thread.UpdatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("postgres: create thread %s: %w", thread.ID, err)
	}

	for _, msg := range thread.Messages {
		if err := insertMessage(ctx, tx, thread.ID, msg); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit create thread %s: %w", thread.ID, err)
	}
	return nil
}

// Get retrieves a thread and all of its messages in chronological order.
// It returns domain.ErrNotFound when the thread does not exist.
func (s *ThreadStore) Get(ctx context.Context, id string) (domain.ChatThread, error) {
	const threadQuery = `
		SELECT id, title, created_at, updated_at
		FROM chat_threads WHERE id = $1`

	var thread domain.ChatThread
	err := s.pool.QueryRow(ctx, threadQuery, id).Scan(
		&thread.ID, &thread.Title, &thread.CreatedAt, &thread.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ChatThread{}, domain.ErrNotFound
		}
		return domain.ChatThread{}, fmt.Errorf("postgres: get thread %s: %w", id, err)
	}

	const msgQuery = `
		SELECT id, role, content, market_provider, market_identifier, created_at
		FROM chat_messages
		WHERE thread_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := s.pool.Query(ctx, msgQuery, id)
	if err != nil {
		return domain.ChatThread{}, fmt.Errorf("postgres: list messages %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return domain.ChatThread{}, fmt.Errorf("postgres: scan message: %w", err)
		}
		thread.Messages = append(thread.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return domain.ChatThread{}, fmt.Errorf("postgres: scan messages %s: %w", id, err)
	}

	return thread, nil
}

// List returns thread summaries (no messages), most recently updated first.
func (s *ThreadStore) List(ctx context.Context, opts domain.ListOpts) ([]domain.ChatThread, error) {
	query := `
		SELECT id, title, created_at, updated_at
		FROM chat_threads
		ORDER BY updated_at DESC`
	args := []any{}
	argIdx := 1

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list threads: %w", err)
	}
	defer rows.Close()

	var threads []domain.ChatThread
	for rows.Next() {
		var t domain.ChatThread
		if err := rows.Scan(&t.ID, &t.Title, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan thread: %w", err)
		}
		threads = append(threads, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: scan threads: %w", err)
	}
	return threads, nil
}

// AppendMessage adds a message to an existing thread and bumps the thread's
// updated_at. It returns domain.ErrNotFound when the thread does not exist.
func (s *ThreadStore) AppendMessage(ctx context.Context, threadID string, msg domain.ChatMessage) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin append message: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`UPDATE chat_threads SET updated_at = $1 WHERE id = $2`,
		msg.CreatedAt, threadID,
	)
	if err != nil {
		return fmt.Errorf("postgres: touch thread %s: %w", threadID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	if err := insertMessage(ctx, tx, threadID, msg); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit append message %s: %w", threadID, err)
	}
	return nil
}

// Delete removes a thread and its messages. It returns domain.ErrNotFound
// when the thread does not exist.
func (s *ThreadStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM chat_threads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete thread %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func insertMessage(ctx context.Context, tx pgx.Tx, threadID string, msg domain.ChatMessage) error {
	var provider, identifier *string
	if msg.MarketContext != nil {
		p := string(msg.MarketContext.Provider)
		provider = &p
		identifier = &msg.MarketContext.Identifier
	}

	const query = `
		INSERT INTO chat_messages (id, thread_id, role, content, market_provider, market_identifier, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if _, err := tx.Exec(ctx, query,
		msg.ID, threadID, string(msg.Role), msg.Content, provider, identifier, msg.CreatedAt,
	); err != nil {
		return fmt.Errorf("postgres: insert message %s: %w", msg.ID, err)
	}
	return nil
}

func scanMessage(
	scanner interface{ Scan(dest ...any) error },
) (domain.ChatMessage, error) {
	var msg domain.ChatMessage
	var role string
	var provider, identifier *string

	err := scanner.Scan(
		&msg.ID, &role, &msg.Content, &provider, &identifier, &msg.CreatedAt,
	)
	if err != nil {
		return domain.ChatMessage{}, err
	}

	msg.Role = domain.ChatRole(role)
	if provider != nil && identifier != nil {
		msg.MarketContext = &domain.MarketRef{
			Provider:   domain.Provider(*provider),
			Identifier: *identifier,
		}
	}
	return msg, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// Compile-time interface check.
var _ domain.ThreadStore = (*ThreadStore)(nil)
