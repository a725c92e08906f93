package notification

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

const (
	createOutboxTable = `
		CREATE TABLE IF NOT EXISTS notification_outbox (
			id         TEXT PRIMARY KEY,
			recipient  TEXT NOT NULL,
			subject    TEXT NOT NULL,
			body       TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			sent_at    TIMESTAMPTZ
		)
	`
	insertOutboxQuery = `
		INSERT INTO notification_outbox (id, recipient, subject, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`
	fetchPendingQuery = `
		SELECT id, recipient, subject, body, created_at
		FROM notification_outbox
		WHERE sent_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`
	markSentQuery = `UPDATE notification_outbox SET sent_at = NOW() WHERE id = ANY($1)`
)

// OutboxStore persists messages in Postgres until the poller has published
// them. It implements Sender.
type OutboxStore struct {
	db *sql.DB
}

func NewOutboxStore(db *sql.DB) *OutboxStore {
	return &OutboxStore{db: db}
}

func (s *OutboxStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createOutboxTable); err != nil {
		return fmt.Errorf("failed to create outbox table: %w", err)
	}
	return nil
}

// Send stores msg. Re-sending the same id is a no-op.
func (s *OutboxStore) Send(ctx context.Context, msg Message) error {
	_, err := s.db.ExecContext(ctx, insertOutboxQuery, msg.ID, msg.Recipient, msg.Subject, msg.Body, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert outbox message: %w", err)
	}
	return nil
}

func (s *OutboxStore) FetchPending(ctx context.Context, limit int) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, fetchPendingQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch outbox messages: %w", err)
	}
	defer rows.Close()

	out := make([]Message, 0)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Recipient, &m.Subject, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *OutboxStore) MarkSent(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, markSentQuery, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to mark outbox messages: %w", err)
	}
	return nil
}
