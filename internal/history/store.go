package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pchen41/gauntlet-reel-app/internal/log"
)

// Store persists per-user chat transcripts in PostgreSQL.
//
// Store is safe for concurrent use by multiple goroutines. Concurrent
// appends for the same user are individually atomic but not mutually
// ordered beyond the store clock.
type Store struct {
	pool   *pgxpool.Pool
	logger log.Logger
}

// NewStore creates a history Store backed by the given pool.
func NewStore(pool *pgxpool.Pool, logger log.Logger) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{pool: pool, logger: logger}, nil
}

// Messages returns up to limit of the user's most recent messages in
// ascending timestamp order, ties resolved user before model. limit <= 0
// means no cap.
func (s *Store) Messages(ctx context.Context, userUID string, limit int) ([]*Message, error) {
	query := `SELECT id, user_uid, role, content, created_at FROM chat_messages
		WHERE user_uid = $1 ORDER BY created_at DESC, id DESC`
	args := []any{userUID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		m := &Message{}
		var role string
		var contentJSON []byte
		if err := rows.Scan(&m.ID, &m.UserUID, &role, &contentJSON, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.Role = ai.Role(role)
		if err := json.Unmarshal(contentJSON, &m.Content); err != nil {
			return nil, fmt.Errorf("decoding content for message %d: %w", m.ID, err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	// The query selected the newest window; present it oldest first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	SortMessages(messages)
	return messages, nil
}

// Append writes the given messages for the user in one transaction.
// Either every message becomes visible or none does; timestamps are
// assigned by the database clock at commit time.
func (s *Store) Append(ctx context.Context, userUID string, messages []*Message) error {
	if len(messages) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil {
			s.logger.Debug("transaction rollback (may be already committed)", "error", err)
		}
	}()

	for i, msg := range messages {
		for j, part := range msg.Content {
			if part == nil {
				return fmt.Errorf("message %d has nil content at index %d", i, j)
			}
		}
		contentJSON, err := json.Marshal(msg.Content)
		if err != nil {
			return fmt.Errorf("failed to marshal message content at index %d: %w", i, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO chat_messages (user_uid, role, content) VALUES ($1, $2, $3)`,
			userUID, string(msg.Role), contentJSON); err != nil {
			return fmt.Errorf("failed to insert message %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug("appended messages", "user_uid", userUID, "count", len(messages))
	return nil
}
