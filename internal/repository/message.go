package repository

import (
	"context"
	"fmt"

	"dungeon-master/internal/model"
)

// MessageRepository handles chat message persistence.
// Metadata is stored as JSONB.
type MessageRepository struct {
	db DBTX
}

// NewMessageRepository creates a new MessageRepository instance.
func NewMessageRepository(db DBTX) *MessageRepository {
	return &MessageRepository{db: db}
}

func scanMessage(row scanner) (*model.Message, error) {
	var m model.Message
	err := row.Scan(&m.ID, &m.SessionID, &m.Sender, &m.Content, &m.MessageType, &m.Metadata, &m.Timestamp)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a message.
func (r *MessageRepository) Create(ctx context.Context, m *model.Message) (*model.Message, error) {
	const query = `
		INSERT INTO messages (session_id, sender, content, message_type, metadata, "timestamp")
		VALUES ($1, $2, $3, $4, $5, clock_timestamp())
		RETURNING id, session_id, sender, content, message_type, metadata, "timestamp"
	`

	created, err := scanMessage(r.db.QueryRow(ctx, query,
		m.SessionID, m.Sender, m.Content, m.MessageType, m.Metadata,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return created, nil
}

// ListBySession returns the latest limit messages of a session, oldest first.
func (r *MessageRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]*model.Message, error) {
	const query = `
		SELECT id, session_id, sender, content, message_type, metadata, "timestamp"
		FROM (
			SELECT id, session_id, sender, content, message_type, metadata, "timestamp"
			FROM messages
			WHERE session_id = $1
			ORDER BY "timestamp" DESC
			LIMIT $2
		) recent
		ORDER BY "timestamp" ASC
	`

	rows, err := r.db.Query(ctx, query, sessionID, limitOrNull(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*model.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}
