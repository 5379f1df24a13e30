package repository

import (
	"context"

	"punto_kennedy_crm/internal/entities"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ChatRepository struct {
	db *pgxpool.Pool
}

func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

// RecentByPhone returns up to limit messages whose session id contains the
// given digits, newest first. The substring match is deliberate: session ids
// are free text and only loosely correlated with phone numbers.
func (r *ChatRepository) RecentByPhone(ctx context.Context, phoneDigits string, limit int) ([]entities.ChatMessage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, session_id, message, created_at
		FROM chat_messages
		WHERE session_id LIKE '%' || $1 || '%'
		ORDER BY id DESC
		LIMIT $2
	`, phoneDigits, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []entities.ChatMessage{}
	for rows.Next() {
		var m entities.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Payload, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *ChatRepository) Append(ctx context.Context, sessionID, payload string) error {
	_, err := r.db.Exec(ctx,
		"INSERT INTO chat_messages (session_id, message) VALUES ($1, $2)",
		sessionID, payload)
	return err
}

func (r *ChatRepository) ListSessions(ctx context.Context) ([]entities.ChatSession, error) {
	rows, err := r.db.Query(ctx, `
		SELECT session_id, COUNT(*), MAX(created_at)
		FROM chat_messages
		GROUP BY session_id
		ORDER BY MAX(created_at) DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []entities.ChatSession{}
	for rows.Next() {
		var s entities.ChatSession
		if err := rows.Scan(&s.SessionID, &s.MessageCount, &s.LastMessage); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
