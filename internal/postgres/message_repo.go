package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/comm-hub/chat-service/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgFKViolation = "23503"

type MessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Save пишет сообщение; created_at назначает сервер БД.
func (r *MessageRepository) Save(ctx context.Context, roomID string, senderID int64, content string, attachment *string) (*domain.ChatMessage, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO chat_messages (room_id, sender_id, content, attachment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, room_id, sender_id, content, attachment, created_at
	`, roomID, senderID, content, attachment)

	var m domain.ChatMessage
	if err := row.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.Content, &m.Attachment, &m.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgFKViolation {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	return &m, nil
}

// History возвращает историю комнаты по возрастанию (created_at, id)
// с курсорной пагинацией; имя отправителя дочитывается join-ом.
func (r *MessageRepository) History(ctx context.Context, roomID, after string, limit int) ([]domain.ChatMessage, string, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	cur, err := DecodeCursor(after)
	if err != nil {
		return nil, "", fmt.Errorf("decode cursor: %w", err)
	}

	const q = `
		SELECT m.id, m.room_id, m.sender_id,
		       COALESCE(NULLIF(u.display_name, ''), u.username) AS sender_name,
		       m.content, m.attachment, m.created_at
		FROM chat_messages AS m
		JOIN users AS u ON u.id = m.sender_id
		WHERE m.room_id = $1
		  AND (
		    $2::timestamptz IS NULL
		    OR m.created_at > $2
		    OR (m.created_at = $2 AND m.id > $3)
		  )
		ORDER BY m.created_at ASC, m.id ASC
		LIMIT $4
	`

	var createdAt any
	var id any
	if cur != nil {
		createdAt = cur.CreatedAt
		id = cur.ID
	}

	rows, err := r.db.Query(ctx, q, roomID, createdAt, id, limit)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var out []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.SenderName, &m.Content, &m.Attachment, &m.CreatedAt); err != nil {
			return nil, "", err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	var next string
	if len(out) == limit {
		last := out[len(out)-1]
		if c, e := EncodeCursor(Cursor{CreatedAt: last.CreatedAt, ID: last.ID}); e == nil {
			next = c
		}
	}
	return out, next, nil
}
