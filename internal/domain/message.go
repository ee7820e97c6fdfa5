package domain

import "time"

// ChatMessage — сообщение в комнате. Content и Attachment по отдельности
// опциональны, но оба пустыми быть не могут.
type ChatMessage struct {
	ID         string    `db:"id"`
	RoomID     string    `db:"room_id"`
	SenderID   int64     `db:"sender_id"`
	SenderName string    `db:"sender_name"` // заполняется join-ом при чтении
	Content    string    `db:"content"`
	Attachment *string   `db:"attachment"`
	CreatedAt  time.Time `db:"created_at"`
}
