package http

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
}

type ParticipantItem struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name"`
}

type ConversationResponse struct {
	RoomID       string            `json:"room_id"`
	RoomKey      string            `json:"room_key"`
	Participants []ParticipantItem `json:"participants"`
}

type ChatMessageItem struct {
	ID         string    `json:"id"`
	Sender     string    `json:"sender"`
	Message    string    `json:"message"`
	Attachment *string   `json:"attachment"`
	CreatedAt  time.Time `json:"created_at"`
}

type ChatHistoryResponse struct {
	Items      []ChatMessageItem `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

type UploadResponse struct {
	FileURL string `json:"file_url"`
}
