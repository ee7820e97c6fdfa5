package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/comm-hub/chat-service/internal/domain"
	"github.com/comm-hub/chat-service/internal/postgres"
	"github.com/comm-hub/chat-service/internal/service"

	"github.com/go-chi/chi/v5"
)

type AttachmentStore interface {
	Save(name string, data []byte) (string, error)
}

type Handler struct {
	convSvc     *service.ConversationService
	chatSvc     *service.ChatService
	attachments AttachmentStore

	maxUploadBytes int64
}

func NewHandler(conv *service.ConversationService, chat *service.ChatService, attachments AttachmentStore) *Handler {
	return &Handler{
		convSvc:        conv,
		chatSvc:        chat,
		attachments:    attachments,
		maxUploadBytes: 20 << 20,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GET /chat/{user1}/{user2} — ключ и участники диалога двух пользователей;
// комната создаётся лениво при первом обращении.
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	username1 := chi.URLParam(r, "user1")
	username2 := chi.URLParam(r, "user2")

	room, u1, u2, err := h.convSvc.ResolveUsers(r.Context(), username1, username2)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "user not found"})
		case errors.Is(err, domain.ErrInvalidIdentifier):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid participants"})
		default:
			slog.Error("handler.GetConversation:", slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusOK, ConversationResponse{
		RoomID:  room.ID,
		RoomKey: room.Key(),
		Participants: []ParticipantItem{
			{ID: strconv.FormatInt(u1.ID, 10), Username: u1.Username, DisplayName: u1.DisplayName},
			{ID: strconv.FormatInt(u2.ID, 10), Username: u2.Username, DisplayName: u2.DisplayName},
		},
	})
}

// GET /rooms/{key}/messages?after=&limit= — история по возрастанию времени.
func (h *Handler) GetChatHistory(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	after := r.URL.Query().Get("after")
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	items, next, err := h.chatSvc.History(r.Context(), key, after, limit)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidIdentifier):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid room key"})
		case errors.Is(err, postgres.ErrInvalidCursor):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_cursor"})
		default:
			slog.Error("handler.GetChatHistory:", slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}

	resp := ChatHistoryResponse{Items: make([]ChatMessageItem, 0, len(items)), NextCursor: next}
	for _, m := range items {
		resp.Items = append(resp.Items, ChatMessageItem{
			ID:         m.ID,
			Sender:     m.SenderName,
			Message:    m.Content,
			Attachment: m.Attachment,
			CreatedAt:  m.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /attachments — multipart-загрузка вложения (поле "file").
// Ядро чата дальше видит только вернувшийся URL.
func (h *Handler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "no file uploaded"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "failed to read file"})
		return
	}

	url, err := h.attachments.Save(header.Filename, data)
	if err != nil {
		slog.Error("handler.UploadAttachment:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "upload failed"})
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{FileURL: url})
}
