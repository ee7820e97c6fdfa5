package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/comm-hub/chat-service/internal/domain"
)

type MessageRepo interface {
	Save(ctx context.Context, roomID string, senderID int64, content string, attachment *string) (*domain.ChatMessage, error)
	History(ctx context.Context, roomID, after string, limit int) ([]domain.ChatMessage, string, error)
}

type ChatService struct {
	rooms    RoomRepo
	users    UserRepo
	messages MessageRepo

	maxTextLen int
}

func NewChatService(rooms RoomRepo, users UserRepo, messages MessageRepo) *ChatService {
	return &ChatService{
		rooms:      rooms,
		users:      users,
		messages:   messages,
		maxTextLen: 4000,
	}
}

func (s *ChatService) SetMaxTextLen(n int) {
	if n > 0 {
		s.maxTextLen = n
	}
}

// Post сохраняет входящее сообщение комнаты roomKey. Пустой текст без
// вложения отклоняется до записи; вернувшееся сообщение уже несёт имя
// отправителя и готово к рассылке.
func (s *ChatService) Post(ctx context.Context, roomKey string, senderID int64, text string, attachment *string) (*domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if attachment != nil && *attachment == "" {
		attachment = nil
	}
	if text == "" && attachment == nil {
		return nil, domain.ErrInvalidMessage
	}
	if len(text) > s.maxTextLen {
		return nil, errors.New("message too long")
	}

	a, b, err := domain.ParseRoomKey(roomKey)
	if err != nil {
		return nil, err
	}
	room, err := s.rooms.GetOrCreate(ctx, a, b)
	if err != nil {
		return nil, fmt.Errorf("rooms.GetOrCreate: %w", err)
	}
	sender, err := s.users.Get(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("users.Get: %w", err)
	}

	msg, err := s.messages.Save(ctx, room.ID, senderID, text, attachment)
	if err != nil {
		return nil, fmt.Errorf("messages.Save: %w", err)
	}
	msg.SenderName = sender.Name()
	return msg, nil
}

// History — хронология комнаты (по возрастанию created_at) с курсором.
func (s *ChatService) History(ctx context.Context, roomKey, after string, limit int) ([]domain.ChatMessage, string, error) {
	a, b, err := domain.ParseRoomKey(roomKey)
	if err != nil {
		return nil, "", err
	}
	room, err := s.rooms.GetOrCreate(ctx, a, b)
	if err != nil {
		return nil, "", err
	}
	return s.messages.History(ctx, room.ID, after, limit)
}
