package service

import (
	"context"
	"fmt"

	"github.com/comm-hub/chat-service/internal/domain"
)

// Репозитории объявлены интерфейсами, чтобы транспортные тесты могли
// подставлять in-memory реализации.
type RoomRepo interface {
	GetOrCreate(ctx context.Context, user1, user2 int64) (*domain.Room, error)
}

type UserRepo interface {
	Get(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type ConversationService struct {
	rooms RoomRepo
	users UserRepo
}

func NewConversationService(rooms RoomRepo, users UserRepo) *ConversationService {
	return &ConversationService{rooms: rooms, users: users}
}

// ResolveUsers находит (или создаёт) диалог двух пользователей по их username.
func (s *ConversationService) ResolveUsers(ctx context.Context, username1, username2 string) (*domain.Room, *domain.User, *domain.User, error) {
	u1, err := s.users.GetByUsername(ctx, username1)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolve %q: %w", username1, err)
	}
	u2, err := s.users.GetByUsername(ctx, username2)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolve %q: %w", username2, err)
	}
	if u1.ID == u2.ID {
		return nil, nil, nil, fmt.Errorf("%w: room needs two distinct participants", domain.ErrInvalidIdentifier)
	}

	room, err := s.rooms.GetOrCreate(ctx, u1.ID, u2.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	return room, u1, u2, nil
}
