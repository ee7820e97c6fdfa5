package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/comm-hub/chat-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoomRepository struct {
	db *pgxpool.Pool
}

func NewRoomRepository(db *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{db: db}
}

// GetOrCreate возвращает комнату пары пользователей, создавая её при
// первом обращении. Гонка двух первых подключений разрешается уникальным
// индексом (user1_id, user2_id): проигравший INSERT не возвращает строку,
// и комната дочитывается повторным SELECT-ом.
func (r *RoomRepository) GetOrCreate(ctx context.Context, user1, user2 int64) (*domain.Room, error) {
	if user1 > user2 {
		user1, user2 = user2, user1
	}

	rm := domain.Room{User1ID: user1, User2ID: user2}
	err := r.db.QueryRow(ctx, `
		INSERT INTO chat_rooms (user1_id, user2_id)
		VALUES ($1, $2)
		ON CONFLICT (user1_id, user2_id) DO NOTHING
		RETURNING id, created_at
	`, user1, user2).Scan(&rm.ID, &rm.CreatedAt)
	if err == nil {
		return &rm, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("insert room: %w", err)
	}

	err = r.db.QueryRow(ctx,
		`SELECT id, created_at FROM chat_rooms WHERE user1_id=$1 AND user2_id=$2`,
		user1, user2).Scan(&rm.ID, &rm.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, fmt.Errorf("select room: %w", err)
	}
	return &rm, nil
}
