package domain

import "time"

// Room — диалог ровно двух участников. User1ID < User2ID всегда,
// так что на пару пользователей существует не больше одной комнаты.
type Room struct {
	ID        string    `db:"id"`
	User1ID   int64     `db:"user1_id"`
	User2ID   int64     `db:"user2_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *Room) Key() string {
	return MakeRoomKey(r.User1ID, r.User2ID)
}
