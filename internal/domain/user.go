package domain

import "time"

type User struct {
	ID          int64     `db:"id"`
	Username    string    `db:"username"`
	DisplayName *string   `db:"display_name"`
	CreatedAt   time.Time `db:"created_at"`
}

// Name — имя для фронта: display_name, если задан, иначе username.
func (u *User) Name() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return u.Username
}
