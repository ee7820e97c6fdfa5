package domain

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidIdentifier = errors.New("invalid participant identifier")
	ErrInvalidMessage    = errors.New("message has no content and no attachment")
)
