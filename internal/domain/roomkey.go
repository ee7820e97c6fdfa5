package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// MakeRoomKey строит канонический ключ комнаты: "min_max" по id участников.
// Коммутативна: MakeRoomKey(a,b) == MakeRoomKey(b,a).
func MakeRoomKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return strconv.FormatInt(a, 10) + "_" + strconv.FormatInt(b, 10)
}

// ParseRoomKey разбирает составное имя комнаты ("3_7") на пару id.
// Порядок в строке не важен — возвращает (min, max).
func ParseRoomKey(s string) (int64, int64, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
	}
	a, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || a <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidIdentifier, parts[0])
	}
	b, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || b <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidIdentifier, parts[1])
	}
	if a == b {
		return 0, 0, fmt.Errorf("%w: room needs two distinct participants", ErrInvalidIdentifier)
	}
	if a > b {
		a, b = b, a
	}
	return a, b, nil
}
