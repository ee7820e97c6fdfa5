package postgres

import (
	"errors"
	"testing"
	"time"
)

func TestDecodeCursor_EmptyIsNil(t *testing.T) {
	c, err := DecodeCursor("")
	if err != nil || c != nil {
		t.Fatalf("empty cursor must decode to nil, got %v, %v", c, err)
	}
}

func TestDecodeCursor_Garbage(t *testing.T) {
	if _, err := DecodeCursor("%%%not-base64%%%"); !errors.Is(err, ErrInvalidCursor) {
		t.Fatalf("expected ErrInvalidCursor, got %v", err)
	}
}

func TestCursor_RoundTrip(t *testing.T) {
	in := Cursor{CreatedAt: time.Unix(1700000000, 0).UTC(), ID: "m-17"}
	s, err := EncodeCursor(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeCursor(s)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.CreatedAt.Equal(in.CreatedAt) || out.ID != in.ID {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}
