package session

import (
	"context"
	"time"
)

// Session binds an opaque bearer token to an anonymous device.
type Session struct {
	Token     string
	DeviceID  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Repository stores device sessions. Get and Delete return domain.ErrNotFound
// for unknown tokens.
type Repository interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}
