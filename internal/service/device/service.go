package device

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain"
	sessionrepo "storefront/internal/repository/session"
)

var ErrInvalidToken = errors.New("invalid device token")

// Session identifies an anonymous device. DeviceID doubles as the merge token
// when the device cart is folded into an account at login.
type Session struct {
	DeviceID  string    `json:"deviceId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Service struct {
	store sessionrepo.Repository
	ttl   time.Duration
	now   func() time.Time
}

type Option func(*Service)

// WithStore persists sessions in repo instead of process memory.
func WithStore(repo sessionrepo.Repository) Option {
	return func(s *Service) {
		if repo != nil {
			s.store = repo
		}
	}
}

func New(ttl time.Duration, opts ...Option) *Service {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	s := &Service{store: newMemoryStore(), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Issue(ctx context.Context) (Session, error) {
	token, err := randomToken()
	if err != nil {
		return Session{}, err
	}
	rec := sessionrepo.Session{
		Token:     token,
		DeviceID:  uuid.NewString(),
		ExpiresAt: s.now().Add(s.ttl).UTC(),
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return Session{}, domain.Unavailable("issue device session", err)
	}
	return Session{DeviceID: rec.DeviceID, Token: rec.Token, ExpiresAt: rec.ExpiresAt}, nil
}

// Lookup returns the device id for a live token. Expired tokens are removed.
func (s *Service) Lookup(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	rec, err := s.store.Get(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", domain.Unavailable("lookup device session", err)
	}
	if s.now().After(rec.ExpiresAt) {
		_ = s.store.Delete(ctx, token)
		return "", ErrInvalidToken
	}
	return rec.DeviceID, nil
}

// Rotate retires token and issues a fresh session, so the next login from
// this device merges under a new token.
func (s *Service) Rotate(ctx context.Context, token string) (Session, error) {
	if err := s.store.Delete(ctx, token); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return Session{}, domain.Unavailable("rotate device session", err)
	}
	return s.Issue(ctx)
}
