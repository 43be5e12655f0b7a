package customer

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"storefront/internal/domain"
	custrepo "storefront/internal/repository/customer"
)

// Service keeps the customer profiles that orders snapshot contact details from.
// Credentials live with the upstream identity provider.
type Service struct {
	repo custrepo.Repository
}

func New(repo custrepo.Repository) *Service {
	return &Service{repo: repo}
}

// RegisterInput captures the profile fields accepted on registration.
type RegisterInput struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
}

// Register creates the profile, or refreshes name and phone when the email is known.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.Customer, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, domain.Validation("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.Validation("invalid email %q", in.Email)
	}
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return nil, domain.Validation("fullName is required")
	}
	c, err := s.repo.Upsert(ctx, domain.Customer{Email: email, FullName: name, Phone: strings.TrimSpace(in.Phone)})
	if err != nil {
		return nil, domain.Unavailable("register customer", err)
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Customer, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrUnauthenticated
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.Unavailable("load customer", err)
	}
	return c, nil
}
