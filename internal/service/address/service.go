package address

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"storefront/internal/domain"
	addressrepo "storefront/internal/repository/address"
)

// Service manages each customer's own address book. Every call is scoped to
// customerID; ids from another book are reported as not found.
type Service struct {
	repo   addressrepo.Repository
	logger *log.Logger
	now    func() time.Time
}

func New(repo addressrepo.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

func (s *Service) List(ctx context.Context, customerID string) ([]domain.Address, error) {
	if err := requireCustomer(customerID); err != nil {
		return nil, err
	}
	list, err := s.repo.List(ctx, customerID)
	if err != nil {
		return nil, domain.Unavailable("list addresses", err)
	}
	if list == nil {
		list = []domain.Address{}
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, customerID, id string) (*domain.Address, error) {
	list, err := s.List(ctx, customerID)
	if err != nil {
		return nil, err
	}
	book := domain.AddressBook{Addresses: list}
	a, ok := book.Find(strings.TrimSpace(id))
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (s *Service) Add(ctx context.Context, customerID string, a domain.Address) (*domain.Address, error) {
	if err := requireCustomer(customerID); err != nil {
		return nil, err
	}
	a.ID = uuid.NewString()
	a.CreatedAt = s.now().UTC()

	var added domain.Address
	err := s.repo.Mutate(ctx, customerID, func(book *domain.AddressBook) error {
		var err error
		added, err = book.Add(a)
		return err
	})
	if err != nil {
		return nil, s.wrap("add address", customerID, err)
	}
	return &added, nil
}

func (s *Service) Update(ctx context.Context, customerID, id string, patch domain.AddressPatch) (*domain.Address, error) {
	if err := requireCustomer(customerID); err != nil {
		return nil, err
	}
	var updated domain.Address
	err := s.repo.Mutate(ctx, customerID, func(book *domain.AddressBook) error {
		var err error
		updated, err = book.Update(strings.TrimSpace(id), patch)
		return err
	})
	if err != nil {
		return nil, s.wrap("update address", customerID, err)
	}
	return &updated, nil
}

func (s *Service) Remove(ctx context.Context, customerID, id string) error {
	if err := requireCustomer(customerID); err != nil {
		return err
	}
	err := s.repo.Mutate(ctx, customerID, func(book *domain.AddressBook) error {
		return book.Remove(strings.TrimSpace(id))
	})
	return s.wrap("remove address", customerID, err)
}

func (s *Service) SetDefault(ctx context.Context, customerID, id string) (*domain.Address, error) {
	if err := requireCustomer(customerID); err != nil {
		return nil, err
	}
	var updated domain.Address
	err := s.repo.Mutate(ctx, customerID, func(book *domain.AddressBook) error {
		var err error
		updated, err = book.SetDefault(strings.TrimSpace(id))
		return err
	})
	if err != nil {
		return nil, s.wrap("set default address", customerID, err)
	}
	return &updated, nil
}

func (s *Service) wrap(op, customerID string, err error) error {
	if err == nil {
		return nil
	}
	var derr *domain.Error
	if errors.As(err, &derr) {
		return err
	}
	s.logger.Printf("address service: %s customer_id=%s error=%v", op, customerID, err)
	return domain.Unavailable(op, err)
}

func requireCustomer(customerID string) error {
	if strings.TrimSpace(customerID) == "" {
		return domain.ErrUnauthenticated
	}
	return nil
}
