package seed

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/importer"
	customerrepo "storefront/internal/repository/customer"
	productrepo "storefront/internal/repository/product"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

const defaultCurrency = "INR"

type customerSeed struct {
	Email    string `yaml:"email"`
	FullName string `yaml:"fullName"`
	Phone    string `yaml:"phone"`
}

type productSeed struct {
	Key         string `yaml:"key"`
	SKU         string `yaml:"sku"`
	Name        string `yaml:"name"`
	Brand       string `yaml:"brand"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Currency    string `yaml:"currency"`
	Stock       int    `yaml:"stock"`
}

// Fixtures is the seed data set.
type Fixtures struct {
	Customers []customerSeed `yaml:"customers"`
	Products  []productSeed  `yaml:"products"`
}

// Parse decodes a fixtures document.
func Parse(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return &f, nil
}

// Default returns the embedded fixtures.
func Default() (*Fixtures, error) {
	return Parse(defaultFixtures)
}

// ProductList converts the product seeds to domain products.
func (f *Fixtures) ProductList() ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(f.Products))
	for _, p := range f.Products {
		if strings.TrimSpace(p.Key) == "" || strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("product seed missing key or name: %+v", p)
		}
		cents, err := importer.ParsePriceCents(p.Price)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", p.Key, err)
		}
		if p.Stock < 0 {
			return nil, fmt.Errorf("product %s: negative stock", p.Key)
		}
		currency := p.Currency
		if currency == "" {
			currency = defaultCurrency
		}
		sku := p.SKU
		if sku == "" {
			sku = p.Key
		}
		out = append(out, domain.Product{
			Key:         p.Key,
			SKU:         sku,
			Name:        p.Name,
			Brand:       p.Brand,
			Description: p.Description,
			PriceCents:  cents,
			Currency:    currency,
			Stock:       p.Stock,
		})
	}
	return out, nil
}

// Apply upserts the fixtures. It is idempotent: customers are keyed by email
// and products by key.
func Apply(ctx context.Context, f *Fixtures, customers customerrepo.Repository, products productrepo.Repository, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	for _, c := range f.Customers {
		saved, err := customers.Upsert(ctx, domain.Customer{Email: c.Email, FullName: c.FullName, Phone: c.Phone})
		if err != nil {
			return fmt.Errorf("upsert customer %s: %w", c.Email, err)
		}
		logger.Printf("customer %s id=%s", saved.Email, saved.ID)
	}

	list, err := f.ProductList()
	if err != nil {
		return err
	}
	for _, p := range list {
		saved, err := products.Upsert(ctx, p)
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Key, err)
		}
		logger.Printf("product %s id=%s stock=%d", saved.Key, saved.ID, saved.Stock)
	}
	return nil
}
