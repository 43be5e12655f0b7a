package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog CSV exports and inserts/updates products by key.
type CSVImporter struct {
	reader          *csv.Reader
	productRepo     ProductWriter
	defaultCurrency string
}

func NewCSVImporter(r io.Reader, repo ProductWriter, defaultCurrency string) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:          csvr,
		productRepo:     repo,
		defaultCurrency: defaultCurrency,
	}
}

type csvRow struct {
	line     int
	ID       string
	Key      string
	Name     string
	Desc     string
	Brand    string
	SKU      string
	Cents    int64
	Currency string
	Stock    int
}

// Run parses CSV rows and upserts one product per keyed row. Rows without a
// key are skipped.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["key"]; !ok {
		return 0, errors.New("missing key column")
	}

	imported := 0
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		row, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		if row == nil {
			continue
		}
		row.line = line
		if err := i.save(ctx, row); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	if row.Currency == "" {
		row.Currency = i.defaultCurrency
	}
	if row.SKU == "" {
		row.SKU = row.Key
	}
	if row.Name == "" || row.Cents <= 0 || row.Currency == "" {
		return fmt.Errorf("line %d: invalid product row (missing required fields) for key %q", row.line, row.Key)
	}
	if row.ID != "" {
		if _, err := uuid.Parse(row.ID); err != nil {
			return fmt.Errorf("line %d: invalid id for key %q: %s", row.line, row.Key, row.ID)
		}
	}

	p := domain.Product{
		ID:          row.ID,
		Key:         row.Key,
		SKU:         row.SKU,
		Name:        row.Name,
		Brand:       row.Brand,
		Description: row.Desc,
		PriceCents:  row.Cents,
		Currency:    row.Currency,
		Stock:       row.Stock,
	}

	_, err := i.productRepo.Upsert(ctx, p)
	if err != nil {
		return fmt.Errorf("upsert product %q: %w", row.Key, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (*csvRow, error) {
	key := pick(record, index, "key")
	if key == "" {
		return nil, nil
	}

	row := &csvRow{
		ID:       pick(record, index, "id"),
		Key:      key,
		Name:     pick(record, index, "name.en"),
		Desc:     pick(record, index, "description.en"),
		Brand:    pick(record, index, "brand"),
		SKU:      pick(record, index, "variants.sku"),
		Currency: pick(record, index, "variants.prices.value.currencyCode"),
	}

	if s := pick(record, index, "variants.prices.value.centAmount"); s != "" {
		cents, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("key %q: invalid centAmount %q", key, s)
		}
		row.Cents = cents
	} else if s := pick(record, index, "price"); s != "" {
		cents, err := ParsePriceCents(s)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		row.Cents = cents
	}

	if s := pick(record, index, "stock"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("key %q: invalid stock %q", key, s)
		}
		row.Stock = n
	}
	return row, nil
}

// ParsePriceCents converts a decimal amount such as "1499.5" to minor units.
func ParsePriceCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty price")
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if hasFrac && (len(frac) == 0 || len(frac) > 2) {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units < 0 {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	var cents int64
	if hasFrac {
		if len(frac) == 1 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil || cents < 0 {
			return 0, fmt.Errorf("invalid price %q", s)
		}
	}
	return units*100 + cents, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
