// Package admincli is the operator command line for order fulfilment and stock.
package admincli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"storefront/internal/domain"
	orderrepo "storefront/internal/repository/order"
	ordersvc "storefront/internal/service/order"
)

// OrderService is the slice of the order service the CLI drives.
type OrderService interface {
	Get(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, f orderrepo.ListFilter) (*ordersvc.ListResult, error)
	UpdateStatus(ctx context.Context, id, status string, adminNotes *string) (*domain.Order, error)
}

// StockService reads and replenishes product stock.
type StockService interface {
	Stock(ctx context.Context, id string) (int, error)
	Restock(ctx context.Context, id string, qty int) (int, error)
}

// Deps are resolved lazily so --help works without a database.
type Deps struct {
	Orders func() (OrderService, error)
	Stock  func() (StockService, error)
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format string // "json" | "text"
}

// NewRootCommand creates the storefront-admin root command.
func NewRootCommand(deps Deps) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "storefront-admin",
		Short:         "Operate storefront orders and stock",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Format != "text" && opts.Format != "json" {
				return fmt.Errorf("invalid format %q: must be one of [text json]", opts.Format)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newOrdersCommand(opts, deps))
	cmd.AddCommand(newStockCommand(opts, deps))
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
