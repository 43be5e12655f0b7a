package admincli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newStockCommand(opts *RootOptions, deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Inspect and replenish product stock",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get <product-id>",
		Short: "Show available units",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := deps.Stock()
			if err != nil {
				return err
			}
			n, err := svc.Stock(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printStock(cmd, opts, args[0], n)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add <product-id> <quantity>",
		Short: "Add units to a product",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil || qty <= 0 {
				return fmt.Errorf("quantity must be a positive integer, got %q", args[1])
			}
			svc, err := deps.Stock()
			if err != nil {
				return err
			}
			n, err := svc.Restock(cmd.Context(), args[0], qty)
			if err != nil {
				return err
			}
			return printStock(cmd, opts, args[0], n)
		},
	})
	return cmd
}

func printStock(cmd *cobra.Command, opts *RootOptions, id string, n int) error {
	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"productId": id, "stock": n})
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", id, n)
	return err
}
