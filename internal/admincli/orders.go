package admincli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"storefront/internal/domain"
	"storefront/internal/notify"
	orderrepo "storefront/internal/repository/order"
)

func newOrdersCommand(opts *RootOptions, deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List, inspect and advance orders",
	}
	cmd.AddCommand(newOrdersListCommand(opts, deps))
	cmd.AddCommand(newOrdersGetCommand(opts, deps))
	cmd.AddCommand(newOrdersSetStatusCommand(opts, deps))
	return cmd
}

func newOrdersListCommand(opts *RootOptions, deps Deps) *cobra.Command {
	var (
		status string
		page   int
		limit  int
		asc    bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := orderrepo.ListFilter{Page: page, Limit: limit, SortAsc: asc}
			if status != "" {
				st, err := domain.ParseOrderStatus(status)
				if err != nil {
					return err
				}
				f.Status = st
			}
			svc, err := deps.Orders()
			if err != nil {
				return err
			}
			res, err := svc.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTATUS\tCUSTOMER\tITEMS\tTOTAL\tPLACED")
			for _, o := range res.Orders {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
					o.ID, o.Status, o.CustomerInfo.Email, o.TotalItems,
					notify.FormatMoney(o.TotalAmountCents), o.OrderDate.Format("2006-01-02"))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "page %d/%d, %d orders\n", res.Page, res.Pages, res.Total)
			return err
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 10, "orders per page (max 100)")
	cmd.Flags().BoolVar(&asc, "asc", false, "oldest first")
	return cmd
}

func newOrdersGetCommand(opts *RootOptions, deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "get <order-id>",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := deps.Orders()
			if err != nil {
				return err
			}
			o, err := svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printOrder(cmd.OutOrStdout(), opts.Format, o)
		},
	}
}

func newOrdersSetStatusCommand(opts *RootOptions, deps Deps) *cobra.Command {
	var notes string
	cmd := &cobra.Command{
		Use:   "set-status <order-id> <status>",
		Short: "Advance an order; cancelling restocks its items",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := deps.Orders()
			if err != nil {
				return err
			}
			var adminNotes *string
			if cmd.Flags().Changed("notes") {
				adminNotes = &notes
			}
			o, err := svc.UpdateStatus(cmd.Context(), args[0], args[1], adminNotes)
			if err != nil {
				return err
			}
			return printOrder(cmd.OutOrStdout(), opts.Format, o)
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "admin notes to store on the order")
	return cmd
}

func printOrder(w io.Writer, format string, o *domain.Order) error {
	if format == "json" {
		return writeJSON(w, o)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Order\t%s\n", o.ID)
	fmt.Fprintf(tw, "Status\t%s\n", o.Status)
	fmt.Fprintf(tw, "Customer\t%s <%s>\n", o.CustomerInfo.Name, o.CustomerInfo.Email)
	fmt.Fprintf(tw, "Ship to\t%s\n", o.ShippingAddress.FullAddress)
	fmt.Fprintf(tw, "Placed\t%s\n", o.OrderDate.Format("2006-01-02 15:04"))
	if o.DeliveryDate != nil {
		fmt.Fprintf(tw, "Delivered\t%s\n", o.DeliveryDate.Format("2006-01-02 15:04"))
	}
	if o.AdminNotes != "" {
		fmt.Fprintf(tw, "Notes\t%s\n", o.AdminNotes)
	}
	for _, it := range o.Items {
		fmt.Fprintf(tw, "  %s (%s)\tx%d\t%s\n", it.ProductName, it.ProductBrand, it.Quantity, notify.FormatMoney(it.SubtotalCents))
	}
	fmt.Fprintf(tw, "Total\t%s\n", notify.FormatMoney(o.TotalAmountCents))
	return tw.Flush()
}
