package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
)

func newHistoryCmd() *cobra.Command {
	var datacenter string

	cmd := &cobra.Command{
		Use:   "history <msf>",
		Short: "Show the ledger history of one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var detail *models.ProductDetail
			var current int
			err = a.scoped(ctx, func(ctx context.Context) error {
				dc := datacenterFlag(cmd, datacenter)
				if detail, err = a.inventory.GetProduct(ctx, args[0], dc); err != nil {
					return fmt.Errorf("product %s: %w", args[0], err)
				}
				current, err = a.inventory.CurrentQuantity(ctx, args[0], dc)
				return err
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s\n", detail.Product.MSF, detail.Product.ItemName)
			fmt.Fprintf(out, "current quantity: %d\n\n", current)

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tDATACENTER\tQUANTITY\tSOURCE")
			for _, entry := range detail.History {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
					entry.ImportTimestamp.Local().Format(time.DateTime), entry.Datacenter, entry.Quantity, entry.SourceFile)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&datacenter, "datacenter", "d", "", "Restrict to one datacenter (empty selects the unscoped datacenter)")
	return cmd
}
