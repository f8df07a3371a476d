package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
)

func newInventoryCmd() *cobra.Command {
	var datacenter string

	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Show current stock grouped by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var groups []*models.CategoryGroup
			err = a.scoped(ctx, func(ctx context.Context) error {
				groups, err = a.inventory.GroupedInventory(ctx, datacenterFlag(cmd, datacenter))
				return err
			})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, group := range groups {
				fmt.Fprintf(w, "%s\t\t%d\t\n", group.Category, group.TotalQuantity)
				for _, item := range group.Items {
					fmt.Fprintf(w, "  %s\t%s\t%d\t%s\n", item.MSF, item.DisplayName(), item.Quantity, item.StockLevel)
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&datacenter, "datacenter", "d", "", "Restrict to one datacenter (empty selects the unscoped datacenter)")
	return cmd
}
