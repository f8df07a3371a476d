package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dominik-gnepf/MS-CBLS-Tracker/pkg/models"
)

func newImportsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "imports",
		Short: "List recent imports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}

			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var records []*models.ImportRecord
			err = a.scoped(ctx, func(ctx context.Context) error {
				records, err = a.imports.History(ctx, limit)
				return err
			})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tFILE\tDATACENTER\tRECORDS\tNEW\tUPDATED\tRESET")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
					r.ImportDate.Local().Format(time.DateTime), r.Filename, r.Datacenter,
					r.RecordsProcessed, r.NewProducts, r.UpdatedProducts, r.ResetCount)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of imports to show")
	return cmd
}
