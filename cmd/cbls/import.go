package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var datacenter string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import an inventory export",
		Long: "Reconcile a .csv or .xlsx inventory export into one datacenter. Every product " +
			"missing from the file drops to zero in that datacenter.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			return a.scoped(ctx, func(ctx context.Context) error {
				result, err := a.imports.Import(ctx, filepath.Base(args[0]), strings.TrimSpace(datacenter), f)
				if err != nil {
					return err
				}
				if !result.Success {
					return fmt.Errorf("import failed: %s", result.Error)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Imported %s into %q\n", filepath.Base(args[0]), strings.TrimSpace(datacenter))
				fmt.Fprintf(out, "  records processed: %d\n", result.RecordsProcessed)
				fmt.Fprintf(out, "  new products:      %d\n", result.NewProducts)
				fmt.Fprintf(out, "  updated products:  %d\n", result.UpdatedProducts)
				fmt.Fprintf(out, "  reset to zero:     %d\n", result.ResetCount)
				if result.ImportID != nil {
					fmt.Fprintf(out, "  import id:         %s\n", result.ImportID)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&datacenter, "datacenter", "d", "", "Datacenter the export belongs to")
	return cmd
}
