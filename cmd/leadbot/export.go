package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"leadbot/internal/service"
)

func newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all collected users as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), configFlag(cmd), false)
			if err != nil {
				return err
			}
			defer a.Close()

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}

			users := service.NewUserService(a.users, a.delivery, a.log)
			if err := users.ExportCSV(cmd.Context(), w); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, stdout when empty.")
	return cmd
}
