package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/automation-engine/internal/sheetsdb"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the spreadsheet database",
	}
	cmd.AddCommand(newDBInitCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a spreadsheet database with the executions, tenants and logs tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := newServices(ctx, true)
			if err != nil {
				return err
			}
			db, err := sheetsdb.Create(ctx, svc, title, sheetsdb.DefaultSchema())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", db.SpreadsheetID(), db.URL())
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Spreadsheet title (default: \"Automation Database - <date>\")")
	return cmd
}
