package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Create and read Google Docs",
	}
	cmd.AddCommand(newDocsCreateCmd())
	cmd.AddCommand(newDocsCatCmd())
	return cmd
}

func newDocsCreateCmd() *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "create TITLE",
		Short: "Create a document and share it with the owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := newServices(ctx, true)
			if err != nil {
				return err
			}
			doc, err := svc.CreateDocument(ctx, args[0])
			if err != nil {
				return err
			}
			if text != "" {
				if err := svc.AppendToDocument(ctx, doc.ID, text); err != nil {
					return fmt.Errorf("created document %s but failed to add text: %w", doc.ID, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", doc.ID, doc.URL)
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "Initial body text")
	return cmd
}

func newDocsCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat DOCUMENT_ID",
		Short: "Print the plain text of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := newServices(ctx, false)
			if err != nil {
				return err
			}
			text, err := svc.ReadDocument(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
}
