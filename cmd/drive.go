package cmd

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newDriveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drive",
		Short: "Create, upload, list and share Google Drive files",
	}
	cmd.AddCommand(newDriveMkdirCmd())
	cmd.AddCommand(newDriveUploadCmd())
	cmd.AddCommand(newDriveLsCmd())
	cmd.AddCommand(newDriveShareCmd())
	return cmd
}

func newDriveMkdirCmd() *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "mkdir NAME",
		Short: "Create a folder and share it with the owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := newServices(ctx, true)
			if err != nil {
				return err
			}
			folder, err := svc.CreateFolder(ctx, args[0], parent)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", folder.ID, folder.WebViewLink)
			return nil
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "Parent folder ID")
	return cmd
}

func newDriveUploadCmd() *cobra.Command {
	var (
		name     string
		parent   string
		mimeType string
	)

	cmd := &cobra.Command{
		Use:   "upload PATH",
		Short: "Upload a local file and share it with the owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			defer f.Close()

			if name == "" {
				name = filepath.Base(path)
			}
			if mimeType == "" {
				mimeType = mime.TypeByExtension(filepath.Ext(path))
			}

			svc, err := newServices(ctx, true)
			if err != nil {
				return err
			}
			file, err := svc.UploadFile(ctx, name, f, mimeType, parent)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", file.ID, file.WebViewLink)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Name in Drive (default: the local file name)")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent folder ID")
	cmd.Flags().StringVar(&mimeType, "mime-type", "", "MIME type (default: from the file extension)")
	return cmd
}

func newDriveLsCmd() *cobra.Command {
	var (
		query  string
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List files visible to the service account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := newServices(ctx, false)
			if err != nil {
				return err
			}
			files, err := svc.ListFiles(ctx, query, limit)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), files)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTYPE\tMODIFIED")
			for _, f := range files {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.ID, f.Name, f.MimeType, f.ModifiedTime.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Drive search query, e.g. \"name contains 'report'\"")
	cmd.Flags().IntVar(&limit, "max", 100, "Maximum number of files")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newDriveShareCmd() *cobra.Command {
	var (
		email string
		role  string
	)

	cmd := &cobra.Command{
		Use:   "share FILE_ID",
		Short: "Share an existing file, with the owner by default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := newServices(ctx, email == "")
			if err != nil {
				return err
			}
			perm, err := svc.ShareExistingFile(ctx, args[0], email, role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", perm.ID, perm.EmailAddress, perm.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Recipient (default: the configured owner)")
	cmd.Flags().StringVar(&role, "role", "", "Role: reader, commenter or writer (default: writer)")
	return cmd
}
