package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/teemow/automation-engine/internal/services"
	"github.com/teemow/automation-engine/internal/serviceusage"
	"github.com/teemow/automation-engine/internal/setup"
)

func newSetupCmd() *cobra.Command {
	var (
		dir        string
		keyPath    string
		prepare    bool
		checkAPIs  bool
		enableAPIs bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Check and prepare the working directory and Google Cloud project",
		Long: `Check that a service account key, a .env file and the credentials
environment variable are in place, and list the steps that remain.

With --prepare the credentials directory is created with a .gitignore, and
.env is copied from .env.example when missing. With --check-apis the enabled
state of every required Google API is looked up, and --enable-apis enables
the ones that are off.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if prepare {
				res, err := setup.Prepare(dir)
				if err != nil {
					return err
				}
				logger.Info("prepared working directory",
					"created_credentials_dir", res.CreatedCredentialsDir,
					"created_env_file", res.CreatedEnvFile)
			}

			report := setup.Check(setup.Options{Dir: dir, KeyPath: keyPath})

			if checkAPIs || enableAPIs {
				usage, err := newServiceUsage(ctx, report)
				if err != nil {
					return err
				}
				if err := report.CheckAPIs(ctx, usage); err != nil {
					return err
				}
				if disabled := report.DisabledAPIs(); enableAPIs && len(disabled) > 0 {
					ops, err := usage.Enable(ctx, disabled)
					if err != nil {
						return err
					}
					logger.Info("enabling APIs", "apis", disabled, "operations", ops)
					if err := report.CheckAPIs(ctx, usage); err != nil {
						return err
					}
				}
			}

			if asJSON {
				return printJSON(out, struct {
					*setup.Report
					NextSteps []string `json:"nextSteps"`
				}{report, setup.NextSteps(report)})
			}
			printReport(out, report)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Working directory to check")
	cmd.Flags().StringVar(&keyPath, "key", setup.DefaultKeyFile, "Service account key file, relative to --dir")
	cmd.Flags().BoolVar(&prepare, "prepare", false, "Create the credentials directory and .env file")
	cmd.Flags().BoolVar(&checkAPIs, "check-apis", false, "Look up which required APIs are enabled")
	cmd.Flags().BoolVar(&enableAPIs, "enable-apis", false, "Enable the required APIs that are disabled")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	return cmd
}

// newServiceUsage builds a Service Usage client with the configured
// credentials, falling back to the key found by the report.
func newServiceUsage(ctx context.Context, report *setup.Report) (*serviceusage.Client, error) {
	cfg, err := loadConfig(false)
	if err != nil {
		return nil, err
	}
	if cfg.CredentialsPath == "" && report.Ready() {
		cfg.CredentialsPath = report.KeyPath
	}
	svc, err := services.NewFromCredentials(ctx, cfg, services.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	project := svc.Config().ProjectID
	if project == "" {
		project = report.ProjectID
	}
	return serviceusage.NewClient(ctx, project, svc.ClientOptions()...)
}

func printReport(w io.Writer, r *setup.Report) {
	check := func(ok bool) string {
		if ok {
			return "ok"
		}
		return "missing"
	}

	fmt.Fprintf(w, "Service account key  %-8s %s\n", check(r.Ready()), r.KeyPath)
	if r.ClientEmail != "" {
		fmt.Fprintf(w, "  account            %s\n", r.ClientEmail)
		fmt.Fprintf(w, "  project            %s\n", r.ProjectID)
	}
	if r.KeyError != "" {
		fmt.Fprintf(w, "  error              %s\n", r.KeyError)
	}
	fmt.Fprintf(w, "%-20s %s\n", setup.EnvFile+" file", check(r.EnvFileFound))
	fmt.Fprintf(w, "%-20s %s\n", setup.CredentialsEnvVar, check(r.CredentialsEnvSet))

	if len(r.APIs) > 0 {
		fmt.Fprintln(w, "\nAPIs:")
		for _, api := range r.APIs {
			state := "disabled"
			if api.Enabled {
				state = "enabled"
			}
			fmt.Fprintf(w, "  %-32s %s\n", api.Name, state)
		}
	}

	steps := setup.NextSteps(r)
	if len(steps) == 0 {
		fmt.Fprintln(w, "\nSetup complete.")
		return
	}
	fmt.Fprintln(w, "\nNext steps:")
	for i, step := range steps {
		fmt.Fprintf(w, "  %d. %s\n", i+1, step)
	}
}
