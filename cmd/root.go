package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/automation-engine/internal/config"
	"github.com/teemow/automation-engine/internal/instrumentation"
	"github.com/teemow/automation-engine/internal/logging"
	"github.com/teemow/automation-engine/internal/services"
)

var (
	envFile   string
	logLevel  string
	logFormat string

	// logger is set up before any subcommand runs. Logs go to stderr so
	// stdout stays free for command output and the stdio transport.
	logger = slog.Default()
)

// rootCmd represents the base command for the automation-engine application
var rootCmd = &cobra.Command{
	Use:   "automation-engine",
	Short: "Google Workspace and Cloud automation with automatic owner sharing",
	Long: `automation-engine creates and edits Google Drive files, Sheets and Docs as a
service account and shares everything it creates with a human owner.

It can run as:
  - A CLI for one-off operations (drive, sheets, docs, db, setup)
  - An MCP (Model Context Protocol) server for AI assistants (serve)

Configuration is read from the environment and from a .env file in the
working directory. OWNER_EMAIL names the account that receives access.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnvFile(envFile); err != nil {
			return err
		}
		l, err := logging.NewLogger(os.Stderr, logLevel, logFormat)
		if err != nil {
			return err
		}
		logger = l
		slog.SetDefault(l)
		return nil
	},
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "automation-engine version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "dotenv file to load; variables already set in the environment win")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatText, "Log format: text or json")

	rootCmd.AddCommand(newSetupCmd())
	rootCmd.AddCommand(newDriveCmd())
	rootCmd.AddCommand(newSheetsCmd())
	rootCmd.AddCommand(newDocsCmd())
	rootCmd.AddCommand(newDBCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// loadConfig reads the configuration from the environment. With
// requireValid set, an invalid configuration is an error. Commands that
// create resources need a valid owner, read-only commands do not.
func loadConfig(requireValid bool) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		if requireValid {
			return cfg, err
		}
		logger.Warn("configuration is incomplete", logging.Err(err))
	}
	return cfg, nil
}

// newServices authenticates and returns the Workspace facade for CLI
// commands. Share grants are audit logged like in the server.
func newServices(ctx context.Context, requireValid bool) (*services.Services, error) {
	cfg, err := loadConfig(requireValid)
	if err != nil {
		return nil, err
	}
	return services.NewFromCredentials(ctx, cfg,
		services.WithLogger(logger),
		services.WithAuditLogger(instrumentation.NewAuditLogger(logger)),
	)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
