package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/automation-engine/internal/config"
	"github.com/teemow/automation-engine/internal/server"
	"github.com/teemow/automation-engine/internal/services"
)

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
This command introspects the registered tools and outputs their documentation
in markdown format, ensuring the documentation is always accurate and in sync
with the actual tool implementations.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			markdown, err := buildToolsMarkdown()
			if err != nil {
				return err
			}
			return writeDocs(cmd.OutOrStdout(), outputFile, markdown)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

// buildToolsMarkdown registers every tool without credentials. Clients are
// created lazily, so registration never calls a Google API.
func buildToolsMarkdown() (string, error) {
	ctx := context.Background()
	svc := services.New(config.Default())

	serverContext, err := server.NewServerContext(ctx, svc, logger)
	if err != nil {
		return "", fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	all, err := listTools(serverContext, false)
	if err != nil {
		return "", err
	}
	readOnly, err := listTools(serverContext, true)
	if err != nil {
		return "", err
	}

	readTools := make(map[string]bool, len(readOnly))
	for _, tool := range readOnly {
		readTools[tool.Name] = true
	}
	return generateToolsMarkdown(all, readTools), nil
}

func listTools(sc *server.ServerContext, readOnly bool) ([]mcp.Tool, error) {
	mcpSrv := mcpserver.NewMCPServer("automation-engine", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)
	if err := registerAllTools(mcpSrv, sc, readOnly); err != nil {
		return nil, err
	}

	serverTools := mcpSrv.ListTools()
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, serverTool := range serverTools {
		tools = append(tools, serverTool.Tool)
	}
	return tools, nil
}

func writeDocs(stdout io.Writer, outputFile, markdown string) error {
	if outputFile == "" {
		_, err := io.WriteString(stdout, markdown)
		return err
	}
	if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	logger.Info("documentation written", "file", outputFile)
	return nil
}

// toolCategories maps a tool name prefix to its section heading.
var toolCategories = map[string]string{
	"drive":     "Google Drive Tools",
	"docs":      "Google Docs Tools",
	"sheets":    "Google Sheets Tools",
	"db":        "Sheets Database Tools",
	"storage":   "Cloud Storage Tools",
	"pubsub":    "Pub/Sub Tools",
	"scheduler": "Cloud Scheduler Tools",
	"tasks":     "Cloud Tasks Tools",
	"secrets":   "Secret Manager Tools",
	"firestore": "Firestore Tools",
	"bigquery":  "BigQuery Tools",
	"api":       "Project Setup Tools",
	"vertex":    "Vertex AI Tools",
}

func getCategoryFromToolName(name string) string {
	prefix, _, _ := strings.Cut(name, "_")
	if category, ok := toolCategories[prefix]; ok {
		return category
	}
	return "Other"
}

// markdownAnchor mirrors how GitHub derives heading anchors: lower case,
// spaces become dashes, other punctuation is dropped.
func markdownAnchor(heading string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(heading) {
		switch {
		case r == ' ':
			sb.WriteByte('-')
		case r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// generateToolsMarkdown renders tools grouped by category. Tools missing
// from readTools are marked as needing --yolo.
func generateToolsMarkdown(tools []mcp.Tool, readTools map[string]bool) string {
	byCategory := make(map[string][]mcp.Tool)
	for _, tool := range tools {
		category := getCategoryFromToolName(tool.Name)
		byCategory[category] = append(byCategory[category], tool)
	}
	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var sb strings.Builder
	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("Every tool automation-engine exposes as an MCP server. Generated from the tool definitions by `automation-engine generate-docs`.\n\n")

	sb.WriteString("## Table of Contents\n\n")
	for _, category := range categories {
		fmt.Fprintf(&sb, "- [%s](#%s)\n", category, markdownAnchor(category))
	}
	sb.WriteString("\n")

	sb.WriteString("## Owner Sharing\n\n")
	sb.WriteString("Tools that create Drive files, folders, documents or spreadsheets grant `OWNER_EMAIL` access with the `AUTO_SHARE_ROLE` role (default `writer`). ")
	sb.WriteString("A failed grant is logged and does not fail the tool.\n\n")
	sb.WriteString("Tools marked **write** are only registered when the server runs with `--yolo`.\n\n")

	for _, category := range categories {
		group := byCategory[category]
		sort.Slice(group, func(i, j int) bool { return group[i].Name < group[j].Name })

		fmt.Fprintf(&sb, "## %s\n\n", category)
		for _, tool := range group {
			sb.WriteString(generateToolMarkdown(tool, !readTools[tool.Name]))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func generateToolMarkdown(tool mcp.Tool, write bool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### %s\n\n", tool.Name)
	if write {
		sb.WriteString("**write**\n\n")
	}
	if tool.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", tool.Description)
	}

	props := tool.InputSchema.Properties
	if len(props) == 0 {
		return sb.String()
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	sb.WriteString("**Arguments:**\n")
	for _, name := range names {
		prop, ok := props[name].(map[string]interface{})
		if !ok {
			continue
		}
		required := "optional"
		if slices.Contains(tool.InputSchema.Required, name) {
			required = "required"
		}
		desc, _ := prop["description"].(string)
		if desc == "" {
			typ, _ := prop["type"].(string)
			if typ == "" {
				typ = "any"
			}
			desc = typ + " parameter"
		}
		fmt.Fprintf(&sb, "- `%s` (%s): %s\n", name, required, desc)
	}
	sb.WriteString("\n")

	return sb.String()
}
