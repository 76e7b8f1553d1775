package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/automation-engine/internal/sheets"
	"github.com/teemow/automation-engine/internal/tools/common"
)

func newSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Create, read and write Google Sheets",
	}
	cmd.AddCommand(newSheetsCreateCmd())
	cmd.AddCommand(newSheetsReadCmd())
	cmd.AddCommand(newSheetsWriteCmd(false))
	cmd.AddCommand(newSheetsWriteCmd(true))
	return cmd
}

func newSheetsCreateCmd() *cobra.Command {
	var tabs []string

	cmd := &cobra.Command{
		Use:   "create TITLE",
		Short: "Create a spreadsheet and share it with the owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := newServices(ctx, true)
			if err != nil {
				return err
			}
			var specs []sheets.SheetSpec
			for _, title := range tabs {
				specs = append(specs, sheets.SheetSpec{Title: title})
			}
			info, err := svc.CreateSpreadsheet(ctx, args[0], specs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", info.ID, info.URL)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&tabs, "sheets", nil, "Sheet titles to create (comma separated)")
	return cmd
}

func newSheetsReadCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "read SPREADSHEET_ID RANGE",
		Short: "Read a range in A1 notation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := newServices(ctx, false)
			if err != nil {
				return err
			}
			values, err := svc.ReadSpreadsheet(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), values)
			}
			return writeCSV(cmd.OutOrStdout(), values)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of CSV")
	return cmd
}

// newSheetsWriteCmd builds "write", which overwrites a range, or "append",
// which adds rows after the last row of a table.
func newSheetsWriteCmd(appendRows bool) *cobra.Command {
	var (
		valuesJSON string
		csvPath    string
	)

	use, short := "write", "Write values to a range"
	if appendRows {
		use, short = "append", "Append rows after the table in a range"
	}

	cmd := &cobra.Command{
		Use:   use + " SPREADSHEET_ID RANGE",
		Short: short,
		Long: short + `.

Rows are given either as a JSON array of arrays with --values, or as CSV with
--csv (use "-" for stdin).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			values, err := parseValues(valuesJSON, csvPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			svc, err := newServices(ctx, false)
			if err != nil {
				return err
			}
			write := svc.WriteSpreadsheet
			if appendRows {
				write = svc.AppendSpreadsheet
			}
			res, err := write(ctx, args[0], args[1], values)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %d cells in %s\n", res.UpdatedCells, res.UpdatedRange)
			return nil
		},
	}
	cmd.Flags().StringVar(&valuesJSON, "values", "", `Rows as JSON, e.g. '[["a",1],["b",2]]'`)
	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV file with the rows")
	return cmd
}

// parseValues reads rows from exactly one of a JSON string or a CSV file.
func parseValues(valuesJSON, csvPath string, stdin io.Reader) ([][]interface{}, error) {
	switch {
	case valuesJSON != "" && csvPath != "":
		return nil, fmt.Errorf("use either --values or --csv, not both")
	case valuesJSON != "":
		return common.Values(map[string]interface{}{"values": valuesJSON}, "values")
	case csvPath != "":
		return readCSV(csvPath, stdin)
	default:
		return nil, fmt.Errorf("one of --values or --csv is required")
	}
}

func readCSV(path string, stdin io.Reader) ([][]interface{}, error) {
	in := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		in = f
	}

	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV has no rows")
	}

	values := make([][]interface{}, len(records))
	for i, rec := range records {
		row := make([]interface{}, len(rec))
		for j, field := range rec {
			row[j] = field
		}
		values[i] = row
	}
	return values, nil
}

func writeCSV(w io.Writer, values [][]interface{}) error {
	cw := csv.NewWriter(w)
	for _, row := range values {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = fmt.Sprint(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
