package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/estable/internal/elastic"
	"github.com/roach88/estable/internal/mapping"
	"github.com/roach88/estable/internal/scan"
	"github.com/roach88/estable/internal/schemacache"
)

// ScanOptions holds flags for the scan command.
type ScanOptions struct {
	*RootOptions
	Columns    string
	BaseQuery  string
	SampleSize int
	Limit      int64
	Offset     int64
	PageSize   int
}

// NewScanCommand creates the scan command.
func NewScanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scan <index-pattern>",
		Short: "Scan an index pattern and print rows",
		Long: `Resolve the index pattern's schema, run a scroll search (merged with
the base query if one is given), and print one JSON object per row.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Columns, "columns", "", "comma-separated output columns (default: all)")
	cmd.Flags().StringVar(&opts.BaseQuery, "base-query", "", "base query DSL merged into the search")
	cmd.Flags().IntVar(&opts.SampleSize, "sample-size", 100, "documents to sample (0 disables sampling)")
	cmd.Flags().Int64Var(&opts.Limit, "limit", -1, "maximum rows to return (-1 for all)")
	cmd.Flags().Int64Var(&opts.Offset, "offset", 0, "rows to skip")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "scroll page size (0 for default)")

	return cmd
}

func runScan(opts *ScanOptions, index string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := opts.ClientConfig(cmd)
	if err != nil {
		_ = formatter.Error("E_CONFIG", err.Error())
		return NewExitError(ExitCommandError, err.Error())
	}

	client := elastic.NewClient(cfg)
	planner := scan.NewPlanner(client, schemacache.New(), cfg.Host, cfg.Port)

	table, err := planner.Resolve(cmd.Context(), scan.Options{
		Index:      index,
		BaseQuery:  opts.BaseQuery,
		SampleSize: opts.SampleSize,
	})
	if err != nil {
		code, exit := "E_RESOLVE", ExitFailure
		if mapping.IsConflict(err) {
			code, exit = "E_SCHEMA_CONFLICT", ExitCommandError
		}
		_ = formatter.Error(code, err.Error())
		return NewExitError(exit, err.Error())
	}

	columns, err := selectColumns(table, opts.Columns)
	if err != nil {
		_ = formatter.Error("E_COLUMNS", err.Error())
		return NewExitError(ExitCommandError, err.Error())
	}
	formatter.VerboseLog("Scanning %s: columns=%v limit=%d offset=%d", index, columns, opts.Limit, opts.Offset)

	rows, err := planner.Open(cmd.Context(), table, scan.Query{
		Index:    index,
		Base:     json.RawMessage(opts.BaseQuery),
		Columns:  columns,
		Limit:    opts.Limit,
		Offset:   opts.Offset,
		PageSize: opts.PageSize,
	})
	if err != nil {
		_ = formatter.Error("E_SCAN", err.Error())
		return NewExitError(ExitFailure, err.Error())
	}
	defer func() { _ = rows.Close(cmd.Context()) }()

	encoder := json.NewEncoder(formatter.Writer)
	count := 0
	for {
		row, ok, err := rows.Next(cmd.Context())
		if err != nil {
			_ = formatter.Error("E_SCAN", err.Error())
			return NewExitError(ExitFailure, err.Error())
		}
		if !ok {
			break
		}
		record := make(map[string]any, len(columns))
		for i, name := range columns {
			record[name] = row[i]
		}
		if err := encoder.Encode(record); err != nil {
			return NewExitError(ExitFailure, err.Error())
		}
		count++
	}
	formatter.VerboseLog("%d row(s)", count)
	return nil
}

// selectColumns parses the --columns flag against the table's column
// list, defaulting to every column in contract order.
func selectColumns(table *scan.Table, flag string) ([]string, error) {
	if flag == "" {
		names := make([]string, len(table.Columns))
		for i, col := range table.Columns {
			names[i] = col.Name
		}
		return names, nil
	}
	var names []string
	for _, part := range strings.Split(flag, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if !hasColumn(table, name) {
			return nil, fmt.Errorf("unknown column %q", name)
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no columns selected")
	}
	return names, nil
}

func hasColumn(table *scan.Table, name string) bool {
	for _, col := range table.Columns {
		if col.Name == name {
			return true
		}
	}
	return false
}
