package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/estable/internal/elastic"
	"github.com/roach88/estable/internal/mapping"
	"github.com/roach88/estable/internal/scan"
	"github.com/roach88/estable/internal/schemacache"
)

// SchemaOptions holds flags for the schema command.
type SchemaOptions struct {
	*RootOptions
	BaseQuery  string
	SampleSize int
}

// schemaColumn is one column in the command's JSON output.
type schemaColumn struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Path   string `json:"path,omitempty"`
	ESType string `json:"es_type,omitempty"`
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SchemaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schema <index-pattern>",
		Short: "Resolve and print the relational schema for an index pattern",
		Long: `Fetch the mappings of every index matched by the pattern, merge them
into one schema, sample documents to detect array fields and unmapped
fields, and print the resulting column list.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.BaseQuery, "base-query", "", "base query DSL merged into every search")
	cmd.Flags().IntVar(&opts.SampleSize, "sample-size", 100, "documents to sample (0 disables sampling)")

	return cmd
}

func runSchema(opts *SchemaOptions, index string, cmd *cobra.Command) error {
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

	formatter.VerboseLog("Resolving %s on %s:%d (sample size %d)", index, cfg.Host, cfg.Port, opts.SampleSize)
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

	if formatter.Format == "json" {
		columns := make([]schemaColumn, len(table.Columns))
		for i, col := range table.Columns {
			columns[i] = schemaColumn{Name: col.Name, Type: col.Type.String()}
			if sc := table.Schema.Column(col.Name); sc != nil {
				columns[i].Path = sc.Path
				columns[i].ESType = sc.ESType
			}
		}
		return formatter.Success(columns)
	}

	fmt.Fprintf(formatter.Writer, "%s: %d column(s)\n\n", index, len(table.Columns))
	for _, col := range table.Columns {
		fmt.Fprintf(formatter.Writer, "  %-24s %s\n", col.Name, col.Type.String())
	}
	if len(table.Schema.TextFields) > 0 {
		fmt.Fprintln(formatter.Writer)
		fmt.Fprintln(formatter.Writer, "Analyzed text fields:")
		fields := make([]string, 0, len(table.Schema.TextFields))
		for f := range table.Schema.TextFields {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			marker := "no keyword subfield"
			if sibling, ok := table.Schema.KeywordSiblings[f]; ok {
				marker = "exact match via " + sibling
			}
			fmt.Fprintf(formatter.Writer, "  %-24s %s\n", f, marker)
		}
	}
	return nil
}
