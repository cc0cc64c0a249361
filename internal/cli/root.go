// Package cli implements the estable command line: inspect resolved
// schemas and run ad-hoc scans against an Elasticsearch endpoint.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/estable/internal/elastic"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string

	Host      string
	Port      int
	Username  string
	Password  string
	UseSSL    bool
	VerifySSL bool
	Timeout   time.Duration
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the estable CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	defaults := elastic.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "estable",
		Short: "Scan Elasticsearch indices as relational tables",
		Long: `estable resolves an Elasticsearch index pattern into a relational
schema (merging mappings across indices and sampling documents for
arrays and unmapped fields) and scans it with server-side filtering.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Host, "host", defaults.Host, "Elasticsearch host")
	cmd.PersistentFlags().IntVar(&opts.Port, "port", defaults.Port, "Elasticsearch port")
	cmd.PersistentFlags().StringVar(&opts.Username, "username", "", "basic auth username")
	cmd.PersistentFlags().StringVar(&opts.Password, "password", "", "basic auth password")
	cmd.PersistentFlags().BoolVar(&opts.UseSSL, "ssl", false, "use HTTPS")
	cmd.PersistentFlags().BoolVar(&opts.VerifySSL, "verify-ssl", true, "verify SSL certificates")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", defaults.Timeout, "request timeout")

	// Add subcommands
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewScanCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// fileConfig is the YAML config file layout.
type fileConfig struct {
	Elasticsearch elastic.Config `yaml:"elasticsearch"`
}

// ClientConfig resolves the connection config: defaults, then the config
// file, then explicit flags.
func (o *RootOptions) ClientConfig(cmd *cobra.Command) (elastic.Config, error) {
	cfg := elastic.DefaultConfig()

	if o.ConfigFile != "" {
		data, err := os.ReadFile(o.ConfigFile)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		fc := fileConfig{Elasticsearch: cfg}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", o.ConfigFile, err)
		}
		cfg = fc.Elasticsearch
	}

	// Flags set on the command line win over the file.
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = o.Host
	}
	if flags.Changed("port") {
		cfg.Port = o.Port
	}
	if flags.Changed("username") {
		cfg.Username = o.Username
	}
	if flags.Changed("password") {
		cfg.Password = o.Password
	}
	if flags.Changed("ssl") {
		cfg.UseSSL = o.UseSSL
	}
	if flags.Changed("verify-ssl") {
		cfg.VerifySSL = o.VerifySSL
	}
	if flags.Changed("timeout") {
		cfg.Timeout = o.Timeout
	}
	return cfg, nil
}
