package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string // journal path; empty disables the journal
	LogLevel string
}

// envDefaults are the environment-supplied flag defaults. Flags always
// win: the environment only seeds the default value shown by --help.
type envDefaults struct {
	Database string `env:"RADO_DB"`
	Format   string `env:"RADO_FORMAT" envDefault:"text"`
	LogLevel string `env:"RADO_LOG_LEVEL" envDefault:"info"`
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the rado CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	defaults, err := env.ParseAs[envDefaults]()
	if err != nil {
		defaults = envDefaults{Format: "text", LogLevel: "info"}
	}

	cmd := &cobra.Command{
		Use:   "rado",
		Short: "rado - deterministic logic core for game randomizers",
		Long: `rado loads randomizer logic sources, resolves configuration,
merges declarations into a logic graph, and answers accessibility
queries over it. Identical inputs always produce identical output.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return configureLogging(cmd, opts)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", defaults.Format, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", defaults.Database, "path to the run journal database")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", defaults.LogLevel, "log level (debug|info|warn|error)")

	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewReachCommand(opts))
	cmd.AddCommand(NewExplainCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))

	return cmd
}

// configureLogging installs the process logger. Verbose forces debug;
// otherwise the level comes from --log-level or RADO_LOG_LEVEL. Logs go
// to stderr so JSON output on stdout stays parseable.
func configureLogging(cmd *cobra.Command, opts *RootOptions) error {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(opts.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", opts.LogLevel)
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return nil
}
