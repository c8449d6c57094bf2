// Package main provides the bibapa CLI entry point.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/matsen/bibapa/internal/config"
	"github.com/matsen/bibapa/internal/logging"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool

	logLevel  string
	logFormat string

	// globalCfg is loaded before every command runs.
	globalCfg = &config.GlobalConfig{}

	logger = zerolog.Nop()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bibapa",
	Short: "Convert BibTeX bibliographies into APA-styled documents",
	Long: `bibapa sorts the entries of a BibTeX file into publications,
conferences, and patents, formats each entry as an APA-style citation, and
writes one document per category.

Commands output JSON by default; use --human for readable text.
Defaults can be set in ~/.config/bibapa/config.yml or BIBAPA_* variables.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config, else warn)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: console or json (default console)")
	rootCmd.Version = Version
}

// setup loads configuration and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	globalCfg = cfg

	level := logLevel
	if level == "" {
		level = cfg.LogLevelOrDefault()
	}
	format := logFormat
	if format == "" {
		format = cfg.LogFormat
	}
	if format == "" {
		format = "console"
	}

	logger = logging.New(logging.Config{Level: level, Format: format})
	return nil
}
