package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/bibapa/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the configuration after the config file and environment overrides
are applied.

Configuration is read from ~/.config/bibapa/config.yml (or
$XDG_CONFIG_HOME/bibapa/config.yml). BIBAPA_OUTPUT_DIR, BIBAPA_FORMAT,
BIBAPA_LOG_LEVEL, and BIBAPA_CACHE_DIR override file values and may be set
in a .env file in the working directory.

Keys:
  output_dir            Default output directory for convert
  format                Default document format (docx)
  include_publications  Write publications by default (true)
  include_conferences   Write conferences by default (true)
  include_patents       Write patents by default (true)
  log_level             debug, info, warn, error (warn)
  log_format            console or json (console)
  cache_dir             Record cache directory`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

// ConfigResponse is the response for the config command.
type ConfigResponse struct {
	ConfigPath          string `json:"config_path"`
	CacheDB             string `json:"cache_db"`
	OutputDir           string `json:"output_dir"`
	Format              string `json:"format"`
	IncludePublications bool   `json:"include_publications"`
	IncludeConferences  bool   `json:"include_conferences"`
	IncludePatents      bool   `json:"include_patents"`
	LogLevel            string `json:"log_level"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	resp := newConfigResponse(globalCfg)
	if humanOutput {
		outputHuman("config file:          %s\n", resp.ConfigPath)
		outputHuman("cache db:             %s\n", resp.CacheDB)
		outputHuman("output_dir:           %s\n", orNone(resp.OutputDir))
		outputHuman("format:               %s\n", resp.Format)
		outputHuman("include_publications: %t\n", resp.IncludePublications)
		outputHuman("include_conferences:  %t\n", resp.IncludeConferences)
		outputHuman("include_patents:      %t\n", resp.IncludePatents)
		outputHuman("log_level:            %s\n", resp.LogLevel)
		return nil
	}
	return outputJSON(resp)
}

func newConfigResponse(cfg *config.GlobalConfig) ConfigResponse {
	pubs, confs, pats := cfg.Includes()
	return ConfigResponse{
		ConfigPath:          config.GlobalConfigPath(),
		CacheDB:             cfg.CacheDBPath(),
		OutputDir:           cfg.OutputDir,
		Format:              cfg.FormatOrDefault(),
		IncludePublications: pubs,
		IncludeConferences:  confs,
		IncludePatents:      pats,
		LogLevel:            cfg.LogLevelOrDefault(),
	}
}

func orNone(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
