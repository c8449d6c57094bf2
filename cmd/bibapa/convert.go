package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/matsen/bibapa/internal/bibtex"
	"github.com/matsen/bibapa/internal/classify"
	"github.com/matsen/bibapa/internal/config"
	"github.com/matsen/bibapa/internal/reference"
	"github.com/matsen/bibapa/internal/render"
	"github.com/matsen/bibapa/internal/section"
)

var (
	convertOut          string
	convertFormat       string
	convertPublications bool
	convertConferences  bool
	convertPatents      bool
)

func init() {
	convertCmd.Flags().StringVarP(&convertOut, "out", "o", "", "Output directory (default from config output_dir)")
	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", "", "Output format: docx, markdown, html, text, yaml (default docx)")
	convertCmd.Flags().BoolVar(&convertPublications, "publications", true, "Write publications document")
	convertCmd.Flags().BoolVar(&convertConferences, "conferences", true, "Write conferences document")
	convertCmd.Flags().BoolVar(&convertPatents, "patents", true, "Write patents document")
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert <input.bib>",
	Short: "Write APA-styled publications, conferences, and patents documents",
	Long: `Convert a BibTeX file into one APA-styled document per category.

Entries are sorted into publications, conferences, and patents. Entries that
match none of the categories are skipped. Categories that are disabled or
have no entries produce no document.

Examples:
  bibapa convert refs.bib --out ~/cv
  bibapa convert refs.bib --out . --patents=false
  bibapa convert refs.bib --out site --format markdown`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

// ConvertResponse is the response for the convert command.
type ConvertResponse struct {
	Input     string         `json:"input"`
	OutputDir string         `json:"output_dir"`
	Format    string         `json:"format"`
	Files     []string       `json:"files"`
	Counts    map[string]int `json:"counts"`
	Dropped   []string       `json:"dropped,omitempty"`
}

func runConvert(cmd *cobra.Command, args []string) error {
	var input string
	if len(args) > 0 {
		input = args[0]
	}

	outDir := convertOut
	if outDir == "" {
		outDir = globalCfg.OutputDir
	}

	formatName := convertFormat
	if formatName == "" {
		formatName = globalCfg.FormatOrDefault()
	}
	format, err := render.ParseFormat(formatName)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	resp, err := convertBibliography(input, outDir, format, resolveInclude(cmd))
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	if humanOutput {
		printConvertHuman(resp)
		return nil
	}
	return outputJSON(resp)
}

// resolveInclude combines include flags with config defaults. An explicit
// flag always wins.
func resolveInclude(cmd *cobra.Command) section.Include {
	pubs, confs, pats := globalCfg.Includes()
	if cmd.Flags().Changed("publications") {
		pubs = convertPublications
	}
	if cmd.Flags().Changed("conferences") {
		confs = convertConferences
	}
	if cmd.Flags().Changed("patents") {
		pats = convertPatents
	}
	return section.Include{Publications: pubs, Conferences: confs, Patents: pats}
}

// convertBibliography validates paths, parses the input, and writes one
// document per emitted section. Nothing is written when validation or
// parsing fails.
func convertBibliography(input, outDir string, format render.Format, include section.Include) (*ConvertResponse, error) {
	input, outDir, err := config.ValidatePaths(input, outDir)
	if err != nil {
		return nil, err
	}

	records, err := bibtex.ParseFile(input)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("input", input).Int("records", len(records)).Msg("parsed bibliography")

	result := classify.Classify(records)
	logDropped(result.Dropped)

	sections := section.FromResult(result, include)
	files, err := render.WriteSections(outDir, sections, format)
	if err != nil {
		return nil, err
	}
	for i, path := range files {
		logger.Info().Str("path", path).Int("citations", len(sections[i].Citations)).Msg("wrote section")
	}

	resp := &ConvertResponse{
		Input:     input,
		OutputDir: outDir,
		Format:    string(format),
		Files:     files,
		Counts:    categoryCounts(result),
	}
	if resp.Files == nil {
		resp.Files = []string{}
	}
	for _, rec := range result.Dropped {
		resp.Dropped = append(resp.Dropped, rec.Key())
	}
	return resp, nil
}

func logDropped(dropped []reference.Record) {
	for _, rec := range dropped {
		logger.Debug().
			Str("key", rec.Key()).
			Str("entry_type", rec.EntryType()).
			Msg("entry matches no category, skipping")
	}
}

func categoryCounts(result classify.Result) map[string]int {
	counts := make(map[string]int, len(classify.Categories)+1)
	for _, cat := range classify.Categories {
		counts[cat.String()] = len(result.Records(cat))
	}
	counts["dropped"] = len(result.Dropped)
	return counts
}

// exitCodeFor maps conversion errors to exit codes.
func exitCodeFor(err error) int {
	var parseErr *bibtex.ParseError
	switch {
	case errors.Is(err, config.ErrInputMissing),
		errors.Is(err, config.ErrInputNotFound),
		errors.Is(err, config.ErrOutputDirNotFound):
		return ExitConfigError
	case errors.As(err, &parseErr):
		return ExitDataError
	}
	return ExitError
}

func printConvertHuman(resp *ConvertResponse) {
	if len(resp.Files) == 0 {
		outputHuman("No documents written (no matching entries in the selected categories).\n")
	} else {
		outputHuman("Wrote %d document(s) to %s:\n", len(resp.Files), resp.OutputDir)
		for _, f := range resp.Files {
			outputHuman("  %s\n", f)
		}
	}
	outputHuman("\nPublications: %d  Conferences: %d  Patents: %d  Skipped: %d\n",
		resp.Counts["publication"], resp.Counts["conference"], resp.Counts["patent"], resp.Counts["dropped"])
}
