package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/bibapa/internal/bibtex"
	"github.com/matsen/bibapa/internal/classify"
	"github.com/matsen/bibapa/internal/config"
	"github.com/matsen/bibapa/internal/reference"
)

func init() {
	rootCmd.AddCommand(classifyCmd)
}

var classifyCmd = &cobra.Command{
	Use:   "classify <input.bib>",
	Short: "Show which category each entry falls into",
	Long: `Sort the entries of a BibTeX file into publications, conferences, and
patents without writing any documents.

Entries that match no category are listed as skipped.

Examples:
  bibapa classify refs.bib
  bibapa classify refs.bib --human`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClassify,
}

// ClassifyResponse is the response for the classify command.
type ClassifyResponse struct {
	Input        string          `json:"input"`
	Publications []string        `json:"publications"`
	Conferences  []string        `json:"conferences"`
	Patents      []string        `json:"patents"`
	Dropped      []DroppedRecord `json:"dropped"`
}

// DroppedRecord identifies an entry that matched no category.
type DroppedRecord struct {
	Key       string `json:"key"`
	EntryType string `json:"entry_type"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	var input string
	if len(args) > 0 {
		input = args[0]
	}

	records, input, err := loadRecords(input)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	resp := newClassifyResponse(input, classify.Classify(records))
	if humanOutput {
		printClassifyHuman(resp)
		return nil
	}
	return outputJSON(resp)
}

// loadRecords validates and parses a bibliography, returning the records
// and the expanded input path.
func loadRecords(input string) ([]reference.Record, string, error) {
	if input == "" {
		return nil, "", config.ErrInputMissing
	}
	input = config.ExpandPath(input)
	if err := config.ValidateInputFile(input); err != nil {
		return nil, "", err
	}
	records, err := bibtex.ParseFile(input)
	if err != nil {
		return nil, "", err
	}
	logger.Debug().Str("input", input).Int("records", len(records)).Msg("parsed bibliography")
	return records, input, nil
}

func newClassifyResponse(input string, res classify.Result) *ClassifyResponse {
	resp := &ClassifyResponse{
		Input:        input,
		Publications: keysOf(res.Publications),
		Conferences:  keysOf(res.Conferences),
		Patents:      keysOf(res.Patents),
		Dropped:      make([]DroppedRecord, 0, len(res.Dropped)),
	}
	for _, rec := range res.Dropped {
		resp.Dropped = append(resp.Dropped, DroppedRecord{Key: rec.Key(), EntryType: rec.EntryType()})
	}
	return resp
}

func keysOf(records []reference.Record) []string {
	keys := make([]string, len(records))
	for i, rec := range records {
		keys[i] = rec.Key()
	}
	return keys
}

func printClassifyHuman(resp *ClassifyResponse) {
	outputHuman("Publications (%d): %s\n", len(resp.Publications), formatIDList(resp.Publications))
	outputHuman("Conferences (%d): %s\n", len(resp.Conferences), formatIDList(resp.Conferences))
	outputHuman("Patents (%d): %s\n", len(resp.Patents), formatIDList(resp.Patents))

	dropped := make([]string, len(resp.Dropped))
	for i, d := range resp.Dropped {
		dropped[i] = fmt.Sprintf("%s (@%s)", d.Key, d.EntryType)
	}
	outputHuman("Skipped (%d): %s\n", len(dropped), formatIDList(dropped))
}
