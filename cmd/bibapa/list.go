package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matsen/bibapa/internal/classify"
	"github.com/matsen/bibapa/internal/storage"
)

// DefaultListLimit is the default number of entries shown by list.
const DefaultListLimit = 50

var (
	listCategory string
	listSearch   string
	listLimit    int
)

func init() {
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Filter by category: publication, conference, patent, dropped")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Full-text search over titles and citations")
	listCmd.Flags().IntVar(&listLimit, "limit", DefaultListLimit, "Maximum entries to return (0 for all)")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list <input.bib>",
	Short: "List classified entries with their citations",
	Long: `List the entries of a BibTeX file with their category and citation.

Results come from a local cache that is rebuilt whenever the input file
changes. Use --category dropped to see entries that match no category.

Examples:
  bibapa list refs.bib --human
  bibapa list refs.bib --category dropped
  bibapa list refs.bib --search "protein folding" --limit 10`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

// ListResponse is the response for the list command.
type ListResponse struct {
	Input   string          `json:"input"`
	Rebuilt bool            `json:"rebuilt"`
	Counts  map[string]int  `json:"counts"`
	Entries []storage.Entry `json:"entries"`
}

func runList(cmd *cobra.Command, args []string) error {
	var input string
	if len(args) > 0 {
		input = args[0]
	}

	category, err := normalizeListCategory(listCategory)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	resp, err := listEntries(globalCfg.CacheDBPath(), input, category, listSearch, listLimit)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	if humanOutput {
		printListHuman(resp)
		return nil
	}
	return outputJSON(resp)
}

// normalizeListCategory accepts any category spelling plus "dropped".
func normalizeListCategory(s string) (string, error) {
	if s == "" || s == storage.DroppedCategory {
		return s, nil
	}
	cat, err := classify.ParseCategory(s)
	if err != nil {
		return "", fmt.Errorf("unknown category: %q (valid: publication, conference, patent, dropped)", s)
	}
	return cat.String(), nil
}

// listEntries refreshes the cache at dbPath from input if needed and queries it.
func listEntries(dbPath, input, category, search string, limit int) (*ListResponse, error) {
	records, input, err := loadRecords(input)
	if err != nil {
		return nil, err
	}
	source, err := filepath.Abs(input)
	if err != nil {
		return nil, err
	}

	db, err := storage.OpenDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	defer db.Close()

	fp, err := storage.Fingerprint(source)
	if err != nil {
		return nil, err
	}
	fresh, err := db.IsFresh(source, fp)
	if err != nil {
		return nil, err
	}

	resp := &ListResponse{Input: input}
	if !fresh {
		if err := db.Rebuild(source, fp, storage.EntriesFromRecords(records)); err != nil {
			return nil, fmt.Errorf("rebuilding cache: %w", err)
		}
		resp.Rebuilt = true
		logger.Debug().Str("cache", dbPath).Int("records", len(records)).Msg("rebuilt record cache")
	}

	if resp.Counts, err = db.Counts(); err != nil {
		return nil, err
	}

	var entries []storage.Entry
	if search != "" {
		entries, err = db.Search(search, 0)
		if err != nil {
			return nil, err
		}
		entries = filterCategory(entries, category, limit)
	} else {
		entries, err = db.List(category, limit)
		if err != nil {
			return nil, err
		}
	}
	if entries == nil {
		entries = []storage.Entry{}
	}
	resp.Entries = entries
	return resp, nil
}

func filterCategory(entries []storage.Entry, category string, limit int) []storage.Entry {
	var out []storage.Entry
	for _, e := range entries {
		if category != "" && e.Category != category {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func printListHuman(resp *ListResponse) {
	if len(resp.Entries) == 0 {
		outputHuman("No entries found.\n")
		return
	}
	for _, e := range resp.Entries {
		outputHuman("%-12s %-24s %s\n", e.Category, e.Key, truncateString(e.Title, ListTitleMaxLen))
	}
	outputHuman("\n%d shown (publications: %d, conferences: %d, patents: %d, skipped: %d)\n",
		len(resp.Entries),
		resp.Counts["publication"], resp.Counts["conference"], resp.Counts["patent"],
		resp.Counts[storage.DroppedCategory])
}
