package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/bibapa/internal/classify"
	"github.com/matsen/bibapa/internal/render"
	"github.com/matsen/bibapa/internal/section"
)

var (
	formatCategory string
	formatFormat   string
)

func init() {
	formatCmd.Flags().StringVarP(&formatCategory, "category", "c", "", "Only print one category: publication, conference, patent")
	formatCmd.Flags().StringVarP(&formatFormat, "format", "f", "markdown", "Output format: markdown, html, text, yaml")
	rootCmd.AddCommand(formatCmd)
}

var formatCmd = &cobra.Command{
	Use:   "format <input.bib>",
	Short: "Print APA citations to stdout",
	Long: `Format the entries of a BibTeX file as APA citations and print them.

Sections are printed in the order publications, conferences, patents.
DOCX output is not available here; use convert to write documents.

Examples:
  bibapa format refs.bib
  bibapa format refs.bib --category conference --format text`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFormat,
}

var errBinaryFormat = errors.New("docx output cannot be printed; use convert")

func runFormat(cmd *cobra.Command, args []string) error {
	var input string
	if len(args) > 0 {
		input = args[0]
	}

	format, err := render.ParseFormat(formatFormat)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if format == render.DOCX {
		exitWithError(ExitError, "%v", errBinaryFormat)
	}

	include := section.IncludeAll()
	if formatCategory != "" {
		cat, err := classify.ParseCategory(formatCategory)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		include = onlyCategory(cat)
	}

	records, _, err := loadRecords(input)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	sections := section.ClassifyAndFormat(records, include)
	if err := writeSections(os.Stdout, sections, format); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	return nil
}

// onlyCategory enables a single category.
func onlyCategory(cat classify.Category) section.Include {
	return section.Include{
		Publications: cat == classify.Publication,
		Conferences:  cat == classify.Conference,
		Patents:      cat == classify.Patent,
	}
}

// writeSections renders sections one after another, separated by a blank line.
func writeSections(w io.Writer, sections []section.Section, format render.Format) error {
	for i, s := range sections {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := render.Render(w, s, format); err != nil {
			return fmt.Errorf("rendering %s: %w", s.Heading, err)
		}
	}
	return nil
}
