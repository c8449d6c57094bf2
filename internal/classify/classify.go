// Package classify partitions bibliography records into publications,
// conferences, and patents.
package classify

import (
	"fmt"
	"strings"

	"github.com/matsen/bibapa/internal/reference"
)

// Category is the output bucket a record is assigned to.
type Category int

const (
	Publication Category = iota
	Conference
	Patent
)

// Categories lists every category in output order.
var Categories = []Category{Publication, Conference, Patent}

// String returns the lower-case category name.
func (c Category) String() string {
	switch c {
	case Publication:
		return "publication"
	case Conference:
		return "conference"
	case Patent:
		return "patent"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Heading returns the section heading for the category.
func (c Category) Heading() string {
	switch c {
	case Publication:
		return "Publications"
	case Conference:
		return "Conferences"
	case Patent:
		return "Patents"
	}
	return ""
}

// FileStem returns the output document name, without extension.
func (c Category) FileStem() string {
	return strings.ToLower(c.Heading())
}

// ParseCategory parses a category name. Singular and plural forms are accepted.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "publication", "publications":
		return Publication, nil
	case "conference", "conferences":
		return Conference, nil
	case "patent", "patents":
		return Patent, nil
	}
	return 0, fmt.Errorf("unknown category: %q (valid: publication, conference, patent)", s)
}

var (
	conferenceTypes = map[string]bool{
		"inproceedings": true,
		"conference":    true,
	}

	publicationTypes = map[string]bool{
		"article":       true,
		"book":          true,
		"booklet":       true,
		"manual":        true,
		"mastersthesis": true,
		"phdthesis":     true,
		"techreport":    true,
	}

	// conferenceKeywords are matched as lower-case substrings of booktitle and journal.
	conferenceKeywords = []string{"conference", "meeting", "workshop", "symposium", "agu"}
)

// Result holds classified records. Each slice preserves input order.
type Result struct {
	Publications []reference.Record
	Conferences  []reference.Record
	Patents      []reference.Record

	// Dropped holds records that matched no category. They are never emitted.
	Dropped []reference.Record
}

// Records returns the records for a category.
func (r Result) Records(c Category) []reference.Record {
	switch c {
	case Publication:
		return r.Publications
	case Conference:
		return r.Conferences
	case Patent:
		return r.Patents
	}
	return nil
}

// Classify partitions records. The first matching rule wins:
// patent, then conference, then publication. Records matching none
// are collected in Dropped.
func Classify(records []reference.Record) Result {
	var res Result
	for _, rec := range records {
		cat, ok := CategoryOf(rec)
		if !ok {
			res.Dropped = append(res.Dropped, rec)
			continue
		}
		switch cat {
		case Patent:
			res.Patents = append(res.Patents, rec)
		case Conference:
			res.Conferences = append(res.Conferences, rec)
		case Publication:
			res.Publications = append(res.Publications, rec)
		}
	}
	return res
}

// CategoryOf returns the category for a single record, or false if the
// record matches no rule.
func CategoryOf(rec reference.Record) (Category, bool) {
	entryType := strings.ToLower(rec.EntryType())

	if entryType == "patent" || strings.ToLower(rec.RawType()) == "patent" {
		return Patent, true
	}

	if conferenceTypes[entryType] ||
		hasConferenceKeyword(rec.Get("booktitle")) ||
		hasConferenceKeyword(rec.Get("journal")) {
		return Conference, true
	}

	if publicationTypes[entryType] {
		return Publication, true
	}

	return 0, false
}

func hasConferenceKeyword(venue string) bool {
	if venue == "" {
		return false
	}
	venue = strings.ToLower(venue)
	for _, kw := range conferenceKeywords {
		if strings.Contains(venue, kw) {
			return true
		}
	}
	return false
}
