// Package section assembles classified, formatted citations into document sections.
package section

import (
	"github.com/matsen/bibapa/internal/citation"
	"github.com/matsen/bibapa/internal/classify"
	"github.com/matsen/bibapa/internal/reference"
)

// Include selects which categories produce sections.
type Include struct {
	Publications bool
	Conferences  bool
	Patents      bool
}

// IncludeAll enables every category.
func IncludeAll() Include {
	return Include{Publications: true, Conferences: true, Patents: true}
}

// Enabled reports whether a category is selected.
func (in Include) Enabled(c classify.Category) bool {
	switch c {
	case classify.Publication:
		return in.Publications
	case classify.Conference:
		return in.Conferences
	case classify.Patent:
		return in.Patents
	}
	return false
}

// Section is one document section: a heading and one citation per record,
// in classifier order. Keys[i] is the citation key of Citations[i].
type Section struct {
	Category  classify.Category
	Heading   string
	Keys      []string
	Citations []citation.Fragment
}

// ClassifyAndFormat classifies records and formats a section for each
// enabled category that has at least one record. Sections appear in the
// order publications, conferences, patents.
func ClassifyAndFormat(records []reference.Record, include Include) []Section {
	return FromResult(classify.Classify(records), include)
}

// FromResult builds sections from an existing classification.
func FromResult(res classify.Result, include Include) []Section {
	var sections []Section
	for _, cat := range classify.Categories {
		recs := res.Records(cat)
		if !include.Enabled(cat) || len(recs) == 0 {
			continue
		}

		s := Section{
			Category:  cat,
			Heading:   cat.Heading(),
			Keys:      make([]string, len(recs)),
			Citations: make([]citation.Fragment, len(recs)),
		}
		for i, rec := range recs {
			s.Keys[i] = rec.Key()
			s.Citations[i] = citation.Format(rec, cat)
		}
		sections = append(sections, s)
	}
	return sections
}
