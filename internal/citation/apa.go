package citation

import (
	"strings"

	"github.com/matsen/bibapa/internal/classify"
	"github.com/matsen/bibapa/internal/reference"
)

// Format renders a record as an APA-style citation for the given category.
// Segments are emitted in order (authors, date, title, source, publisher,
// locator), each only when its fields are present.
func Format(rec reference.Record, cat classify.Category) Fragment {
	var f Fragment

	// Authors
	if author, ok := rec.Field("author"); ok {
		f = f.plain(formatAuthors(author) + ". ")
	}

	// Year (and month)
	if year, ok := rec.Field("year"); ok {
		if month, ok := rec.Field("month"); ok {
			f = f.plain("(" + year + ", " + month + "). ")
		} else {
			f = f.plain("(" + year + "). ")
		}
	}

	// Title
	if title, ok := rec.Field("title"); ok {
		f = f.plain(title + ". ")
	}

	// Venue
	switch cat {
	case classify.Conference:
		f = formatConferenceSource(f, rec)
	case classify.Patent:
		if journal, ok := rec.Field("journal"); ok {
			f = f.plain(journal + ".")
		}
	default:
		f = formatJournalSource(f, rec)
		if publisher, ok := rec.Field("publisher"); ok {
			f = f.plain(" " + publisher + ".")
		}
	}

	// URL wins over DOI
	if url, ok := rec.Field("url"); ok {
		f = f.plain(" Retrieved from " + url)
	} else if doi, ok := rec.Field("doi"); ok {
		f = f.plain(" https://doi.org/" + doi)
	}

	return f
}

// formatConferenceSource appends "In <name>" with the name italicized,
// then the paper number or page range.
func formatConferenceSource(f Fragment, rec reference.Record) Fragment {
	name, ok := rec.Field("booktitle")
	if !ok {
		name = rec.Get("journal")
	}
	if name != "" {
		f = f.plain("In ").italic(name)
	}

	if number, ok := rec.Field("number"); ok {
		f = f.plain(" (No. " + number + ").")
	} else if pages, ok := rec.Field("pages"); ok {
		f = f.plain(" (pp. " + pages + ").")
	}
	return f
}

// formatJournalSource appends "<journal>, volume(number), pages." with the
// journal italicized.
func formatJournalSource(f Fragment, rec reference.Record) Fragment {
	if journal, ok := rec.Field("journal"); ok {
		f = f.italic(journal)
	}
	if volume, ok := rec.Field("volume"); ok {
		f = f.plain(", " + volume)
	}
	if number, ok := rec.Field("number"); ok {
		f = f.plain("(" + number + ")")
	}
	if pages, ok := rec.Field("pages"); ok {
		f = f.plain(", " + pages + ".")
	}
	return f
}

// formatAuthors converts a BibTeX author list ("Last, First and Last, First")
// to "First Last, First Last, & First Last".
func formatAuthors(author string) string {
	parts := strings.Split(author, " and ")
	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = formatName(p)
	}

	if len(names) < 2 {
		return names[0]
	}
	last := len(names) - 1
	return strings.Join(names[:last], ", ") + ", & " + names[last]
}

// formatName reorders "Last, First" to "First Last". Names without a comma
// are returned trimmed.
func formatName(name string) string {
	last, first, found := strings.Cut(name, ",")
	if !found {
		return strings.TrimSpace(name)
	}
	return strings.TrimSpace(first) + " " + strings.TrimSpace(last)
}
