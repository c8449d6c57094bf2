package storage

import (
	"github.com/matsen/bibapa/internal/citation"
	"github.com/matsen/bibapa/internal/classify"
	"github.com/matsen/bibapa/internal/reference"
)

// EntriesFromRecords classifies and formats records into cache entries,
// keeping source order. Unmatched records get DroppedCategory and no citation.
func EntriesFromRecords(records []reference.Record) []Entry {
	entries := make([]Entry, len(records))
	for i, rec := range records {
		e := Entry{
			Key:       rec.Key(),
			EntryType: rec.EntryType(),
			Category:  DroppedCategory,
			Title:     rec.Get("title"),
			Position:  i,
		}
		if cat, ok := classify.CategoryOf(rec); ok {
			e.Category = cat.String()
			e.Citation = citation.Format(rec, cat).Text()
		}
		entries[i] = e
	}
	return entries
}
