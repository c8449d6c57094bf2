// Package reference defines the core domain type for bibliography entries.
package reference

import "strings"

// Record represents one parsed bibliography entry.
// Records are immutable: the field map is copied on construction and only
// read accessors are exported.
type Record struct {
	key       string
	entryType string
	fields    map[string]string
}

// NewRecord creates a record from a citation key, entry type, and fields.
// The entry type and field names are lower-cased; values are kept verbatim.
func NewRecord(key, entryType string, fields map[string]string) Record {
	copied := make(map[string]string, len(fields))
	for name, value := range fields {
		copied[strings.ToLower(name)] = value
	}
	return Record{
		key:       key,
		entryType: strings.ToLower(entryType),
		fields:    copied,
	}
}

// Key returns the citation key.
func (r Record) Key() string { return r.key }

// EntryType returns the lower-cased entry type (article, inproceedings, patent...).
func (r Record) EntryType() string { return r.entryType }

// RawType returns the optional "type" field, used for patent detection.
func (r Record) RawType() string { return r.Get("type") }

// Field returns a field value and whether the field is present.
// A present field may hold an empty string.
func (r Record) Field(name string) (string, bool) {
	v, ok := r.fields[strings.ToLower(name)]
	return v, ok
}

// Get returns a field value, or "" if absent.
func (r Record) Get(name string) string {
	v, _ := r.Field(name)
	return v
}

// Has reports whether a field is present.
func (r Record) Has(name string) bool {
	_, ok := r.Field(name)
	return ok
}

// NumFields returns the number of fields on the record.
func (r Record) NumFields() int { return len(r.fields) }
