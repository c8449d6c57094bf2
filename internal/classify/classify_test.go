package classify

import (
	"reflect"
	"testing"

	"github.com/matsen/bibapa/internal/reference"
)

func rec(key, entryType string, fields map[string]string) reference.Record {
	return reference.NewRecord(key, entryType, fields)
}

func keys(records []reference.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Key())
	}
	return out
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		name   string
		record reference.Record
		want   Category
		wantOK bool
	}{
		{"patent entry type", rec("p1", "patent", nil), Patent, true},
		{"patent type field any case", rec("p2", "misc", map[string]string{"type": "PATENT"}), Patent, true},
		{"patent wins over conference keyword", rec("p3", "patent", map[string]string{"booktitle": "Annual Conference"}), Patent, true},
		{"patent type field wins over article", rec("p4", "article", map[string]string{"type": "Patent", "journal": "Workshop"}), Patent, true},
		{"inproceedings", rec("c1", "inproceedings", nil), Conference, true},
		{"conference type", rec("c2", "conference", nil), Conference, true},
		{"article in workshop journal", rec("c3", "article", map[string]string{"journal": "Proc. Workshop on X"}), Conference, true},
		{"booktitle meeting", rec("c4", "misc", map[string]string{"booktitle": "Fall MEETING 2019"}), Conference, true},
		{"symposium journal", rec("c5", "book", map[string]string{"journal": "Symposium Series"}), Conference, true},
		{"agu lower case", rec("c6", "article", map[string]string{"journal": "agu fall abstracts"}), Conference, true},
		{"agu upper case booktitle", rec("c7", "misc", map[string]string{"booktitle": "AGU Workshop"}), Conference, true},
		{"article", rec("a1", "article", map[string]string{"journal": "Nature"}), Publication, true},
		{"book", rec("a2", "book", nil), Publication, true},
		{"booklet", rec("a3", "booklet", nil), Publication, true},
		{"manual", rec("a4", "manual", nil), Publication, true},
		{"mastersthesis", rec("a5", "mastersthesis", nil), Publication, true},
		{"phdthesis", rec("a6", "phdthesis", nil), Publication, true},
		{"techreport", rec("a7", "techreport", nil), Publication, true},
		{"misc without keywords is dropped", rec("d1", "misc", map[string]string{"journal": "Blog"}), 0, false},
		{"unpublished is dropped", rec("d2", "unpublished", nil), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CategoryOf(tt.record)
			if ok != tt.wantOK {
				t.Fatalf("CategoryOf() ok = %v, want %v", ok, tt.wantOK)
			}
			if tt.wantOK && got != tt.want {
				t.Errorf("CategoryOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassify_PreservesOrderAndPartitions(t *testing.T) {
	records := []reference.Record{
		rec("a1", "article", map[string]string{"journal": "Nature"}),
		rec("c1", "inproceedings", nil),
		rec("p1", "patent", nil),
		rec("d1", "misc", nil),
		rec("a2", "book", nil),
		rec("c2", "article", map[string]string{"journal": "International Workshop"}),
		rec("p2", "misc", map[string]string{"type": "patent"}),
		rec("a3", "phdthesis", nil),
	}

	res := Classify(records)

	checks := []struct {
		name string
		got  []reference.Record
		want []string
	}{
		{"Publications", res.Publications, []string{"a1", "a2", "a3"}},
		{"Conferences", res.Conferences, []string{"c1", "c2"}},
		{"Patents", res.Patents, []string{"p1", "p2"}},
		{"Dropped", res.Dropped, []string{"d1"}},
	}
	for _, c := range checks {
		if got := keys(c.got); !reflect.DeepEqual(got, c.want) {
			t.Errorf("%s = %v, want %v", c.name, got, c.want)
		}
	}

	seen := make(map[string]Category)
	for _, c := range Categories {
		for _, r := range res.Records(c) {
			if prev, dup := seen[r.Key()]; dup {
				t.Fatalf("record %s in both %s and %s", r.Key(), prev, c)
			}
			seen[r.Key()] = c
		}
	}
	if len(seen) != len(records)-len(res.Dropped) {
		t.Errorf("classified %d records, want %d", len(seen), len(records)-len(res.Dropped))
	}
}

func TestClassify_Empty(t *testing.T) {
	res := Classify(nil)
	if len(res.Publications)+len(res.Conferences)+len(res.Patents)+len(res.Dropped) != 0 {
		t.Errorf("Classify(nil) = %+v, want empty", res)
	}
}

func TestClassify_DroppedRecordsInNoCategory(t *testing.T) {
	res := Classify([]reference.Record{rec("m", "misc", map[string]string{"title": "Slides"})})

	for _, c := range Categories {
		if n := len(res.Records(c)); n != 0 {
			t.Errorf("category %s has %d records, want 0", c, n)
		}
	}
	if got := keys(res.Dropped); !reflect.DeepEqual(got, []string{"m"}) {
		t.Errorf("Dropped = %v, want [m]", got)
	}
}

func TestCategory_Names(t *testing.T) {
	if got := Publication.String(); got != "publication" {
		t.Errorf("Publication.String() = %q", got)
	}
	if got := Conference.Heading(); got != "Conferences" {
		t.Errorf("Conference.Heading() = %q", got)
	}
	if got := Patent.FileStem(); got != "patents" {
		t.Errorf("Patent.FileStem() = %q", got)
	}
}

func TestParseCategory(t *testing.T) {
	for in, want := range map[string]Category{
		"publication": Publication,
		"Conferences": Conference,
		" patent ":    Patent,
	} {
		got, err := ParseCategory(in)
		if err != nil {
			t.Fatalf("ParseCategory(%q) error = %v", in, err)
		}
		if got != want {
			t.Errorf("ParseCategory(%q) = %s, want %s", in, got, want)
		}
	}

	if _, err := ParseCategory("misc"); err == nil {
		t.Error("ParseCategory(misc) should fail")
	}
}
