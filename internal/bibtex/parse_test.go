package bibtex

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleBib = `% Sample bibliography
@string{nat = "Nature"}

@Article{Lee2020,
  Author  = {Lee, A.},
  title   = {{DNA} Repair in {E. coli}},
  journal = nat,
  year    = 2020,
  month   = mar,
  volume  = "5",
  number  = {2},
  pages   = {10--20},
  doi     = {10.1/x},
}

@comment{This entry is ignored {even with braces}}

@inproceedings(Smith2019,
  author    = "Smith, John and Doe, Jane",
  title     = "A Talk about " # nat,
  booktitle = {Proceedings of the
               AGU Fall Meeting},
  year      = {2019}
)

@patent{Roe2018, title = {Widget}, type = {Patent}}
`

func TestParse_Sample(t *testing.T) {
	records, err := Parse(strings.NewReader(sampleBib))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Parse() returned %d records, want 3", len(records))
	}

	lee := records[0]
	if lee.Key() != "Lee2020" || lee.EntryType() != "article" {
		t.Errorf("first record = %s/%s, want Lee2020/article", lee.Key(), lee.EntryType())
	}

	tests := []struct {
		field string
		want  string
	}{
		{"author", "Lee, A."},
		{"title", "{DNA} Repair in {E. coli}"},
		{"journal", "Nature"},
		{"year", "2020"},
		{"month", "March"},
		{"volume", "5"},
		{"number", "2"},
		{"pages", "10--20"},
		{"doi", "10.1/x"},
	}
	for _, tt := range tests {
		if got := lee.Get(tt.field); got != tt.want {
			t.Errorf("Lee2020.%s = %q, want %q", tt.field, got, tt.want)
		}
	}

	smith := records[1]
	if smith.EntryType() != "inproceedings" {
		t.Errorf("Smith2019 entry type = %q", smith.EntryType())
	}
	if got := smith.Get("title"); got != "A Talk about Nature" {
		t.Errorf("concatenated title = %q", got)
	}
	if got := smith.Get("booktitle"); got != "Proceedings of the AGU Fall Meeting" {
		t.Errorf("multi-line booktitle = %q", got)
	}

	roe := records[2]
	if roe.RawType() != "Patent" {
		t.Errorf("Roe2018 type field = %q", roe.RawType())
	}
}

func TestParse_PreservesOrder(t *testing.T) {
	input := `@misc{a, title={A}} @book{b, title={B}} @article{c, title={C}}`
	records, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	var got []string
	for _, r := range records {
		got = append(got, r.Key())
	}
	if strings.Join(got, ",") != "a,b,c" {
		t.Errorf("keys = %v, want [a b c]", got)
	}
}

func TestParse_EmptyFieldIsPresent(t *testing.T) {
	records, err := Parse(strings.NewReader(`@article{k, note = {}, title = {T},}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if v, ok := records[0].Field("note"); !ok || v != "" {
		t.Errorf("note = %q, present %v; want empty and present", v, ok)
	}
}

func TestParse_EntryWithoutFields(t *testing.T) {
	records, err := Parse(strings.NewReader(`@misc{lonely}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(records) != 1 || records[0].NumFields() != 0 {
		t.Errorf("got %d records, want one with no fields", len(records))
	}
}

func TestParse_LineComment(t *testing.T) {
	input := "@Comment jabref-meta: databaseType:bibtex;\n@article{k, title={T}}"
	records, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(records) != 1 || records[0].Key() != "k" {
		t.Errorf("got %d records, want the article only", len(records))
	}
}

func TestParse_AtSignInFreeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"email in percent comment", "% Maintained by jane@example.org\n@article{k, title={T}}\n"},
		{"email in plain text", "Contact: jane@example.org\n\n@article{k, title={T}}"},
		{"trailing at sign", "see @\n@article{k, title={T}}"},
		{"type without delimiter", "@article k\n@article{k, title={T}}"},
		{"text after entry", "@article{k, title={T}}\nsent to @bob on friday\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Parse(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(records) != 1 || records[0].Key() != "k" || records[0].Get("title") != "T" {
				t.Errorf("got %d records, want the article only", len(records))
			}
		})
	}
}

func TestParse_PreambleSkipped(t *testing.T) {
	input := `@preamble{"\newcommand{\noop}[1]{}"} @article{k, title={T}}`
	records, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want 1", len(records))
	}
}

func TestParse_DuplicateFieldLastWins(t *testing.T) {
	records, err := Parse(strings.NewReader(`@article{k, year={2019}, year={2020}}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := records[0].Get("year"); got != "2020" {
		t.Errorf("year = %q, want 2020", got)
	}
}

func TestParse_Empty(t *testing.T) {
	records, err := Parse(strings.NewReader("no entries here\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
		wantMsg  string
	}{
		{"missing entry type", "@{k, title={T}}", 1, "expected entry type"},
		{"unbalanced braces", "@article{k,\n  title = {Open", 2, "unbalanced braces"},
		{"unterminated quote", "@article{k, title = \"Open}", 1, "unterminated quoted value"},
		{"undefined macro", "@article{k,\n\n  journal = jnl}", 3, "undefined string macro"},
		{"missing equals", "@article{k, title {T}}", 1, "expected '='"},
		{"missing comma", "@article{k, title={T} year={2020}}", 1, "expected ',' or '}'"},
		{"truncated entry", "@article{k, title={T},", 1, "unexpected end of input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("Parse() expected error, got nil")
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error type = %T, want *ParseError", err)
			}
			if perr.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", perr.Line, tt.wantLine)
			}
			if !strings.Contains(perr.Message, tt.wantMsg) {
				t.Errorf("Message = %q, want to contain %q", perr.Message, tt.wantMsg)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "refs.bib")
	if err := os.WriteFile(path, []byte(sampleBib), 0644); err != nil {
		t.Fatalf("writing test file: %v", err)
	}

	records, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if len(records) != 3 {
		t.Errorf("ParseFile() returned %d records, want 3", len(records))
	}
}

func TestParseFile_NotFound(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.bib"))
	if err == nil {
		t.Error("ParseFile() should fail for a missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want wrapping os.ErrNotExist", err)
	}
}
