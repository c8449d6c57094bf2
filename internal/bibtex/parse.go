// Package bibtex parses BibTeX files into bibliography records.
package bibtex

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/matsen/bibapa/internal/reference"
)

// ParseError describes malformed BibTeX input.
type ParseError struct {
	Line    int    // Line number where the error occurred (1-indexed)
	Message string // Description of the error
	Context string // Offending source line
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// commonStrings are the month macros every BibTeX style predefines.
var commonStrings = map[string]string{
	"jan": "January",
	"feb": "February",
	"mar": "March",
	"apr": "April",
	"may": "May",
	"jun": "June",
	"jul": "July",
	"aug": "August",
	"sep": "September",
	"oct": "October",
	"nov": "November",
	"dec": "December",
}

// lineBreak matches a line break together with its surrounding indentation.
var lineBreak = regexp.MustCompile(`[ \t]*\r?\n[ \t]*`)

// ParseFile reads and parses a BibTeX file.
func ParseFile(path string) ([]reference.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening bibliography: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads BibTeX entries from r. @string definitions are expanded,
// @comment and @preamble blocks are skipped, and text outside entries is
// ignored. Field names and entry types are lower-cased.
func Parse(r io.Reader) ([]reference.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading bibliography: %w", err)
	}

	p := &parser{
		src:    string(data),
		macros: make(map[string]string, len(commonStrings)),
	}
	for k, v := range commonStrings {
		p.macros[k] = v
	}
	return p.parse()
}

type parser struct {
	src    string
	pos    int
	macros map[string]string
}

func (p *parser) parse() ([]reference.Record, error) {
	var records []reference.Record

	for {
		at := strings.IndexByte(p.src[p.pos:], '@')
		if at < 0 {
			return records, nil
		}
		p.pos += at + 1
		afterAt := p.pos

		p.skipSpace()
		entryType := strings.ToLower(p.readWhile(isIdentChar))
		p.skipSpace()

		// An '@' not followed by a type and an opening delimiter is free
		// text, such as an email address in a comment.
		if p.peek() != '{' && p.peek() != '(' {
			if entryType == "comment" {
				p.skipLine()
			} else {
				p.pos = afterAt
			}
			continue
		}
		if entryType == "" {
			return nil, p.errorf("expected entry type after '@'")
		}

		closer := p.openDelimiter()

		switch entryType {
		case "comment", "preamble":
			if err := p.skipBlock(closer); err != nil {
				return nil, err
			}
		case "string":
			if err := p.parseString(closer); err != nil {
				return nil, err
			}
		default:
			rec, err := p.parseEntry(entryType, closer)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
	}
}

// openDelimiter consumes '{' or '(' and returns the matching closer.
func (p *parser) openDelimiter() byte {
	c := p.src[p.pos]
	p.pos++
	if c == '(' {
		return ')'
	}
	return '}'
}

// parseString handles @string{name = value}.
func (p *parser) parseString(closer byte) error {
	p.skipSpace()
	name := strings.ToLower(p.readWhile(isIdentChar))
	if name == "" {
		return p.errorf("expected macro name in @string")
	}
	p.skipSpace()
	if p.peek() != '=' {
		return p.errorf("expected '=' after macro name %q", name)
	}
	p.pos++

	value, err := p.parseValue()
	if err != nil {
		return err
	}
	p.skipSpace()
	if p.peek() != closer {
		return p.errorf("expected '%c' to close @string", closer)
	}
	p.pos++

	p.macros[name] = value
	return nil
}

func (p *parser) parseEntry(entryType string, closer byte) (reference.Record, error) {
	p.skipSpace()
	key := strings.TrimSpace(p.readWhile(func(c byte) bool {
		return c != ',' && c != closer && !isSpace(c)
	}))
	p.skipSpace()

	fields := make(map[string]string)

	switch p.peek() {
	case closer:
		p.pos++
		return reference.NewRecord(key, entryType, fields), nil
	case ',':
		p.pos++
	default:
		return reference.Record{}, p.errorf("expected ',' after citation key %q", key)
	}

	for {
		p.skipSpace()
		if p.eof() {
			return reference.Record{}, p.errorf("unexpected end of input in entry %q", key)
		}
		if p.peek() == closer {
			p.pos++
			return reference.NewRecord(key, entryType, fields), nil
		}

		name := strings.ToLower(p.readWhile(isIdentChar))
		if name == "" {
			return reference.Record{}, p.errorf("expected field name in entry %q", key)
		}
		p.skipSpace()
		if p.peek() != '=' {
			return reference.Record{}, p.errorf("expected '=' after field %q in entry %q", name, key)
		}
		p.pos++

		value, err := p.parseValue()
		if err != nil {
			return reference.Record{}, err
		}
		fields[name] = value

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case closer:
			p.pos++
			return reference.NewRecord(key, entryType, fields), nil
		default:
			return reference.Record{}, p.errorf("expected ',' or '%c' after field %q in entry %q", closer, name, key)
		}
	}
}

// parseValue reads one or more value pieces joined by '#'.
func (p *parser) parseValue() (string, error) {
	var b strings.Builder
	for {
		p.skipSpace()
		piece, err := p.parsePiece()
		if err != nil {
			return "", err
		}
		b.WriteString(piece)

		p.skipSpace()
		if p.peek() != '#' {
			break
		}
		p.pos++
	}
	return lineBreak.ReplaceAllString(b.String(), " "), nil
}

func (p *parser) parsePiece() (string, error) {
	switch c := p.peek(); {
	case c == '{':
		return p.readBraced()
	case c == '"':
		return p.readQuoted()
	case isDigit(c):
		return p.readWhile(isDigit), nil
	case isIdentChar(c):
		name := p.readWhile(isIdentChar)
		value, ok := p.macros[strings.ToLower(name)]
		if !ok {
			return "", p.errorf("undefined string macro %q", name)
		}
		return value, nil
	case p.eof():
		return "", p.errorf("unexpected end of input, expected a value")
	default:
		return "", p.errorf("unexpected character %q, expected a value", c)
	}
}

// readBraced reads a {...} value, keeping nested braces and dropping the outer pair.
func (p *parser) readBraced() (string, error) {
	start := p.pos
	p.pos++ // opening brace
	depth := 1
	for ; p.pos < len(p.src); p.pos++ {
		switch p.src[p.pos] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				value := p.src[start+1 : p.pos]
				p.pos++
				return value, nil
			}
		}
	}
	p.pos = start
	return "", p.errorf("unbalanced braces in value")
}

// readQuoted reads a "..." value. Quotes inside braces do not terminate it.
func (p *parser) readQuoted() (string, error) {
	start := p.pos
	p.pos++ // opening quote
	depth := 0
	for ; p.pos < len(p.src); p.pos++ {
		switch p.src[p.pos] {
		case '{':
			depth++
		case '}':
			depth--
		case '"':
			if depth == 0 {
				value := p.src[start+1 : p.pos]
				p.pos++
				return value, nil
			}
		}
	}
	p.pos = start
	return "", p.errorf("unterminated quoted value")
}

// skipBlock skips the body of @comment or @preamble up to its closer.
func (p *parser) skipBlock(closer byte) error {
	start := p.pos
	depth := 0
	for ; p.pos < len(p.src); p.pos++ {
		c := p.src[p.pos]
		if c == closer && depth == 0 {
			p.pos++
			return nil
		}
		switch c {
		case '{':
			depth++
		case '}':
			depth--
		}
	}
	p.pos = start
	return p.errorf("unterminated block")
}

// skipLine skips to the end of the current line.
func (p *parser) skipLine() {
	if nl := strings.IndexByte(p.src[p.pos:], '\n'); nl >= 0 {
		p.pos += nl + 1
		return
	}
	p.pos = len(p.src)
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for !p.eof() && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) readWhile(ok func(byte) bool) string {
	start := p.pos
	for !p.eof() && ok(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

// errorf builds a ParseError positioned at the current offset.
func (p *parser) errorf(format string, args ...interface{}) error {
	pos := p.pos
	if pos > len(p.src) {
		pos = len(p.src)
	}
	lineStart := strings.LastIndexByte(p.src[:pos], '\n') + 1
	lineEnd := strings.IndexByte(p.src[pos:], '\n')
	if lineEnd < 0 {
		lineEnd = len(p.src)
	} else {
		lineEnd += pos
	}
	return &ParseError{
		Line:    strings.Count(p.src[:pos], "\n") + 1,
		Message: fmt.Sprintf(format, args...),
		Context: strings.TrimSpace(p.src[lineStart:lineEnd]),
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// isIdentChar reports whether c may appear in entry types, field names, and macro names.
func isIdentChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', isDigit(c):
		return true
	}
	return strings.IndexByte("_-:.+/'!?*", c) >= 0
}
