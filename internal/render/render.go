// Package render writes citation sections as documents.
package render

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matsen/bibapa/internal/section"
)

// Format selects the output document format.
type Format string

const (
	DOCX     Format = "docx"
	Markdown Format = "markdown"
	HTML     Format = "html"
	Text     Format = "text"
	YAML     Format = "yaml"
)

// ValidFormats lists the supported format names.
var ValidFormats = []Format{DOCX, Markdown, HTML, Text, YAML}

// ParseFormat parses a format name. Common extensions are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "docx", "word":
		return DOCX, nil
	case "markdown", "md":
		return Markdown, nil
	case "html", "htm":
		return HTML, nil
	case "text", "txt", "plain":
		return Text, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("invalid format: %s (valid: %v)", s, ValidFormats)
}

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	switch f {
	case Markdown:
		return ".md"
	case HTML:
		return ".html"
	case Text:
		return ".txt"
	case YAML:
		return ".yaml"
	}
	return ".docx"
}

// SupportsStyling reports whether italic runs survive in this format.
// Formats without styling fall back to plain text.
func (f Format) SupportsStyling() bool {
	return f != Text
}

// Render writes one section as a complete document in the given format.
func Render(w io.Writer, s section.Section, f Format) error {
	switch f {
	case DOCX:
		return renderDOCX(w, s)
	case Markdown:
		return renderMarkdown(w, s)
	case HTML:
		return renderHTML(w, s)
	case Text:
		return renderText(w, s)
	case YAML:
		return renderYAML(w, s)
	}
	return fmt.Errorf("invalid format: %s", f)
}

// OutputPath returns the document path for a section inside dir.
func OutputPath(dir string, s section.Section, f Format) string {
	return filepath.Join(dir, s.Category.FileStem()+f.Extension())
}

// WriteSections writes one document per section into dir and returns the
// written paths. All sections are rendered before any file is created, and
// a failed write removes the files already written.
func WriteSections(dir string, sections []section.Section, f Format) ([]string, error) {
	rendered := make([][]byte, len(sections))
	for i, s := range sections {
		var buf bytes.Buffer
		if err := Render(&buf, s, f); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", s.Heading, err)
		}
		rendered[i] = buf.Bytes()
	}

	paths := make([]string, 0, len(sections))
	for i, s := range sections {
		path := OutputPath(dir, s, f)
		if err := writeFile(path, rendered[i]); err != nil {
			for _, p := range paths {
				os.Remove(p)
			}
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
