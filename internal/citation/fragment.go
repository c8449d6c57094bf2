// Package citation renders bibliography records as APA-style citations.
package citation

import "strings"

// Run is a span of citation text with a single style.
type Run struct {
	Text   string `json:"text" yaml:"text"`
	Italic bool   `json:"italic,omitempty" yaml:"italic,omitempty"`
}

// Fragment is an ordered sequence of styled runs making up one citation.
// Adjacent runs never share the same style.
type Fragment []Run

// Text returns the citation with styling dropped.
func (f Fragment) Text() string {
	var b strings.Builder
	for _, r := range f {
		b.WriteString(r.Text)
	}
	return b.String()
}

func (f Fragment) plain(s string) Fragment  { return f.add(s, false) }
func (f Fragment) italic(s string) Fragment { return f.add(s, true) }

// add appends text, merging it into the last run when the style matches.
func (f Fragment) add(s string, italic bool) Fragment {
	if s == "" {
		return f
	}
	if n := len(f); n > 0 && f[n-1].Italic == italic {
		f[n-1].Text += s
		return f
	}
	return append(f, Run{Text: s, Italic: italic})
}
