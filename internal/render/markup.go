package render

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/matsen/bibapa/internal/citation"
	"github.com/matsen/bibapa/internal/section"
)

// markdownEscaper escapes characters that would otherwise start markup.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
)

func renderMarkdown(w io.Writer, s section.Section) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %s\n", markdownEscaper.Replace(s.Heading))
	for _, c := range s.Citations {
		bw.WriteString("\n")
		bw.WriteString(MarkdownCitation(c))
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// MarkdownCitation renders a citation with italic runs as *emphasis*.
func MarkdownCitation(c citation.Fragment) string {
	var b strings.Builder
	for _, r := range c {
		text := markdownEscaper.Replace(r.Text)
		if r.Italic {
			b.WriteString("*" + text + "*")
		} else {
			b.WriteString(text)
		}
	}
	return b.String()
}

func renderHTML(w io.Writer, s section.Section) error {
	bw := bufio.NewWriter(w)
	heading := html.EscapeString(s.Heading)
	bw.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(bw, "<title>%s</title>\n</head>\n<body>\n<h1>%s</h1>\n", heading, heading)
	for _, c := range s.Citations {
		fmt.Fprintf(bw, "<p>%s</p>\n", HTMLCitation(c))
	}
	bw.WriteString("</body>\n</html>\n")
	return bw.Flush()
}

// HTMLCitation renders a citation with italic runs wrapped in <em>.
func HTMLCitation(c citation.Fragment) string {
	var b strings.Builder
	for _, r := range c {
		text := html.EscapeString(r.Text)
		if r.Italic {
			b.WriteString("<em>" + text + "</em>")
		} else {
			b.WriteString(text)
		}
	}
	return b.String()
}

// renderText writes the section without styling.
func renderText(w io.Writer, s section.Section) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(s.Heading + "\n")
	bw.WriteString(strings.Repeat("=", len([]rune(s.Heading))) + "\n")
	for _, c := range s.Citations {
		bw.WriteString("\n" + c.Text() + "\n")
	}
	return bw.Flush()
}
