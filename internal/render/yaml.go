package render

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/matsen/bibapa/internal/citation"
	"github.com/matsen/bibapa/internal/section"
)

// yamlSection is the YAML document layout for a section.
type yamlSection struct {
	Category  string         `yaml:"category"`
	Heading   string         `yaml:"heading"`
	Citations []yamlCitation `yaml:"citations"`
}

type yamlCitation struct {
	Key  string         `yaml:"key"`
	Text string         `yaml:"text"`
	Runs []citation.Run `yaml:"runs"`
}

func renderYAML(w io.Writer, s section.Section) error {
	doc := yamlSection{
		Category:  s.Category.String(),
		Heading:   s.Heading,
		Citations: make([]yamlCitation, len(s.Citations)),
	}
	for i, c := range s.Citations {
		var key string
		if i < len(s.Keys) {
			key = s.Keys[i]
		}
		doc.Citations[i] = yamlCitation{Key: key, Text: c.Text(), Runs: c}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
