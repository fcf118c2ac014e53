// Package report aggregates plan reports into run summaries and
// encodes them as JSON, YAML or Markdown.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects the encoding a Writer produces.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// ParseFormat converts a case-insensitive format name. The empty
// string means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// Extension returns the file extension for f, dot included.
func (f Format) Extension() string {
	switch f {
	case FormatYAML:
		return ".yaml"
	case FormatMarkdown:
		return ".md"
	default:
		return ".json"
	}
}

// Writer encodes summaries in one format. Pretty only affects
// JSON.
type Writer struct {
	Format Format
	Pretty bool
}

// NewWriter creates a Writer for format.
func NewWriter(format Format, pretty bool) *Writer {
	return &Writer{Format: format, Pretty: pretty}
}

// Encode renders s in the writer's format.
func (w *Writer) Encode(s *Summary) ([]byte, error) {
	switch w.Format {
	case FormatYAML:
		return yaml.Marshal(s)
	case FormatMarkdown:
		return []byte(Markdown(s)), nil
	case FormatJSON, "":
		if w.Pretty {
			return json.MarshalIndent(s, "", "  ")
		}
		return json.Marshal(s)
	}
	return nil, fmt.Errorf("unknown report format %q", w.Format)
}

// Write encodes s to out.
func (w *Writer) Write(out io.Writer, s *Summary) error {
	data, err := w.Encode(s)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
