// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/reverse-researcher/internal/research"
	"github.com/pdiddy/reverse-researcher/pkg/types"
)

// SessionExport is the structured form of a session: the stored record
// plus the formatted document of each section.
type SessionExport struct {
	Session  types.Session   `json:"session" yaml:"session"`
	Sections []SectionExport `json:"sections" yaml:"sections"`
}

// SectionExport is one formatted section in a structured export.
type SectionExport struct {
	Stance   types.Stance   `json:"stance" yaml:"stance"`
	Title    string         `json:"title" yaml:"title"`
	Document types.Document `json:"document" yaml:"document"`
}

// NewSessionExport formats the session's sections for export.
func NewSessionExport(s types.Session) SessionExport {
	secs := research.Sections(s)
	out := SessionExport{Session: s, Sections: make([]SectionExport, len(secs))}
	for i, sec := range secs {
		out.Sections[i] = SectionExport{Stance: sec.Stance, Title: sec.Title, Document: sec.Document}
	}
	return out
}

// Structured writes the session as indented JSON or YAML.
func Structured(w io.Writer, format types.ExportFormat, s types.Session) error {
	return Encode(w, format, NewSessionExport(s))
}

// Encode writes v as indented JSON or YAML.
func Encode(w io.Writer, format types.ExportFormat, v any) error {
	switch format {
	case types.ExportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	case types.ExportYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("format %q is not structured", format)
}
