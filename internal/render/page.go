// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render presents a research session as a printable HTML page,
// Markdown, terminal text, or a structured JSON or YAML dump. Renderers
// consume formatted documents and never parse raw response text.
package render

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/pdiddy/reverse-researcher/internal/research"
	"github.com/pdiddy/reverse-researcher/pkg/types"
)

// Page is everything a renderer needs to present one session.
type Page struct {
	Conclusion string
	Question   string
	Sections   []research.Section
}

// NewPage formats the session's findings into a Page.
func NewPage(s types.Session) Page {
	return Page{
		Conclusion: s.Conclusion,
		Question:   s.Question,
		Sections:   research.Sections(s),
	}
}

// Title is the page heading.
func (p Page) Title() string {
	return `Research Results: "` + p.Conclusion + `"`
}

// SourceEntry is one numbered line of a section's source list.
type SourceEntry struct {
	N     int
	URL   string
	Title string
}

// Safe reports whether the entry's URL may be emitted as a link.
func (e SourceEntry) Safe() bool {
	return SafeURL(e.URL)
}

// SourceList numbers the section's citations from 1, attaching a title
// from the search results when one shares the URL. Empty citation entries
// keep their number so the list lines up with the [n] markers.
func SourceList(sec research.Section) []SourceEntry {
	titles := make(map[string]string, len(sec.Sources))
	for _, s := range sec.Sources {
		if s.Title != "" {
			titles[s.URL] = s.Title
		}
	}
	out := make([]SourceEntry, len(sec.Citations))
	for i, u := range sec.Citations {
		out[i] = SourceEntry{N: i + 1, URL: u, Title: titles[u]}
	}
	return out
}

// SafeURL reports whether u is an absolute http or https URL.
func SafeURL(u string) bool {
	parsed, err := url.Parse(strings.TrimSpace(u))
	if err != nil || parsed.Host == "" {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return true
	}
	return false
}

// Render writes the session in the given format.
func Render(w io.Writer, format types.ExportFormat, s types.Session) error {
	switch format {
	case types.ExportHTML:
		return HTML(w, NewPage(s))
	case types.ExportMarkdown:
		return Markdown(w, NewPage(s))
	case types.ExportText, "":
		return Text(w, NewPage(s))
	case types.ExportJSON, types.ExportYAML:
		return Structured(w, format, s)
	}
	return fmt.Errorf("unknown export format %q: use html, markdown, text, json, or yaml", format)
}

// ParseFormat validates s as an export format. An empty string means text.
func ParseFormat(s string) (types.ExportFormat, error) {
	switch f := types.ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return types.ExportText, nil
	case "md":
		return types.ExportMarkdown, nil
	case "yml":
		return types.ExportYAML, nil
	case types.ExportHTML, types.ExportMarkdown, types.ExportText, types.ExportJSON, types.ExportYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q: use html, markdown, text, json, or yaml", s)
}
