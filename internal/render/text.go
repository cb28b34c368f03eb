// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/reverse-researcher/internal/evidence"
	"github.com/pdiddy/reverse-researcher/internal/research"
	"github.com/pdiddy/reverse-researcher/pkg/types"
)

// Text writes the page for a terminal: underlined headings, • bullets,
// numbered items, citations as [n], and a numbered source list after each
// section.
func Text(w io.Writer, p Page) error {
	bw := bufio.NewWriter(w)
	underline(bw, p.Title(), '=')

	for _, sec := range p.Sections {
		bw.WriteByte('\n')
		underline(bw, sec.Title, '=')
		if sec.Stance == types.StanceFollowUp && p.Question != "" {
			fmt.Fprintf(bw, "Q: %s\n", p.Question)
		}
		WriteDocument(bw, sec.Document)
		WriteSources(bw, sec)
	}
	return bw.Flush()
}

// WriteSources writes the section's numbered source list as terminal text.
// It writes nothing when the section has no citations.
func WriteSources(w io.Writer, sec research.Section) {
	entries := SourceList(sec)
	if len(entries) == 0 {
		return
	}
	fmt.Fprint(w, "\nSources:\n")
	for _, e := range entries {
		line := e.URL
		if line == "" {
			line = "(no source)"
		} else if e.Title != "" {
			line = e.Title + " - " + e.URL
		}
		fmt.Fprintf(w, "  [%d] %s\n", e.N, line)
	}
}

// WriteDocument writes one formatted document as terminal text, each block
// preceded by a blank line.
func WriteDocument(w io.Writer, doc types.Document) {
	for _, block := range doc.Blocks {
		fmt.Fprintln(w)
		switch block.Kind {
		case types.BlockHeading:
			underline(w, evidence.InlineText(block.Inlines), '-')
		case types.BlockParagraph:
			fmt.Fprintln(w, evidence.InlineText(block.Inlines))
		case types.BlockBulletList:
			for _, item := range block.Items {
				fmt.Fprintf(w, "  • %s\n", evidence.InlineText(item))
			}
		case types.BlockOrderedList:
			for i, item := range block.Items {
				fmt.Fprintf(w, "  %d. %s\n", i+1, evidence.InlineText(item))
			}
		case types.BlockRule:
			fmt.Fprintln(w, strings.Repeat("─", 40))
		}
	}
}

func underline(w io.Writer, s string, c rune) {
	fmt.Fprintln(w, s)
	fmt.Fprintln(w, strings.Repeat(string(c), utf8.RuneCountInString(s)))
}
