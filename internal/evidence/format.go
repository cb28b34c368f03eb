// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evidence turns raw evidence responses from the completion API into
// structured documents. Format recognizes headings (markdown-style and bare
// section titles), horizontal rules, bullet and numbered lists, bold spans,
// and numbered [n] citation markers, and resolves each marker against the
// response's ordered citation list.
//
// Format is a pure function: it never fails, performs no I/O, and may be
// called concurrently. Input it cannot interpret stays as paragraph text.
package evidence

import (
	"regexp"
	"strings"

	"github.com/pdiddy/reverse-researcher/pkg/types"
)

var (
	// headingRe matches markdown-style headings of one to three #.
	headingRe = regexp.MustCompile(`^#{1,3}\s*(.+)$`)

	// orderedItemRe matches numbered list items like "1. First".
	orderedItemRe = regexp.MustCompile(`^\d+\.\s+(.+)$`)

	// bulletItemRe matches "- item" and "• item".
	bulletItemRe = regexp.MustCompile(`^[-•]\s+(.+)$`)
)

const ruleLine = "---"

// sectionKeywords are bare lines the upstream model emits as section titles.
// A line must equal one of these exactly to become a heading.
var sectionKeywords = map[string]bool{
	"Approach":               true,
	"Findings":               true,
	"Evidence":               true,
	"Conclusion":             true,
	"Summary":                true,
	"Reliability Assessment": true,
	"Source Reliability":     true,
	"Supporting Evidence":    true,
	"Opposing Evidence":      true,
}

// IsSectionKeyword reports whether line, once trimmed, is one of the bare
// section titles promoted to headings.
func IsSectionKeyword(line string) bool {
	return sectionKeywords[strings.TrimSpace(line)]
}

// Format converts raw response text and its citation list into a Document.
// Marker [n] resolves to citations[n-1]; markers without an entry keep their
// number and render unlinked. Empty or all-whitespace text yields a document
// with no blocks.
func Format(raw string, citations []string) types.Document {
	text := strings.TrimSpace(strings.ReplaceAll(raw, "\r\n", "\n"))
	if text == "" {
		return types.Document{}
	}

	b := builder{citations: citations}
	for _, line := range strings.Split(text, "\n") {
		b.line(strings.TrimSpace(line))
	}
	b.flush()
	return b.doc
}

// builder accumulates blocks line by line. At most one of para and list is
// open at a time.
type builder struct {
	citations []string
	doc       types.Document

	para     []types.Inline
	paraOpen bool
	list     *types.Block
}

func (b *builder) line(line string) {
	switch {
	case line == "":
		b.flush()

	case line == ruleLine:
		b.flush()
		b.emit(types.Rule())

	case headingRe.MatchString(line):
		b.flush()
		m := headingRe.FindStringSubmatch(line)
		b.emit(types.Heading(b.inline(strings.TrimSpace(m[1]))...))

	case IsSectionKeyword(line):
		b.flush()
		b.emit(types.Heading(b.inline(line)...))

	case orderedItemRe.MatchString(line):
		m := orderedItemRe.FindStringSubmatch(line)
		b.item(types.BlockOrderedList, m[1])

	case bulletItemRe.MatchString(line):
		m := bulletItemRe.FindStringSubmatch(line)
		b.item(types.BlockBulletList, m[1])

	default:
		b.flushList()
		if b.paraOpen {
			b.para = appendInlines(b.para, types.Text("\n"))
		}
		b.para = appendInlines(b.para, b.inline(line)...)
		b.paraOpen = true
	}
}

// item appends a list entry, starting a new list block when the open one
// is of a different kind.
func (b *builder) item(kind types.BlockKind, content string) {
	b.flushPara()
	if b.list != nil && b.list.Kind != kind {
		b.flushList()
	}
	if b.list == nil {
		b.list = &types.Block{Kind: kind}
	}
	b.list.Items = append(b.list.Items, types.ListItem(b.inline(content)))
}

func (b *builder) inline(s string) []types.Inline {
	return parseInline(s, b.citations)
}

func (b *builder) emit(block types.Block) {
	b.doc.Blocks = append(b.doc.Blocks, block)
}

func (b *builder) flushPara() {
	if !b.paraOpen {
		return
	}
	b.emit(types.Paragraph(b.para...))
	b.para = nil
	b.paraOpen = false
}

func (b *builder) flushList() {
	if b.list == nil {
		return
	}
	b.emit(*b.list)
	b.list = nil
}

func (b *builder) flush() {
	b.flushPara()
	b.flushList()
}
