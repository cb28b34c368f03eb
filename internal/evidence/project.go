// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"fmt"
	"strings"

	"github.com/pdiddy/reverse-researcher/pkg/types"
)

// PlainText projects a document back into the text syntax Format reads.
// Headings are written as "## text", bullets as "- item", ordered items are
// renumbered from 1, bold is re-wrapped in ** and citations are written as
// [ref]. Blocks are separated by a blank line, so formatting the projection
// with the same citations reproduces the document.
func PlainText(doc types.Document) string {
	var b strings.Builder
	for i, block := range doc.Blocks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch block.Kind {
		case types.BlockHeading:
			b.WriteString("## ")
			writeRuns(&b, block.Inlines)
		case types.BlockParagraph:
			writeRuns(&b, block.Inlines)
		case types.BlockBulletList:
			for j, item := range block.Items {
				if j > 0 {
					b.WriteByte('\n')
				}
				b.WriteString("- ")
				writeRuns(&b, item)
			}
		case types.BlockOrderedList:
			for j, item := range block.Items {
				if j > 0 {
					b.WriteByte('\n')
				}
				fmt.Fprintf(&b, "%d. ", j+1)
				writeRuns(&b, item)
			}
		case types.BlockRule:
			b.WriteString(ruleLine)
		}
	}
	return b.String()
}

// InlineText returns the text of runs with markup removed: bold content is
// kept and citations are written as [ref].
func InlineText(runs []types.Inline) string {
	var b strings.Builder
	for _, r := range runs {
		switch r.Kind {
		case types.InlineText:
			b.WriteString(r.Text)
		case types.InlineBold:
			b.WriteString(InlineText(r.Children))
		case types.InlineCitation:
			b.WriteString("[" + r.Ref + "]")
		}
	}
	return b.String()
}

func writeRuns(b *strings.Builder, runs []types.Inline) {
	for _, r := range runs {
		switch r.Kind {
		case types.InlineText:
			b.WriteString(r.Text)
		case types.InlineBold:
			b.WriteString("**")
			writeRuns(b, r.Children)
			b.WriteString("**")
		case types.InlineCitation:
			b.WriteString("[" + r.Ref + "]")
		}
	}
}

// CitedRefs returns the reference of every citation run in document order,
// including runs nested in bold spans. A marker cited twice appears twice.
func CitedRefs(doc types.Document) []string {
	var refs []string
	var walk func(runs []types.Inline)
	walk = func(runs []types.Inline) {
		for _, r := range runs {
			switch r.Kind {
			case types.InlineCitation:
				refs = append(refs, r.Ref)
			case types.InlineBold:
				walk(r.Children)
			}
		}
	}
	for _, block := range doc.Blocks {
		walk(block.Inlines)
		for _, item := range block.Items {
			walk(item)
		}
	}
	return refs
}
