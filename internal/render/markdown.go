// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/reverse-researcher/pkg/types"
)

// markdownEscaper neutralizes Markdown syntax and raw HTML in literal text.
// Angle brackets and ampersands become entities; the rest are backslash
// escaped.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"#", `\#`,
	"|", `\|`,
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// markdownURLEscaper percent-encodes the characters that would end a link
// destination early.
var markdownURLEscaper = strings.NewReplacer(
	"(", "%28",
	")", "%29",
	" ", "%20",
	"<", "%3C",
	">", "%3E",
	`\`, "%5C",
)

func markdownText(s string) string { return markdownEscaper.Replace(s) }

func markdownURL(u string) string { return markdownURLEscaper.Replace(strings.TrimSpace(u)) }

// Markdown writes the page as Markdown. Linked citations become [n](url)
// links; section titles are level-two headings and headings inside a
// response are level three. Response text is escaped so it reads literally.
func Markdown(w io.Writer, p Page) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %s\n", markdownText(p.Title()))

	for _, sec := range p.Sections {
		fmt.Fprintf(bw, "\n## %s\n", sec.Title)
		if sec.Stance == types.StanceFollowUp && p.Question != "" {
			fmt.Fprintf(bw, "\n> %s\n", markdownText(p.Question))
		}
		for _, block := range sec.Document.Blocks {
			bw.WriteByte('\n')
			writeMarkdownBlock(bw, block)
		}
		if entries := SourceList(sec); len(entries) > 0 {
			bw.WriteString("\n**Sources:**\n\n")
			for _, e := range entries {
				fmt.Fprintf(bw, "%d. %s\n", e.N, markdownSource(e))
			}
		}
	}
	return bw.Flush()
}

// MarkdownDocument writes one formatted document as Markdown, blocks
// separated by blank lines.
func MarkdownDocument(w io.Writer, doc types.Document) error {
	bw := bufio.NewWriter(w)
	for i, block := range doc.Blocks {
		if i > 0 {
			bw.WriteByte('\n')
		}
		writeMarkdownBlock(bw, block)
	}
	return bw.Flush()
}

func writeMarkdownBlock(w *bufio.Writer, block types.Block) {
	switch block.Kind {
	case types.BlockHeading:
		w.WriteString("### " + markdownRuns(block.Inlines) + "\n")
	case types.BlockParagraph:
		w.WriteString(markdownRuns(block.Inlines) + "\n")
	case types.BlockBulletList:
		for _, item := range block.Items {
			w.WriteString("- " + markdownRuns(item) + "\n")
		}
	case types.BlockOrderedList:
		for i, item := range block.Items {
			fmt.Fprintf(w, "%d. %s\n", i+1, markdownRuns(item))
		}
	case types.BlockRule:
		w.WriteString("---\n")
	}
}

func markdownRuns(runs []types.Inline) string {
	var b strings.Builder
	for _, r := range runs {
		switch r.Kind {
		case types.InlineText:
			b.WriteString(markdownText(r.Text))
		case types.InlineBold:
			b.WriteString("**" + markdownRuns(r.Children) + "**")
		case types.InlineCitation:
			if r.Linked() && SafeURL(r.URL) {
				fmt.Fprintf(&b, "[%s](%s)", r.Ref, markdownURL(r.URL))
			} else {
				fmt.Fprintf(&b, "[%s]", r.Ref)
			}
		}
	}
	return b.String()
}

func markdownSource(e SourceEntry) string {
	switch {
	case e.URL == "":
		return "(no source)"
	case !e.Safe():
		return markdownText(e.URL)
	case e.Title != "":
		return fmt.Sprintf("[%s](%s)", markdownText(e.Title), markdownURL(e.URL))
	}
	return fmt.Sprintf("<%s>", markdownURL(e.URL))
}
