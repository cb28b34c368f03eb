// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"regexp"
	"strconv"

	"github.com/pdiddy/reverse-researcher/pkg/types"
)

var (
	// boldRe matches **bold** spans. Lines are parsed one at a time, so a
	// span never crosses a line break.
	boldRe = regexp.MustCompile(`\*\*(.+?)\*\*`)

	// citationRe matches numeric citation markers like [1] or [12].
	citationRe = regexp.MustCompile(`\[(\d+)\]`)
)

// parseInline splits one line into text, bold, and citation runs. Citation
// markers inside a bold span become children of the bold run.
func parseInline(s string, citations []string) []types.Inline {
	var out []types.Inline
	last := 0
	for _, m := range boldRe.FindAllStringSubmatchIndex(s, -1) {
		out = appendCited(out, s[last:m[0]], citations)
		out = append(out, types.Bold(appendCited(nil, s[m[2]:m[3]], citations)...))
		last = m[1]
	}
	return appendCited(out, s[last:], citations)
}

// appendCited appends the runs of s, which contains no bold markup, to out.
func appendCited(out []types.Inline, s string, citations []string) []types.Inline {
	last := 0
	for _, m := range citationRe.FindAllStringSubmatchIndex(s, -1) {
		out = appendInlines(out, types.Text(s[last:m[0]]))
		ref := s[m[2]:m[3]]
		out = append(out, types.Citation(ref, resolve(ref, citations)))
		last = m[1]
	}
	return appendInlines(out, types.Text(s[last:]))
}

// appendInlines appends runs to out, dropping empty text and merging
// adjacent text runs.
func appendInlines(out []types.Inline, runs ...types.Inline) []types.Inline {
	for _, r := range runs {
		if r.Kind != types.InlineText {
			out = append(out, r)
			continue
		}
		if r.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Kind == types.InlineText {
			out[n-1].Text += r.Text
			continue
		}
		out = append(out, r)
	}
	return out
}

// resolve maps a 1-based citation reference to its URL. It returns "" when
// the reference is zero, out of range, too large to parse, or points at an
// empty entry.
func resolve(ref string, citations []string) string {
	n, err := strconv.Atoi(ref)
	if err != nil || n < 1 || n > len(citations) {
		return ""
	}
	return citations[n-1]
}
