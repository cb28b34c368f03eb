// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/reverse-researcher/internal/evidence"
	"github.com/pdiddy/reverse-researcher/pkg/types"
)

func testSession() types.Session {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return types.Session{
		ID:         "s-1",
		Conclusion: "Remote work improves productivity",
		Angle:      types.AngleBalanced,
		CreatedAt:  t0,
		Support: &types.Finding{
			Stance: types.StanceSupport,
			Response: types.EvidenceResponse{
				Text:      "## Findings\nOutput rose **sharply [1]** in trials [2].\n\n- fewer commutes\n- flexible hours",
				Citations: []string{"https://a.example/study", ""},
				Sources:   []types.Source{{Title: "Study A", URL: "https://a.example/study"}},
			},
			FetchedAt: t0,
		},
		Oppose: &types.Finding{
			Stance: types.StanceOppose,
			Response: types.EvidenceResponse{
				Text:      "1. isolation [1]\n2. oversight\n\n---\n\nMixed results [3].",
				Citations: []string{"https://b.example"},
			},
			FetchedAt: t0,
		},
		Question: "What about hybrid?",
		FollowUp: &types.Finding{
			Stance:    types.StanceFollowUp,
			Response:  types.EvidenceResponse{Text: "Hybrid is a middle ground."},
			FetchedAt: t0,
		},
	}
}

func TestHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, NewPage(testSession())))
	out := buf.String()

	assert.Contains(t, out, "<title>Research Results: &#34;Remote work improves productivity&#34;</title>")
	assert.Contains(t, out, "<h2>Supporting Evidence</h2>")
	assert.Contains(t, out, "<h2>Opposing Evidence</h2>")
	assert.Contains(t, out, "<h2>Follow-up Response</h2>")
	assert.Contains(t, out, `<p class="question">What about hybrid?</p>`)
	assert.Contains(t, out, "<h3>Findings</h3>")
	assert.Contains(t, out, `<strong>sharply <sup><a href="https://a.example/study" target="_blank" rel="noopener noreferrer">[1]</a></sup></strong>`)
	assert.Contains(t, out, "in trials <sup>[2]</sup>.")
	assert.Contains(t, out, "<ul><li>fewer commutes</li><li>flexible hours</li></ul>")
	assert.Contains(t, out, "<ol><li>isolation ")
	assert.Contains(t, out, "<hr>")
	assert.Contains(t, out, "Mixed results <sup>[3]</sup>.")
	assert.Contains(t, out, `<a href="https://a.example/study" target="_blank" rel="noopener noreferrer">Study A</a>`)

	// Section order follows the page.
	support := strings.Index(out, "Supporting Evidence")
	oppose := strings.Index(out, "Opposing Evidence")
	follow := strings.Index(out, "Follow-up Response")
	assert.True(t, support < oppose && oppose < follow)
}

func TestHTMLEscapesInjectedMarkup(t *testing.T) {
	s := types.Session{
		Conclusion: `<script>alert("c")</script>`,
		Support: &types.Finding{
			Stance: types.StanceSupport,
			Response: types.EvidenceResponse{
				Text:      "<img src=x onerror=alert(1)> claim [1] and [2]",
				Citations: []string{"javascript:alert(1)", `https://ok.example/?q="><script>`},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, NewPage(s)))
	out := buf.String()

	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "<img")
	assert.NotContains(t, out, `href="javascript:`)
	assert.Contains(t, out, "&lt;img src=x onerror=alert(1)&gt; claim <sup>[1]</sup>")
	assert.Contains(t, out, `<sup><a href="https://ok.example/?q=%22%3e%3cscript%3e"`)
}

func TestHTMLOmitsMissingSections(t *testing.T) {
	s := testSession()
	s.Oppose = nil
	s.FollowUp = nil

	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, NewPage(s)))
	assert.NotContains(t, buf.String(), "Opposing Evidence")
	assert.NotContains(t, buf.String(), "Follow-up Response")
}

func TestMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Markdown(&buf, NewPage(testSession())))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "# Research Results: \"Remote work improves productivity\"\n"))
	assert.Contains(t, out, "\n## Supporting Evidence\n\n### Findings\n\nOutput rose **sharply [1](https://a.example/study)** in trials [2].\n")
	assert.Contains(t, out, "\n- fewer commutes\n- flexible hours\n")
	assert.Contains(t, out, "\n1. isolation [1](https://b.example)\n2. oversight\n\n---\n\nMixed results [3].\n")
	assert.Contains(t, out, "\n> What about hybrid?\n")
	assert.Contains(t, out, "1. [Study A](https://a.example/study)\n2. (no source)\n")
	assert.Contains(t, out, "1. <https://b.example>\n")
}

func TestMarkdownEscapesInjectedMarkup(t *testing.T) {
	var buf bytes.Buffer
	doc := evidence.Format("<img src=x onerror=alert(1)> claim [1]\n\n**<b>x</b>** _y_ `z`", []string{"https://a.example/x)<script>"})
	require.NoError(t, MarkdownDocument(&buf, doc))
	out := buf.String()

	assert.NotContains(t, out, "<img")
	assert.NotContains(t, out, "<b>")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;img src=x onerror=alert(1)&gt; claim [1](https://a.example/x%29%3Cscript%3E)")
	assert.Contains(t, out, "&lt;b&gt;x&lt;/b&gt;")
	assert.Contains(t, out, "\\_y\\_ \\`z\\`")

	s := types.Session{
		Conclusion: "<script>alert(1)</script>",
		Support: &types.Finding{
			Stance: types.StanceSupport,
			Response: types.EvidenceResponse{
				Text:      "claim [1] [2]",
				Citations: []string{"https://a.example/p_(1)", "javascript:alert(1)"},
				Sources:   []types.Source{{Title: "[evil](javascript:x)", URL: "https://a.example/p_(1)"}},
			},
		},
	}
	buf.Reset()
	require.NoError(t, Markdown(&buf, NewPage(s)))
	out = buf.String()

	assert.True(t, strings.HasPrefix(out, "# Research Results: \"&lt;script&gt;alert(1)&lt;/script&gt;\"\n"))
	assert.Contains(t, out, "1. [\\[evil\\](javascript:x)](https://a.example/p_%281%29)\n")
	assert.Contains(t, out, "2. javascript:alert(1)\n")
	assert.NotContains(t, out, "](javascript:alert")
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, NewPage(testSession())))
	out := buf.String()

	assert.Contains(t, out, "Supporting Evidence\n===================\n")
	assert.Contains(t, out, "Findings\n--------\n")
	assert.Contains(t, out, "Output rose sharply [1] in trials [2].\n")
	assert.Contains(t, out, "  • fewer commutes\n  • flexible hours\n")
	assert.Contains(t, out, "  1. isolation [1]\n  2. oversight\n")
	assert.Contains(t, out, "Q: What about hybrid?\n")
	assert.Contains(t, out, "  [1] Study A - https://a.example/study\n  [2] (no source)\n")
}

func TestStructured(t *testing.T) {
	s := testSession()

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Structured(&buf, types.ExportJSON, s))

		var got SessionExport
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "s-1", got.Session.ID)
		require.Len(t, got.Sections, 3)
		assert.Equal(t, types.StanceSupport, got.Sections[0].Stance)
		assert.Equal(t, types.BlockHeading, got.Sections[0].Document.Blocks[0].Kind)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Structured(&buf, types.ExportYAML, s))
		assert.Contains(t, buf.String(), "conclusion: Remote work improves productivity")

		var got SessionExport
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got.Sections, 3)
		assert.Equal(t, "Opposing Evidence", got.Sections[1].Title)
		assert.Equal(t, types.BlockOrderedList, got.Sections[1].Document.Blocks[0].Kind)
	})

	t.Run("not structured", func(t *testing.T) {
		err := Encode(&bytes.Buffer{}, types.ExportHTML, s)
		assert.Error(t, err)
	})
}

func TestRenderDispatch(t *testing.T) {
	for _, f := range []types.ExportFormat{types.ExportHTML, types.ExportMarkdown, types.ExportText, types.ExportJSON, types.ExportYAML} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, f, testSession()))
			assert.NotEmpty(t, buf.String())
		})
	}
	assert.Error(t, Render(&bytes.Buffer{}, "pdf", testSession()))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want types.ExportFormat
	}{
		{"", types.ExportText},
		{"HTML", types.ExportHTML},
		{"md", types.ExportMarkdown},
		{"markdown", types.ExportMarkdown},
		{"yml", types.ExportYAML},
		{" json ", types.ExportJSON},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/a", true},
		{"HTTP://example.com", true},
		{"javascript:alert(1)", false},
		{"data:text/html,hi", false},
		{"/relative/path", false},
		{"", false},
		{"https://", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeURL(tt.url), tt.url)
	}
}

func TestSourceList(t *testing.T) {
	p := NewPage(testSession())
	got := SourceList(p.Sections[0])
	assert.Equal(t, []SourceEntry{
		{N: 1, URL: "https://a.example/study", Title: "Study A"},
		{N: 2},
	}, got)
}
