// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"html/template"
	"io"

	"github.com/pdiddy/reverse-researcher/pkg/types"
)

const htmlPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body {
  font-family: system-ui, -apple-system, sans-serif;
  line-height: 1.5;
  max-width: 800px;
  margin: 2rem auto;
  padding: 0 1rem;
}
h1 { font-size: 2rem; font-weight: bold; margin: 2rem 0 1rem; }
h2 { font-size: 1.5rem; font-weight: 600; margin: 1.5rem 0 1rem; }
h3 { font-size: 1.2rem; font-weight: 600; margin: 1.25rem 0 0.75rem; }
p { margin-bottom: 1rem; }
ul, ol { margin-bottom: 1rem; padding-left: 2rem; }
li { margin-bottom: 0.5rem; }
.question { font-style: italic; }
.sources { font-size: 0.8rem; color: #6b7280; border-top: 1px solid #eee; padding-top: 0.5rem; }
sup a { color: #2563eb; text-decoration: none; }
@media print {
  body { margin: 1rem; }
  a { text-decoration: none; }
}
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Sections}}
<div class="{{if eq .Stance "followup"}}followup-section{{else}}evidence-section{{end}}">
<h2>{{.Title}}</h2>
{{if and (eq .Stance "followup") $.Question}}<p class="question">{{$.Question}}</p>
{{end}}<div class="content">
{{range .Document.Blocks}}{{template "node" .}}
{{end}}</div>
{{with sources .}}<div class="sources">
<div>Sources:</div>
<ol>
{{range .}}<li>{{if .Safe}}<a href="{{.URL}}" target="_blank" rel="noopener noreferrer">{{if .Title}}{{.Title}}{{else}}{{.URL}}{{end}}</a>{{else}}{{if .Title}}{{.Title}} {{end}}{{.URL}}{{end}}</li>
{{end}}</ol>
</div>
{{end}}</div>
{{end}}
</body>
</html>
{{define "node"}}{{if eq .Kind "heading"}}<h3>{{template "runs" .Inlines}}</h3>
{{- else if eq .Kind "paragraph"}}<p>{{template "runs" .Inlines}}</p>
{{- else if eq .Kind "bullet_list"}}<ul>{{range .Items}}<li>{{template "runs" .}}</li>{{end}}</ul>
{{- else if eq .Kind "ordered_list"}}<ol>{{range .Items}}<li>{{template "runs" .}}</li>{{end}}</ol>
{{- else if eq .Kind "rule"}}<hr>
{{- end}}{{end}}
{{define "runs"}}{{range .}}{{template "run" .}}{{end}}{{end}}
{{define "run"}}{{if eq .Kind "text"}}{{.Text}}
{{- else if eq .Kind "bold"}}<strong>{{template "runs" .Children}}</strong>
{{- else if eq .Kind "citation"}}{{if linked .}}<sup><a href="{{.URL}}" target="_blank" rel="noopener noreferrer">[{{.Ref}}]</a></sup>{{else}}<sup>[{{.Ref}}]</sup>{{end}}
{{- end}}{{end}}`

var htmlTmpl = template.Must(template.New("page").Funcs(template.FuncMap{
	"sources": SourceList,
	"linked": func(in types.Inline) bool {
		return in.Linked() && SafeURL(in.URL)
	},
}).Parse(htmlPage))

// HTML writes a standalone print page. All text is escaped; citations
// whose URL is not http or https render as bare superscript numbers.
func HTML(w io.Writer, p Page) error {
	if err := htmlTmpl.Execute(w, p); err != nil {
		return fmt.Errorf("rendering HTML: %w", err)
	}
	return nil
}
