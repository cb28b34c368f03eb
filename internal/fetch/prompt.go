// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/reverse-researcher/pkg/types"
)

// DefaultSystemPrompt instructs the model to answer as an academic research
// assistant with bare section titles and [n] citations, which is the shape
// the evidence formatter recognizes.
const DefaultSystemPrompt = `You are a helpful research assistant that provides well-reasoned, academically-styled responses. Follow these steps:

1. Begin with an "Approach" section that outlines your methodology
2. Present your findings in a clear, academic prose style
3. End with a concise conclusion

Format guidelines:
- Use clear section headers (Approach, Findings, Conclusion)
- Include citations in [1] format
- Write in clear paragraphs with topic sentences
- Only use bullet points for truly list-worthy items
- Use proper academic tone and structure
- Double line breaks between sections
- Include a reliability assessment for sources

Your response should read like a well-structured academic analysis, not a bullet-point summary.`

var stancePromptTmpl = template.Must(template.New("stance").Parse(
	`Find evidence {{.Verb}} the conclusion: {{.Conclusion}}. Provide citations and explain why the sources are reliable.`))

var followUpPromptTmpl = template.Must(template.New("followup").Parse(
	`Follow-up question about "{{.Conclusion}}": {{.Question}}`))

// StancePrompt renders the user prompt requesting evidence for or against
// conclusion.
func StancePrompt(stance types.Stance, conclusion string) (string, error) {
	var verb string
	switch stance {
	case types.StanceSupport:
		verb = "supporting"
	case types.StanceOppose:
		verb = "opposing"
	default:
		return "", fmt.Errorf("no evidence prompt for stance %q", stance)
	}
	return render(stancePromptTmpl, struct{ Verb, Conclusion string }{verb, strings.TrimSpace(conclusion)})
}

// FollowUpPrompt renders the user prompt for a follow-up question about
// conclusion.
func FollowUpPrompt(conclusion, question string) (string, error) {
	return render(followUpPromptTmpl, struct{ Conclusion, Question string }{
		strings.TrimSpace(conclusion), strings.TrimSpace(question),
	})
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return buf.String(), nil
}
