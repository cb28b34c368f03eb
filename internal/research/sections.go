// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"github.com/pdiddy/reverse-researcher/internal/evidence"
	"github.com/pdiddy/reverse-researcher/pkg/types"
)

// Section is one titled block of results, ready for a renderer.
type Section struct {
	Stance    types.Stance
	Title     string
	Document  types.Document
	Citations []string
	Sources   []types.Source
}

// sectionOrder is the page order of the result sections.
var sectionOrder = []types.Stance{types.StanceSupport, types.StanceOppose, types.StanceFollowUp}

// Sections formats every finding in the session, in page order. Stances
// without a finding are skipped. Documents are derived from the stored raw
// text on each call.
func Sections(s types.Session) []Section {
	var out []Section
	for _, stance := range sectionOrder {
		f := s.Finding(stance)
		if f == nil {
			continue
		}
		out = append(out, newSection(f))
	}
	return out
}

// Document formats the finding recorded for stance. ok is false when the
// stance was not fetched or its fetch failed.
func (o Outcome) Document(stance types.Stance) (doc types.Document, ok bool) {
	f := o.Session.Finding(stance)
	if f == nil {
		return types.Document{}, false
	}
	return evidence.Format(f.Response.Text, f.Response.Citations), true
}

func newSection(f *types.Finding) Section {
	return Section{
		Stance:    f.Stance,
		Title:     f.Stance.Title(),
		Document:  evidence.Format(f.Response.Text, f.Response.Citations),
		Citations: f.Response.Citations,
		Sources:   f.Response.Sources,
	}
}
