// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for reverse-researcher:
// the formatted document model, the evidence records that flow through the
// fetch → format → render pipeline, and configuration.
package types

import (
	"fmt"
	"time"
)

// Angle selects which stances a research request is generated for.
type Angle string

const (
	AngleSupport  Angle = "support"
	AngleOppose   Angle = "oppose"
	AngleBalanced Angle = "balanced"
)

// ParseAngle validates s as an Angle. An empty string means balanced.
func ParseAngle(s string) (Angle, error) {
	switch a := Angle(s); a {
	case "":
		return AngleBalanced, nil
	case AngleSupport, AngleOppose, AngleBalanced:
		return a, nil
	default:
		return "", fmt.Errorf("unknown angle %q: use support, oppose, or balanced", s)
	}
}

// Stances returns the stances this angle requests, supporting first.
func (a Angle) Stances() []Stance {
	switch a {
	case AngleSupport:
		return []Stance{StanceSupport}
	case AngleOppose:
		return []Stance{StanceOppose}
	case AngleBalanced:
		return []Stance{StanceSupport, StanceOppose}
	}
	return nil
}

// Stance identifies what a single finding argues for.
type Stance string

const (
	StanceSupport  Stance = "support"
	StanceOppose   Stance = "oppose"
	StanceFollowUp Stance = "followup"
)

// Title returns the section heading used when presenting findings of this stance.
func (s Stance) Title() string {
	switch s {
	case StanceSupport:
		return "Supporting Evidence"
	case StanceOppose:
		return "Opposing Evidence"
	case StanceFollowUp:
		return "Follow-up Response"
	}
	return string(s)
}

// Source is a search result the upstream API consulted for a response.
type Source struct {
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	URL   string `json:"url" yaml:"url"`
	Date  string `json:"date,omitempty" yaml:"date,omitempty"`
}

// EvidenceResponse is the successful result of one upstream completion call.
// Citations is ordered: marker [1] in Text refers to Citations[0].
type EvidenceResponse struct {
	Text      string   `json:"text" yaml:"text"`
	Citations []string `json:"citations" yaml:"citations"`
	Sources   []Source `json:"sources,omitempty" yaml:"sources,omitempty"`
	Model     string   `json:"model,omitempty" yaml:"model,omitempty"`
}

// Finding records one prompt sent for a stance and the response it produced.
type Finding struct {
	Stance    Stance           `json:"stance" yaml:"stance"`
	Prompt    string           `json:"prompt" yaml:"prompt"`
	Response  EvidenceResponse `json:"response" yaml:"response"`
	FetchedAt time.Time        `json:"fetched_at" yaml:"fetched_at"`
}

// Session is one conclusion together with the evidence gathered for it and
// at most one follow-up exchange.
type Session struct {
	ID         string    `json:"id" yaml:"id"`
	Conclusion string    `json:"conclusion" yaml:"conclusion"`
	Angle      Angle     `json:"angle" yaml:"angle"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`

	Support *Finding `json:"support,omitempty" yaml:"support,omitempty"`
	Oppose  *Finding `json:"oppose,omitempty" yaml:"oppose,omitempty"`

	// Question is the follow-up question; FollowUp is its answer.
	Question string   `json:"question,omitempty" yaml:"question,omitempty"`
	FollowUp *Finding `json:"followup,omitempty" yaml:"followup,omitempty"`
}

// Finding returns the finding recorded for stance, or nil.
func (s *Session) Finding(stance Stance) *Finding {
	switch stance {
	case StanceSupport:
		return s.Support
	case StanceOppose:
		return s.Oppose
	case StanceFollowUp:
		return s.FollowUp
	}
	return nil
}

// SetFinding stores f under its stance.
func (s *Session) SetFinding(f *Finding) {
	switch f.Stance {
	case StanceSupport:
		s.Support = f
	case StanceOppose:
		s.Oppose = f
	case StanceFollowUp:
		s.FollowUp = f
	}
}
