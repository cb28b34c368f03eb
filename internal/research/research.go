// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research runs the fetch → format pipeline for a conclusion: it
// requests supporting and opposing evidence according to the selected
// angle, records each successful response as an immutable finding, and
// handles the single follow-up question of a session.
package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/reverse-researcher/internal/fetch"
	"github.com/pdiddy/reverse-researcher/pkg/types"
)

var (
	// ErrEmptyConclusion is returned when no conclusion text is given.
	ErrEmptyConclusion = errors.New("conclusion is empty: state the conclusion to research")

	// ErrEmptyQuestion is returned when a follow-up question is blank.
	ErrEmptyQuestion = errors.New("follow-up question is empty")
)

// now is the clock used for finding timestamps. Tests override it.
var now = time.Now

// Request is one research query.
type Request struct {
	Conclusion string
	Angle      types.Angle
}

// Validate reports whether the request can be sent.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Conclusion) == "" {
		return ErrEmptyConclusion
	}
	if _, err := types.ParseAngle(string(r.Angle)); err != nil {
		return err
	}
	return nil
}

// StanceError records a fetch failure for one stance.
type StanceError struct {
	Stance types.Stance
	Err    error
}

func (e *StanceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stance, e.Err)
}

func (e *StanceError) Unwrap() error { return e.Err }

// Outcome is the result of Run. Session holds every finding that was
// fetched successfully; Failures lists the stances that were not.
type Outcome struct {
	Session  types.Session
	Failures []*StanceError
}

// Err joins the stance failures, or returns nil when every fetch succeeded.
func (o Outcome) Err() error {
	if len(o.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(o.Failures))
	for i, f := range o.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// HasFindings reports whether at least one stance succeeded.
func (o Outcome) HasFindings() bool {
	return o.Session.Support != nil || o.Session.Oppose != nil
}

// Run fetches evidence for each stance the request's angle selects. The
// stances are fetched concurrently and independently: one failing does not
// cancel the other. Run only returns an error for an invalid request.
func Run(ctx context.Context, f fetch.Fetcher, req Request, logger *slog.Logger) (Outcome, error) {
	if err := req.Validate(); err != nil {
		return Outcome{}, err
	}
	angle, _ := types.ParseAngle(string(req.Angle))
	conclusion := strings.TrimSpace(req.Conclusion)
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	stances := angle.Stances()
	findings := make([]*types.Finding, len(stances))
	failures := make([]error, len(stances))

	// The group only joins the fetches. Each goroutine records its error in
	// its own slot and returns nil, so a failed stance never cancels the
	// others and Wait has nothing to report.
	var g errgroup.Group
	for i, stance := range stances {
		g.Go(func() error {
			findings[i], failures[i] = fetchStance(ctx, f, stance, conclusion)
			if failures[i] != nil {
				logger.Warn("evidence fetch failed", "stance", stance, "error", failures[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	out := Outcome{Session: types.Session{
		Conclusion: conclusion,
		Angle:      angle,
		CreatedAt:  now().UTC(),
	}}
	for i, stance := range stances {
		if failures[i] != nil {
			out.Failures = append(out.Failures, &StanceError{Stance: stance, Err: failures[i]})
			continue
		}
		out.Session.SetFinding(findings[i])
	}
	return out, nil
}

func fetchStance(ctx context.Context, f fetch.Fetcher, stance types.Stance, conclusion string) (*types.Finding, error) {
	prompt, err := fetch.StancePrompt(stance, conclusion)
	if err != nil {
		return nil, err
	}
	resp, err := f.Fetch(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return &types.Finding{
		Stance:    stance,
		Prompt:    prompt,
		Response:  resp,
		FetchedAt: now().UTC(),
	}, nil
}

// FollowUp asks question about the session's conclusion and returns a copy
// of the session carrying the answer. A session has one follow-up; asking
// again replaces the previous one. The input session is not modified.
func FollowUp(ctx context.Context, f fetch.Fetcher, session types.Session, question string) (types.Session, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return session, ErrEmptyQuestion
	}
	if strings.TrimSpace(session.Conclusion) == "" {
		return session, ErrEmptyConclusion
	}

	prompt, err := fetch.FollowUpPrompt(session.Conclusion, question)
	if err != nil {
		return session, err
	}
	resp, err := f.Fetch(ctx, prompt)
	if err != nil {
		return session, &StanceError{Stance: types.StanceFollowUp, Err: err}
	}

	next := session
	next.Question = question
	next.FollowUp = &types.Finding{
		Stance:    types.StanceFollowUp,
		Prompt:    prompt,
		Response:  resp,
		FetchedAt: now().UTC(),
	}
	return next, nil
}
