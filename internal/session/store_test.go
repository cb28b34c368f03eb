// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/reverse-researcher/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.SessionConfig{DBPath: filepath.Join(t.TempDir(), "state", "sessions.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleSession() types.Session {
	return types.Session{
		Conclusion: "Remote work improves productivity",
		Angle:      types.AngleBalanced,
		CreatedAt:  t0,
		Support: &types.Finding{
			Stance: types.StanceSupport,
			Prompt: "Find evidence supporting the conclusion: Remote work improves productivity.",
			Response: types.EvidenceResponse{
				Text:      "Approach\n\nStudies agree [1].",
				Citations: []string{"https://a.example", ""},
				Sources:   []types.Source{{Title: "A", URL: "https://a.example", Date: "2024-01-01"}},
				Model:     "sonar",
			},
			FetchedAt: t0.Add(time.Second),
		},
		Oppose: &types.Finding{
			Stance: types.StanceOppose,
			Prompt: "Find evidence opposing the conclusion: Remote work improves productivity.",
			Response: types.EvidenceResponse{
				Text:      "Some disagree [1][2].",
				Citations: []string{"https://b.example", "https://c.example"},
				Model:     "sonar",
			},
			FetchedAt: t0.Add(2 * time.Second),
		},
	}
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sess := sampleSession()
	require.NoError(t, s.Save(ctx, &sess))
	require.NotEmpty(t, sess.ID, "Save assigns an ID")

	got, err := s.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess, got)
}

func TestGetByPrefix(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a := sampleSession()
	a.ID = "abc-111"
	b := sampleSession()
	b.ID = "abd-222"
	require.NoError(t, s.Save(ctx, &a))
	require.NoError(t, s.Save(ctx, &b))

	got, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc-111", got.ID)

	_, err = s.Get(ctx, "ab")
	assert.ErrorIs(t, err, ErrAmbiguous)

	_, err = s.Get(ctx, "zzz")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Get(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Get(ctx, "a%")
	assert.ErrorIs(t, err, ErrNotFound, "prefix is matched literally")
}

func TestLatest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Latest(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	older := sampleSession()
	older.Conclusion = "older"
	newer := sampleSession()
	newer.Conclusion = "newer"
	newer.CreatedAt = t0.Add(time.Hour)

	require.NoError(t, s.Save(ctx, &newer))
	require.NoError(t, s.Save(ctx, &older))

	got, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "newer", got.Conclusion)
}

func TestSaveReplacesFindings(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sess := sampleSession()
	require.NoError(t, s.Save(ctx, &sess))

	sess.Oppose = nil
	sess.Conclusion = "edited"
	require.NoError(t, s.Save(ctx, &sess))

	got, err := s.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Conclusion)
	assert.NotNil(t, got.Support)
	assert.Nil(t, got.Oppose)
}

func TestSetFollowUp(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sess := sampleSession()
	require.NoError(t, s.Save(ctx, &sess))

	first := &types.Finding{
		Stance:    types.StanceFollowUp,
		Prompt:    `Follow-up question about "Remote work improves productivity": first?`,
		Response:  types.EvidenceResponse{Text: "one", Citations: []string{"https://f.example"}},
		FetchedAt: t0.Add(time.Minute),
	}
	require.NoError(t, s.SetFollowUp(ctx, sess.ID, "first?", first))

	second := &types.Finding{
		Stance:    types.StanceFollowUp,
		Prompt:    `Follow-up question about "Remote work improves productivity": second?`,
		Response:  types.EvidenceResponse{Text: "two", Citations: []string{"https://g.example"}},
		FetchedAt: t0.Add(2 * time.Minute),
	}
	require.NoError(t, s.SetFollowUp(ctx, sess.ID, "second?", second))

	got, err := s.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "second?", got.Question)
	require.NotNil(t, got.FollowUp)
	assert.Equal(t, "two", got.FollowUp.Response.Text)
	assert.Equal(t, second.FetchedAt, got.FollowUp.FetchedAt)
	assert.NotNil(t, got.Support, "stance findings are kept")

	err = s.SetFollowUp(ctx, "missing", "q", first)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i, c := range []string{"first", "second", "third"} {
		sess := sampleSession()
		sess.Conclusion = c
		sess.CreatedAt = t0.Add(time.Duration(i) * time.Hour)
		if c == "second" {
			sess.Support = nil
			sess.Question = "why?"
			sess.FollowUp = &types.Finding{Stance: types.StanceFollowUp, Response: types.EvidenceResponse{Text: "because"}}
		}
		require.NoError(t, s.Save(ctx, &sess))
	}

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Conclusion)
	assert.Equal(t, "first", all[2].Conclusion)
	assert.Equal(t, []types.Stance{types.StanceSupport, types.StanceOppose}, all[0].Stances)
	assert.Equal(t, []types.Stance{types.StanceOppose, types.StanceFollowUp}, all[1].Stances)
	assert.Equal(t, "why?", all[1].Question)
	assert.Equal(t, t0.Add(2*time.Hour), all[0].CreatedAt)

	limited, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSplitStances(t *testing.T) {
	assert.Nil(t, splitStances(""))
	assert.Equal(t,
		[]types.Stance{types.StanceSupport, types.StanceOppose, types.StanceFollowUp},
		splitStances("followup,oppose,support"))
}

func TestOpenDefaultsHistoryLimit(t *testing.T) {
	s := openTestStore(t)
	assert.Equal(t, defaultHistoryLimit, s.historyLimit)
}
