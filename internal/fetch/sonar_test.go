// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/reverse-researcher/internal/httputil"
	"github.com/pdiddy/reverse-researcher/pkg/types"
)

type capturedRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func sonarServer(t *testing.T, status int, body string, captured *capturedRequest, headers *http.Header) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if headers != nil {
			*headers = r.Header.Clone()
		}
		if captured != nil {
			if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
				t.Errorf("decoding request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func testClient(ts *httptest.Server) *SonarClient {
	c := NewSonarClient(types.SonarConfig{
		APIURL:     ts.URL,
		APIKey:     "pplx-test",
		HTTPConfig: types.HTTPConfig{UserAgent: "reverse-researcher/test"},
	}, nil)
	c.Client = ts.Client()
	return c
}

const okBody = `{
  "id": "abc",
  "model": "sonar",
  "object": "chat.completion",
  "created": 1700000000,
  "citations": ["https://a.example/study", "https://b.example/report"],
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Approach\n\nRemote work helps [1][2]."}}]
}`

func TestFetchRequestShape(t *testing.T) {
	var captured capturedRequest
	var headers http.Header
	ts := sonarServer(t, http.StatusOK, okBody, &captured, &headers)

	_, err := testClient(ts).Fetch(context.Background(), "Find evidence supporting the conclusion: X.")
	require.NoError(t, err)

	assert.Equal(t, "Bearer pplx-test", headers.Get("Authorization"))
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
	assert.Equal(t, "reverse-researcher/test", headers.Get("User-Agent"))

	assert.Equal(t, DefaultModel, captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, DefaultSystemPrompt, captured.Messages[0].Content)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "Find evidence supporting the conclusion: X.", captured.Messages[1].Content)
}

func TestFetchDecodesCitations(t *testing.T) {
	ts := sonarServer(t, http.StatusOK, okBody, nil, nil)

	got, err := testClient(ts).Fetch(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, "Approach\n\nRemote work helps [1][2].", got.Text)
	assert.Equal(t, []string{"https://a.example/study", "https://b.example/report"}, got.Citations)
	assert.Equal(t, "sonar", got.Model)
	assert.Empty(t, got.Sources)
}

func TestFetchFallsBackToSearchResults(t *testing.T) {
	body := `{
	  "model": "sonar-pro",
	  "search_results": [
	    {"title": "Study A", "url": "https://a.example", "date": "2024-01-02"},
	    {"title": "No URL", "url": ""},
	    {"title": "Report B", "url": "https://b.example"}
	  ],
	  "choices": [{"message": {"role": "assistant", "content": "text [1]"}}]
	}`
	ts := sonarServer(t, http.StatusOK, body, nil, nil)

	got, err := testClient(ts).Fetch(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, got.Citations)
	assert.Equal(t, []types.Source{
		{Title: "Study A", URL: "https://a.example", Date: "2024-01-02"},
		{Title: "Report B", URL: "https://b.example"},
	}, got.Sources)
}

func TestFetchKeepsCitationsOverSearchResults(t *testing.T) {
	body := `{
	  "citations": ["https://c.example"],
	  "search_results": [{"title": "A", "url": "https://a.example"}],
	  "choices": [{"message": {"role": "assistant", "content": "t"}}]
	}`
	ts := sonarServer(t, http.StatusOK, body, nil, nil)

	got, err := testClient(ts).Fetch(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://c.example"}, got.Citations)
	assert.Len(t, got.Sources, 1)
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantMsg  string
		wantCode int
		wantErr  error
	}{
		{name: "http status", status: http.StatusUnauthorized, body: "bad key", wantMsg: "API error: 401 - bad key", wantCode: 401},
		{name: "no choices", status: http.StatusOK, body: `{"choices": []}`, wantMsg: "no choices", wantErr: ErrNoChoices},
		{name: "invalid json", status: http.StatusOK, body: `<html>`, wantMsg: "decoding response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := sonarServer(t, tt.status, tt.body, nil, nil)

			_, err := testClient(ts).Fetch(context.Background(), "q")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			var se *httputil.StatusError
			if tt.wantCode != 0 {
				require.True(t, errors.As(err, &se))
				assert.Equal(t, tt.wantCode, se.StatusCode)
			} else {
				assert.False(t, errors.As(err, &se))
			}
		})
	}
}

func TestFetchRequiresAPIKey(t *testing.T) {
	c := NewSonarClient(types.SonarConfig{}, nil)
	_, err := c.Fetch(context.Background(), "q")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestNewSonarClientDefaults(t *testing.T) {
	c := NewSonarClient(types.SonarConfig{APIKey: "k"}, nil)
	assert.Equal(t, DefaultAPIURL, c.APIURL)
	assert.Equal(t, DefaultModel, c.Model)
	assert.Equal(t, DefaultSystemPrompt, c.SystemPrompt)

	c = NewSonarClient(types.SonarConfig{Model: "sonar-pro", SystemPrompt: "be brief"}, nil)
	assert.Equal(t, "sonar-pro", c.Model)
	assert.Equal(t, "be brief", c.SystemPrompt)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("  abc ", 5))
	assert.Equal(t, "ab...", truncate("abcdef", 2))
	assert.Equal(t, "é...", truncate("éé", 1))
}
