// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch requests evidence from the Perplexity Sonar chat completions
// API. A fetch sends one prompt and returns the response text with its
// ordered citation list, or an error; it never formats anything.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/reverse-researcher/internal/httputil"
	"github.com/pdiddy/reverse-researcher/pkg/types"
)

// Fetcher sends one prompt to the completion API. Implementations must be
// safe for concurrent use; the research pipeline fetches the supporting and
// opposing stances in parallel.
type Fetcher interface {
	Fetch(ctx context.Context, prompt string) (types.EvidenceResponse, error)
}

// DefaultAPIURL is the Sonar chat completions endpoint.
const DefaultAPIURL = "https://api.perplexity.ai/chat/completions"

// DefaultModel is the Sonar model used when none is configured.
const DefaultModel = "sonar"

// ErrNoAPIKey is returned when a fetch is attempted without credentials.
var ErrNoAPIKey = errors.New("no API key configured: set api_key, REVERSE_RESEARCHER_API_KEY, PERPLEXITY_API_KEY, or .secrets/perplexity-api-key")

// ErrNoChoices is returned when the completion API answers without a choice.
var ErrNoChoices = errors.New("completion API returned no choices")

// SonarClient calls an OpenAI-compatible chat completions endpoint that
// returns Perplexity-style top-level citations.
type SonarClient struct {
	APIURL       string
	APIKey       string
	Model        string
	SystemPrompt string
	UserAgent    string
	Client       *http.Client
	Logger       *slog.Logger
}

// NewSonarClient builds a client from cfg, filling defaults for the
// endpoint, model, and system prompt.
func NewSonarClient(cfg types.SonarConfig, logger *slog.Logger) *SonarClient {
	c := &SonarClient{
		APIURL:       cfg.APIURL,
		APIKey:       cfg.APIKey,
		Model:        cfg.Model,
		SystemPrompt: cfg.SystemPrompt,
		UserAgent:    cfg.UserAgent,
		Client:       &http.Client{Timeout: cfg.Timeout},
		Logger:       logger,
	}
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.SystemPrompt == "" {
		c.SystemPrompt = DefaultSystemPrompt
	}
	return c
}

// sonarResponse extends the OpenAI response shape with the fields Sonar adds.
type sonarResponse struct {
	openai.ChatCompletionResponse
	Citations     []string            `json:"citations"`
	SearchResults []sonarSearchResult `json:"search_results"`
}

type sonarSearchResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Date  string `json:"date"`
}

// Fetch sends prompt with the system instructions and returns the first
// choice's content and the citation list.
func (c *SonarClient) Fetch(ctx context.Context, prompt string) (types.EvidenceResponse, error) {
	if c.APIKey == "" {
		return types.EvidenceResponse{}, ErrNoAPIKey
	}

	model := c.Model
	if model == "" {
		model = DefaultModel
	}
	apiURL := c.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	var messages []openai.ChatCompletionMessage
	if c.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: c.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	}

	log := c.logger()
	log.Debug("sending evidence request", "model", model, "prompt", truncate(prompt, 100))

	headers := map[string]string{
		"Authorization": "Bearer " + c.APIKey,
		"User-Agent":    c.UserAgent,
	}

	var resp sonarResponse
	if err := httputil.PostJSON(ctx, c.Client, apiURL, headers, req, &resp); err != nil {
		return types.EvidenceResponse{}, fmt.Errorf("calling completion API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return types.EvidenceResponse{}, ErrNoChoices
	}

	out := types.EvidenceResponse{
		Text:      resp.Choices[0].Message.Content,
		Citations: resp.Citations,
		Model:     resp.Model,
	}
	for _, sr := range resp.SearchResults {
		if sr.URL == "" {
			continue
		}
		out.Sources = append(out.Sources, types.Source{Title: sr.Title, URL: sr.URL, Date: sr.Date})
	}

	// Newer responses may carry only search_results; their order matches
	// the [n] markers.
	if len(out.Citations) == 0 {
		for _, s := range out.Sources {
			out.Citations = append(out.Citations, s.URL)
		}
	}

	log.Debug("evidence response received",
		"model", out.Model,
		"content", truncate(out.Text, 100),
		"citations", len(out.Citations),
		"sources", len(out.Sources))

	return out, nil
}

func (c *SonarClient) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// truncate shortens s to at most n runes for log output.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
