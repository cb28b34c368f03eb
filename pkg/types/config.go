package types

import "time"

// HTTPConfig holds shared HTTP settings for calls to the completion API.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "reverse-researcher/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SonarConfig holds settings for the evidence fetcher.
type SonarConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIURL is the chat completions endpoint.
	APIURL string `json:"api_url" yaml:"api_url"`

	// APIKey is the bearer token for the completion API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Model is the model identifier (default "sonar").
	Model string `json:"model" yaml:"model"`

	// SystemPrompt replaces the built-in research-assistant instructions
	// when non-empty.
	SystemPrompt string `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
}

// SessionConfig holds settings for the local session store.
type SessionConfig struct {
	// DBPath is the SQLite database file.
	DBPath string `json:"db_path" yaml:"db_path"`

	// HistoryLimit is the default number of sessions listed by history (default 20).
	HistoryLimit int `json:"history_limit" yaml:"history_limit"`
}

// ExportFormat selects the output format of an export.
type ExportFormat string

const (
	ExportHTML     ExportFormat = "html"
	ExportMarkdown ExportFormat = "markdown"
	ExportText     ExportFormat = "text"
	ExportJSON     ExportFormat = "json"
	ExportYAML     ExportFormat = "yaml"
)

// Extension returns the conventional file extension for the format.
func (f ExportFormat) Extension() string {
	switch f {
	case ExportHTML:
		return ".html"
	case ExportMarkdown:
		return ".md"
	case ExportJSON:
		return ".json"
	case ExportYAML:
		return ".yaml"
	}
	return ".txt"
}

// ExportConfig holds settings for the export stage.
type ExportConfig struct {
	// Format selects html, markdown, text, json, or yaml.
	Format ExportFormat `json:"format" yaml:"format"`

	// OutputPath is the destination file. Empty means
	// research-results plus the format's extension.
	OutputPath string `json:"output_path" yaml:"output_path"`
}

// Config groups all reverse-researcher settings.
type Config struct {
	Sonar   SonarConfig   `json:"sonar" yaml:"sonar"`
	Session SessionConfig `json:"session" yaml:"session"`
	Export  ExportConfig  `json:"export" yaml:"export"`
}
