// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/reverse-researcher/internal/fetch"
	"github.com/pdiddy/reverse-researcher/internal/secrets"
	"github.com/pdiddy/reverse-researcher/internal/session"
	"github.com/pdiddy/reverse-researcher/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "reverse-researcher/0.1"
)

// setDefaults registers the defaults for every config key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", fetch.DefaultAPIURL)
	v.SetDefault("model", fetch.DefaultModel)
	v.SetDefault("timeout", defaultTimeout)
	v.SetDefault("user_agent", defaultUserAgent)
	v.SetDefault("history_limit", 20)
	v.SetDefault("export.format", string(types.ExportHTML))
	v.SetDefault("export.output_path", "")
}

// loadConfig builds the configuration from v. The API key falls back to
// PERPLEXITY_API_KEY and then .secrets/perplexity-api-key when api_key is
// unset.
func loadConfig(v *viper.Viper, resolver *secrets.Resolver) (types.Config, error) {
	cfg := types.Config{
		Sonar: types.SonarConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration("timeout"),
				UserAgent: v.GetString("user_agent"),
			},
			APIURL:       v.GetString("api_url"),
			Model:        v.GetString("model"),
			SystemPrompt: v.GetString("system_prompt"),
		},
		Session: types.SessionConfig{
			DBPath:       v.GetString("db"),
			HistoryLimit: v.GetInt("history_limit"),
		},
		Export: types.ExportConfig{
			Format:     types.ExportFormat(v.GetString("export.format")),
			OutputPath: v.GetString("export.output_path"),
		},
	}
	if cfg.Sonar.Timeout <= 0 {
		cfg.Sonar.Timeout = defaultTimeout
	}
	if cfg.Session.DBPath == "" {
		cfg.Session.DBPath = session.DefaultPath()
	}

	if resolver == nil {
		resolver = secrets.NewResolver(os.Stderr)
	}
	key, origin, err := resolver.Resolve(v.GetString("api_key"))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolving API key: %w", err)
	}
	cfg.Sonar.APIKey = key
	logger.Debug("configuration loaded",
		"api_url", cfg.Sonar.APIURL,
		"model", cfg.Sonar.Model,
		"db", cfg.Session.DBPath,
		"api_key_from", string(origin))
	return cfg, nil
}

// openStore opens the session database named by the configuration.
func openStore() (*session.Store, types.Config, error) {
	cfg, err := loadConfig(viper.GetViper(), nil)
	if err != nil {
		return nil, types.Config{}, err
	}
	store, err := session.Open(cfg.Session)
	if err != nil {
		return nil, types.Config{}, err
	}
	return store, cfg, nil
}
