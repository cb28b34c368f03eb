// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets finds the Perplexity API key. A key may come from the
// command line or config, from the environment (optionally populated from a
// .env file), or from a file in the .secrets directory where the filename
// is the key name and the trimmed contents are the value.
package secrets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// DefaultDir is the secrets directory, relative to the working directory.
	DefaultDir = ".secrets"

	// PerplexityKeyFile is the file in DefaultDir holding the API key.
	PerplexityKeyFile = "perplexity-api-key"

	// PerplexityEnv is the environment variable the key is read from.
	PerplexityEnv = "PERPLEXITY_API_KEY"
)

// Origin names where a resolved key came from, for diagnostics.
type Origin string

const (
	OriginNone   Origin = ""
	OriginConfig Origin = "config"
	OriginEnv    Origin = "env"
	OriginFile   Origin = "file"
)

// Load reads every regular file in dir into a map of filename to trimmed
// contents. A missing directory yields an empty map. Dotfiles, empty files,
// and subdirectories are skipped; an unreadable file is reported to warn
// and skipped.
func Load(dir string, warn io.Writer) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	out := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if warn != nil {
				fmt.Fprintf(warn, "warning: could not read secret %s: %v\n", name, err)
			}
			continue
		}
		if v := strings.TrimSpace(string(data)); v != "" {
			out[name] = v
		}
	}
	return out, nil
}

// LoadDotEnv sets environment variables from the given .env files. Missing
// files are ignored and variables already in the environment win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Resolver picks the API key from its sources in order: the configured
// value, then the environment, then the secrets directory.
type Resolver struct {
	Dir    string
	Env    string
	File   string
	Getenv func(string) string
	Warn   io.Writer
}

// NewResolver returns a Resolver for the Perplexity key with the default
// directory, variable, and filename.
func NewResolver(warn io.Writer) *Resolver {
	return &Resolver{
		Dir:    DefaultDir,
		Env:    PerplexityEnv,
		File:   PerplexityKeyFile,
		Getenv: os.Getenv,
		Warn:   warn,
	}
}

// Resolve returns the first non-empty key and where it came from. An empty
// result with OriginNone means no source had a key; that is not an error
// here, since commands that never call the API do not need one.
func (r *Resolver) Resolve(configured string) (string, Origin, error) {
	if v := strings.TrimSpace(configured); v != "" {
		return v, OriginConfig, nil
	}

	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if r.Env != "" {
		if v := strings.TrimSpace(getenv(r.Env)); v != "" {
			return v, OriginEnv, nil
		}
	}

	if r.Dir == "" || r.File == "" {
		return "", OriginNone, nil
	}
	found, err := Load(r.Dir, r.Warn)
	if err != nil {
		return "", OriginNone, err
	}
	if v := found[r.File]; v != "" {
		return v, OriginFile, nil
	}
	return "", OriginNone, nil
}
