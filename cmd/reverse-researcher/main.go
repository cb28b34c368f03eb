// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the reverse-researcher CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/reverse-researcher/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// logger receives debug diagnostics; --verbose lowers its level.
var logger = slog.New(slog.DiscardHandler)

// rootCmd is the base command for the reverse-researcher CLI.
var rootCmd = &cobra.Command{
	Use:   "reverse-researcher",
	Short: "Find evidence for and against a conclusion",
	Long: `reverse-researcher starts from a conclusion and works backwards: it asks
the Perplexity Sonar API for supporting and opposing evidence, formats the
answers with numbered citation links, and keeps the session so you can ask
one follow-up question and export the results.

Typical use:
  reverse-researcher research "Remote work improves productivity"
  reverse-researcher followup "Does this hold for junior engineers?"
  reverse-researcher export --format html --output results.html`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		return secrets.LoadDotEnv(".env")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./reverse-researcher.yaml or ~/.config/reverse-researcher/reverse-researcher.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log API requests and responses to stderr")
	rootCmd.PersistentFlags().String("db", "", "session database (default ~/.local/state/reverse-researcher/sessions.db)")
	rootCmd.PersistentFlags().String("api-key", "", "Perplexity API key (default: $PERPLEXITY_API_KEY or .secrets/perplexity-api-key)")
	rootCmd.PersistentFlags().String("model", "", "Sonar model (default sonar)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "HTTP request timeout (default 60s)")

	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("api_key", rootCmd.PersistentFlags().Lookup("api-key"))
	viper.BindPFlag("model", rootCmd.PersistentFlags().Lookup("model"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("reverse-researcher")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "reverse-researcher"))
		}
	}

	viper.SetEnvPrefix("REVERSE_RESEARCHER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
