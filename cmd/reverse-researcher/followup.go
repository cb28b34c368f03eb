// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/reverse-researcher/internal/fetch"
	"github.com/pdiddy/reverse-researcher/internal/render"
	"github.com/pdiddy/reverse-researcher/internal/research"
	"github.com/pdiddy/reverse-researcher/internal/session"
	"github.com/pdiddy/reverse-researcher/pkg/types"
)

var followupCmd = &cobra.Command{
	Use:   "followup <question...>",
	Short: "Ask a follow-up question about the last conclusion",
	Long: `Followup asks one question about the conclusion of a saved session (the
most recent one unless --session is given). A session holds a single
follow-up; asking again replaces the previous answer.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFollowUp,
}

func init() {
	followupCmd.Flags().String("session", "", "session ID or unique prefix (default: most recent)")

	rootCmd.AddCommand(followupCmd)
}

func runFollowUp(cmd *cobra.Command, args []string) error {
	sessionID, _ := cmd.Flags().GetString("session")

	store, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Sonar.APIKey == "" {
		return fetch.ErrNoAPIKey
	}
	fetcher := fetch.NewSonarClient(cfg.Sonar, logger)

	return askFollowUp(cmd.Context(), fetcher, store, sessionID, strings.Join(args, " "), os.Stdout)
}

func askFollowUp(ctx context.Context, f fetch.Fetcher, store *session.Store, sessionID, question string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	sess, err := findSession(ctx, store, sessionID)
	if err != nil {
		return err
	}

	next, err := research.FollowUp(ctx, f, sess, question)
	if err != nil {
		return err
	}
	if err := store.SetFollowUp(ctx, next.ID, next.Question, next.FollowUp); err != nil {
		return fmt.Errorf("saving follow-up: %w", err)
	}

	fmt.Fprintf(out, "Q: %s\n", next.Question)
	sec := research.Sections(types.Session{
		Conclusion: next.Conclusion,
		FollowUp:   next.FollowUp,
	})
	for _, s := range sec {
		render.WriteDocument(out, s.Document)
		render.WriteSources(out, s)
	}
	return nil
}

// findSession returns the session with the given ID prefix, or the most
// recent session when id is empty.
func findSession(ctx context.Context, store *session.Store, id string) (types.Session, error) {
	if id == "" {
		sess, err := store.Latest(ctx)
		if err != nil {
			return types.Session{}, fmt.Errorf("no saved session: run research first: %w", err)
		}
		return sess, nil
	}
	return store.Get(ctx, id)
}
