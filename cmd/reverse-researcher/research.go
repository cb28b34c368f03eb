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

var researchCmd = &cobra.Command{
	Use:   "research <conclusion...>",
	Short: "Gather supporting and opposing evidence for a conclusion",
	Long: `Research asks the Sonar API for evidence about a conclusion. With the
default balanced angle it requests supporting and opposing evidence in
parallel; --angle support or --angle oppose requests one side only.

The formatted results are printed and the session is saved so that
followup and export can use it. If one side fails the other is still
shown and saved, and the command exits non-zero.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().String("angle", string(types.AngleBalanced), "evidence to request: support, oppose, or balanced")
	researchCmd.Flags().Bool("json", false, "print the session as JSON instead of text")

	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	angleFlag, _ := cmd.Flags().GetString("angle")
	angle, err := types.ParseAngle(angleFlag)
	if err != nil {
		return err
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Sonar.APIKey == "" {
		return fetch.ErrNoAPIKey
	}
	fetcher := fetch.NewSonarClient(cfg.Sonar, logger)

	req := research.Request{Conclusion: strings.Join(args, " "), Angle: angle}
	return researchAndSave(cmd.Context(), fetcher, store, req, jsonOutput, os.Stdout, os.Stderr)
}

// researchAndSave runs the pipeline, saves whatever succeeded, and prints
// the session to out. Per-stance failures go to errw.
func researchAndSave(ctx context.Context, f fetch.Fetcher, store *session.Store, req research.Request, jsonOutput bool, out, errw io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	outcome, err := research.Run(ctx, f, req, logger)
	if err != nil {
		return err
	}

	for _, fail := range outcome.Failures {
		fmt.Fprintf(errw, "failed  %s: %v\n", fail.Stance, fail.Err)
	}
	if !outcome.HasFindings() {
		return fmt.Errorf("no evidence retrieved: %w", outcome.Err())
	}

	sess := outcome.Session
	if err := store.Save(ctx, &sess); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	format := types.ExportText
	if jsonOutput {
		format = types.ExportJSON
	}
	if err := render.Render(out, format, sess); err != nil {
		return err
	}
	fmt.Fprintf(errw, "\nsession %s saved\n", sess.ID)

	if err := outcome.Err(); err != nil {
		return fmt.Errorf("%d stance(s) failed", len(outcome.Failures))
	}
	return nil
}
