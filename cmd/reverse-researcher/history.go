// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/reverse-researcher/internal/render"
	"github.com/pdiddy/reverse-researcher/internal/session"
	"github.com/pdiddy/reverse-researcher/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved research sessions",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 0, "maximum sessions to list (0 = history_limit, default 20)")
	historyCmd.Flags().Bool("json", false, "output sessions as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	return printHistory(cmd.Context(), store, limit, jsonOutput, os.Stdout)
}

func printHistory(ctx context.Context, store *session.Store, limit int, jsonOutput bool, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	sessions, err := store.List(ctx, limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		if sessions == nil {
			sessions = []session.Summary{}
		}
		return render.Encode(w, types.ExportJSON, sessions)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(w, "No saved sessions.")
		return nil
	}

	fmt.Fprintf(w, "%-8s  %-16s  %-8s  %-20s  %s\n", "ID", "Created", "Angle", "Results", "Conclusion")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, s := range sessions {
		results := make([]string, len(s.Stances))
		for i, st := range s.Stances {
			results[i] = string(st)
		}
		conclusion := s.Conclusion
		if r := []rune(conclusion); len(r) > 40 {
			conclusion = string(r[:37]) + "..."
		}
		id := s.ID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Fprintf(w, "%-8s  %-16s  %-8s  %-20s  %s\n",
			id, s.CreatedAt.Local().Format("2006-01-02 15:04"), s.Angle, strings.Join(results, ","), conclusion)
	}
	fmt.Fprintf(w, "\n%d sessions\n", len(sessions))
	return nil
}
