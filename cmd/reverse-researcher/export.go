// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/reverse-researcher/internal/render"
	"github.com/pdiddy/reverse-researcher/internal/session"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a session as a printable page or document",
	Long: `Export writes the supporting evidence, opposing evidence, and follow-up
response of a saved session to a file. The html format is a standalone
page styled for printing; markdown, text, json, and yaml are also
available. Use --output - to write to stdout.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("session", "", "session ID or unique prefix (default: most recent)")
	exportCmd.Flags().String("format", "html", "export format: html, markdown, text, json, or yaml")
	exportCmd.Flags().String("output", "", "output file (default research-results plus the format's extension; - for stdout)")
	viper.BindPFlag("export.format", exportCmd.Flags().Lookup("format"))
	viper.BindPFlag("export.output_path", exportCmd.Flags().Lookup("output"))

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	sessionID, _ := cmd.Flags().GetString("session")

	store, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	return exportSession(cmd.Context(), store, sessionID, string(cfg.Export.Format), cfg.Export.OutputPath, os.Stdout)
}

func exportSession(ctx context.Context, store *session.Store, sessionID, formatFlag, output string, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	format, err := render.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	sess, err := findSession(ctx, store, sessionID)
	if err != nil {
		return err
	}

	if output == "-" {
		return render.Render(stdout, format, sess)
	}
	if output == "" {
		output = "research-results" + format.Extension()
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", output, err)
	}
	if err := render.Render(f, format, sess); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	fmt.Fprintf(stdout, "Exported session %s to %s\n", sess.ID, output)
	return nil
}
