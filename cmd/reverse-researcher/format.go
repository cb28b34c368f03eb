// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/reverse-researcher/internal/evidence"
	"github.com/pdiddy/reverse-researcher/internal/render"
	"github.com/pdiddy/reverse-researcher/pkg/types"
)

var formatCmd = &cobra.Command{
	Use:   "format [file|-]",
	Short: "Format raw evidence text offline",
	Long: `Format runs the evidence formatter on raw response text without calling
the API. Input is read from the file argument, or stdin when it is - or
omitted. Citation URLs are given in order with repeated --citation flags
or a --citations-file holding one URL per line (or a JSON array).

Output formats: json and yaml dump the document structure, text is the
terminal rendering, markdown links citations, and plain is the projection
that formats back to the same document.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFormat,
}

func init() {
	formatCmd.Flags().StringArray("citation", nil, "citation URL, in order (repeatable)")
	formatCmd.Flags().String("citations-file", "", "file with one citation URL per line, or a JSON array")
	formatCmd.Flags().String("output", "json", "output format: json, yaml, text, markdown, or plain")

	rootCmd.AddCommand(formatCmd)
}

func runFormat(cmd *cobra.Command, args []string) error {
	citations, _ := cmd.Flags().GetStringArray("citation")
	citationsFile, _ := cmd.Flags().GetString("citations-file")
	output, _ := cmd.Flags().GetString("output")

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		in = f
	}
	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	if citationsFile != "" {
		data, err := os.ReadFile(citationsFile)
		if err != nil {
			return fmt.Errorf("reading citations file: %w", err)
		}
		fromFile, err := parseCitations(data)
		if err != nil {
			return err
		}
		citations = append(citations, fromFile...)
	}

	return writeFormatted(cmd.OutOrStdout(), output, evidence.Format(string(raw), citations))
}

// parseCitations reads a JSON array of URLs or one URL per line. Blank
// lines inside the list keep their position as missing citations.
func parseCitations(data []byte) ([]string, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var out []string
		if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
			return nil, fmt.Errorf("parsing citations JSON: %w", err)
		}
		return out, nil
	}
	lines := strings.Split(strings.ReplaceAll(trimmed, "\r\n", "\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return lines, nil
}

func writeFormatted(w io.Writer, output string, doc types.Document) error {
	switch strings.ToLower(output) {
	case "json", "":
		return render.Encode(w, types.ExportJSON, doc)
	case "yaml", "yml":
		return render.Encode(w, types.ExportYAML, doc)
	case "text":
		render.WriteDocument(w, doc)
		return nil
	case "markdown", "md":
		return render.MarkdownDocument(w, doc)
	case "plain":
		_, err := fmt.Fprintln(w, evidence.PlainText(doc))
		return err
	}
	return fmt.Errorf("unknown output format %q: use json, yaml, text, markdown, or plain", output)
}
