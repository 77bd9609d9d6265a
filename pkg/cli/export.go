package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stefanpenner/goalist/pkg/board"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Export is the document written by `goalist export`.
type Export struct {
	ExportedAt time.Time            `json:"exportedAt" yaml:"exportedAt" toml:"exportedAt"`
	Columns    board.ColumnMap      `json:"columns" yaml:"columns" toml:"columns"`
	Focus      []board.FocusItem    `json:"focus" yaml:"focus" toml:"focus"`
	Archived   []board.ArchiveGroup `json:"archived" yaml:"archived" toml:"archived"`
}

// EncodeExport writes doc to w in format.
func EncodeExport(w io.Writer, doc Export, format string) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		return writeJSON(w, doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		var buf bytes.Buffer
		enc := toml.NewEncoder(&buf)
		enc.SetIndentTables(true)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
		_, err := w.Write(buf.Bytes())
		return err
	}
	return fmt.Errorf("unknown format %q: use %s, %s or %s", format, FormatJSON, FormatYAML, FormatTOML)
}

func newExportCommand(opts *rootOptions) *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the board, focus list and archive as JSON, YAML or TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(app *App) error {
				goals, lists := app.Tracker.Snapshot()
				doc := Export{
					ExportedAt: time.Now().UTC().Truncate(time.Second),
					Columns:    board.Build(lists, goals, app.Tracker.Columns()),
					Focus:      board.Focus(goals, lists),
					Archived:   board.Archived(goals, lists, ""),
				}

				if output == "" || output == "-" {
					return EncodeExport(cmd.OutOrStdout(), doc, format)
				}
				var buf bytes.Buffer
				if err := EncodeExport(&buf, doc, format); err != nil {
					return err
				}
				if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				printDone(cmd.ErrOrStderr(), "Exported to %s", output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", FormatJSON, "json, yaml or toml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default stdout)")
	return cmd
}
