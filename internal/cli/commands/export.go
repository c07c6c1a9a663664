package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/ageview/internal/export"
	"github.com/leapstack-labs/ageview/pkg/core"
)

// ExportOptions holds options shared by the export subcommands.
type ExportOptions struct {
	Out    string
	Dir    string
	Search string
}

// NewExportCommand creates the export command group.
func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the summary or a status's details to an Excel file",
		Long: `Export data to an .xlsx workbook with a single "Data" sheet.

Filenames follow the dashboard's download names: SO_Order_Summary.xlsx for
the summary and SO_Details_<status>.xlsx for details, with whitespace in the
status replaced by underscores. Existing files are overwritten. Nothing is
written when there are no rows.`,
	}

	cmd.AddCommand(newExportSummaryCommand(), newExportDetailsCommand())
	return cmd
}

func newExportSummaryCommand() *cobra.Command {
	opts := &ExportOptions{}
	cmd := &cobra.Command{
		Use:     "summary",
		Short:   "Export the per-status summary",
		Example: `  ageview export summary --dir reports`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			rows, err := cmdCtx.Client.FetchSummary(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load summary: %w", err)
			}
			return writeExport(cmd, cmdCtx, opts, export.SummaryFilename, export.SummaryRecords(rows))
		},
	}
	addExportFlags(cmd, opts)
	return cmd
}

func newExportDetailsCommand() *cobra.Command {
	opts := &ExportOptions{}
	cmd := &cobra.Command{
		Use:   "details <status>",
		Short: "Export the detail rows of a status",
		Long: fmt.Sprintf(`Export the detail rows of a status, optionally narrowed by a search term.
Up to %d rows are fetched in a single request.`, export.DetailsLimit),
		Example: `  ageview export details "In Transit" --search north`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			status := args[0]
			page, err := cmdCtx.Client.FetchDetailPage(cmd.Context(), status, 1, export.DetailsLimit, opts.Search)
			if err != nil {
				return fmt.Errorf("failed to load details: %w", err)
			}
			if page.Empty() {
				cmdCtx.Logger.Debug("no rows to export", "status", status, "search", opts.Search)
			} else if page.TotalRowCount > len(page.Rows) {
				cmdCtx.Renderer.Warning(fmt.Sprintf("Exporting the first %d of %d rows", len(page.Rows), page.TotalRowCount))
			}
			return writeExport(cmd, cmdCtx, opts, export.FilenameFor(status), page.Rows)
		},
	}
	addExportFlags(cmd, opts)
	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "Search term sent to the backend")
	return cmd
}

func addExportFlags(cmd *cobra.Command, opts *ExportOptions) {
	cmd.Flags().StringVar(&opts.Out, "out", "", "Base filename without extension (default: dashboard name)")
	cmd.Flags().StringVar(&opts.Dir, "dir", ".", "Directory to write into")
}

// ExportResult is the structured output of an export.
type ExportResult struct {
	Path string `json:"path" yaml:"path"`
	Rows int    `json:"rows" yaml:"rows"`
}

func writeExport(cmd *cobra.Command, cmdCtx *CommandContext, opts *ExportOptions, name string, records []core.Record) error {
	r := cmdCtx.Renderer

	if opts.Out != "" {
		name = opts.Out
	}
	if opts.Dir != "" && opts.Dir != "." {
		if err := os.MkdirAll(opts.Dir, 0o750); err != nil {
			return fmt.Errorf("failed to create %s: %w", opts.Dir, err)
		}
		name = filepath.Join(opts.Dir, name)
	}

	path, err := export.ToFile(records, name)
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	cmdCtx.Logger.Debug("export finished", "command", cmd.CommandPath(), "path", path, "rows", len(records))

	if done, err := r.Structured(ExportResult{Path: path, Rows: len(records)}); done {
		return err
	}
	if path == "" {
		r.Muted("Nothing to export")
		return nil
	}
	r.Success(fmt.Sprintf("Wrote %d rows to %s", len(records), path))
	return nil
}
