package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/ageview/internal/cli/output"
	"github.com/leapstack-labs/ageview/internal/dataset"
	"github.com/leapstack-labs/ageview/internal/views"
	"github.com/leapstack-labs/ageview/pkg/core"
)

// DetailsOptions holds options for the details command.
type DetailsOptions struct {
	Search string
	Start  int
	Rows   int
	All    bool
	Record int
	Format string
}

// NewDetailsCommand creates the details command.
func NewDetailsCommand() *cobra.Command {
	opts := &DetailsOptions{}

	cmd := &cobra.Command{
		Use:   "details <status>",
		Short: "Browse the order rows behind one store status",
		Long: `Page through the detail rows of a store status. Rows are fetched one page
at a time from the backend and the search term is passed through unchanged.

Use --start and --rows to pick a window, --all to walk every row, or
--record to open a single row in the record view.`,
		Example: `  # First page of pending orders
  ageview details Pending

  # Rows 200-299 matching a search term
  ageview details "In Transit" --search north --start 200 --rows 100

  # One record in detail
  ageview details Pending --record 42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetails(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "Search term sent to the backend")
	cmd.Flags().IntVar(&opts.Start, "start", 0, "First row (0-based)")
	cmd.Flags().IntVarP(&opts.Rows, "rows", "n", 0, "Number of rows (default: one page)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Fetch every row, page by page")
	cmd.Flags().IntVar(&opts.Record, "record", -1, "Show one row (0-based) in the record view")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: table, json, yaml, csv, md")

	return cmd
}

// DetailsOutput is the structured output of the details command.
type DetailsOutput struct {
	Status     string        `json:"status" yaml:"status"`
	Search     string        `json:"search" yaml:"search"`
	Start      int           `json:"start" yaml:"start"`
	TotalRows  int           `json:"total_rows" yaml:"total_rows"`
	LoadedRows int           `json:"loaded_rows" yaml:"loaded_rows"`
	Columns    []string      `json:"columns" yaml:"columns"`
	Rows       []core.Record `json:"rows" yaml:"-"`
}

func runDetails(cmd *cobra.Command, status string, opts *DetailsOptions) error {
	if err := validateFormat(opts.Format); err != nil {
		return err
	}
	if opts.Start < 0 || opts.Rows < 0 {
		return fmt.Errorf("--start and --rows must not be negative")
	}

	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.rendererFor(cmd, opts.Format)
	ctx := cmd.Context()

	ctrl, err := cmdCtx.NewController()
	if err != nil {
		return err
	}

	snap, err := ctrl.Init(ctx, core.Filter{Status: status, Search: opts.Search})
	if err != nil {
		return fmt.Errorf("failed to load details: %w", err)
	}

	if opts.Record >= 0 {
		return showRecord(cmd, r, ctrl, opts.Record)
	}

	format := formatFor(r, opts.Format)
	if snap.NoResults {
		if format == "json" || format == "yaml" {
			return writeDetails(r, format, DetailsOutput{Status: status, Search: opts.Search, Columns: nonNil(snap.Columns)})
		}
		r.Println(views.NoResultsText)
		r.Muted(views.NoResultsHintText)
		return nil
	}

	start, end := opts.Start, opts.Start+opts.Rows
	if opts.Rows == 0 {
		end = start + ctrl.PageSize()
	}
	if opts.All {
		start, end = 0, snap.TotalRowCount
	}

	var rows []core.Record
	total := snap.TotalRowCount
	for from := start; from < end; from += ctrl.PageSize() {
		to := min(from+ctrl.PageSize(), end)
		res, err := ctrl.Rows(ctx, from, to)
		if err != nil {
			return fmt.Errorf("failed to load rows: %w", err)
		}
		rows = append(rows, res.Rows...)
		total = res.TotalRowCount
		if opts.All {
			end = total
		}
		if len(res.Rows) < to-from {
			break
		}
	}

	snap = ctrl.Snapshot()
	cmdCtx.Logger.Debug("details loaded",
		"status", status,
		"rows", len(rows),
		"total", total,
		"resident_pages", snap.ResidentPages,
	)

	switch format {
	case "json", "yaml":
		return writeDetails(r, format, DetailsOutput{
			Status:     status,
			Search:     opts.Search,
			Start:      start,
			TotalRows:  total,
			LoadedRows: snap.LoadedRowCount,
			Columns:    nonNil(snap.Columns),
			Rows:       nonNilRecords(rows),
		})
	case "csv":
		return renderCSV(r.Writer(), snap.Columns, rows)
	case "md":
		r.Println(output.FormatHeader(1, "Details for: "+status))
		if err := renderMarkdown(r.Writer(), snap.Columns, rows); err != nil {
			return err
		}
		r.Println("")
		r.Println("_" + views.StatusLine(snap.LoadedRowCount, total, false) + "_")
		return nil
	default:
		r.Header(1, "Details for: "+status)
		if opts.Search != "" {
			r.Muted(fmt.Sprintf("Showing results for %q in %s", opts.Search, status))
		}
		if err := renderTable(r.Writer(), r.Styles(), snap.Columns, rows); err != nil {
			return err
		}
		r.Muted(views.StatusLine(snap.LoadedRowCount, total, false))
		return nil
	}
}

func writeDetails(r *output.Renderer, format string, out DetailsOutput) error {
	if format == "json" {
		return r.JSON(out)
	}
	// Records carry their own order, which the generic encoder would lose.
	type header struct {
		Status     string   `yaml:"status"`
		Search     string   `yaml:"search"`
		Start      int      `yaml:"start"`
		TotalRows  int      `yaml:"total_rows"`
		LoadedRows int      `yaml:"loaded_rows"`
		Columns    []string `yaml:"columns"`
	}
	if err := r.YAML(header{out.Status, out.Search, out.Start, out.TotalRows, out.LoadedRows, out.Columns}); err != nil {
		return err
	}
	if len(out.Rows) == 0 {
		return nil
	}
	r.Println("---")
	return renderYAML(r.Writer(), out.Columns, out.Rows)
}

// showRecord prints one row in the record view: the first three fields as the
// headline, the rest as attributes.
func showRecord(cmd *cobra.Command, r *output.Renderer, ctrl *dataset.Controller, index int) error {
	res, err := ctrl.Rows(cmd.Context(), index, index+1)
	if err != nil {
		return fmt.Errorf("failed to load record %d: %w", index, err)
	}
	if len(res.Rows) == 0 {
		return fmt.Errorf("record %d out of range (total rows: %d)", index, res.TotalRowCount)
	}
	drawer := views.NewDrawer(res.Rows[0])

	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		type field struct {
			Key   string `json:"key" yaml:"key"`
			Value string `json:"value" yaml:"value"`
		}
		out := struct {
			Headline   []field `json:"headline" yaml:"headline"`
			Attributes []field `json:"attributes" yaml:"attributes"`
		}{Headline: []field{}, Attributes: []field{}}
		for _, f := range drawer.Headline {
			out.Headline = append(out.Headline, field{f.Key, f.Value})
		}
		for _, f := range drawer.Attributes {
			out.Attributes = append(out.Attributes, field{f.Key, f.Value})
		}
		_, err := r.Structured(out)
		return err
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, fmt.Sprintf("Record %d", index)))
		for _, f := range drawer.Headline {
			r.Println(output.FormatKeyValue(f.Key, f.Value))
		}
		r.Println("")
		r.Println(output.FormatHeader(2, "Attributes"))
		for _, f := range drawer.Attributes {
			r.Println(output.FormatKeyValue(f.Key, f.Value))
		}
		return nil
	default:
		styles := r.Styles()
		for _, f := range drawer.Headline {
			r.Printf("%s  %s\n", styles.Muted.Render(f.Key), styles.Bold.Render(f.Value))
		}
		r.Println("")
		for _, f := range drawer.Attributes {
			r.Printf("  %-24s %s\n", f.Key, f.Value)
		}
		return nil
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilRecords(s []core.Record) []core.Record {
	if s == nil {
		return []core.Record{}
	}
	return s
}
