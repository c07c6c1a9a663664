package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/ageview/internal/cli/output"
	"github.com/leapstack-labs/ageview/internal/export"
	"github.com/leapstack-labs/ageview/internal/views"
	"github.com/leapstack-labs/ageview/pkg/core"
)

// SummaryOptions holds options for the summary command.
type SummaryOptions struct {
	Format string
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand() *cobra.Command {
	opts := &SummaryOptions{}

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show KPI totals and the per-status summary table",
		Long: `Fetch the per-status aggregate table from the backend and print the
headline totals taken from the Grand Total row followed by the table itself.

Open quantities above 10,000 and unallocated quantities above 1,000 are
highlighted on terminals that support color.`,
		Example: `  # Summary as a table
  ageview summary

  # Machine-readable
  ageview summary --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSummary(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: table, json, yaml, csv, md")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return tableFormats, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// SummaryOutput is the structured output of the summary command.
type SummaryOutput struct {
	KPIs []KPIOutput       `json:"kpis" yaml:"kpis"`
	Rows []core.SummaryRow `json:"rows" yaml:"rows"`
}

// KPIOutput is one headline total.
type KPIOutput struct {
	Label string `json:"label" yaml:"label"`
	Value int64  `json:"value" yaml:"value"`
}

func runSummary(cmd *cobra.Command, opts *SummaryOptions) error {
	if err := validateFormat(opts.Format); err != nil {
		return err
	}

	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.rendererFor(cmd, opts.Format)

	rows, err := cmdCtx.Client.FetchSummary(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load summary: %w", err)
	}
	summary := views.NewSummary(rows)

	format := formatFor(r, opts.Format)
	switch format {
	case "json", "yaml":
		out := SummaryOutput{Rows: summary.Rows(), KPIs: []KPIOutput{}}
		if out.Rows == nil {
			out.Rows = []core.SummaryRow{}
		}
		for _, k := range summary.KPIs() {
			out.KPIs = append(out.KPIs, KPIOutput{Label: k.Label, Value: k.Value})
		}
		if format == "json" {
			return r.JSON(out)
		}
		return r.YAML(out)
	case "csv":
		return renderCSV(r.Writer(), summaryColumns, export.SummaryRecords(summary.Rows()))
	case "md":
		renderSummaryMarkdown(r, summary)
		return nil
	default:
		renderSummaryText(r, summary)
		return nil
	}
}

var summaryColumns = []string{"Store Status", "Open Qty Pcs", "Allocated Qty Pcs", "Picked Qty Pcs", "Unallocated Qty Pcs"}

func renderSummaryText(r *output.Renderer, s views.Summary) {
	styles := r.Styles()

	if kpis := s.KPIs(); len(kpis) > 0 {
		cards := make([]string, 0, len(kpis))
		for _, k := range kpis {
			cards = append(cards, styles.Muted.Render(strings.ToUpper(k.Label))+" "+styles.Bold.Render(views.FormatQty(k.Value)))
		}
		r.Println(strings.Join(cards, "   "))
		r.Println("")
	}

	r.Header(1, "Store Status Summary")
	if s.Len() == 0 {
		r.Muted(views.NoDataText)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Store Status", "Open Qty Pcs", "Allocated Qty Pcs", "Picked Qty Pcs", "Unallocated Qty Pcs"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	for _, row := range s.Rows() {
		openSev, unallocSev := views.RowSeverity(row)
		status := row.StoreStatus
		if row.IsGrandTotal() {
			t.AppendSeparator()
			status = styles.Bold.Render(status)
		}
		t.AppendRow(table.Row{
			status,
			bandQty(styles, openSev, row.OpenQtyPcs),
			views.FormatQty(row.AllocatedQtyPcs),
			views.FormatQty(row.PickedQtyPcs),
			bandQty(styles, unallocSev, row.UnallocatedQtyPcs),
		})
	}
	t.Render()
	r.Muted("Drill into a status with: ageview details <status>")
}

func bandQty(styles *output.Styles, sev views.Severity, v int64) string {
	s := views.FormatQty(v)
	switch sev {
	case views.SeverityHigh:
		return styles.High.Render(s)
	case views.SeverityMedium:
		return styles.Medium.Render(s)
	default:
		return s
	}
}

func renderSummaryMarkdown(r *output.Renderer, s views.Summary) {
	if kpis := s.KPIs(); len(kpis) > 0 {
		r.Println(output.FormatHeader(1, "Totals"))
		for _, k := range kpis {
			r.Println(output.FormatKeyValue(k.Label, views.FormatQty(k.Value)))
		}
		r.Println("")
	}

	r.Println(output.FormatHeader(1, "Store Status Summary"))
	if s.Len() == 0 {
		r.Println(views.NoDataText)
		return
	}

	r.Printf("| %s |\n", strings.Join(summaryColumns, " | "))
	r.Println("| --- | ---: | ---: | ---: | ---: |")
	for _, row := range s.Rows() {
		r.Printf("| %s | %s | %s | %s | %s |\n",
			row.StoreStatus,
			views.FormatQty(row.OpenQtyPcs),
			views.FormatQty(row.AllocatedQtyPcs),
			views.FormatQty(row.PickedQtyPcs),
			views.FormatQty(row.UnallocatedQtyPcs),
		)
	}
}
