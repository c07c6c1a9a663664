package commands

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/ageview/internal/cli/output"
	"github.com/leapstack-labs/ageview/internal/views"
)

const (
	chartBarWidth   = 40
	chartLabelWidth = 24
)

// ChartOptions holds options for the chart command.
type ChartOptions struct {
	Top int
}

// NewChartCommand creates the chart command.
func NewChartCommand() *cobra.Command {
	opts := &ChartOptions{}

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Show the top statuses by open quantity",
		Long: `Draw a horizontal bar chart of the statuses with the largest open
quantity. The Grand Total row is excluded and shares are relative to the
statuses shown.`,
		Example: `  ageview chart
  ageview chart --top 3 -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChart(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Top, "top", views.DefaultTopN, "Number of statuses to show")

	return cmd
}

// ChartSlice is one bar of the structured chart output.
type ChartSlice struct {
	Status string  `json:"status" yaml:"status"`
	Value  int64   `json:"value" yaml:"value"`
	Share  float64 `json:"share" yaml:"share"`
}

func runChart(cmd *cobra.Command, opts *ChartOptions) error {
	if opts.Top < 1 {
		return fmt.Errorf("--top must be at least 1")
	}

	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	rows, err := cmdCtx.Client.FetchSummary(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load summary: %w", err)
	}
	slices := views.Distribution(rows, opts.Top)

	out := make([]ChartSlice, 0, len(slices))
	for _, s := range slices {
		out = append(out, ChartSlice{Status: s.Status, Value: s.Value, Share: s.Share})
	}
	if done, err := r.Structured(out); done {
		return err
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatHeader(1, "Status Distribution"))
		r.Println("| Status | Open Qty | Share |")
		r.Println("| --- | ---: | ---: |")
		for _, s := range slices {
			r.Printf("| %s | %s | %s |\n", s.Status, views.FormatQty(s.Value), views.FormatPercent(s.Share))
		}
		return nil
	}

	r.Header(1, "Status Distribution")
	r.Muted("Top statuses by Open Qty")
	if len(slices) == 0 {
		r.Muted(views.NoDataText)
		return nil
	}
	for _, line := range chartLines(slices, r.Styles()) {
		r.Println(line)
	}
	return nil
}

// chartLines renders one bar per slice, scaled to the largest value.
func chartLines(slices []views.Slice, styles *output.Styles) []string {
	var maxValue int64
	for _, s := range slices {
		maxValue = max(maxValue, s.Value)
	}

	lines := make([]string, 0, len(slices))
	for _, s := range slices {
		width := 0
		if maxValue > 0 {
			width = int(float64(s.Value) / float64(maxValue) * chartBarWidth)
		}
		if width == 0 && s.Value > 0 {
			width = 1
		}

		label := runewidth.FillRight(runewidth.Truncate(s.Status, chartLabelWidth, "…"), chartLabelWidth)
		bar := strings.Repeat("█", width) + strings.Repeat(" ", chartBarWidth-width)
		lines = append(lines, fmt.Sprintf("%s %s %s %s",
			label,
			styles.Info.Render(bar),
			views.FormatQty(s.Value),
			styles.Muted.Render("("+views.FormatPercent(s.Share)+")"),
		))
	}
	return lines
}
