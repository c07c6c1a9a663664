package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/ageview/internal/cli/output"
	"github.com/leapstack-labs/ageview/internal/views"
	"github.com/leapstack-labs/ageview/pkg/core"
)

// Table formats accepted by --format.
var tableFormats = []string{"table", "json", "yaml", "csv", "md"}

func validateFormat(format string) error {
	if format == "" {
		return nil
	}
	for _, f := range tableFormats {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(tableFormats, ", "))
}

// formatFor maps the renderer mode onto a table format when --format is unset.
func formatFor(r *output.Renderer, format string) string {
	if format != "" {
		return format
	}
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return "json"
	case output.ModeYAML:
		return "yaml"
	case output.ModeMarkdown:
		return "md"
	default:
		return "table"
	}
}

func renderRecords(w io.Writer, styles *output.Styles, cols []string, records []core.Record, format string) error {
	switch format {
	case "json":
		return renderJSON(w, records)
	case "yaml":
		return renderYAML(w, cols, records)
	case "csv":
		return renderCSV(w, cols, records)
	case "md", "markdown":
		return renderMarkdown(w, cols, records)
	default:
		return renderTable(w, styles, cols, records)
	}
}

func renderTable(w io.Writer, styles *output.Styles, cols []string, records []core.Record) error {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(cols))
	for i, col := range cols {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	var numeric []table.ColumnConfig
	for i, col := range cols {
		if v, ok := records[0].Get(col); ok {
			if _, isNum := v.(float64); isNum {
				numeric = append(numeric, table.ColumnConfig{Number: i + 1, Align: text.AlignRight})
			}
		}
	}
	t.SetColumnConfigs(numeric)

	for _, rec := range records {
		row := make(table.Row, len(cols))
		for i, col := range cols {
			v, _ := rec.Get(col)
			row[i] = styleCell(styles, v, views.FormatValue(v))
		}
		t.AppendRow(row)
	}

	t.Render()
	return nil
}

// styleCell applies the numeric severity bands of the details grid.
func styleCell(styles *output.Styles, v any, s string) string {
	if styles == nil {
		return s
	}
	if _, ok := v.(float64); !ok {
		return s
	}
	switch views.CellSeverity(v) {
	case views.SeverityHigh:
		return styles.High.Render(s)
	case views.SeverityMedium:
		return styles.Medium.Render(s)
	default:
		return styles.Low.Render(s)
	}
}

func renderJSON(w io.Writer, records []core.Record) error {
	if records == nil {
		records = []core.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// renderYAML writes records as a sequence of mappings in column order.
func renderYAML(w io.Writer, cols []string, records []core.Record) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(recordsNode(cols, records)); err != nil {
		return err
	}
	return enc.Close()
}

func recordsNode(cols []string, records []core.Record) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, rec := range records {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, col := range cols {
			v, ok := rec.Get(col)
			if !ok {
				continue
			}
			var val yaml.Node
			if err := val.Encode(v); err != nil {
				val = yaml.Node{Kind: yaml.ScalarNode, Value: views.FormatValue(v)}
			}
			m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: col}, &val)
		}
		seq.Content = append(seq.Content, m)
	}
	return seq
}

func renderCSV(w io.Writer, cols []string, records []core.Record) error {
	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = escapeCSV(col)
	}
	_, _ = fmt.Fprintln(w, strings.Join(header, ","))

	for _, rec := range records {
		values := make([]string, len(cols))
		for i, col := range cols {
			v, _ := rec.Get(col)
			values[i] = escapeCSV(views.FormatValue(v))
		}
		_, _ = fmt.Fprintln(w, strings.Join(values, ","))
	}
	return nil
}

func renderMarkdown(w io.Writer, cols []string, records []core.Record) error {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(cols, " | "))
	seps := make([]string, len(cols))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, rec := range records {
		values := make([]string, len(cols))
		for i, col := range cols {
			v, _ := rec.Get(col)
			values[i] = strings.ReplaceAll(views.FormatValue(v), "|", `\|`)
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
	return nil
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
