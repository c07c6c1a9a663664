// Package export writes record sets to spreadsheet workbooks.
package export

import (
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/xuri/excelize/v2"

	"github.com/leapstack-labs/ageview/pkg/core"
)

// SheetName is the single sheet every workbook holds.
const SheetName = "Data"

// Extension is appended to every filename.
const Extension = ".xlsx"

// DetailsLimit is how many rows a details export fetches when no grid is
// open to take the loaded rows from.
const DetailsLimit = 5000

// SummaryFilename is the base name for the summary export.
const SummaryFilename = "SO_Order_Summary"

// ErrNothingToExport is returned by Write for an empty record set. ToFile
// treats the same case as a silent no-op.
var ErrNothingToExport = errors.New("nothing to export")

var whitespace = regexp.MustCompile(`\s`)

// FilenameFor returns the details export base name for status.
func FilenameFor(status string) string {
	return "SO_Details_" + whitespace.ReplaceAllString(status, "_")
}

// Columns returns the union of record keys in first-seen order.
func Columns(records []core.Record) []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, r := range records {
		for _, key := range r.Keys() {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			cols = append(cols, key)
		}
	}
	return cols
}

// Workbook builds a workbook with a header row and one row per record.
// Missing fields are left blank.
func Workbook(records []core.Record) (*excelize.File, error) {
	f := excelize.NewFile()
	// NewFile starts with "Sheet1".
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open stream writer: %w", err)
	}

	cols := Columns(records)
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, r := range records {
		values := make([]any, len(cols))
		for j, c := range cols {
			if v, ok := r.Get(c); ok {
				values[j] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		if err := sw.SetRow(cell, values); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("flush sheet: %w", err)
	}
	return f, nil
}

// Write streams a workbook for records to w.
func Write(w io.Writer, records []core.Record) error {
	if len(records) == 0 {
		return ErrNothingToExport
	}

	f, err := Workbook(records)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ToFile writes records to filename plus Extension and returns the path.
// An empty record set writes nothing and returns an empty path.
func ToFile(records []core.Record, filename string) (string, error) {
	if len(records) == 0 {
		return "", nil
	}

	f, err := Workbook(records)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	path := filename + Extension
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}

// SummaryRecords converts summary rows into records for export.
func SummaryRecords(rows []core.SummaryRow) []core.Record {
	out := make([]core.Record, len(rows))
	for i, r := range rows {
		out[i] = r.Record()
	}
	return out
}
