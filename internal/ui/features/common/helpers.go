package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/leapstack-labs/ageview/internal/export"
	"github.com/leapstack-labs/ageview/pkg/core"
)

// XLSXContentType is the media type of exported workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteWorkbook streams records as an xlsx download named filename plus the
// workbook extension. Zero records answers 204 No Content.
func WriteWorkbook(w http.ResponseWriter, records []core.Record, filename string) error {
	if len(records) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
	w.Header().Set("Content-Type", XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+export.Extension))
	return export.Write(w, records)
}

// ErrorText renders err for display, preferring the backend's detail.
func ErrorText(err error) string {
	var serverErr *core.ServerError
	if errors.As(err, &serverErr) && serverErr.Detail != "" {
		return serverErr.Detail
	}
	return err.Error()
}
