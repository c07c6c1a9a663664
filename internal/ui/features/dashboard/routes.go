// Package dashboard serves the summary overview and the details grid.
package dashboard

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/ageview/internal/ui/features/common"
)

// SetupRoutes configures routes for the dashboard feature.
func SetupRoutes(router chi.Router, deps common.Deps) error {
	handlers := NewHandlers(deps)

	router.Get("/", handlers.Page)
	router.Get("/summary", handlers.SummarySSE)
	router.Get("/summary/export", handlers.ExportSummary)
	router.Get("/details", handlers.DetailsSSE)
	router.Get("/details/rows", handlers.RowsSSE)
	router.Get("/details/record", handlers.RecordSSE)
	router.Get("/details/export", handlers.ExportDetails)

	return nil
}
