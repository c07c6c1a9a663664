// Package assistant serves the chat panel of the browser dashboard.
package assistant

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/ageview/internal/ui/features/common"
)

// SetupRoutes configures routes for the assistant feature.
func SetupRoutes(router chi.Router, deps common.Deps) error {
	handlers := NewHandlers(deps)

	router.Get("/chat", handlers.TranscriptUpdates)
	router.Post("/chat", handlers.Submit)
	router.Post("/chat/clear", handlers.Clear)

	return nil
}
