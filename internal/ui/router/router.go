// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	assistantFeature "github.com/leapstack-labs/ageview/internal/ui/features/assistant"
	"github.com/leapstack-labs/ageview/internal/ui/features/common"
	dashboardFeature "github.com/leapstack-labs/ageview/internal/ui/features/dashboard"
	"github.com/leapstack-labs/ageview/internal/ui/resources"
)

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, deps common.Deps, sessionStore sessions.Store) error {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}

	// Static assets
	router.Handle("/static/*", resources.Handler())

	var err error
	router.Group(func(r chi.Router) {
		r.Use(common.SessionMiddleware(sessionStore, deps.Sessions, deps.Logger))

		if err = dashboardFeature.SetupRoutes(r, deps); err != nil {
			return
		}
		err = assistantFeature.SetupRoutes(r, deps)
	})
	return err
}
