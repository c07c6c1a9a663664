// Package common provides the per-session state shared by UI features.
package common

import (
	"log/slog"

	"github.com/leapstack-labs/ageview/internal/chat"
	"github.com/leapstack-labs/ageview/internal/dataset"
	"github.com/leapstack-labs/ageview/internal/ui/notifier"
	"github.com/leapstack-labs/ageview/pkg/core"
)

// Session is the dashboard state of one browser session.
type Session struct {
	ID         string
	Controller *dataset.Controller
	Chat       *chat.Panel
}

// Deps are the dependencies every feature's routes receive.
type Deps struct {
	Client   core.QueryClient
	Sessions *Repository
	Notifier *notifier.Notifier
	Logger   *slog.Logger
}
