package tui

import (
	"github.com/leapstack-labs/ageview/internal/dataset"
	"github.com/leapstack-labs/ageview/pkg/core"
)

type summaryMsg struct {
	rows []core.SummaryRow
	err  error
}

// detailsInitMsg reports the end of an Init. seq identifies the request so
// answers for an abandoned filter are ignored.
type detailsInitMsg struct {
	seq  int
	snap dataset.Snapshot
	err  error
}

type direction int

const (
	down direction = iota
	up
)

type rowsMsg struct {
	seq        int
	start, end int
	dir        direction
	res        dataset.RangeResult
	err        error
}

type chatMsg struct {
	conv core.Conversation
	err  error
}

type flashMsg struct {
	text string
	err  error
}
