package cli

import (
	"time"

	"github.com/avelichko/semestra/internal/hierarchy"
	"github.com/avelichko/semestra/internal/refresh"
)

// SharedState holds context shared across all views via pointer. All
// mutation happens on the bubbletea event loop.
type SharedState struct {
	App *App

	// Cache is the lazily-loaded semester tree.
	Cache *hierarchy.Cache

	// Refresh guards the estimate-refresh slot.
	Refresh *refresh.Scheduler

	// Terminal dimensions
	Width  int
	Height int
}

// Now returns the app clock.
func (s *SharedState) Now() time.Time {
	return s.App.now()
}

// ContentHeight returns the available height for view content,
// accounting for header (2 lines: title + separator) and status bar
// (2 lines: separator + hints).
func (s *SharedState) ContentHeight() int {
	h := s.Height - 4
	if h < 1 {
		return 1
	}
	return h
}
