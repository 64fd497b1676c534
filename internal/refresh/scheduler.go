// Package refresh decides when the AI time estimates of a semester
// need recomputing and guards the expensive backend call.
package refresh

import (
	"time"

	"github.com/google/uuid"
)

// Staleness is how old a refresh timestamp may get before the client
// triggers a new estimate run on its own.
const Staleness = 24 * time.Hour

// Scheduler serializes estimate refreshes. At most one refresh runs at
// a time across all semesters; the guard is global because the backend
// run is expensive and a second trigger would race the first.
type Scheduler struct {
	gen        string
	semesterID string
	manual     bool
	lastError  string
	lastNotice string
}

// NewScheduler returns an idle scheduler.
func NewScheduler() *Scheduler { return &Scheduler{} }

// InFlight reports whether a refresh is currently running.
func (s *Scheduler) InFlight() bool { return s.gen != "" }

// RefreshingID returns the semester being refreshed, or "".
func (s *Scheduler) RefreshingID() string { return s.semesterID }

// Manual reports whether the running refresh was user-triggered.
// Automatic refreshes fail silently; manual ones surface their error.
func (s *Scheduler) Manual() bool { return s.manual }

// LastError returns the failure message of the most recent manual
// refresh, cleared on the next Begin.
func (s *Scheduler) LastError() string { return s.lastError }

// LastNotice returns the success notice of the most recent manual
// refresh, cleared on the next Begin.
func (s *Scheduler) LastNotice() string { return s.lastNotice }

// ClearMessages drops any lingering success or failure notice, for
// example when the user navigates away from the affected semester.
func (s *Scheduler) ClearMessages() {
	s.lastError = ""
	s.lastNotice = ""
}

// ShouldAutoRefresh reports whether viewing a semester should kick off
// a background refresh. Only the newest semester auto-refreshes, and
// only when its estimates are missing or older than Staleness.
func (s *Scheduler) ShouldAutoRefresh(selectedID, newestID string, lastRefresh *time.Time, now time.Time) bool {
	if s.InFlight() {
		return false
	}
	if selectedID == "" || selectedID != newestID {
		return false
	}
	return lastRefresh == nil || now.Sub(*lastRefresh) > Staleness
}

// Begin claims the refresh slot for one semester and returns the
// generation token the fetch must carry. ok is false while another
// refresh is in flight.
func (s *Scheduler) Begin(semesterID string, manual bool) (gen string, ok bool) {
	if s.InFlight() {
		return "", false
	}
	s.gen = uuid.NewString()
	s.semesterID = semesterID
	s.manual = manual
	s.lastError = ""
	s.lastNotice = ""
	return s.gen, true
}

// Complete releases the slot after a successful run and records a
// notice when the run was manual. A stale generation is dropped.
func (s *Scheduler) Complete(gen string) bool {
	if gen == "" || gen != s.gen {
		return false
	}
	if s.manual {
		s.lastNotice = "estimates refreshed"
	}
	s.reset()
	return true
}

// Fail releases the slot after a failed run and records the message
// when the run was manual.
func (s *Scheduler) Fail(gen string, err error) bool {
	if gen == "" || gen != s.gen {
		return false
	}
	if s.manual && err != nil {
		s.lastError = err.Error()
	}
	s.reset()
	return true
}

func (s *Scheduler) reset() {
	s.gen = ""
	s.semesterID = ""
	s.manual = false
}
