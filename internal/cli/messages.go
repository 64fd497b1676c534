package cli

import (
	"time"

	"github.com/avelichko/semestra/internal/domain"
	"github.com/avelichko/semestra/internal/store"
)

// Messages carrying fetch results back onto the event loop. Each
// carries the generation token its fetch was started with so stale
// results are dropped at the apply site.

type semestersLoadedMsg struct {
	gen    string
	list   []domain.Semester
	stored map[string]time.Time // refresh stamps from the local store
	err    error
}

type subjectsLoadedMsg struct {
	semesterID string
	gen        string
	subjects   []domain.Subject
	err        error
}

type tasksLoadedMsg struct {
	subjectID int64
	gen       string
	tasks     []domain.Task
	err       error
}

type estimatesRefreshedMsg struct {
	semesterID string
	gen        string
	estimates  []domain.TaskEstimate
	err        error
}

type planLoadedMsg struct {
	gen  string
	plan *domain.StudyPlan
	err  error
}

type planPrefsLoadedMsg struct {
	semesterID string
	prefs      *store.PlanPrefs
}

// pushViewMsg asks the root model to stack a new view. Popping goes
// through the global esc handling instead.
type pushViewMsg struct{ view View }

// spinnerTickMsg advances the loading animation.
type spinnerTickMsg struct{ frame int }
