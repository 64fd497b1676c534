// Package hierarchy owns the client's semester → subject → task tree.
//
// The Cache is a single-owner state machine: fetch work happens
// elsewhere (tea.Cmd goroutines), but every state transition goes
// through a Begin/Apply pair on the UI event loop. Begin hands out a
// generation token that the fetch carries; Apply discards any result
// whose token no longer matches, so a superseded fetch can never
// clobber newer state.
package hierarchy

import (
	"errors"
	"time"

	"github.com/avelichko/semestra/internal/api"
	"github.com/avelichko/semestra/internal/domain"
	"github.com/google/uuid"
)

// Cache holds the lazily-loaded hierarchy and the selection state.
type Cache struct {
	semesters        []domain.Semester
	semestersLoading bool
	semestersError   string
	loaded           bool

	selectedID string
	expandedID int64 // expanded subject within the selected semester; 0 = none

	signedOut bool

	semGen      string
	subjectGens map[string]string
	taskGens    map[int64]string
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		subjectGens: make(map[string]string),
		taskGens:    make(map[int64]string),
	}
}

// ── read access ──────────────────────────────────────────────────────

// Semesters returns the current tree. The slice is owned by the cache
// and valid until the next Apply; callers on the event loop must not
// hold it across messages.
func (c *Cache) Semesters() []domain.Semester { return c.semesters }

// Loaded reports whether at least one semester-list fetch succeeded.
func (c *Cache) Loaded() bool { return c.loaded }

func (c *Cache) SemestersLoading() bool  { return c.semestersLoading }
func (c *Cache) SemestersError() string  { return c.semestersError }
func (c *Cache) SelectedID() string      { return c.selectedID }
func (c *Cache) ExpandedSubject() int64  { return c.expandedID }

// SignedOut reports that the backend rejected the session and the
// program must sign out instead of surfacing a fetch error.
func (c *Cache) SignedOut() bool { return c.signedOut }

// Selected returns the selected semester node, or nil.
func (c *Cache) Selected() *domain.Semester {
	return c.findSemester(c.selectedID)
}

// NewestID returns the id of the most recently created semester; the
// backend sends the list sorted newest-first.
func (c *Cache) NewestID() string {
	if len(c.semesters) == 0 {
		return ""
	}
	return c.semesters[0].ID
}

func (c *Cache) findSemester(id string) *domain.Semester {
	for i := range c.semesters {
		if c.semesters[i].ID == id {
			return &c.semesters[i]
		}
	}
	return nil
}

// findSubject locates a subject node anywhere in the tree.
func (c *Cache) findSubject(subjectID int64) *domain.Subject {
	for i := range c.semesters {
		if sub := c.semesters[i].FindSubject(subjectID); sub != nil {
			return sub
		}
	}
	return nil
}

// ── semester list ────────────────────────────────────────────────────

// BeginLoadSemesters marks the semester list as loading and returns
// the generation token the fetch must carry. ok is false while a list
// fetch is already in flight or after a forced sign-out.
func (c *Cache) BeginLoadSemesters() (gen string, ok bool) {
	if c.semestersLoading || c.signedOut {
		return "", false
	}
	c.semestersLoading = true
	c.semestersError = ""
	c.semGen = uuid.NewString()
	return c.semGen, true
}

// ApplySemesters commits a semester-list result. The whole tree is
// replaced; previous subject and task nodes are discarded. A 401
// flips the cache into the signed-out state instead of surfacing an
// error. Stale generations are dropped.
func (c *Cache) ApplySemesters(gen string, list []domain.Semester, err error) {
	if gen != c.semGen {
		return
	}
	c.semGen = ""
	c.semestersLoading = false

	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) || errors.Is(err, api.ErrNoCredential) {
			c.signedOut = true
			return
		}
		c.semestersError = err.Error()
		return
	}

	c.semesters = list
	c.loaded = true
	c.expandedID = 0
	c.subjectGens = make(map[string]string)
	c.taskGens = make(map[int64]string)

	// Keep the selection when it survived the reload, otherwise fall
	// back to the newest semester.
	if c.findSemester(c.selectedID) == nil {
		c.selectedID = c.NewestID()
	}
}

// ── selection ────────────────────────────────────────────────────────

// SelectSemester switches the selection. Switching always collapses
// the expanded subject of the previous semester. needLoad reports
// whether the caller should start a subject fetch for the new
// selection. Re-selecting the current semester is a no-op.
func (c *Cache) SelectSemester(id string) (changed, needLoad bool) {
	if id == c.selectedID {
		return false, false
	}
	sem := c.findSemester(id)
	if sem == nil {
		return false, false
	}
	c.selectedID = id
	c.expandedID = 0
	return true, sem.Subjects == nil && !sem.SubjectsLoading
}

// ── subjects ─────────────────────────────────────────────────────────

// BeginLoadSubjects starts a subject fetch for one semester. At most
// one subject fetch may be in flight per semester; ok is false while
// one already is. Existing children are dropped before the fetch, as
// the node is about to be replaced wholesale.
func (c *Cache) BeginLoadSubjects(semesterID string) (gen string, ok bool) {
	sem := c.findSemester(semesterID)
	if sem == nil || sem.SubjectsLoading {
		return "", false
	}
	sem.SubjectsLoading = true
	sem.SubjectsError = ""
	sem.Subjects = nil
	gen = uuid.NewString()
	c.subjectGens[semesterID] = gen
	return gen, true
}

// ApplySubjects commits a subject-list result for one semester.
func (c *Cache) ApplySubjects(semesterID, gen string, list []domain.Subject, err error) {
	sem := c.findSemester(semesterID)
	if sem == nil || c.subjectGens[semesterID] != gen {
		return
	}
	delete(c.subjectGens, semesterID)
	sem.SubjectsLoading = false

	if err != nil {
		sem.SubjectsError = err.Error()
		return
	}
	sem.Subjects = list
}

// ── tasks ────────────────────────────────────────────────────────────

// ToggleSubject expands or collapses a subject of the selected
// semester. Collapsing and re-expanding an already-loaded subject
// never refetches; expanding an unloaded one returns the generation
// token for the task fetch the caller must start.
func (c *Cache) ToggleSubject(subjectID int64) (gen string, fetch bool) {
	sem := c.Selected()
	if sem == nil {
		return "", false
	}
	if c.expandedID == subjectID {
		c.expandedID = 0
		return "", false
	}
	sub := sem.FindSubject(subjectID)
	if sub == nil {
		return "", false
	}
	c.expandedID = subjectID

	if sub.Tasks != nil || sub.TasksLoading {
		return "", false
	}
	sub.TasksLoading = true
	sub.TasksError = ""
	gen = uuid.NewString()
	c.taskGens[subjectID] = gen
	return gen, true
}

// RetryTasks restarts a failed task fetch for the expanded subject.
func (c *Cache) RetryTasks(subjectID int64) (gen string, ok bool) {
	sub := c.findSubject(subjectID)
	if sub == nil || sub.TasksLoading {
		return "", false
	}
	sub.TasksLoading = true
	sub.TasksError = ""
	gen = uuid.NewString()
	c.taskGens[subjectID] = gen
	return gen, true
}

// ApplyTasks commits a task-list result. A collapsed subject still
// accepts its data, so a later expand needs no refetch. A stale
// generation is dropped.
func (c *Cache) ApplyTasks(subjectID int64, gen string, list []domain.Task, err error) {
	sub := c.findSubject(subjectID)
	if sub == nil || c.taskGens[subjectID] != gen {
		return
	}
	delete(c.taskGens, subjectID)
	sub.TasksLoading = false

	if err != nil {
		sub.TasksError = err.Error()
		return
	}
	sub.Tasks = list
}

// ── estimates ────────────────────────────────────────────────────────

// ApplyEstimates patches refreshed estimates into every loaded subject
// of the semester and records the refresh time.
func (c *Cache) ApplyEstimates(semesterID string, estimates []domain.TaskEstimate, now time.Time) {
	sem := c.findSemester(semesterID)
	if sem == nil {
		return
	}
	sem.ApplyEstimates(estimates)
	sem.LastRefresh = &now
}

// MergeLastRefresh seeds refresh timestamps from the local store.
// A server-sent timestamp wins when it is newer.
func (c *Cache) MergeLastRefresh(stored map[string]time.Time) {
	for i := range c.semesters {
		ts, ok := stored[c.semesters[i].ID]
		if !ok {
			continue
		}
		cur := c.semesters[i].LastRefresh
		if cur == nil || cur.Before(ts) {
			t := ts
			c.semesters[i].LastRefresh = &t
		}
	}
}

// Reset discards the whole tree, e.g. on sign-out.
func (c *Cache) Reset() {
	*c = *NewCache()
}
