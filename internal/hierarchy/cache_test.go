package hierarchy

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelichko/semestra/internal/api"
	"github.com/avelichko/semestra/internal/domain"
)

func twoSemesters() []domain.Semester {
	return []domain.Semester{
		{ID: "2024-09-01T00:00:00", Name: "2024-2025 Осенний семестр"},
		{ID: "2024-02-05T00:00:00", Name: "2023-2024 Весенний семестр"},
	}
}

func loadSemesters(t *testing.T, c *Cache, list []domain.Semester) {
	t.Helper()
	gen, ok := c.BeginLoadSemesters()
	require.True(t, ok)
	c.ApplySemesters(gen, list, nil)
	require.True(t, c.Loaded())
}

func loadSubjects(t *testing.T, c *Cache, semesterID string, subjects []domain.Subject) {
	t.Helper()
	gen, ok := c.BeginLoadSubjects(semesterID)
	require.True(t, ok)
	c.ApplySubjects(semesterID, gen, subjects, nil)
}

func TestSemesterLoad_SelectsNewestByDefault(t *testing.T) {
	c := NewCache()
	loadSemesters(t, c, twoSemesters())

	assert.Equal(t, "2024-09-01T00:00:00", c.SelectedID())
	assert.False(t, c.SemestersLoading())
	assert.Empty(t, c.SemestersError())
}

func TestSemesterLoad_SingleFlight(t *testing.T) {
	c := NewCache()
	gen, ok := c.BeginLoadSemesters()
	require.True(t, ok)

	_, ok = c.BeginLoadSemesters()
	assert.False(t, ok, "a second list fetch must not start while one is in flight")

	c.ApplySemesters(gen, twoSemesters(), nil)
	_, ok = c.BeginLoadSemesters()
	assert.True(t, ok)
}

func TestSemesterLoad_StaleGenerationDropped(t *testing.T) {
	c := NewCache()
	gen, _ := c.BeginLoadSemesters()
	c.ApplySemesters(gen, twoSemesters(), nil)

	c.ApplySemesters(gen, []domain.Semester{{ID: "old"}}, nil)
	assert.Len(t, c.Semesters(), 2, "a consumed generation must not apply twice")
}

func TestSemesterLoad_ErrorKeepsPreviousTree(t *testing.T) {
	c := NewCache()
	loadSemesters(t, c, twoSemesters())

	gen, _ := c.BeginLoadSemesters()
	c.ApplySemesters(gen, nil, errors.New("backend unavailable"))

	assert.Len(t, c.Semesters(), 2)
	assert.Equal(t, "backend unavailable", c.SemestersError())
	assert.False(t, c.SemestersLoading())
}

func TestSemesterLoad_UnauthorizedForcesSignOut(t *testing.T) {
	c := NewCache()
	gen, _ := c.BeginLoadSemesters()
	c.ApplySemesters(gen, nil, api.ErrUnauthorized)

	assert.True(t, c.SignedOut())
	assert.Empty(t, c.SemestersError(), "a rejected session is not a fetch error")

	_, ok := c.BeginLoadSemesters()
	assert.False(t, ok)
}

func TestSemesterReload_KeepsSurvivingSelection(t *testing.T) {
	c := NewCache()
	loadSemesters(t, c, twoSemesters())
	c.SelectSemester("2024-02-05T00:00:00")

	loadSemesters(t, c, twoSemesters())
	assert.Equal(t, "2024-02-05T00:00:00", c.SelectedID())

	loadSemesters(t, c, []domain.Semester{{ID: "2025-09-01T00:00:00"}})
	assert.Equal(t, "2025-09-01T00:00:00", c.SelectedID(), "a vanished selection falls back to the newest semester")
}

func TestSelectSemester_CollapsesExpandedSubject(t *testing.T) {
	c := NewCache()
	loadSemesters(t, c, twoSemesters())
	loadSubjects(t, c, "2024-09-01T00:00:00", []domain.Subject{{ID: 1, Name: "Физика"}})

	gen, fetch := c.ToggleSubject(1)
	require.True(t, fetch)
	c.ApplyTasks(1, gen, []domain.Task{{ID: 10, Name: "ЛР1"}}, nil)
	require.Equal(t, int64(1), c.ExpandedSubject())

	changed, needLoad := c.SelectSemester("2024-02-05T00:00:00")
	assert.True(t, changed)
	assert.True(t, needLoad, "an unloaded semester needs a subject fetch")
	assert.Zero(t, c.ExpandedSubject(), "switching semesters collapses the expanded subject")
}

func TestSelectSemester_NoopAndCachedCases(t *testing.T) {
	c := NewCache()
	loadSemesters(t, c, twoSemesters())

	changed, needLoad := c.SelectSemester("2024-09-01T00:00:00")
	assert.False(t, changed, "re-selecting the current semester is a no-op")
	assert.False(t, needLoad)

	loadSubjects(t, c, "2024-02-05T00:00:00", []domain.Subject{})
	changed, needLoad = c.SelectSemester("2024-02-05T00:00:00")
	assert.True(t, changed)
	assert.False(t, needLoad, "loaded subjects must not refetch on selection")

	changed, _ = c.SelectSemester("no-such-semester")
	assert.False(t, changed)
}

func TestToggleSubject_ExpandCollapseExpandUsesCache(t *testing.T) {
	c := NewCache()
	loadSemesters(t, c, twoSemesters())
	loadSubjects(t, c, "2024-09-01T00:00:00", []domain.Subject{{ID: 1}, {ID: 2}})

	gen, fetch := c.ToggleSubject(1)
	require.True(t, fetch)
	c.ApplyTasks(1, gen, []domain.Task{{ID: 10}}, nil)

	_, fetch = c.ToggleSubject(1)
	assert.False(t, fetch)
	assert.Zero(t, c.ExpandedSubject(), "second toggle collapses")

	_, fetch = c.ToggleSubject(1)
	assert.False(t, fetch, "already-loaded tasks must not refetch")
	assert.Equal(t, int64(1), c.ExpandedSubject())
}

func TestToggleSubject_InFlightFetchIsolatedPerSubject(t *testing.T) {
	c := NewCache()
	loadSemesters(t, c, twoSemesters())
	loadSubjects(t, c, "2024-09-01T00:00:00", []domain.Subject{{ID: 1, Name: "Физика"}, {ID: 2, Name: "Химия"}})

	genA, fetch := c.ToggleSubject(1)
	require.True(t, fetch)

	genB, fetch := c.ToggleSubject(2)
	require.True(t, fetch, "expanding B starts B's own fetch")
	require.NotEqual(t, genA, genB)

	sem := c.Selected()
	assert.True(t, sem.FindSubject(1).TasksLoading, "A's fetch stays in flight while B is expanded")

	// A's late response lands on A's node, never on B's.
	c.ApplyTasks(1, genA, []domain.Task{{ID: 10, Name: "ЛР по физике"}}, nil)
	assert.False(t, sem.FindSubject(1).TasksLoading)
	require.Len(t, sem.FindSubject(1).Tasks, 1)
	assert.Nil(t, sem.FindSubject(2).Tasks)
	assert.True(t, sem.FindSubject(2).TasksLoading)

	c.ApplyTasks(2, genB, []domain.Task{{ID: 20}}, nil)
	require.Len(t, sem.FindSubject(2).Tasks, 1)
	assert.Equal(t, int64(20), sem.FindSubject(2).Tasks[0].ID)
}

func TestToggleSubject_WhileLoadingDoesNotDoubleFetch(t *testing.T) {
	c := NewCache()
	loadSemesters(t, c, twoSemesters())
	loadSubjects(t, c, "2024-09-01T00:00:00", []domain.Subject{{ID: 1}})

	gen, fetch := c.ToggleSubject(1)
	require.True(t, fetch)

	// Collapse, then expand again before the fetch returns.
	c.ToggleSubject(1)
	_, fetch = c.ToggleSubject(1)
	assert.False(t, fetch, "an in-flight fetch must not be duplicated")

	c.ApplyTasks(1, gen, []domain.Task{{ID: 10}}, nil)
	assert.Len(t, c.Selected().FindSubject(1).Tasks, 1)
}

func TestApplyTasks_ErrorAndRetry(t *testing.T) {
	c := NewCache()
	loadSemesters(t, c, twoSemesters())
	loadSubjects(t, c, "2024-09-01T00:00:00", []domain.Subject{{ID: 1}})

	gen, _ := c.ToggleSubject(1)
	c.ApplyTasks(1, gen, nil, errors.New("timeout"))

	sub := c.Selected().FindSubject(1)
	assert.Equal(t, "timeout", sub.TasksError)
	assert.False(t, sub.TasksLoading)
	assert.Nil(t, sub.Tasks)

	gen, ok := c.RetryTasks(1)
	require.True(t, ok)
	assert.Empty(t, sub.TasksError, "retry clears the error")
	c.ApplyTasks(1, gen, []domain.Task{{ID: 10}}, nil)
	assert.Len(t, sub.Tasks, 1)
}

func TestApplyTasks_StaleGenerationDropped(t *testing.T) {
	c := NewCache()
	loadSemesters(t, c, twoSemesters())
	loadSubjects(t, c, "2024-09-01T00:00:00", []domain.Subject{{ID: 1}})

	gen, _ := c.ToggleSubject(1)
	c.ApplyTasks(1, "not-the-gen", []domain.Task{{ID: 99}}, nil)

	sub := c.Selected().FindSubject(1)
	assert.True(t, sub.TasksLoading)
	assert.Nil(t, sub.Tasks)

	c.ApplyTasks(1, gen, []domain.Task{{ID: 10}}, nil)
	assert.Equal(t, int64(10), sub.Tasks[0].ID)
}

func TestApplySubjects_ErrorAndStaleGeneration(t *testing.T) {
	c := NewCache()
	loadSemesters(t, c, twoSemesters())

	gen, ok := c.BeginLoadSubjects("2024-09-01T00:00:00")
	require.True(t, ok)
	_, ok = c.BeginLoadSubjects("2024-09-01T00:00:00")
	assert.False(t, ok, "one subject fetch per semester")

	c.ApplySubjects("2024-09-01T00:00:00", "stale", []domain.Subject{{ID: 9}}, nil)
	assert.True(t, c.Selected().SubjectsLoading)

	c.ApplySubjects("2024-09-01T00:00:00", gen, nil, errors.New("502"))
	assert.Equal(t, "502", c.Selected().SubjectsError)
	assert.Nil(t, c.Selected().Subjects)
}

func TestApplyEstimates_PatchesTasksAndRecordsRefresh(t *testing.T) {
	c := NewCache()
	loadSemesters(t, c, twoSemesters())
	loadSubjects(t, c, "2024-09-01T00:00:00", []domain.Subject{{ID: 1}})
	gen, _ := c.ToggleSubject(1)
	c.ApplyTasks(1, gen, []domain.Task{{ID: 10}, {ID: 11}}, nil)

	why := "две лабораторные и отчёт"
	minutes := 240
	now := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	c.ApplyEstimates("2024-09-01T00:00:00", []domain.TaskEstimate{
		{TaskID: 11, EstimatedMinutes: &minutes, Explanation: &why},
	}, now)

	sem := c.Selected()
	require.NotNil(t, sem.LastRefresh)
	assert.Equal(t, now, *sem.LastRefresh)

	patched := sem.FindSubject(1).Tasks[1]
	require.NotNil(t, patched.EstimatedMinutes)
	assert.Equal(t, 240, *patched.EstimatedMinutes)
	assert.Nil(t, sem.FindSubject(1).Tasks[0].EstimatedMinutes)
}

func TestMergeLastRefresh_NewestWins(t *testing.T) {
	server := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	stored := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)

	c := NewCache()
	list := twoSemesters()
	list[0].LastRefresh = &server
	loadSemesters(t, c, list)

	c.MergeLastRefresh(map[string]time.Time{
		"2024-09-01T00:00:00": stored,
		"2024-02-05T00:00:00": stored,
	})

	assert.Equal(t, stored, *c.Semesters()[0].LastRefresh)
	assert.Equal(t, stored, *c.Semesters()[1].LastRefresh)

	c.MergeLastRefresh(map[string]time.Time{"2024-09-01T00:00:00": server})
	assert.Equal(t, stored, *c.Semesters()[0].LastRefresh, "an older stored stamp must not regress the tree")
}

func TestReset_DiscardsEverything(t *testing.T) {
	c := NewCache()
	gen, _ := c.BeginLoadSemesters()
	c.ApplySemesters(gen, nil, api.ErrUnauthorized)
	require.True(t, c.SignedOut())

	c.Reset()
	assert.False(t, c.SignedOut())
	assert.Empty(t, c.Semesters())

	_, ok := c.BeginLoadSemesters()
	assert.True(t, ok)
}
