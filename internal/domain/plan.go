package domain

import "time"

// PlannedTask is one task allocation inside a planned day. The same
// TaskID may recur across several days of the plan.
type PlannedTask struct {
	TaskID      int64
	TaskName    string
	SubjectName string

	// MinutesToday is the effort the backend scheduled on this day.
	MinutesToday int

	// MinutesRemaining is the backend's remaining-at-planning-time
	// snapshot. Depending on the backend version it may or may not net
	// out MinutesToday; the schedule package reconstructs a consistent
	// remaining-after-today value from it.
	MinutesRemaining int

	Deadline time.Time

	// TotalEstimatedMinutes is the full effort estimate for the task.
	// Older backend payloads omit it.
	TotalEstimatedMinutes *int
}

// PlannedDay is one day of the study plan. Days arrive ordered by
// DayNumber ascending and contiguous.
type PlannedDay struct {
	DayNumber    int
	Date         time.Time
	TotalMinutes int
	Tasks        []PlannedTask
}

// StudyPlan is a complete plan response. It is replaced wholesale on
// every fetch and has no identity across requests.
type StudyPlan struct {
	SemesterStart        time.Time
	PlanStart            *time.Time
	Days                 []PlannedDay
	Warnings             []string
	TotalTasksConsidered int
}

// Empty reports whether the plan contains no scheduled days.
func (p *StudyPlan) Empty() bool {
	return p == nil || len(p.Days) == 0
}
