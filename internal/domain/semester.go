package domain

import "time"

// Semester is one academic term as reported by the backend.
//
// Subjects is nil until the first subject fetch for this semester has
// been requested; an empty non-nil slice means the fetch succeeded and
// the term has no subjects. LastRefresh records the most recent
// successful estimate recomputation for this semester.
type Semester struct {
	// ID is the backend's opaque key. Its first ten characters are the
	// term's nominal start date in YYYY-MM-DD form.
	ID   string
	Name string

	Subjects        []Subject
	SubjectsLoading bool
	SubjectsError   string

	LastRefresh *time.Time
}

// Subject is one course within a semester. Tasks follows the same
// lazy-load convention as Semester.Subjects.
type Subject struct {
	ID   int64
	Name string

	Tasks        []Task
	TasksLoading bool
	TasksError   string
}

// Task is a single assignment. EstimatedMinutes and
// EstimateExplanation are populated only by an estimate refresh; the
// remaining fields come from the task fetch and are never mutated by
// a refresh.
type Task struct {
	ID       int64
	Name     string
	Deadline *time.Time
	Status   string
	Grade    *string

	EstimatedMinutes    *int
	EstimateExplanation *string
}

// TaskEstimate is one entry of an estimate-refresh response.
type TaskEstimate struct {
	TaskID           int64
	EstimatedMinutes *int
	Explanation      *string
}

// FindSubject returns a pointer to the subject with the given id, or nil.
func (s *Semester) FindSubject(subjectID int64) *Subject {
	for i := range s.Subjects {
		if s.Subjects[i].ID == subjectID {
			return &s.Subjects[i]
		}
	}
	return nil
}

// ApplyEstimates patches matching tasks across all loaded subjects of
// the semester. Tasks without a matching estimate are left unchanged.
func (s *Semester) ApplyEstimates(estimates []TaskEstimate) {
	byID := make(map[int64]TaskEstimate, len(estimates))
	for _, e := range estimates {
		byID[e.TaskID] = e
	}
	for i := range s.Subjects {
		tasks := s.Subjects[i].Tasks
		for j := range tasks {
			if e, ok := byID[tasks[j].ID]; ok {
				tasks[j].EstimatedMinutes = e.EstimatedMinutes
				tasks[j].EstimateExplanation = e.Explanation
			}
		}
	}
}
