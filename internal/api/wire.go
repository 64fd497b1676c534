package api

import (
	"fmt"
	"time"

	"github.com/avelichko/semestra/internal/domain"
)

// Wire shapes mirror the backend's JSON field names exactly; the
// exported client methods convert them into domain values.

type semesterWire struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	LastRefresh *string `json:"lastAiRefreshTimestamp"`
}

type subjectWire struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type taskWire struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Deadline    *string `json:"deadline"`
	Status      string  `json:"status"`
	Grade       *string `json:"grade"`
	Estimated   *int    `json:"estimatedMinutes"`
	Explanation *string `json:"timeEstimateExplanation"`
}

type estimateWire struct {
	TaskID      int64   `json:"taskId"`
	Estimated   *int    `json:"estimatedMinutes"`
	Explanation *string `json:"explanation"`
}

type plannedTaskWire struct {
	TaskID           int64  `json:"taskId"`
	TaskName         string `json:"taskName"`
	SubjectName      string `json:"subjectName"`
	MinutesToday     int    `json:"minutesScheduledToday"`
	MinutesRemaining int    `json:"minutesRemainingForTask"`
	Deadline         string `json:"deadline"`
	TotalEstimated   *int   `json:"totalEstimatedMinutesForTask"`
}

type plannedDayWire struct {
	DayNumber    int               `json:"dayNumber"`
	Date         string            `json:"date"`
	TotalMinutes int               `json:"totalMinutesScheduledThisDay"`
	Tasks        []plannedTaskWire `json:"tasks"`
}

type studyPlanWire struct {
	SemesterStartDate string           `json:"semesterStartDate"`
	PlanStartDate     *string          `json:"planStartDate"`
	PlannedDays       []plannedDayWire `json:"plannedDays"`
	Warnings          []string         `json:"warnings"`
	TotalTasks        int              `json:"totalTasksConsideredForPlanning"`
}

type loginRequestWire struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponseWire struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

type messageWire struct {
	Message string `json:"message"`
}

// dateLayouts are tried in order when parsing backend timestamps;
// different endpoints emit dates, local datetimes or instants.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseWireTime(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func parseWireTimePtr(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := parseWireTime(*s)
	if err != nil {
		return nil
	}
	return &t
}

func (w semesterWire) toDomain() domain.Semester {
	return domain.Semester{
		ID:          w.ID,
		Name:        w.Name,
		LastRefresh: parseWireTimePtr(w.LastRefresh),
	}
}

func (w subjectWire) toDomain() domain.Subject {
	return domain.Subject{ID: w.ID, Name: w.Name}
}

func (w taskWire) toDomain() domain.Task {
	return domain.Task{
		ID:                  w.ID,
		Name:                w.Name,
		Deadline:            parseWireTimePtr(w.Deadline),
		Status:              w.Status,
		Grade:               w.Grade,
		EstimatedMinutes:    w.Estimated,
		EstimateExplanation: w.Explanation,
	}
}

func (w estimateWire) toDomain() domain.TaskEstimate {
	return domain.TaskEstimate{
		TaskID:           w.TaskID,
		EstimatedMinutes: w.Estimated,
		Explanation:      w.Explanation,
	}
}

func (w studyPlanWire) toDomain() (*domain.StudyPlan, error) {
	start, err := parseWireTime(w.SemesterStartDate)
	if err != nil {
		return nil, fmt.Errorf("plan semester start: %w", err)
	}

	plan := &domain.StudyPlan{
		SemesterStart:        start,
		PlanStart:            parseWireTimePtr(w.PlanStartDate),
		Warnings:             w.Warnings,
		TotalTasksConsidered: w.TotalTasks,
	}

	for _, dw := range w.PlannedDays {
		date, err := parseWireTime(dw.Date)
		if err != nil {
			return nil, fmt.Errorf("plan day %d: %w", dw.DayNumber, err)
		}
		day := domain.PlannedDay{
			DayNumber:    dw.DayNumber,
			Date:         date,
			TotalMinutes: dw.TotalMinutes,
		}
		for _, tw := range dw.Tasks {
			deadline, _ := parseWireTime(tw.Deadline)
			day.Tasks = append(day.Tasks, domain.PlannedTask{
				TaskID:                tw.TaskID,
				TaskName:              tw.TaskName,
				SubjectName:           tw.SubjectName,
				MinutesToday:          tw.MinutesToday,
				MinutesRemaining:      tw.MinutesRemaining,
				Deadline:              deadline,
				TotalEstimatedMinutes: tw.TotalEstimated,
			})
		}
		plan.Days = append(plan.Days, day)
	}
	return plan, nil
}
