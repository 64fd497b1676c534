package testutil

// Canonical fixture identifiers, exported so tests can assert against
// the same values the backend serves.
const (
	AutumnKey = "2024-09-01T00:00:00"
	SpringKey = "2024-02-05T00:00:00"

	PhysicsID   = "1"
	ChemistryID = "2"
	HistoryID   = "3"
)

// loadFixtures fills the backend with a small two-semester account:
// the newest (autumn) semester with two subjects and a handful of
// tasks, and an older spring semester with one subject.
func (b *Backend) loadFixtures() {
	b.Semesters = []map[string]any{
		{"id": AutumnKey, "name": "2024-2025 Осенний семестр", "lastAiRefreshTimestamp": nil},
		{"id": SpringKey, "name": "2023-2024 Весенний семестр", "lastAiRefreshTimestamp": "2024-05-01T10:00:00"},
	}

	b.Subjects = map[string][]map[string]any{
		AutumnKey: {
			{"id": 1, "name": "Физика"},
			{"id": 2, "name": "Химия"},
		},
		SpringKey: {
			{"id": 3, "name": "История"},
		},
	}

	b.Tasks = map[string][]map[string]any{
		PhysicsID: {
			{
				"id": 10, "name": "Лабораторная работа №1",
				"deadline": "2024-10-20T23:59:00", "status": "Не сдано",
				"estimatedMinutes": 120, "timeEstimateExplanation": "отчёт и защита",
			},
			{
				"id": 11, "name": "Лабораторная работа №2",
				"deadline": "2024-11-10T23:59:00", "status": "Оценено", "grade": "5",
			},
		},
		ChemistryID: {
			{"id": 20, "name": "Контрольная работа", "status": "Сдано"},
		},
		HistoryID: {
			{"id": 30, "name": "Эссе", "status": "Оценено", "grade": "4"},
		},
	}

	b.Estimates = []map[string]any{
		{"taskId": 10, "estimatedMinutes": 180, "explanation": "две части и отчёт"},
		{"taskId": 20, "estimatedMinutes": 60, "explanation": "повторить лекции"},
	}

	b.Plan = map[string]any{
		"semesterStartDate":               "2024-09-01",
		"planStartDate":                   "2024-10-01",
		"totalTasksConsideredForPlanning": 2,
		"warnings":                        []string{},
		"plannedDays": []map[string]any{
			{
				"dayNumber": 1, "date": "2024-10-01", "totalMinutesScheduledThisDay": 120,
				"tasks": []map[string]any{
					{
						"taskId": 10, "taskName": "Лабораторная работа №1", "subjectName": "Физика",
						"minutesScheduledToday": 120, "minutesRemainingForTask": 60,
						"deadline": "2024-10-20T23:59:00", "totalEstimatedMinutesForTask": 180,
					},
				},
			},
			{
				"dayNumber": 2, "date": "2024-10-02", "totalMinutesScheduledThisDay": 120,
				"tasks": []map[string]any{
					{
						"taskId": 10, "taskName": "Лабораторная работа №1", "subjectName": "Физика",
						"minutesScheduledToday": 60, "minutesRemainingForTask": 0,
						"deadline": "2024-10-20T23:59:00", "totalEstimatedMinutesForTask": 180,
					},
					{
						"taskId": 20, "taskName": "Контрольная работа", "subjectName": "Химия",
						"minutesScheduledToday": 60, "minutesRemainingForTask": 0,
						"deadline": nil, "totalEstimatedMinutesForTask": 60,
					},
				},
			},
		},
	}
}
