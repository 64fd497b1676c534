package schedule

import (
	"sort"

	"github.com/avelichko/semestra/internal/domain"
)

// RemainingAfterToday reconstructs, for every allocation of the plan,
// the minutes left on that task once the day's scheduled work is done.
//
// The backend only transmits a per-day remaining snapshot, and across
// backend versions that snapshot is inconsistent about whether the
// current day's own allocation has already been netted out. When the
// payload carries the task's total estimate the remainder is rebuilt
// from scratch: total minus everything scheduled on prior days. Without
// a total the snapshot is trusted as the before-today remainder. Either
// way the result is clamped at zero so snapshot drift never produces a
// negative display value.
//
// The result is shaped like days: out[i][j] corresponds to
// days[i].Tasks[j]. Days are processed in DayNumber order even if the
// input slice arrives unsorted.
func RemainingAfterToday(days []domain.PlannedDay) [][]int {
	order := make([]int, len(days))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return days[order[a]].DayNumber < days[order[b]].DayNumber
	})

	out := make([][]int, len(days))
	cumulative := make(map[int64]int)

	for _, di := range order {
		day := days[di]
		out[di] = make([]int, len(day.Tasks))
		for j, alloc := range day.Tasks {
			prior := cumulative[alloc.TaskID]

			before := alloc.MinutesRemaining
			if alloc.TotalEstimatedMinutes != nil {
				before = *alloc.TotalEstimatedMinutes - prior
			}

			after := before - alloc.MinutesToday
			if after < 0 {
				after = 0
			}
			out[di][j] = after
			cumulative[alloc.TaskID] = prior + alloc.MinutesToday
		}
	}
	return out
}

// TaskTotalMinutes returns the full effort known for an allocation:
// the explicit total when present, otherwise today's share plus the
// remaining snapshot.
func TaskTotalMinutes(alloc domain.PlannedTask) int {
	if alloc.TotalEstimatedMinutes != nil {
		return *alloc.TotalEstimatedMinutes
	}
	return alloc.MinutesToday + alloc.MinutesRemaining
}
