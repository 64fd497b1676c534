// Package planner assembles study-plan requests and holds the latest
// plan response. The backend does the actual scheduling; this side
// validates and clamps the parameters before they go on the wire and
// makes sure a superseded response never overwrites a newer one.
package planner

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avelichko/semestra/internal/api"
	"github.com/avelichko/semestra/internal/domain"
	"github.com/avelichko/semestra/internal/schedule"
)

// Builder accumulates plan parameters for one semester.
type Builder struct {
	key              schedule.SemesterKey
	hasKey           bool
	winStart, winEnd time.Time

	startDate  time.Time
	userPicked bool

	dailyHoursText  string
	ignoreCompleted bool

	gen     string
	loading bool
	errMsg  string
	plan    *domain.StudyPlan
}

// NewBuilder returns a builder with no semester bound yet.
func NewBuilder() *Builder { return &Builder{} }

// SetSemester binds the builder to a semester key and derives its date
// window. The start date defaults to today clamped into the window; a
// previously picked date survives the switch when it still fits the
// new window. Any held or in-flight plan belongs to the old semester
// and is discarded.
func (b *Builder) SetSemester(rawKey string, today time.Time) error {
	key, err := schedule.ParseKey(rawKey)
	if err != nil {
		return err
	}
	b.key = key
	b.hasKey = true
	b.winStart, b.winEnd = key.Window()

	if !b.userPicked || !schedule.Contains(b.winStart, b.winEnd, b.startDate) {
		b.startDate = schedule.Clamp(b.winStart, b.winEnd, today)
		b.userPicked = false
	}

	b.invalidate()
	return nil
}

// Window returns the bound semester's inclusive date range.
func (b *Builder) Window() (start, end time.Time) { return b.winStart, b.winEnd }

// StartDate returns the effective plan start date.
func (b *Builder) StartDate() time.Time { return b.startDate }

// StartPicked reports whether the start date was chosen by the user
// rather than defaulted from today.
func (b *Builder) StartPicked() bool { return b.userPicked }

// SetStartDate picks a plan start date, clamped into the semester
// window. Picking marks the date as user-chosen so it is kept across
// semester switches while it fits, and invalidates the held plan.
func (b *Builder) SetStartDate(d time.Time) {
	if !b.hasKey {
		return
	}
	clamped := schedule.Clamp(b.winStart, b.winEnd, d)
	if b.userPicked && clamped.Equal(b.startDate) {
		return
	}
	b.startDate = clamped
	b.userPicked = true
	b.invalidate()
}

func (b *Builder) DailyHoursText() string { return b.dailyHoursText }

// SetDailyHoursText stores the raw hours input. A changed value
// invalidates the held plan; it was computed under the old setting.
func (b *Builder) SetDailyHoursText(s string) {
	if s == b.dailyHoursText {
		return
	}
	b.dailyHoursText = s
	b.invalidate()
}

func (b *Builder) IgnoreCompleted() bool { return b.ignoreCompleted }

// SetIgnoreCompleted stores the completed-tasks filter. A changed
// value invalidates the held plan.
func (b *Builder) SetIgnoreCompleted(v bool) {
	if v == b.ignoreCompleted {
		return
	}
	b.ignoreCompleted = v
	b.invalidate()
}

// invalidate drops the held plan and orphans any in-flight fetch; its
// response was requested under superseded parameters.
func (b *Builder) invalidate() {
	b.gen = ""
	b.loading = false
	b.errMsg = ""
	b.plan = nil
}

// DailyHours parses the free-form hours input. Anything that is not a
// positive whole number means "omit the parameter".
func (b *Builder) DailyHours() int {
	n, err := strconv.Atoi(strings.TrimSpace(b.dailyHoursText))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// Query materializes the wire-level request for the current settings.
func (b *Builder) Query() (api.PlanQuery, error) {
	if !b.hasKey {
		return api.PlanQuery{}, fmt.Errorf("no semester bound")
	}
	q := api.PlanQuery{
		SemesterKey:     b.key.Raw,
		IgnoreCompleted: b.ignoreCompleted,
		DailyHours:      b.DailyHours(),
	}
	// The start date is always sent: SetSemester initializes it even
	// when the user never picked one, and the rendered settings must
	// match what the backend plans against.
	d := b.startDate
	q.CustomStart = &d
	return q, nil
}

// ── fetch lifecycle ──────────────────────────────────────────────────

// Begin marks a plan fetch as started and returns its generation
// token. Unlike the hierarchy loads, plan fetches are not
// single-flight: changing a parameter mid-fetch starts a new request
// and the old generation simply loses.
func (b *Builder) Begin() (gen string, ok bool) {
	if !b.hasKey {
		return "", false
	}
	b.gen = uuid.NewString()
	b.loading = true
	b.errMsg = ""
	return b.gen, true
}

// Apply commits a plan result. Only the latest generation wins; a
// failed fetch keeps the previous plan on screen next to the error.
func (b *Builder) Apply(gen string, plan *domain.StudyPlan, err error) {
	if gen == "" || gen != b.gen {
		return
	}
	b.gen = ""
	b.loading = false

	if err != nil {
		b.errMsg = err.Error()
		return
	}
	b.plan = plan
}

func (b *Builder) Loading() bool           { return b.loading }
func (b *Builder) Error() string           { return b.errMsg }
func (b *Builder) Plan() *domain.StudyPlan { return b.plan }
