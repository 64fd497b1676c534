package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/avelichko/semestra/internal/cli/formatter"
	"github.com/avelichko/semestra/internal/planner"
	"github.com/avelichko/semestra/internal/schedule"
	"github.com/avelichko/semestra/internal/store"
)

const planDateLayout = "2006-01-02"

// Settings fields, in tab order.
const (
	fieldHours = iota
	fieldStartDate
	fieldIgnoreCompleted
	fieldCount
)

// planView shows the study-plan settings and the generated day-by-day
// schedule for one semester.
type planView struct {
	state      *SharedState
	semesterID string
	builder    *planner.Builder
	initErr    string

	hoursInput textinput.Model
	dateInput  textinput.Model
	field      int
	frame      int
}

func newPlanView(state *SharedState, semesterID string) *planView {
	hours := textinput.New()
	hours.Placeholder = "server default"
	hours.CharLimit = 2
	hours.Width = 14

	date := textinput.New()
	date.Placeholder = planDateLayout
	date.CharLimit = len(planDateLayout)
	date.Width = 14

	v := &planView{
		state:      state,
		semesterID: semesterID,
		builder:    planner.NewBuilder(),
		hoursInput: hours,
		dateInput:  date,
	}
	if err := v.builder.SetSemester(semesterID, state.Now()); err != nil {
		v.initErr = err.Error()
	}
	return v
}

func (v *planView) ID() ViewID    { return ViewPlan }
func (v *planView) Title() string { return "Study plan" }

func (v *planView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit/toggle")),
		key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "generate plan")),
	}
}

// editing reports whether a text input currently owns the keyboard.
func (v *planView) editing() bool {
	return v.hoursInput.Focused() || v.dateInput.Focused()
}

func (v *planView) Init() tea.Cmd {
	if v.initErr != "" {
		return nil
	}
	return tea.Batch(loadPlanPrefsCmd(v.state.App, v.semesterID), spinnerTick(0))
}

func (v *planView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case planPrefsLoadedMsg:
		if msg.semesterID != v.semesterID {
			return v, nil
		}
		if msg.prefs != nil {
			v.hoursInput.SetValue(msg.prefs.DailyHours)
			v.builder.SetIgnoreCompleted(msg.prefs.IgnoreCompleted)
			if msg.prefs.StartDate != nil {
				v.builder.SetStartDate(*msg.prefs.StartDate)
				v.dateInput.SetValue(v.builder.StartDate().Format(planDateLayout))
			}
		}
		return v, v.fetch()

	case planLoadedMsg:
		v.builder.Apply(msg.gen, msg.plan, msg.err)
		return v, nil

	case spinnerTickMsg:
		if !v.builder.Loading() {
			return v, nil
		}
		v.frame = msg.frame
		return v, spinnerTick(v.frame)

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *planView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.editing() {
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc, tea.KeyTab:
			v.commitInputs()
			v.hoursInput.Blur()
			v.dateInput.Blur()
			if msg.Type == tea.KeyTab {
				v.field = (v.field + 1) % fieldCount
			}
			return v, v.fetch()
		}
		var cmd tea.Cmd
		if v.hoursInput.Focused() {
			v.hoursInput, cmd = v.hoursInput.Update(msg)
		} else {
			v.dateInput, cmd = v.dateInput.Update(msg)
		}
		return v, cmd
	}

	switch msg.String() {
	case "tab", "down", "j":
		v.field = (v.field + 1) % fieldCount
	case "shift+tab", "up", "k":
		v.field = (v.field + fieldCount - 1) % fieldCount

	case "enter":
		switch v.field {
		case fieldHours:
			return v, v.hoursInput.Focus()
		case fieldStartDate:
			return v, v.dateInput.Focus()
		case fieldIgnoreCompleted:
			v.builder.SetIgnoreCompleted(!v.builder.IgnoreCompleted())
			return v, v.fetch()
		}
	case " ":
		if v.field == fieldIgnoreCompleted {
			v.builder.SetIgnoreCompleted(!v.builder.IgnoreCompleted())
			return v, v.fetch()
		}

	case "g":
		return v, v.fetch()
	}
	return v, nil
}

// commitInputs pushes the text fields into the builder, clamping and
// normalizing as it goes.
func (v *planView) commitInputs() {
	v.builder.SetDailyHoursText(v.hoursInput.Value())

	raw := strings.TrimSpace(v.dateInput.Value())
	if raw == "" {
		return
	}
	if d, err := time.ParseInLocation(planDateLayout, raw, time.UTC); err == nil {
		v.builder.SetStartDate(d)
		v.dateInput.SetValue(v.builder.StartDate().Format(planDateLayout))
	}
}

func (v *planView) fetch() tea.Cmd {
	v.commitInputs()
	q, err := v.builder.Query()
	if err != nil {
		return nil
	}
	gen, ok := v.builder.Begin()
	if !ok {
		return nil
	}

	prefs := store.PlanPrefs{
		SemesterID:      v.semesterID,
		DailyHours:      v.builder.DailyHoursText(),
		IgnoreCompleted: v.builder.IgnoreCompleted(),
	}
	// Only a user-picked date is worth remembering; the default start
	// tracks today and must not come back as a stale pick tomorrow.
	if v.builder.StartPicked() {
		d := v.builder.StartDate()
		prefs.StartDate = &d
	}

	return tea.Batch(
		loadPlanCmd(v.state.App, q, gen),
		savePlanPrefsCmd(v.state.App, prefs),
		spinnerTick(v.frame),
	)
}

// ── rendering ────────────────────────────────────────────────────────

func (v *planView) View() string {
	if v.initErr != "" {
		return "\n  " + formatter.StyleRed.Render("✗ "+v.initErr) + "\n"
	}

	var b strings.Builder
	v.renderSettings(&b)
	b.WriteString("\n")

	switch {
	case v.builder.Loading():
		fmt.Fprintf(&b, "  %s %s\n", formatter.StylePurple.Render(formatter.SpinnerFrame(v.frame)), formatter.Dim("building plan"))
	case v.builder.Error() != "":
		fmt.Fprintf(&b, "  %s %s\n", formatter.StyleRed.Render("✗"), v.builder.Error())
	}

	if plan := v.builder.Plan(); plan != nil {
		v.renderPlan(&b)
	}
	return b.String()
}

func (v *planView) renderSettings(b *strings.Builder) {
	winStart, winEnd := v.builder.Window()
	fmt.Fprintf(b, "  %s\n", formatter.Dim(fmt.Sprintf("semester window %s – %s",
		winStart.Format("Jan 2, 2006"), winEnd.Format("Jan 2, 2006"))))

	marker := func(f int) string {
		if v.field == f {
			return formatter.StyleHeader.Render("▸ ")
		}
		return "  "
	}

	hours := v.hoursInput.View()
	if !v.hoursInput.Focused() && v.hoursInput.Value() == "" {
		hours = formatter.Dim("server default")
	}
	fmt.Fprintf(b, " %sDaily hours      %s\n", marker(fieldHours), hours)

	date := v.dateInput.View()
	if !v.dateInput.Focused() && v.dateInput.Value() == "" {
		date = formatter.StyleFg.Render(v.builder.StartDate().Format(planDateLayout))
	}
	fmt.Fprintf(b, " %sPlan start       %s\n", marker(fieldStartDate), date)

	check := "[ ]"
	if v.builder.IgnoreCompleted() {
		check = "[x]"
	}
	fmt.Fprintf(b, " %sIgnore completed %s\n", marker(fieldIgnoreCompleted), check)
}

func (v *planView) renderPlan(b *strings.Builder) {
	plan := v.builder.Plan()

	for _, w := range plan.Warnings {
		fmt.Fprintf(b, "  %s %s\n", formatter.StyleYellow.Render("⚠"), formatter.StyleYellow.Render(w))
	}
	if plan.Empty() {
		b.WriteString("\n  " + formatter.Dim("nothing to schedule") + "\n")
		return
	}

	fmt.Fprintf(b, "  %s\n\n", formatter.Dim(fmt.Sprintf("%d tasks considered", plan.TotalTasksConsidered)))

	remaining := schedule.RemainingAfterToday(plan.Days)
	for di, day := range plan.Days {
		header := fmt.Sprintf("Day %d · %s", day.DayNumber, formatter.HumanDateFrom(day.Date, v.state.Now()))
		fmt.Fprintf(b, "  %s  %s\n", formatter.Bold(header), formatter.Dim(formatter.FormatMinutes(day.TotalMinutes)))

		for ti, alloc := range day.Tasks {
			fmt.Fprintf(b, "    • %s %s\n", formatter.StyleFg.Render(alloc.TaskName), formatter.Dim(alloc.SubjectName))
			line := fmt.Sprintf("      %s today", formatter.StyleGreen.Render(formatter.FormatMinutes(alloc.MinutesToday)))
			line += formatter.Dim(fmt.Sprintf(" · %s left after", formatter.FormatMinutes(remaining[di][ti])))
			if !alloc.Deadline.IsZero() {
				line += "  " + formatter.DeadlineStyled(alloc.Deadline, v.state.Now())
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}
}
