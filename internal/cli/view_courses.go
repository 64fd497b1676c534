package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/avelichko/semestra/internal/cli/formatter"
	"github.com/avelichko/semestra/internal/domain"
)

// coursesView is the home view: semester tabs across the top, the
// selected semester's subjects below, and the expanded subject's tasks
// inline. All data comes from the shared hierarchy cache.
type coursesView struct {
	state  *SharedState
	cursor int
	frame  int
}

func newCoursesView(state *SharedState) *coursesView {
	return &coursesView{state: state}
}

func (v *coursesView) ID() ViewID    { return ViewCourses }
func (v *coursesView) Title() string { return "Courses" }

func (v *coursesView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("left"), key.WithHelp("←/→", "semester")),
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "expand subject")),
		key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "refresh estimates")),
		key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "study plan")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	}
}

func (v *coursesView) Init() tea.Cmd {
	return spinnerTick(0)
}

func (v *coursesView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerTickMsg:
		if !v.anythingLoading() {
			return v, nil
		}
		v.frame = msg.frame
		return v, spinnerTick(v.frame)

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *coursesView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := v.state

	switch msg.String() {
	case "left", "h":
		return v, v.switchSemester(-1)
	case "right", "l", "tab":
		return v, v.switchSemester(1)

	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if sem := st.Cache.Selected(); sem != nil && v.cursor < len(sem.Subjects)-1 {
			v.cursor++
		}

	case "enter", " ":
		sem := st.Cache.Selected()
		if sem == nil || v.cursor >= len(sem.Subjects) {
			return v, nil
		}
		subjectID := sem.Subjects[v.cursor].ID
		if gen, fetch := st.Cache.ToggleSubject(subjectID); fetch {
			return v, tea.Batch(loadTasksCmd(st.App, subjectID, gen), spinnerTick(v.frame))
		}

	case "e":
		sem := st.Cache.Selected()
		if sem == nil {
			return v, nil
		}
		if gen, ok := st.Refresh.Begin(sem.ID, true); ok {
			return v, tea.Batch(refreshEstimatesCmd(st.App, sem.ID, gen), spinnerTick(v.frame))
		}

	case "p":
		if sem := v.state.Cache.Selected(); sem != nil {
			return v, pushView(newPlanView(v.state, sem.ID))
		}

	case "r":
		return v, v.reload()
	}
	return v, nil
}

// switchSemester moves the semester selection left or right.
func (v *coursesView) switchSemester(delta int) tea.Cmd {
	st := v.state
	semesters := st.Cache.Semesters()
	if len(semesters) == 0 {
		return nil
	}
	idx := 0
	for i := range semesters {
		if semesters[i].ID == st.Cache.SelectedID() {
			idx = i
			break
		}
	}
	idx += delta
	if idx < 0 || idx >= len(semesters) {
		return nil
	}
	if changed, _ := st.Cache.SelectSemester(semesters[idx].ID); !changed {
		return nil
	}
	st.Refresh.ClearMessages()
	v.cursor = 0
	return tea.Batch(hierarchyFollowUps(st), spinnerTick(v.frame))
}

// reload retries whatever currently shows an error, or refetches the
// semester list when nothing does.
func (v *coursesView) reload() tea.Cmd {
	st := v.state
	if sem := st.Cache.Selected(); sem != nil {
		if sem.SubjectsError != "" {
			if gen, ok := st.Cache.BeginLoadSubjects(sem.ID); ok {
				return tea.Batch(loadSubjectsCmd(st.App, sem.ID, gen), spinnerTick(v.frame))
			}
			return nil
		}
		if sub := sem.FindSubject(st.Cache.ExpandedSubject()); sub != nil && sub.TasksError != "" {
			if gen, ok := st.Cache.RetryTasks(sub.ID); ok {
				return tea.Batch(loadTasksCmd(st.App, sub.ID, gen), spinnerTick(v.frame))
			}
			return nil
		}
	}
	if gen, ok := st.Cache.BeginLoadSemesters(); ok {
		return tea.Batch(loadSemestersCmd(st.App, gen), spinnerTick(v.frame))
	}
	return nil
}

func (v *coursesView) anythingLoading() bool {
	st := v.state
	if st.Cache.SemestersLoading() || st.Refresh.InFlight() {
		return true
	}
	sem := st.Cache.Selected()
	if sem == nil {
		return false
	}
	if sem.SubjectsLoading {
		return true
	}
	for i := range sem.Subjects {
		if sem.Subjects[i].TasksLoading {
			return true
		}
	}
	return false
}

// ── rendering ────────────────────────────────────────────────────────

func (v *coursesView) View() string {
	st := v.state
	var b strings.Builder

	if st.Cache.SemestersLoading() && !st.Cache.Loaded() {
		fmt.Fprintf(&b, "\n  %s %s\n", formatter.StylePurple.Render(formatter.SpinnerFrame(v.frame)), formatter.Dim("loading semesters"))
		return b.String()
	}
	if err := st.Cache.SemestersError(); err != "" && !st.Cache.Loaded() {
		fmt.Fprintf(&b, "\n  %s %s\n  %s\n", formatter.StyleRed.Render("✗"), err, formatter.Dim("r: retry"))
		return b.String()
	}
	if len(st.Cache.Semesters()) == 0 {
		b.WriteString("\n  " + formatter.Dim("no semesters yet; run `semestra sync` to import your courses") + "\n")
		return b.String()
	}

	b.WriteString(v.renderTabs() + "\n")

	sem := st.Cache.Selected()
	if sem == nil {
		return b.String()
	}

	b.WriteString("  " + formatter.RefreshAge(sem.LastRefresh, st.Now()))
	if msg := st.Refresh.LastError(); msg != "" {
		b.WriteString("  " + formatter.StyleRed.Render(msg))
	} else if msg := st.Refresh.LastNotice(); msg != "" {
		b.WriteString("  " + formatter.StyleGreen.Render("✓ "+msg))
	}
	b.WriteString("\n\n")

	v.renderSubjects(&b, sem)
	return b.String()
}

func (v *coursesView) renderTabs() string {
	st := v.state
	var tabs []string
	for _, sem := range st.Cache.Semesters() {
		if sem.ID == st.Cache.SelectedID() {
			tabs = append(tabs, formatter.StyleHeader.Render(" "+sem.Name+" "))
		} else {
			tabs = append(tabs, formatter.Dim(" "+sem.Name+" "))
		}
	}
	return " " + strings.Join(tabs, formatter.Dim("│"))
}

func (v *coursesView) renderSubjects(b *strings.Builder, sem *domain.Semester) {
	switch {
	case sem.SubjectsLoading:
		fmt.Fprintf(b, "  %s %s\n", formatter.StylePurple.Render(formatter.SpinnerFrame(v.frame)), formatter.Dim("loading subjects"))
		return
	case sem.SubjectsError != "":
		fmt.Fprintf(b, "  %s %s\n  %s\n", formatter.StyleRed.Render("✗"), sem.SubjectsError, formatter.Dim("r: retry"))
		return
	case sem.Subjects == nil:
		return
	case len(sem.Subjects) == 0:
		b.WriteString("  " + formatter.Dim("no subjects in this semester") + "\n")
		return
	}

	expanded := v.state.Cache.ExpandedSubject()
	for i := range sem.Subjects {
		sub := &sem.Subjects[i]

		marker := "  "
		if i == v.cursor {
			marker = formatter.StyleHeader.Render("▸ ")
		}
		arrow := "▸"
		if sub.ID == expanded {
			arrow = "▾"
		}
		fmt.Fprintf(b, " %s%s %s\n", marker, formatter.Dim(arrow), formatter.Bold(sub.Name))

		if sub.ID == expanded {
			v.renderTasks(b, sub)
		}
	}
}

func (v *coursesView) renderTasks(b *strings.Builder, sub *domain.Subject) {
	switch {
	case sub.TasksLoading:
		fmt.Fprintf(b, "      %s %s\n", formatter.StylePurple.Render(formatter.SpinnerFrame(v.frame)), formatter.Dim("loading tasks"))
		return
	case sub.TasksError != "":
		fmt.Fprintf(b, "      %s %s  %s\n", formatter.StyleRed.Render("✗"), sub.TasksError, formatter.Dim("r: retry"))
		return
	case len(sub.Tasks) == 0:
		b.WriteString("      " + formatter.Dim("no tasks") + "\n")
		return
	}

	for i := range sub.Tasks {
		task := &sub.Tasks[i]

		line := "      • " + task.Name
		if task.Status != "" {
			line += "  " + formatter.StatusStyle(task.Status).Render(task.Status)
		}
		if task.Grade != nil && *task.Grade != "" {
			line += "  " + formatter.StyleBlue.Render(*task.Grade)
		}
		if task.Deadline != nil {
			line += "  " + formatter.DeadlineStyled(*task.Deadline, v.state.Now())
		}
		if task.EstimatedMinutes != nil {
			line += "  " + formatter.StyleGreen.Render("~"+formatter.FormatMinutes(*task.EstimatedMinutes))
		}
		b.WriteString(line + "\n")

		if task.EstimateExplanation != nil && *task.EstimateExplanation != "" {
			b.WriteString("        " + formatter.Dim(*task.EstimateExplanation) + "\n")
		}
	}
}
