package cli

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/avelichko/semestra/internal/cli/formatter"
	"github.com/avelichko/semestra/internal/hierarchy"
	"github.com/avelichko/semestra/internal/refresh"
)

// appModel is the root bubbletea Model for the TUI. It manages the
// view stack and is the single place where fetch results are applied
// to the shared hierarchy cache and refresh scheduler.
type appModel struct {
	state     *SharedState
	viewStack []View
	quitting  bool
	signedOut bool
}

func newAppModel(app *App) appModel {
	state := &SharedState{
		App:     app,
		Cache:   hierarchy.NewCache(),
		Refresh: refresh.NewScheduler(),
	}
	m := appModel{state: state}

	// The courses view is the home view.
	m.viewStack = []View{newCoursesView(state)}
	return m
}

// activeView returns the top view on the stack, or nil.
func (m *appModel) activeView() View {
	if len(m.viewStack) == 0 {
		return nil
	}
	return m.viewStack[len(m.viewStack)-1]
}

// setActiveView replaces the top of the view stack.
func (m *appModel) setActiveView(v View) {
	if len(m.viewStack) > 0 {
		m.viewStack[len(m.viewStack)-1] = v
	}
}

// ── bubbletea interface ──────────────────────────────────────────────

func (m appModel) Init() tea.Cmd {
	var cmds []tea.Cmd
	if gen, ok := m.state.Cache.BeginLoadSemesters(); ok {
		cmds = append(cmds, loadSemestersCmd(m.state.App, gen))
	}
	if v := m.activeView(); v != nil {
		cmds = append(cmds, v.Init())
	}
	return tea.Batch(cmds...)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.state.Width = msg.Width
		m.state.Height = msg.Height
		if v := m.activeView(); v != nil {
			updated, cmd := v.Update(msg)
			m.setActiveView(updated.(View))
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	// Fetch results are applied here so cache mutation stays in one
	// place; views render straight from the shared state.
	case semestersLoadedMsg:
		m.state.Cache.ApplySemesters(msg.gen, msg.list, msg.err)
		if m.state.Cache.SignedOut() {
			m.signedOut = true
			m.quitting = true
			return m, tea.Quit
		}
		if msg.err == nil {
			m.state.Cache.MergeLastRefresh(msg.stored)
		}
		return m, hierarchyFollowUps(m.state)

	case subjectsLoadedMsg:
		m.state.Cache.ApplySubjects(msg.semesterID, msg.gen, msg.subjects, msg.err)
		return m, nil

	case tasksLoadedMsg:
		m.state.Cache.ApplyTasks(msg.subjectID, msg.gen, msg.tasks, msg.err)
		return m, nil

	case estimatesRefreshedMsg:
		if msg.err != nil {
			m.state.Refresh.Fail(msg.gen, msg.err)
			return m, nil
		}
		if m.state.Refresh.Complete(msg.gen) {
			m.state.Cache.ApplyEstimates(msg.semesterID, msg.estimates, m.state.Now())
		}
		return m, nil

	case pushViewMsg:
		m.viewStack = append(m.viewStack, msg.view)
		return m, msg.view.Init()
	}

	// Everything else (plan results, prefs, spinner ticks) belongs to
	// the view that started it.
	if v := m.activeView(); v != nil {
		updated, cmd := v.Update(msg)
		m.setActiveView(updated.(View))
		return m, cmd
	}
	return m, nil
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	// Views with text inputs receive every key.
	if v := m.activeView(); v != nil && viewCapturesInput(v) {
		updated, cmd := v.Update(msg)
		m.setActiveView(updated.(View))
		return m, cmd
	}

	switch {
	case msg.String() == "q":
		m.quitting = true
		return m, tea.Quit

	case msg.Type == tea.KeyEsc:
		if len(m.viewStack) > 1 {
			m.viewStack = m.viewStack[:len(m.viewStack)-1]
			return m, nil
		}
		return m, nil
	}

	if v := m.activeView(); v != nil {
		updated, cmd := v.Update(msg)
		m.setActiveView(updated.(View))
		return m, cmd
	}
	return m, nil
}

func (m appModel) View() string {
	if m.quitting {
		return ""
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	if v := m.activeView(); v != nil {
		sections = append(sections, v.View())
	}
	sections = append(sections, m.renderStatusBar())

	result := strings.Join(sections, "\n")

	// Pad to terminal height to prevent stale line artifacts from
	// bubbletea's line-diff renderer in alt-screen mode.
	if m.state.Height > 0 {
		lines := strings.Count(result, "\n") + 1
		if lines < m.state.Height {
			result += strings.Repeat("\n", m.state.Height-lines)
		}
	}
	return result
}

// ── rendering helpers ────────────────────────────────────────────────

func (m *appModel) renderHeader() string {
	title := formatter.StylePurple.Render("semestra")

	var crumbs []string
	for _, v := range m.viewStack {
		if t := v.Title(); t != "" {
			crumbs = append(crumbs, t)
		}
	}
	header := title
	if len(crumbs) > 0 {
		header += " " + formatter.Dim("›") + " " + formatter.Dim(strings.Join(crumbs, " › "))
	}

	if m.state.Refresh.InFlight() {
		header += "  " + formatter.StyleYellow.Render("⟳ refreshing estimates")
	}

	sep := formatter.Dim(strings.Repeat("─", max(m.state.Width, 20)))
	return header + "\n" + sep
}

func (m *appModel) renderStatusBar() string {
	var hints []string
	if v := m.activeView(); v != nil {
		for _, b := range v.ShortHelp() {
			hints = append(hints, formatter.Dim(b.Help().Key+": "+b.Help().Desc))
		}
	}
	if len(m.viewStack) > 1 {
		hints = append(hints, formatter.Dim("esc: back"))
	}
	hints = append(hints, formatter.Dim("q: quit"))

	sep := formatter.Dim(strings.Repeat("─", max(m.state.Width, 20)))
	return sep + "\n" + strings.Join(hints, "  ")
}

// viewCapturesInput reports whether the active view owns the keyboard,
// bypassing the global q/esc handling.
func viewCapturesInput(v View) bool {
	if pv, ok := v.(*planView); ok {
		return pv.editing()
	}
	return false
}

// hierarchyFollowUps inspects the shared state after a hierarchy
// change and starts whatever background work the selection now needs:
// a subject fetch for an unloaded semester, and the daily estimate
// refresh when the newest semester's estimates have gone stale.
func hierarchyFollowUps(state *SharedState) tea.Cmd {
	sem := state.Cache.Selected()
	if sem == nil {
		return nil
	}

	var cmds []tea.Cmd
	if sem.Subjects == nil && !sem.SubjectsLoading && sem.SubjectsError == "" {
		if gen, ok := state.Cache.BeginLoadSubjects(sem.ID); ok {
			cmds = append(cmds, loadSubjectsCmd(state.App, sem.ID, gen))
		}
	}
	if state.Refresh.ShouldAutoRefresh(sem.ID, state.Cache.NewestID(), sem.LastRefresh, state.Now()) {
		if gen, ok := state.Refresh.Begin(sem.ID, false); ok {
			cmds = append(cmds, refreshEstimatesCmd(state.App, sem.ID, gen))
		}
	}
	return tea.Batch(cmds...)
}
