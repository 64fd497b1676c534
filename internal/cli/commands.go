package cli

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/avelichko/semestra/internal/api"
	"github.com/avelichko/semestra/internal/store"
)

// tea.Cmd factories. Each closure captures the values it needs before
// the goroutine starts so no fetch ever reads shared state off-loop.

func loadSemestersCmd(app *App, gen string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		list, err := app.Client.Semesters(ctx)

		var stored map[string]time.Time
		if err == nil && app.Store != nil {
			if stamps, serr := app.Store.RefreshTimes(ctx); serr == nil {
				stored = stamps
			} else {
				app.Log.Warn().Err(serr).Msg("loading stored refresh stamps")
			}
		}
		return semestersLoadedMsg{gen: gen, list: list, stored: stored, err: err}
	}
}

func loadSubjectsCmd(app *App, semesterID, gen string) tea.Cmd {
	return func() tea.Msg {
		subjects, err := app.Client.Subjects(context.Background(), semesterID)
		return subjectsLoadedMsg{semesterID: semesterID, gen: gen, subjects: subjects, err: err}
	}
}

func loadTasksCmd(app *App, subjectID int64, gen string) tea.Cmd {
	return func() tea.Msg {
		tasks, err := app.Client.Tasks(context.Background(), subjectID)
		return tasksLoadedMsg{subjectID: subjectID, gen: gen, tasks: tasks, err: err}
	}
}

func refreshEstimatesCmd(app *App, semesterID, gen string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		estimates, err := app.Client.RefreshEstimates(ctx, semesterID)
		if err == nil && app.Store != nil {
			if serr := app.Store.SetRefreshTime(ctx, semesterID, app.now()); serr != nil {
				app.Log.Warn().Err(serr).Msg("persisting refresh stamp")
			}
		}
		return estimatesRefreshedMsg{semesterID: semesterID, gen: gen, estimates: estimates, err: err}
	}
}

func loadPlanCmd(app *App, q api.PlanQuery, gen string) tea.Cmd {
	return func() tea.Msg {
		plan, err := app.Client.StudyPlan(context.Background(), q)
		return planLoadedMsg{gen: gen, plan: plan, err: err}
	}
}

func loadPlanPrefsCmd(app *App, semesterID string) tea.Cmd {
	return func() tea.Msg {
		if app.Store == nil {
			return planPrefsLoadedMsg{semesterID: semesterID}
		}
		prefs, err := app.Store.GetPlanPrefs(context.Background(), semesterID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				app.Log.Warn().Err(err).Msg("loading plan prefs")
			}
			return planPrefsLoadedMsg{semesterID: semesterID}
		}
		return planPrefsLoadedMsg{semesterID: semesterID, prefs: prefs}
	}
}

func savePlanPrefsCmd(app *App, prefs store.PlanPrefs) tea.Cmd {
	return func() tea.Msg {
		if app.Store == nil {
			return nil
		}
		if err := app.Store.SavePlanPrefs(context.Background(), &prefs); err != nil {
			app.Log.Warn().Err(err).Msg("saving plan prefs")
		}
		return nil
	}
}

func pushView(v View) tea.Cmd {
	return func() tea.Msg { return pushViewMsg{view: v} }
}

func spinnerTick(frame int) tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{frame: frame + 1}
	})
}
