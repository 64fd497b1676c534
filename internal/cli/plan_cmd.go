package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/avelichko/semestra/internal/cli/formatter"
	"github.com/avelichko/semestra/internal/domain"
	"github.com/avelichko/semestra/internal/planner"
	"github.com/avelichko/semestra/internal/schedule"
)

func newPlanCmd(app *App) *cobra.Command {
	var semesterFlag, startFlag string
	var dailyHours int
	var ignoreCompleted bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate a day-by-day study plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			sem, err := resolveSemester(ctx, app, semesterFlag)
			if err != nil {
				return err
			}

			b := planner.NewBuilder()
			if err := b.SetSemester(sem.ID, app.now()); err != nil {
				return err
			}
			if dailyHours > 0 {
				b.SetDailyHoursText(fmt.Sprintf("%d", dailyHours))
			}
			b.SetIgnoreCompleted(ignoreCompleted)
			if startFlag != "" {
				d, err := time.ParseInLocation(planDateLayout, startFlag, time.UTC)
				if err != nil {
					return fmt.Errorf("parsing --start: %w", err)
				}
				b.SetStartDate(d)
			}

			q, err := b.Query()
			if err != nil {
				return err
			}

			stop := formatter.StartSpinner("building plan for " + sem.Name)
			plan, err := app.Client.StudyPlan(ctx, q)
			stop()
			if err != nil {
				return err
			}

			fmt.Println(formatter.Header("Study plan · " + sem.Name))
			fmt.Print(renderPlanText(plan, app.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&semesterFlag, "semester", "", "Semester key or name fragment (default: newest)")
	cmd.Flags().IntVar(&dailyHours, "daily-hours", 0, "Hours available per day (default: server decides)")
	cmd.Flags().BoolVar(&ignoreCompleted, "ignore-completed", false, "Skip already graded tasks")
	cmd.Flags().StringVar(&startFlag, "start", "", "Plan start date (YYYY-MM-DD, clamped to the semester)")
	return cmd
}

func renderPlanText(plan *domain.StudyPlan, now time.Time) string {
	var b strings.Builder

	for _, w := range plan.Warnings {
		b.WriteString(formatter.StyleYellow.Render("⚠ "+w) + "\n")
	}
	if plan.Empty() {
		b.WriteString("Nothing to schedule.\n")
		return b.String()
	}

	b.WriteString(formatter.Dim(fmt.Sprintf("%d tasks considered", plan.TotalTasksConsidered)) + "\n\n")

	remaining := schedule.RemainingAfterToday(plan.Days)
	for di, day := range plan.Days {
		fmt.Fprintf(&b, "%s  %s\n",
			formatter.Bold(fmt.Sprintf("Day %d · %s", day.DayNumber, formatter.HumanDateFrom(day.Date, now))),
			formatter.Dim(formatter.FormatMinutes(day.TotalMinutes)))

		for ti, alloc := range day.Tasks {
			fmt.Fprintf(&b, "  • %s %s\n", alloc.TaskName, formatter.Dim(alloc.SubjectName))
			fmt.Fprintf(&b, "    %s today%s\n",
				formatter.StyleGreen.Render(formatter.FormatMinutes(alloc.MinutesToday)),
				formatter.Dim(" · "+formatter.FormatMinutes(remaining[di][ti])+" left after"))
		}
		b.WriteString("\n")
	}
	return b.String()
}
