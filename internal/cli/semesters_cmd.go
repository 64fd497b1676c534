package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avelichko/semestra/internal/cli/formatter"
	"github.com/avelichko/semestra/internal/domain"
	"github.com/avelichko/semestra/internal/schedule"
)

func newSemestersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "semesters",
		Short: "List your semesters",
		RunE: func(cmd *cobra.Command, args []string) error {
			semesters, err := app.Client.Semesters(context.Background())
			if err != nil {
				return err
			}
			if len(semesters) == 0 {
				fmt.Println("No semesters found. Run `semestra sync` to import your courses.")
				return nil
			}

			var b strings.Builder
			for i, sem := range semesters {
				name := formatter.Bold(sem.Name)
				if i == 0 {
					name += " " + formatter.StyleGreen.Render("(current)")
				}
				b.WriteString(name + "\n")

				if key, err := schedule.ParseKey(sem.ID); err == nil {
					start, end := key.Window()
					b.WriteString("  " + formatter.Dim(fmt.Sprintf("%s – %s",
						start.Format("Jan 2, 2006"), end.Format("Jan 2, 2006"))) + "\n")
				}
				b.WriteString("  " + formatter.RefreshAge(sem.LastRefresh, app.now()) + "\n")
			}
			fmt.Print(formatter.RenderBox("Semesters", strings.TrimRight(b.String(), "\n")))
			fmt.Println()
			return nil
		},
	}
}

// resolveSemester picks a semester from the backend list: the flag
// value when given (matched by key prefix or name substring), the
// newest otherwise.
func resolveSemester(ctx context.Context, app *App, flag string) (*domain.Semester, error) {
	semesters, err := app.Client.Semesters(ctx)
	if err != nil {
		return nil, err
	}
	if len(semesters) == 0 {
		return nil, fmt.Errorf("no semesters found; run `semestra sync` first")
	}
	if flag == "" {
		return &semesters[0], nil
	}
	needle := strings.ToLower(flag)
	for i := range semesters {
		if strings.HasPrefix(semesters[i].ID, flag) ||
			strings.Contains(strings.ToLower(semesters[i].Name), needle) {
			return &semesters[i], nil
		}
	}
	return nil, fmt.Errorf("no semester matches %q", flag)
}
