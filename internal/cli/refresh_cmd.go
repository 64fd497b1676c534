package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avelichko/semestra/internal/api"
	"github.com/avelichko/semestra/internal/cli/formatter"
)

func newRefreshCmd(app *App) *cobra.Command {
	var semesterFlag string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Recompute the AI time estimates for a semester",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			sem, err := resolveSemester(ctx, app, semesterFlag)
			if err != nil {
				return err
			}

			stop := formatter.StartSpinner("refreshing estimates for " + sem.Name)
			estimates, err := app.Client.RefreshEstimates(ctx, sem.ID)
			stop()
			if err != nil {
				if msg := api.ServerMessage(err); msg != "" {
					return fmt.Errorf("%s", msg)
				}
				return err
			}

			if app.Store != nil {
				if serr := app.Store.SetRefreshTime(ctx, sem.ID, app.now()); serr != nil {
					app.Log.Warn().Err(serr).Msg("persisting refresh stamp")
				}
			}

			fmt.Printf("Updated estimates for %d tasks in %s\n", len(estimates), sem.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&semesterFlag, "semester", "", "Semester key or name fragment (default: newest)")
	return cmd
}

func newSyncCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Ask the backend to re-import your courses from the LMS",
		RunE: func(cmd *cobra.Command, args []string) error {
			stop := formatter.StartSpinner("requesting course import")
			err := app.Client.InitiateParsing(context.Background())
			stop()
			if err != nil {
				return err
			}
			fmt.Println("Import started. New tasks will appear once the backend finishes parsing.")
			return nil
		},
	}
}
