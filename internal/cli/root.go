package cli

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/avelichko/semestra/internal/api"
	"github.com/avelichko/semestra/internal/auth"
	"github.com/avelichko/semestra/internal/store"
)

// App holds the wired dependencies every CLI command works against.
type App struct {
	Client api.Client
	Tokens *auth.FileTokenSource
	Store  *store.Store
	Log    zerolog.Logger

	// Now is the clock; tests pin it.
	Now func() time.Time

	// IsInteractive reports whether stdin is a terminal, which makes
	// the bare "semestra" invocation open the TUI.
	IsInteractive func() bool
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// NewRootCmd creates the top-level "semestra" command and registers
// all subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "semestra",
		Short:         "Terminal client for the university study planner",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.IsInteractive != nil && app.IsInteractive() {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	root.AddCommand(
		newTUICmd(app),
		newLoginCmd(app),
		newLogoutCmd(app),
		newSemestersCmd(app),
		newPlanCmd(app),
		newRefreshCmd(app),
		newSyncCmd(app),
	)

	return root
}
