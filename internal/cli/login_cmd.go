package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/avelichko/semestra/internal/api"
)

func newLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				form := huh.NewForm(huh.NewGroup(
					huh.NewInput().
						Title("Email").
						Value(&email).
						Validate(func(s string) error {
							if !strings.Contains(s, "@") {
								return fmt.Errorf("enter your university email")
							}
							return nil
						}),
					huh.NewInput().
						Title("Password").
						EchoMode(huh.EchoModePassword).
						Value(&password),
				))
				if err := form.Run(); err != nil {
					return err
				}
			}

			token, err := app.Client.Login(context.Background(), email, password)
			if err != nil {
				if msg := api.ServerMessage(err); msg != "" {
					return fmt.Errorf("%s", msg)
				}
				return err
			}
			if err := app.Tokens.Save(token); err != nil {
				return err
			}

			fmt.Printf("Signed in as %s\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "University email")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Tokens.Clear(); err != nil {
				return err
			}
			fmt.Println("Signed out.")
			return nil
		},
	}
}
