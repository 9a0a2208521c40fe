package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/netsentry/netsentry/internal/config"
	"github.com/netsentry/netsentry/internal/identity"
)

func newLoginCmd() *cobra.Command {
	var email string
	var signup bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the configured identity provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				cfg = config.Defaults()
			}
			if cfg.Identity.URL == "" {
				return fmt.Errorf("identity.url is not configured in %s", cfgFile)
			}

			idp, err := identity.NewProvider(cfg.Identity)
			if err != nil {
				return err
			}

			if email == "" {
				fmt.Print("Email: ")
				if _, err := fmt.Scanln(&email); err != nil {
					return fmt.Errorf("reading email: %w", err)
				}
			}
			email = strings.TrimSpace(email)

			fmt.Print("Password: ")
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("reading password: %w", err)
			}
			password := string(raw)

			ctx := cmd.Context()
			if signup {
				user, err := idp.SignUp(ctx, email, password)
				if err != nil {
					return err
				}
				color.Green("Account created for %s (id %s).", user.Email, user.ID)
				fmt.Println("Check your inbox if the provider requires email confirmation.")
				return nil
			}

			sess, err := idp.SignIn(ctx, email, password)
			if err != nil {
				return err
			}

			color.Green("Signed in as %s.", sess.User.Email)
			if sess.User.DisplayName != "" {
				fmt.Printf("Display name:  %s\n", sess.User.DisplayName)
			}
			fmt.Printf("Access token:  %s\n", sess.AccessToken)
			fmt.Printf("Refresh token: %s\n", sess.RefreshToken)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (prompted if omitted)")
	cmd.Flags().BoolVar(&signup, "signup", false, "create a new account instead of signing in")
	return cmd
}
