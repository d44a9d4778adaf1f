package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wheelx-dev/wheelx/internal/api"
	"github.com/wheelx-dev/wheelx/internal/session"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to a WheelX environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Check for environment variables (useful for CI/CD)
			if email == "" {
				email = os.Getenv("WHEELX_EMAIL")
			}
			if password == "" {
				password = os.Getenv("WHEELX_PASSWORD")
			}

			if email == "" {
				return fmt.Errorf("email is required (use --email flag or WHEELX_EMAIL env var)")
			}

			// Prompt for password if not provided via flag or env var
			if password == "" {
				if !term.IsTerminal(int(syscall.Stdin)) {
					return fmt.Errorf("password is required in non-interactive mode (use --password flag or WHEELX_PASSWORD env var)")
				}
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				bytePassword, err := term.ReadPassword(int(syscall.Stdin))
				fmt.Fprintln(cmd.ErrOrStderr())
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = string(bytePassword)
			}

			a, err := newApp(cmd, "/private/dashboard")
			if err != nil {
				return err
			}
			return runLogin(cmd.Context(), a, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set WHEELX_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set WHEELX_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(ctx context.Context, a *app, email, password string) error {
	fmt.Fprintf(a.out, "Signing in to %s (%s)...\n", a.env.Alias, a.env.APIURL)

	token, err := a.client.Login(ctx, email, password)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return errors.New("login failed: invalid email or password")
		}
		return fmt.Errorf("login failed: %w", err)
	}

	if err := a.store.Write(session.New(token)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Fprintln(a.out, "✓ Login successful!")
	if claims, err := session.ParseClaims(token); err == nil {
		printClaims(a, claims)
	}
	return nil
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session for the current environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, "/private/dashboard")
			if err != nil {
				return err
			}
			if err := a.client.Logout(); err != nil {
				return fmt.Errorf("failed to clear session: %w", err)
			}
			fmt.Fprintf(a.out, "✓ Signed out of %s\n", a.env.Alias)
			return nil
		},
	}
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, "/private/dashboard")
			if err != nil {
				return err
			}
			return runWhoami(cmd.Context(), a)
		},
	}
}

func runWhoami(ctx context.Context, a *app) error {
	s, err := a.store.Read()
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	token := s.BearerToken()
	if token == "" {
		return fmt.Errorf("not signed in to %s\nRun 'wheelx login' first", a.env.Alias)
	}

	if claims, err := session.ParseClaims(token); err == nil {
		if claims.Expired(time.Now()) {
			fmt.Fprintln(a.out, "Warning: the saved token has expired")
		}
		printClaims(a, claims)
	}

	user := a.client.CurrentUser(ctx)
	if user == nil {
		return errors.New("failed to load profile (see logs with --verbose)")
	}
	fmt.Fprintf(a.out, "  User:    %s (%s)\n", user.Name(), user.Email)
	fmt.Fprintf(a.out, "  Country: %s\n", orDash(user.Country))
	return nil
}

func printClaims(a *app, c *session.Claims) {
	fmt.Fprintf(a.out, "  Environment: %s\n", a.env.Alias)
	if c.Role != "" {
		fmt.Fprintf(a.out, "  Role:        %s\n", c.Role)
	}
	if !c.ExpiresAt.IsZero() {
		fmt.Fprintf(a.out, "  Expires:     %s\n", c.ExpiresAt.Local().Format(time.RFC1123))
	}
}
