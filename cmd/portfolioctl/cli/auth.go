package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ErlanBelekov/portfolio/internal/session"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// ---------- login ----------

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Example: `  portfolioctl login --email me@example.com
  PORTFOLIO_SERVER=https://api.example.com portfolioctl login --email me@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = readPassword("Password: "); err != nil {
					return err
				}
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			r, err := startResolver(ctx, newClient())
			if err != nil {
				return err
			}
			defer r.Close()

			if err := r.SignIn(ctx, email, password); err != nil {
				return err
			}
			snap, err := r.Wait(ctx)
			if err != nil {
				return err
			}
			return printSnapshot(snap)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted if omitted)")
	cmd.MarkFlagRequired("email")

	return cmd
}

// ---------- signup ----------

func newSignupCmd() *cobra.Command {
	var email, code string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an admin account with an invite code",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}
			confirm, err := readPassword("Confirm password: ")
			if err != nil {
				return err
			}
			if password != confirm {
				return errors.New("passwords do not match")
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			r, err := startResolver(ctx, newClient())
			if err != nil {
				return err
			}
			defer r.Close()

			if err := r.SignUp(ctx, email, password, code); err != nil {
				return err
			}
			snap, err := r.Wait(ctx)
			if err != nil {
				return err
			}
			return printSnapshot(snap)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&code, "invite-code", "", "invite code, XXXX-XXXX-XXXX (required)")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("invite-code")

	return cmd
}

// ---------- logout ----------

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			if err := newClient().SignOut(ctx); err != nil {
				return err
			}
			fmt.Println("Signed out.")
			return nil
		},
	}
}

// ---------- whoami ----------

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account and whether it is an admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			r, err := startResolver(ctx, newClient())
			if err != nil {
				return err
			}
			defer r.Close()

			snap, err := r.Wait(ctx)
			if err != nil {
				return err
			}
			return printSnapshot(snap)
		},
	}
}

// ---------- reset-password ----------

func newResetPasswordCmd() *cobra.Command {
	var email, redirect string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Email a password recovery link",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			r := session.NewResolver(newClient(), newLogger())
			if err := r.ResetPassword(ctx, email, redirect); err != nil {
				return err
			}
			fmt.Println("If the address has an account, a recovery link is on its way.")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&redirect, "redirect-to", "", "page the link should open, under the site URL")
	cmd.MarkFlagRequired("email")

	return cmd
}

func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

func printSnapshot(s session.Snapshot) error {
	if jsonOutput {
		out := struct {
			State   string `json:"state"`
			IsAdmin bool   `json:"is_admin"`
			UserID  string `json:"user_id,omitempty"`
			Email   string `json:"email,omitempty"`
		}{State: s.State.String(), IsAdmin: s.IsAdmin}
		if s.Identity != nil {
			out.UserID = s.Identity.ID
			out.Email = s.Identity.Email
		}
		return writeJSON(out)
	}

	switch s.State {
	case session.StateUnauthenticated:
		fmt.Println("Not signed in.")
	case session.StateAdmin:
		fmt.Printf("Signed in as %s (admin)\n", s.Identity.Email)
	case session.StateNonAdmin:
		fmt.Printf("Signed in as %s (no admin access)\n", s.Identity.Email)
	default:
		fmt.Printf("Signed in as %s (role unknown)\n", s.Identity.Email)
	}
	return nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
