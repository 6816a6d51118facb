package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/victorgomez09/healthflow/internal/auth/models"
	"github.com/victorgomez09/healthflow/internal/auth/validation"
)

// NewLoginCmd signs in and stores the session token.
func NewLoginCmd(opts *rootOptions) *cobra.Command {
	var creds models.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the HealthFlow API",
		Long: `Sign in with email and password. The session token is kept in the token
database and reused by later commands until it expires or you log out.

Examples:
  healthflow login --email admin@example.com --password password`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds = validation.Normalize(creds)
			if err := validation.NewCredentialValidator(validation.DefaultCredentialPolicy()).Validate(creds); err != nil {
				return err
			}

			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.withSession(); err != nil {
				return err
			}

			if err := a.session.Login(cmd.Context(), creds); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			snap := a.session.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", snap.User.FullName())
			renderUser(cmd.OutOrStdout(), snap.User)
			return nil
		},
	}

	cmd.Flags().StringVar(&creds.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

// NewLogoutCmd ends the session and forgets the stored token.
func NewLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.withSession(); err != nil {
				return err
			}

			a.session.Init(cmd.Context())
			a.session.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

// NewWhoamiCmd validates the stored token and prints the signed-in user.
func NewWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.withSession(); err != nil {
				return err
			}

			snap, err := a.requireAuth(cmd.Context())
			if err != nil {
				return err
			}
			renderUser(cmd.OutOrStdout(), snap.User)
			return nil
		},
	}
}
