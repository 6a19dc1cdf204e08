package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/folio/internal/session"
)

func newLoginCmd(a *app) *cobra.Command {
	var (
		email         string
		password      string
		passwordStdin bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the holding service",
		Long: "Exchange credentials for a session token and store it in the configuration\n" +
			"directory. Prefer --password-stdin over --password so the password stays out\n" +
			"of the shell history.",
		Example: "  echo \"$FOLIO_PASSWORD\" | folio login --email me@example.com --password-stdin",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if passwordStdin {
				if password != "" {
					return userError(errors.New("--password and --password-stdin are mutually exclusive"))
				}
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return userError(fmt.Errorf("read password: %w", err))
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return userError(errors.New("a password is required"))
			}

			p, err := a.sessionProvider()
			if err != nil {
				return err
			}
			if err := p.Login(cmd.Context(), email, password); err != nil {
				if errors.Is(err, session.ErrInvalidCredentials) {
					return userError(err)
				}
				return sysError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged in")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.sessionProvider()
			if err != nil {
				return err
			}
			if err := p.Logout(); err != nil {
				return sysError(fmt.Errorf("logout: %w", err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}
