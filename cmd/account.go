// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bonial-oss/vendor-risk/internal/auth"
	"github.com/bonial-oss/vendor-risk/internal/config"
	"github.com/bonial-oss/vendor-risk/internal/output"
	"github.com/bonial-oss/vendor-risk/internal/types"
)

// passwordEnv lets scripts pass a password without a flag.
const passwordEnv = config.EnvPrefix + "_PASSWORD"

type credentialFlags struct {
	email    string
	password string
}

func (f *credentialFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.email, "email", "", "Account email address")
	cmd.Flags().StringVar(&f.password, "password", "", "Account password (default: $"+passwordEnv+" or prompt)")
	_ = cmd.MarkFlagRequired("email")
}

// resolvePassword returns the password from the flag, the environment or
// an interactive prompt, in that order.
func (f *credentialFlags) resolvePassword(cmd *cobra.Command) (string, error) {
	if f.password != "" {
		return f.password, nil
	}
	if env := os.Getenv(passwordEnv); env != "" {
		return env, nil
	}
	return readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
}

func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(pw), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading password: %w", err)
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return "", usageError("no password provided")
	}
	return pw, nil
}

func newSignUpCommand(a *app) *cobra.Command {
	var (
		creds    credentialFlags
		fullName string
		company  string
	)
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := creds.resolvePassword(cmd)
			if err != nil {
				return err
			}
			session, err := a.newClient().SignUp(cmd.Context(), types.Credentials{
				Email:    creds.email,
				Password: password,
				FullName: fullName,
				Company:  company,
			})
			if err != nil {
				return apiError(err)
			}
			if err := a.saveSession(session); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Signed up as %s\n", session.User.Email)
			return nil
		},
	}
	creds.register(cmd)
	cmd.Flags().StringVar(&fullName, "full-name", "", "Full name")
	cmd.Flags().StringVar(&company, "company", "", "Company")
	return cmd
}

func newLoginCommand(a *app) *cobra.Command {
	var creds credentialFlags
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := creds.resolvePassword(cmd)
			if err != nil {
				return err
			}
			session, err := a.newClient().SignIn(cmd.Context(), creds.email, password)
			if err != nil {
				return apiError(err)
			}
			if err := a.saveSession(session); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Logged in as %s (session expires %s)\n",
				session.User.Email, session.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}
	creds.register(cmd)
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path, err := a.sessionPath()
			if err != nil {
				return err
			}
			if err := auth.ClearSession(path); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, "Logged out")
			return nil
		},
	}
}

func newWhoAmICommand(a *app) *cobra.Command {
	var (
		fullName string
		company  string
	)
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show or update the current profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.authedClient()
			if err != nil {
				return err
			}

			var patch types.ProfilePatch
			if cmd.Flags().Changed("full-name") {
				patch.FullName = &fullName
			}
			if cmd.Flags().Changed("company") {
				patch.Company = &company
			}

			var profile *types.Profile
			if patch.FullName != nil || patch.Company != nil {
				profile, err = c.UpdateProfile(cmd.Context(), patch)
			} else {
				profile, err = c.Profile(cmd.Context())
			}
			if err != nil {
				return apiError(err)
			}
			return a.render(profile, func(w io.Writer, _ output.TableConfig) error {
				fmt.Fprintf(w, "Email:   %s\n", profile.Email)
				fmt.Fprintf(w, "Name:    %s\n", dashIfEmpty(profile.FullName))
				fmt.Fprintf(w, "Company: %s\n", dashIfEmpty(profile.Company))
				fmt.Fprintf(w, "Since:   %s\n", profile.CreatedAt.Format("2006-01-02"))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&fullName, "full-name", "", "Set the full name")
	cmd.Flags().StringVar(&company, "company", "", "Set the company")
	return cmd
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
