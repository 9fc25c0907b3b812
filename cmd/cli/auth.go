package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"librairie/pkg/session"
)

// readPassword prompts on stderr and reads a masked password.
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func passwordFromFlagOrPrompt(cmd *cobra.Command, prompt string) (string, error) {
	password, _ := cmd.Flags().GetString("password")
	if password != "" {
		return password, nil
	}
	return readPassword(prompt)
}

func newSignupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account (does not log in)",
		RunE:  runSignup,
	}
	cmd.Flags().String("username", "", "username")
	cmd.Flags().String("email", "", "email address")
	cmd.Flags().String("first-name", "", "first name")
	cmd.Flags().String("last-name", "", "last name")
	cmd.Flags().String("password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func runSignup(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	password, err := passwordFromFlagOrPrompt(cmd, "Password: ")
	if err != nil {
		return err
	}
	username, _ := cmd.Flags().GetString("username")
	email, _ := cmd.Flags().GetString("email")
	firstName, _ := cmd.Flags().GetString("first-name")
	lastName, _ := cmd.Flags().GetString("last-name")

	ctx, cancel := opContext(cmd)
	defer cancel()
	created, err := a.session.Signup(ctx, session.SignupInput{
		Username:  username,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Password:  password,
	})
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), created)
}

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and persist the session token",
		RunE:  runLogin,
	}
	cmd.Flags().String("email", "", "email address")
	cmd.Flags().String("password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func runLogin(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	password, err := passwordFromFlagOrPrompt(cmd, "Password: ")
	if err != nil {
		return err
	}
	email, _ := cmd.Flags().GetString("email")

	ctx, cancel := opContext(cmd)
	defer cancel()
	if _, err := a.session.Login(ctx, session.Credentials{Email: email, Password: password}); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the local session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := a.session.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session identity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			user := a.session.CurrentUser()
			if user == nil {
				return errors.New("not logged in")
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"user":          user,
				"authenticated": a.session.IsAuthenticated(),
				"admin":         a.session.IsAdmin(),
			})
		},
	}
}
