package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func runWithApp(opts *rootOptions, cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := opts.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func newLoginCommand(opts *rootOptions) *cobra.Command {
	var (
		username      string
		password      string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as an admin and remember the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if passwordStdin {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if username == "" || password == "" {
				return errors.New("username and password are required")
			}
			return runWithApp(opts, cmd, func(ctx context.Context, a *app) error {
				if err := a.console.Login(ctx, username, password); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", username)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", envOr("AURA_USERNAME", ""), "admin username")
	cmd.Flags().StringVar(&password, "password", "", "admin password (prefer --password-stdin)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func newLogoutCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored admin token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, cmd, func(ctx context.Context, a *app) error {
				if err := a.console.Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
				return nil
			})
		},
	}
}

func newWhoamiCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in admin and the store's enabled features",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, cmd, func(ctx context.Context, a *app) error {
				acct, err := a.console.Whoami(ctx)
				if err != nil {
					return friendly(err)
				}
				if opts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), acct)
				}
				f := acct.Features
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, %s)\npayments=%t google=%t mail=%t events=%t storage=%s\n",
					acct.User.Username, acct.User.Role, acct.User.AuthProvider,
					f.Payments, f.GoogleSignIn, f.Mail, f.Events, f.Storage)
				return nil
			})
		},
	}
}

func newLangCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lang [TAG]",
		Short: "Show or set the preferred language (en, am)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, cmd, func(ctx context.Context, a *app) error {
				if len(args) == 0 {
					tag, err := a.cache.Language(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), tag.String())
					return nil
				}
				tag, err := a.cache.SetLanguage(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Language set to %s\n", tag)
				return nil
			})
		},
	}
}
