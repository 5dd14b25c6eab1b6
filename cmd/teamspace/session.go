package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/teamspace/internal/model"
	"github.com/nhle/teamspace/internal/session"
	"github.com/nhle/teamspace/internal/store"
)

// credentialsForm asks for whatever the flags left out.
func credentialsForm(mode string, name, email, password *string, withName bool) *huh.Form {
	var fields []huh.Field
	if withName && *name == "" {
		fields = append(fields, huh.NewInput().
			Title("Name").
			Value(name))
	}
	if *email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Placeholder("you@example.com").
			Validate(func(s string) error {
				if s == "" {
					return errors.New("email is required")
				}
				return nil
			}).
			Value(email))
	}
	if *password == "" && mode == session.ModePassword {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Validate(func(s string) error {
				if withName && len(s) < session.MinPasswordLen {
					return fmt.Errorf("at least %d characters", session.MinPasswordLen)
				}
				return nil
			}).
			Value(password))
	}
	if len(fields) == 0 {
		return nil
	}
	return huh.NewForm(huh.NewGroup(fields...))
}

func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			if form := credentialsForm(a.session.Mode(), nil, &email, &password, false); form != nil {
				if err := form.Run(); err != nil {
					return err
				}
			}

			u, err := a.session.Login(cmd.Context(), email, password)
			if err = a.saveWarning(err); err != nil {
				return err
			}
			if err := joinChat(cmd.Context(), a, u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", u.Name, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted in password mode)")
	return cmd
}

func registerCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			if form := credentialsForm(a.session.Mode(), &name, &email, &password, true); form != nil {
				if err := form.Run(); err != nil {
					return err
				}
			}

			u, err := a.session.Register(cmd.Context(), session.RegisterInput{Name: name, Email: email, Password: password})
			if err = a.saveWarning(err); err != nil {
				return err
			}
			if err := joinChat(cmd.Context(), a, u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s\n", u.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	return cmd
}

// joinChat makes the signed-in user visible in the chat sidebar.
func joinChat(ctx context.Context, a *app, u model.User) error {
	_, err := a.chat.UpsertUser(ctx, model.ChatUser{ID: u.ID, Name: u.Name, Avatar: u.Avatar})
	return a.saveWarning(err)
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			u, ok := a.session.Current()
			if !ok {
				return session.ErrNoSession
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s <%s>\n", u.Name, u.Email)
			fmt.Fprintf(out, "id: %s\n", u.ID)

			stats := a.ws.MemberStats(u.ID)
			fmt.Fprintf(out, "%d tasks, %d/%d points done, %d overdue\n",
				stats.Total, stats.CompletedPoints, stats.Points, stats.Overdue)
			return nil
		},
	}
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return appFrom(cmd).session.Logout(cmd.Context())
		},
	}
}

func seedCmd() *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the sample workspace to storage",
		Long: `Seed writes every collection to storage. Collections that were never
saved hold the sample data. With --reset, stored collections are removed
first so everything is replaced by the sample data.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			ctx := cmd.Context()

			if reset {
				for _, key := range []string{store.KeyProjects, store.KeyNotifications, store.KeyDocuments, store.KeyFolders, store.KeyChat} {
					if err := a.backend.Delete(ctx, key); err != nil {
						return fmt.Errorf("removing %s: %w", key, err)
					}
				}
				if err := a.ws.Load(ctx); err != nil {
					return err
				}
				if err := a.chat.Load(ctx); err != nil {
					return err
				}
			}

			if err := a.ws.Persist(ctx); err != nil {
				return err
			}
			if err := a.chat.Persist(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d projects, %d documents\n", len(a.ws.Projects()), len(a.ws.Documents()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "Discard stored data first")
	return cmd
}
