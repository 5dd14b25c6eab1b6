package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/teamspace/internal/config"
)

type appKey struct{}

// appFrom returns the app opened by the root command's pre-run hook.
func appFrom(cmd *cobra.Command) *app {
	return cmd.Context().Value(appKey{}).(*app)
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
		opts       appOptions
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Projects, sprints, docs and chat for small teams",
		Long: `Teamspace keeps projects with their sprints and tasks, notifications,
documents with folders, and team chat in one local workspace.

Data is stored in SQLite by default. Redis or an in-memory store can be
selected in the config file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = config.DefaultConfigPath()
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			opts.logLevel = logLevel
			a, err := openApp(cmd.Context(), cfg, opts)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return appFrom(cmd).close(ctx)
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.ephemeral, "ephemeral", false, "Use an in-memory store that is discarded on exit")
	cmd.PersistentFlags().IntVar(&opts.width, "width", 0, "Output width in columns")

	cmd.AddCommand(
		versionCmd(),
		projectsCmd(),
		boardCmd(),
		browseCmd(),
		tasksCmd(),
		taskCmd(),
		notificationsCmd(),
		docsCmd(),
		foldersCmd(),
		chatCmd(),
		loginCmd(),
		registerCmd(),
		whoamiCmd(),
		logoutCmd(),
		seedCmd(),
	)

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// The version command needs no workspace.
		PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}
