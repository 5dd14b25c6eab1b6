package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	tsapp "github.com/nhle/teamspace/internal/app"
	appsync "github.com/nhle/teamspace/internal/sync"
)

func browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "browse",
		Aliases: []string{"ui"},
		Short:   "Browse tasks interactively",
		Long: `Browse opens a full-screen task list. Press enter for details, s and S
to move a task between board columns, / to search and : for commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			poller := appsync.New(time.Duration(a.cfg.UI.RefreshSeconds) * time.Second)
			poller.Register("workspace", a.ws)
			poller.Register("chat", a.chat)

			m := tsapp.New(a.ws, poller, a.now)
			defer m.Close()

			_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}
