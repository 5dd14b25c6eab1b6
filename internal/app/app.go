// Package app is the interactive task browser: a Bubble Tea program over
// the workspace with a list, a detail pane, a help overlay and a command
// palette.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/teamspace/internal/keys"
	"github.com/nhle/teamspace/internal/model"
	"github.com/nhle/teamspace/internal/store"
	appsync "github.com/nhle/teamspace/internal/sync"
	"github.com/nhle/teamspace/internal/ui"
	"github.com/nhle/teamspace/internal/ui/command"
	"github.com/nhle/teamspace/internal/ui/detail"
	helpview "github.com/nhle/teamspace/internal/ui/help"
	"github.com/nhle/teamspace/internal/ui/tasklist"
	"github.com/nhle/teamspace/internal/workspace"
)

// Workspace is the part of *workspace.Workspace the browser needs.
type Workspace interface {
	tasklist.Source
	TaskByKey(key string) (model.FlatTask, error)
	UpdateTask(ctx context.Context, projectID, sprintID, taskID string, patch model.TaskPatch) (model.FlatTask, error)
	ResolveTaskAttachments(projectID, sprintID, taskID string) (workspace.AttachmentView, error)
	UnreadCount() int
	MarkAllNotificationsRead(ctx context.Context) error
	Subscribe(fn func(workspace.Change)) (unsubscribe func())
}

// Commands lists the command palette entries.
var Commands = []string{"refresh", "read-all", "help", "quit"}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewHelp
	ViewCommand
)

// changedMsg is sent when any workspace collection was replaced.
type changedMsg struct{}

// updatedMsg reports the result of a status change.
type updatedMsg struct {
	task model.FlatTask
	err  error
}

// Model is the root Bubble Tea model that manages view routing and
// layout.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	ws           Workspace
	now          func() time.Time
	keys         *keys.KeyMap
	taskList     tasklist.Model
	detail       detail.Model
	helpView     helpview.Model
	commandView  command.Model
	poller       *appsync.Poller
	changes      chan struct{}
	unsubscribe  func()
	ready        bool
	unreadCount  int
	message      string
}

// New creates the root model over ws. poller reloads storage in the
// background and may be nil, as may now.
func New(ws Workspace, poller *appsync.Poller, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	k := keys.DefaultKeyMap()

	changes := make(chan struct{}, 1)
	unsubscribe := ws.Subscribe(func(workspace.Change) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	return Model{
		currentView: ViewList,
		layout:      ui.NewLayout(80, 24),
		ws:          ws,
		now:         now,
		keys:        k,
		taskList:    tasklist.New(ws, k, now, 80, 24),
		detail:      detail.New(k, 80, 24),
		helpView:    helpview.New(k, Commands, 80, 24),
		commandView: command.New(Commands, 80, 24),
		poller:      poller,
		changes:     changes,
		unsubscribe: unsubscribe,
		unreadCount: ws.UnreadCount(),
	}
}

// Close detaches the model from workspace change notifications and stops
// background reloads.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	if m.poller != nil {
		m.poller.Stop()
	}
}

// Init loads the tasks, starts listening for changes and starts the
// poller.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.taskList.Init(), m.waitForChange()}
	if m.poller != nil {
		cmds = append(cmds, m.poller.Start())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.taskList.SetSize(contentWidth, contentHeight)
		m.detail.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		return m, nil

	case changedMsg:
		m.unreadCount = m.ws.UnreadCount()
		cmds := []tea.Cmd{m.taskList.LoadTasks(), m.waitForChange()}
		if t, ok := m.detail.Current(); ok && m.currentView == ViewDetail {
			cmds = append(cmds, m.loadDetail(t.Key))
		}
		return m, tea.Batch(cmds...)

	case appsync.SyncResultMsg:
		// Successful reloads arrive as changedMsg through the subscription.
		return m, m.poller.WaitForNextResult()

	case tasklist.SelectedTaskMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detail.SetLoading(true)
		return m, m.loadDetail(msg.Task.Key)

	case tasklist.StatusRequestMsg:
		return m, m.setStatus(msg.Task, msg.Status)

	case detail.ActionMsg:
		step := 1
		if msg.Action == detail.ActionPrevStatus {
			step = -1
		}
		next, ok := tasklist.ShiftStatus(msg.Task.Status, step)
		if !ok {
			return m, nil
		}
		return m, m.setStatus(msg.Task, next)

	case updatedMsg:
		var saveErr *store.SaveError
		switch {
		case msg.err == nil:
			m.message = fmt.Sprintf("%s → %s", msg.task.Key, msg.task.StatusLabel)
		case errors.As(msg.err, &saveErr):
			m.message = fmt.Sprintf("%s → %s (not saved: %v)", msg.task.Key, msg.task.StatusLabel, saveErr.Err)
		default:
			m.message = msg.err.Error()
		}
		return m, nil

	case detail.DetailLoadedMsg:
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd

	case detail.BackMsg:
		m.currentView = ViewList
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(string(msg))

	case command.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case tea.KeyMsg:
		// Text inputs own every key while focused.
		if m.currentView == ViewCommand || m.taskList.Searching() {
			if msg.String() == "ctrl+c" {
				return m.quit()
			}
			break
		}

		switch msg.String() {
		case "ctrl+c":
			return m.quit()

		case "q":
			if m.currentView == ViewList {
				return m.quit()
			}

		case "?":
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case ":":
			m.previousView = m.currentView
			m.currentView = ViewCommand
			return m, m.commandView.Focus()

		case "esc":
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}

		case "r":
			// The list reloads itself; also pull in writes from other processes.
			if m.currentView == ViewList && m.poller != nil {
				m.poller.RefreshAll()
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.Close()
	return m, tea.Quit
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	headerTitle := "Teamspace"
	if m.unreadCount > 0 {
		headerTitle = fmt.Sprintf("Teamspace [%d unread]", m.unreadCount)
	}
	status := m.taskList.FilterSummary()
	if s := m.syncStatus(); s != "" {
		status = s + " | " + status
	}
	header := m.layout.RenderHeader(headerTitle, status)
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.taskList.View()
	case ViewDetail:
		return m.detail.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// syncStatus returns a short string describing the reload state.
func (m Model) syncStatus() string {
	if m.poller == nil {
		return ""
	}

	var failed []string
	var last time.Time
	for _, s := range m.poller.GetStatuses() {
		switch s.State {
		case appsync.SyncRunning:
			return "reloading"
		case appsync.SyncError:
			failed = append(failed, s.Name)
		}
		if s.LastSync.After(last) {
			last = s.LastSync
		}
	}

	if len(failed) > 0 {
		return "reload failed: " + strings.Join(failed, ", ")
	}
	if last.IsZero() {
		return ""
	}
	return "synced " + last.Format("15:04")
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.message != "" && m.currentView != ViewCommand {
		return m.message
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewDetail:
		return "esc back | s/S move status | j/k scroll"
	default:
		return "q quit | ? help | / search | s/S move status | tab sort | : command"
	}
}

// waitForChange blocks until the workspace reports a change.
func (m Model) waitForChange() tea.Cmd {
	changes := m.changes
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return changedMsg{}
	}
}

// loadDetail returns a command that looks up a task and its attachments.
func (m Model) loadDetail(key string) tea.Cmd {
	ws := m.ws
	return func() tea.Msg {
		t, err := ws.TaskByKey(key)
		if err != nil {
			return detail.DetailLoadedMsg{Detail: nil}
		}
		d := &detail.Detail{Task: t}
		if view, err := ws.ResolveTaskAttachments(t.ProjectID, t.SprintID, t.ID); err == nil {
			d.Documents = view.Documents
			d.Folders = view.Folders
			d.Missing = view.Missing
		}
		return detail.DetailLoadedMsg{Detail: d}
	}
}

// setStatus returns a command that moves a task to another status.
func (m Model) setStatus(t model.FlatTask, status model.TaskStatus) tea.Cmd {
	ws := m.ws
	return func() tea.Msg {
		updated, err := ws.UpdateTask(context.Background(), t.ProjectID, t.SprintID, t.ID,
			model.TaskPatch{Status: &status})
		var saveErr *store.SaveError
		if err != nil && !errors.As(err, &saveErr) {
			updated = t
		}
		return updatedMsg{task: updated, err: err}
	}
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	switch cmd {
	case "refresh", "r":
		if m.poller != nil {
			m.poller.RefreshAll()
		}
		m.unreadCount = m.ws.UnreadCount()
		return m.taskList.LoadTasks()
	case "read-all":
		ws := m.ws
		return func() tea.Msg {
			err := ws.MarkAllNotificationsRead(context.Background())
			var saveErr *store.SaveError
			if err != nil && !errors.As(err, &saveErr) {
				return updatedMsg{err: err}
			}
			return nil
		}
	case "help":
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil
	case "quit", "q":
		m.Close()
		return tea.Quit
	default:
		m.message = fmt.Sprintf("unknown command %q", cmd)
		return nil
	}
}
