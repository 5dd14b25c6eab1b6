package tasklist

import (
	"cmp"
	"slices"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/teamspace/internal/keys"
	"github.com/nhle/teamspace/internal/model"
	"github.com/nhle/teamspace/internal/theme"
)

// Source supplies the rows shown in the list.
type Source interface {
	Tasks() []model.FlatTask
	SearchTasks(query string) []model.FlatTask
}

// TasksLoadedMsg is sent when tasks have been read from the workspace.
type TasksLoadedMsg struct {
	Tasks []model.FlatTask
}

// SelectedTaskMsg is sent when a user selects a task to view details.
type SelectedTaskMsg struct {
	Task model.FlatTask
}

// StatusRequestMsg asks the parent to move a task to another column.
type StatusRequestMsg struct {
	Task   model.FlatTask
	Status model.TaskStatus
}

// sortModes defines the available sort modes cycled by Tab.
var sortModes = []string{
	"key",
	"priority",
	"due",
	"status",
}

// Model is the main task list view component.
type Model struct {
	list        list.Model
	source      Source
	keys        *keys.KeyMap
	query       string
	sortIndex   int
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
}

// New creates a new task list model.
func New(src Source, k *keys.KeyMap, now func() time.Time, width, height int) Model {
	delegate := ItemDelegate{now: now}
	l := list.New([]list.Item{}, delegate, width, height-2)
	l.Title = "Tasks"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle
	// Quitting and help belong to the parent model.
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ShowFullHelp.SetEnabled(false)
	l.KeyMap.CloseFullHelp.SetEnabled(false)

	si := textinput.New()
	si.Placeholder = "search tasks..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		source:      src,
		keys:        k,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init returns a command that loads the initial set of tasks.
func (m Model) Init() tea.Cmd {
	return m.LoadTasks()
}

// Update handles messages for the task list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TasksLoadedMsg:
		tasks := slices.Clone(msg.Tasks)
		sortTasks(tasks, sortModes[m.sortIndex])
		items := make([]list.Item, len(tasks))
		for i, t := range tasks {
			items[i] = TaskItem{Task: t}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.query = m.searchInput.Value()
		return m, m.LoadTasks()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.query = ""
		return m, m.LoadTasks()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(TaskItem)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedTaskMsg{Task: item.Task}
		}

	case key.Matches(msg, m.keys.NextStatus), key.Matches(msg, m.keys.PrevStatus):
		item, ok := m.list.SelectedItem().(TaskItem)
		if !ok {
			return m, nil
		}
		step := 1
		if key.Matches(msg, m.keys.PrevStatus) {
			step = -1
		}
		next, ok := ShiftStatus(item.Task.Status, step)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return StatusRequestMsg{Task: item.Task, Status: next}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.LoadTasks()

	case key.Matches(msg, m.keys.CycleSort):
		m.sortIndex = (m.sortIndex + 1) % len(sortModes)
		return m, m.LoadTasks()
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the task list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

// renderEmptyState shows guidance text when no tasks are available.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.query != "" {
		return style.Render("No matching tasks.\nPress / to change the search.")
	}

	return style.Render(
		"No tasks yet.\n\n" +
			"Create one with: teamspace task create KEY TITLE",
	)
}

// FilterSummary describes the active search and sort for the status bar.
func (m Model) FilterSummary() string {
	s := "sort: " + sortModes[m.sortIndex]
	if m.query != "" {
		s = "search: " + m.query + " | " + s
	}
	return s
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool {
	return m.searchMode
}

// LoadTasks returns a tea.Cmd that reads the workspace with the current query.
func (m Model) LoadTasks() tea.Cmd {
	query := m.query
	src := m.source
	return func() tea.Msg {
		if query != "" {
			return TasksLoadedMsg{Tasks: src.SearchTasks(query)}
		}
		return TasksLoadedMsg{Tasks: src.Tasks()}
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}

// ShiftStatus returns the board column step places from s. It does not
// wrap around.
func ShiftStatus(s model.TaskStatus, step int) (model.TaskStatus, bool) {
	i := slices.Index(model.TaskStatuses, s)
	j := i + step
	if i < 0 || j < 0 || j >= len(model.TaskStatuses) {
		return s, false
	}
	return model.TaskStatuses[j], true
}

// sortTasks orders tasks in place for the given mode. Ties fall back to
// the task key.
func sortTasks(tasks []model.FlatTask, mode string) {
	byKey := func(a, b model.FlatTask) int {
		if c := cmp.Compare(a.ProjectKey, b.ProjectKey); c != 0 {
			return c
		}
		return cmp.Compare(seq(a.ID), seq(b.ID))
	}

	slices.SortStableFunc(tasks, func(a, b model.FlatTask) int {
		var c int
		switch mode {
		case "priority":
			c = cmp.Compare(b.Priority.Rank(), a.Priority.Rank())
		case "due":
			c = compareDue(a.DueDate, b.DueDate)
		case "status":
			c = cmp.Compare(slices.Index(model.TaskStatuses, a.Status), slices.Index(model.TaskStatuses, b.Status))
		}
		if c != 0 {
			return c
		}
		return byKey(a, b)
	})
}

// compareDue orders earlier due dates first and undated tasks last.
func compareDue(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}

func seq(id string) int {
	n, _ := strconv.Atoi(id)
	return n
}
