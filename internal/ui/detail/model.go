package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/teamspace/internal/keys"
	"github.com/nhle/teamspace/internal/model"
	"github.com/nhle/teamspace/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// Detail is a task with its attachments looked up.
type Detail struct {
	Task      model.FlatTask
	Documents []model.Document
	Folders   []model.Folder
	Missing   []model.AttachmentRef
}

// DetailLoadedMsg carries the loaded task detail.
type DetailLoadedMsg struct {
	Detail *Detail
}

// Actions carried by ActionMsg.
const (
	ActionNextStatus = "next-status"
	ActionPrevStatus = "prev-status"
)

// ActionMsg signals the parent to execute an action on the current task.
type ActionMsg struct {
	Action string
	Task   model.FlatTask
}

// Model is the task detail view component.
type Model struct {
	detail   *Detail
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
	loading  bool
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DetailLoadedMsg:
		m.SetDetail(msg.Detail)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg {
				return BackMsg{}
			}

		case key.Matches(msg, m.keys.NextStatus):
			return m, m.action(ActionNextStatus)

		case key.Matches(msg, m.keys.PrevStatus):
			return m, m.action(ActionPrevStatus)
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) action(name string) tea.Cmd {
	if m.detail == nil {
		return nil
	}
	task := m.detail.Task
	return func() tea.Msg {
		return ActionMsg{Action: name, Task: task}
	}
}

// View renders the detail view.
func (m Model) View() string {
	if m.loading {
		loadingStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return loadingStyle.Render("Loading task details...")
	}

	if m.detail == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No task selected")
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.detail == nil {
		return ""
	}

	task := m.detail.Task
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, theme.KeyStyle.Render(task.Key)+"  "+titleStyle.Render(task.Title))

	statusBadge := theme.StatusStyle(task.Status).Render(task.StatusLabel)
	priBadge := theme.PriorityStyle(task.Priority).Render(priorityName(task.Priority))

	badgeLine := lipgloss.JoinHorizontal(
		lipgloss.Top, statusBadge, "  ", priBadge, "  ", string(task.Type),
	)
	sections = append(sections, badgeLine)
	sections = append(sections, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	meta := func(label, value string) {
		sections = append(sections, fmt.Sprintf(
			"%s %s",
			metaStyle.Render(fmt.Sprintf("%-10s", label+":")),
			valStyle.Render(value),
		))
	}

	meta("Project", task.ProjectName)
	meta("Sprint", task.SprintName)
	if task.Assignee != nil {
		meta("Assignee", task.Assignee.Name)
	}
	if task.Reporter != nil {
		meta("Reporter", task.Reporter.Name)
	}
	if task.StoryPoints > 0 {
		meta("Points", fmt.Sprint(task.StoryPoints))
	}
	if task.DueDate != nil {
		meta("Due", task.DueDate.Format("2006-01-02"))
	}
	if !task.CreatedAt.IsZero() {
		meta("Created", task.CreatedAt.Format("2006-01-02 15:04"))
	}
	if len(task.Tags) > 0 {
		meta("Tags", strings.Join(task.Tags, ", "))
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 1)))
	sections = append(sections, "")
	sections = append(sections, separator)
	sections = append(sections, "")

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite)

	sections = append(sections, headerStyle.Render("Description"))

	body := task.Description
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No description")
	}
	sections = append(sections, body)

	if n := len(m.detail.Documents) + len(m.detail.Folders) + len(m.detail.Missing); n > 0 {
		sections = append(sections, "")
		sections = append(sections, separator)
		sections = append(sections, "")
		sections = append(sections, headerStyle.Render(fmt.Sprintf("Attachments (%d)", n)))

		for _, d := range m.detail.Documents {
			sections = append(sections, theme.ListItemStyle.Render("doc    "+d.Title))
		}
		for _, f := range m.detail.Folders {
			sections = append(sections, theme.ListItemStyle.Render("folder "+f.Name))
		}
		for _, ref := range m.detail.Missing {
			sections = append(sections, theme.ListItemStyle.Render(
				theme.DimmedStyle.Render(fmt.Sprintf("%-6s %s (deleted)", ref.Kind, ref.ID))))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDetail updates the task being displayed and re-renders the content.
func (m *Model) SetDetail(d *Detail) {
	m.detail = d
	m.loading = false
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Current returns the task on display.
func (m Model) Current() (model.FlatTask, bool) {
	if m.detail == nil {
		return model.FlatTask{}, false
	}
	return m.detail.Task, true
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
}

// priorityName returns a human-readable name for the priority.
func priorityName(p model.Priority) string {
	switch p {
	case model.PriorityUrgent:
		return "Urgent"
	case model.PriorityHigh:
		return "High"
	case model.PriorityMedium:
		return "Medium"
	case model.PriorityLow:
		return "Low"
	default:
		return "Unknown"
	}
}
