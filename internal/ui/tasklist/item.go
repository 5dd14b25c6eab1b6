package tasklist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/teamspace/internal/model"
	"github.com/nhle/teamspace/internal/theme"
)

// TaskItem wraps a model.FlatTask so it can be used in a bubbles/list.
type TaskItem struct {
	Task model.FlatTask
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Key + " " + i.Task.Title }

// Title returns the task title for the list.
func (i TaskItem) Title() string { return i.Task.Title }

// Description returns a short summary line for the list.
func (i TaskItem) Description() string {
	parts := []string{
		i.Task.Key,
		i.Task.StatusLabel,
		i.Task.SprintName,
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering task rows.
type ItemDelegate struct {
	now func() time.Time
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single list item line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}
	fmt.Fprint(w, d.renderLine(ti.Task, index == m.Index()))
}

func (d ItemDelegate) renderLine(t model.FlatTask, isSelected bool) string {
	prefix := "○"
	if t.IsCompleted() {
		prefix = "✓"
	}

	key := theme.KeyStyle.Render(t.Key)
	statusBadge := theme.StatusStyle(t.Status).Render(t.StatusLabel)
	priBadge := theme.PriorityStyle(t.Priority).Render(priorityLabel(t.Priority))

	assignee := ""
	if t.Assignee != nil {
		assignee = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Render(" @" + firstName(t.Assignee.Name))
	}

	dueDateStr := ""
	if dd := t.DueDate; dd != nil {
		dueDateStr = theme.DueDateStyle.Render(" " + dd.Format("Jan 02"))
	}

	overdueStr := ""
	if d.now != nil && t.IsOverdue(d.now()) {
		overdueStr = theme.OverdueStyle.Render(" OVERDUE")
	}

	tagBadge := ""
	if len(t.Tags) > 0 {
		display := t.Tags
		if len(display) > 2 {
			display = append(display[:2:2], "…")
		}
		tagBadge = lipgloss.NewStyle().
			Foreground(theme.ColorMagenta).
			Render(" #" + strings.Join(display, ","))
	}

	line := fmt.Sprintf(
		"%s %s %s %s %s%s%s%s%s",
		prefix, key, statusBadge, priBadge, t.Title,
		assignee, tagBadge, dueDateStr, overdueStr,
	)

	if t.IsCompleted() {
		line = theme.DimmedStyle.Render(line)
	}

	if isSelected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// priorityLabel returns a short display label for a priority.
func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityUrgent:
		return "!!!"
	case model.PriorityHigh:
		return "!!"
	case model.PriorityMedium:
		return "!"
	default:
		return "·"
	}
}

func firstName(name string) string {
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i]
	}
	return name
}
