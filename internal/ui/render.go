package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/teamspace/internal/model"
	"github.com/nhle/teamspace/internal/theme"
)

// Item is a single row in a task list.
type Item interface {
	GetID() string
	GetTitle() string
	GetStatus() model.TaskStatus
	IsCompleted() bool
	GetDueDate() *time.Time
}

// RenderBoard renders one sprint as side-by-side status columns.
func (l Layout) RenderBoard(p model.Project, s model.Sprint, now time.Time) string {
	width := l.ColumnWidth(len(model.TaskStatuses))

	columns := make([]string, 0, len(model.TaskStatuses))
	for _, status := range model.TaskStatuses {
		var b strings.Builder
		b.WriteString(theme.StatusStyle(status).Render(status.Label()))

		n := 0
		for _, t := range s.Tasks {
			if t.Status != status {
				continue
			}
			n++
			key := p.Key + "-" + t.ID
			b.WriteString("\n")
			b.WriteString(theme.KeyStyle.Render(key))
			b.WriteString(" ")
			b.WriteString(theme.PriorityStyle(t.Priority).Render(priorityLabel(t.Priority)))
			b.WriteString("\n")
			b.WriteString(truncate(t.Title, width-2))
			if t.IsOverdue(now) {
				b.WriteString("\n")
				b.WriteString(theme.OverdueStyle.Render("overdue"))
			}
		}
		if n == 0 {
			b.WriteString("\n")
			b.WriteString(theme.DimmedStyle.Render("empty"))
		}

		columns = append(columns, theme.ColumnStyle.Width(width).Render(b.String()))
	}

	header := l.RenderHeader(p.Key+" · "+s.Name, string(s.Status))
	board := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	footer := l.RenderStatusBar(fmt.Sprintf("%d tasks", len(s.Tasks)))
	return l.RenderWithFrame(header, board, footer)
}

// RenderTaskRows renders one line per task.
func RenderTaskRows[T Item](items []T, now time.Time) string {
	if len(items) == 0 {
		return theme.HelpStyle.Render("No tasks.")
	}

	keyWidth := 0
	for _, it := range items {
		if w := len(it.GetID()); w > keyWidth {
			keyWidth = w
		}
	}

	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(taskRow(it, keyWidth, now))
	}
	return b.String()
}

func taskRow(it Item, keyWidth int, now time.Time) string {
	key := theme.KeyStyle.Render(fmt.Sprintf("%-*s", keyWidth, it.GetID()))
	status := theme.StatusStyle(it.GetStatus()).Render(it.GetStatus().Label())

	title := it.GetTitle()
	if it.IsCompleted() {
		title = theme.DimmedStyle.Render(title)
	}

	line := key + " " + status + " " + title

	if due := it.GetDueDate(); due != nil {
		label := "due " + dueLabel(*due, now)
		if !it.IsCompleted() && due.Before(now) {
			line += " " + theme.OverdueStyle.Render(label)
		} else {
			line += " " + theme.DueDateStyle.Render(label)
		}
	}
	return line
}

// RenderNotifications renders notifications with an unread marker.
func RenderNotifications(ns []model.Notification, now time.Time) string {
	if len(ns) == 0 {
		return theme.HelpStyle.Render("No notifications.")
	}

	var b strings.Builder
	for i, n := range ns {
		if i > 0 {
			b.WriteString("\n")
		}
		marker := "•"
		title := theme.NotificationStyle(n.Type).Render(n.Title)
		if n.Read {
			marker = " "
			title = theme.DimmedStyle.Render(n.Title)
		}
		b.WriteString(marker + " " + title)
		if n.Message != "" {
			b.WriteString(" " + n.Message)
		}
		b.WriteString(" " + theme.HelpStyle.Render(relativeTime(n.CreatedAt, now)))
	}
	return b.String()
}

// RenderDocuments renders the document list with each excerpt.
func RenderDocuments(docs []model.Document, excerpts map[string]string, now time.Time) string {
	if len(docs) == 0 {
		return theme.HelpStyle.Render("No documents.")
	}

	var b strings.Builder
	for i, d := range docs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(theme.KeyStyle.Render(d.Title))
		b.WriteString(" " + theme.HelpStyle.Render("updated "+relativeTime(d.UpdatedAt, now)))
		if ex := excerpts[d.ID]; ex != "" {
			b.WriteString("\n")
			b.WriteString(theme.ListItemStyle.Render(ex))
		}
	}
	return b.String()
}

// RenderProjects renders one line per project with its task count.
func RenderProjects(ps []model.Project) string {
	if len(ps) == 0 {
		return theme.HelpStyle.Render("No projects.")
	}

	var b strings.Builder
	for i, p := range ps {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s %s %s",
			theme.KeyStyle.Render(fmt.Sprintf("%-5s", p.Key)),
			p.Name,
			theme.HelpStyle.Render(fmt.Sprintf("%d sprints, %d tasks", len(p.Sprints), p.TaskCount())))
	}
	return b.String()
}

// RenderMessages renders a channel transcript. Sender ids are shown by
// name when present in users.
func RenderMessages(msgs []model.Message, users map[string]model.ChatUser, now time.Time) string {
	if len(msgs) == 0 {
		return theme.HelpStyle.Render("No messages.")
	}

	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		name := m.SenderID
		dot := ""
		if u, ok := users[m.SenderID]; ok {
			name = u.Name
			dot = theme.PresenceStyle(u.Status.Type).Render("●") + " "
		}
		b.WriteString(dot + theme.KeyStyle.Render(name) + " " + theme.HelpStyle.Render(relativeTime(m.Timestamp, now)))
		if m.Content != "" {
			b.WriteString("\n")
			b.WriteString(theme.ListItemStyle.Render(m.Content))
		}
		for _, a := range m.Attachments {
			label := a.Name
			if label == "" {
				label = a.RefID
			}
			b.WriteString("\n")
			b.WriteString(theme.ListItemStyle.Render(theme.DimmedStyle.Render("[" + a.Type + "] " + label)))
		}
	}
	return b.String()
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
		return "-"
	}
}

func dueLabel(due, now time.Time) string {
	days := int(due.Sub(now).Hours() / 24)
	switch {
	case sameDay(due, now):
		return "today"
	case days == 0 && due.After(now):
		return "tomorrow"
	case due.Before(now):
		return relativeTime(due, now)
	default:
		return due.Format("Jan 2")
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// relativeTime formats t relative to now as a short string like "5m ago".
func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
