package tasklist

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/teamspace/internal/keys"
	"github.com/nhle/teamspace/internal/model"
)

type fakeSource struct {
	tasks   []model.FlatTask
	queries []string
}

func (f *fakeSource) Tasks() []model.FlatTask { return f.tasks }

func (f *fakeSource) SearchTasks(q string) []model.FlatTask {
	f.queries = append(f.queries, q)
	var out []model.FlatTask
	for _, t := range f.tasks {
		if strings.Contains(strings.ToLower(t.Title), strings.ToLower(q)) {
			out = append(out, t)
		}
	}
	return out
}

func flat(project, id, title string, status model.TaskStatus, pri model.Priority) model.FlatTask {
	return model.FlatTask{
		Task:        model.Task{ID: id, Title: title, Status: status, Priority: pri},
		ProjectKey:  project,
		Key:         project + "-" + id,
		StatusLabel: status.Label(),
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var fixedNow = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }

func loaded(t *testing.T, src Source) Model {
	t.Helper()
	m := New(src, keys.DefaultKeyMap(), fixedNow, 80, 24)
	msg := m.Init()()
	m, _ = m.Update(msg)
	return m
}

func TestShiftStatus(t *testing.T) {
	next, ok := ShiftStatus(model.StatusTodo, 1)
	require.True(t, ok)
	assert.Equal(t, model.StatusInProgress, next)

	next, ok = ShiftStatus(model.StatusReview, -1)
	require.True(t, ok)
	assert.Equal(t, model.StatusInProgress, next)

	_, ok = ShiftStatus(model.StatusDone, 1)
	assert.False(t, ok)
	_, ok = ShiftStatus(model.StatusTodo, -1)
	assert.False(t, ok)
	_, ok = ShiftStatus("blocked", 1)
	assert.False(t, ok)
}

func TestSortTasks(t *testing.T) {
	due := func(day int) *time.Time {
		d := time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC)
		return &d
	}

	a := flat("MDX", "10", "a", model.StatusDone, model.PriorityLow)
	b := flat("MDX", "2", "b", model.StatusTodo, model.PriorityUrgent)
	b.DueDate = due(20)
	c := flat("MDX", "3", "c", model.StatusReview, model.PriorityHigh)
	c.DueDate = due(12)
	d := flat("MOB", "1", "d", model.StatusInProgress, model.PriorityHigh)

	keysOf := func(ts []model.FlatTask) []string {
		out := make([]string, len(ts))
		for i, t := range ts {
			out[i] = t.Key
		}
		return out
	}

	tests := []struct {
		mode string
		want []string
	}{
		{"key", []string{"MDX-2", "MDX-3", "MDX-10", "MOB-1"}},
		{"priority", []string{"MDX-2", "MDX-3", "MOB-1", "MDX-10"}},
		{"due", []string{"MDX-3", "MDX-2", "MDX-10", "MOB-1"}},
		{"status", []string{"MDX-2", "MOB-1", "MDX-3", "MDX-10"}},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			tasks := []model.FlatTask{d, c, a, b}
			sortTasks(tasks, tt.mode)
			assert.Equal(t, tt.want, keysOf(tasks))
		})
	}
}

func TestUpdate_StatusKeys(t *testing.T) {
	src := &fakeSource{tasks: []model.FlatTask{
		flat("MDX", "1", "Set up CI", model.StatusTodo, model.PriorityHigh),
	}}
	m := loaded(t, src)

	_, cmd := m.Update(runes("s"))
	require.NotNil(t, cmd)
	req, ok := cmd().(StatusRequestMsg)
	require.True(t, ok)
	assert.Equal(t, "MDX-1", req.Task.Key)
	assert.Equal(t, model.StatusInProgress, req.Status)

	// Already in the first column.
	_, cmd = m.Update(runes("S"))
	assert.Nil(t, cmd)
}

func TestUpdate_Select(t *testing.T) {
	src := &fakeSource{tasks: []model.FlatTask{
		flat("MDX", "1", "Set up CI", model.StatusTodo, model.PriorityHigh),
	}}
	m := loaded(t, src)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	sel, ok := cmd().(SelectedTaskMsg)
	require.True(t, ok)
	assert.Equal(t, "MDX-1", sel.Task.Key)
}

func TestUpdate_Search(t *testing.T) {
	src := &fakeSource{tasks: []model.FlatTask{
		flat("MDX", "1", "Set up CI", model.StatusTodo, model.PriorityHigh),
		flat("MDX", "2", "Editor toolbar", model.StatusTodo, model.PriorityLow),
	}}
	m := loaded(t, src)

	m, _ = m.Update(runes("/"))
	require.True(t, m.Searching())
	m, _ = m.Update(runes("toolbar"))

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, m.Searching())

	msg := cmd()
	m, _ = m.Update(msg)
	assert.Equal(t, []string{"toolbar"}, src.queries)
	assert.Contains(t, m.FilterSummary(), "search: toolbar")
	assert.Contains(t, m.View(), "Editor toolbar")
	assert.NotContains(t, m.View(), "Set up CI")
}

func TestUpdate_CycleSort(t *testing.T) {
	m := loaded(t, &fakeSource{})
	assert.Equal(t, "sort: key", m.FilterSummary())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "sort: priority", m.FilterSummary())
}

func TestView_EmptyState(t *testing.T) {
	m := loaded(t, &fakeSource{})
	assert.Contains(t, m.View(), "No tasks yet.")
}
