package workspace_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/teamspace/internal/model"
	"github.com/nhle/teamspace/internal/seed"
	"github.com/nhle/teamspace/internal/workspace"
)

func TestTasks_FlattensEveryProject(t *testing.T) {
	w, _, _ := newSeeded(t)

	rows := w.Tasks()
	require.Len(t, rows, 9)
	assert.Equal(t, "MDX-1", rows[0].Key)
	assert.Equal(t, "MarineDox Platform", rows[0].ProjectName)
	assert.Equal(t, "MOB-3", rows[len(rows)-1].Key)
}

func TestSearchTasks(t *testing.T) {
	w, _, _ := newSeeded(t)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"title", "autosave", []string{"MDX-3"}},
		{"description", "debounce", []string{"MDX-3"}},
		{"tag", "EDITOR", []string{"MDX-2", "MDX-3"}},
		{"key", "mob-2", []string{"MOB-2"}},
		{"no match", "kubernetes", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var keys []string
			for _, ft := range w.SearchTasks(tt.query) {
				keys = append(keys, ft.Key)
			}
			assert.Equal(t, tt.want, keys)
		})
	}

	assert.Len(t, w.SearchTasks(""), 9)
}

func TestTasksDue(t *testing.T) {
	w, _, _ := newSeeded(t)
	start := epoch.Add(-7 * 24 * time.Hour).Truncate(24 * time.Hour)

	rows := w.TasksDue(start, start.Add(11*24*time.Hour))
	var keys []string
	for _, ft := range rows {
		keys = append(keys, ft.Key)
	}
	// Due on day 3, 5 and 10, sorted by due date.
	assert.Equal(t, []string{"MOB-3", "MDX-3", "MDX-2"}, keys)
}

func TestMemberStats(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newWorkspace(t)
	p := createSite(t, w)
	sid := p.Sprints[0].ID
	ana := model.Person{ID: "ana", Name: "Ana"}
	past := epoch.Add(-time.Hour)

	inputs := []model.TaskInput{
		{Title: "a", Assignee: &ana, StoryPoints: 3, Status: model.StatusDone},
		{Title: "b", Assignee: &ana, StoryPoints: 5, DueDate: &past},
		{Title: "c", Assignee: &ana, StoryPoints: 2, Status: model.StatusReview},
		{Title: "d", StoryPoints: 8},
	}
	for _, in := range inputs {
		_, err := w.CreateTask(ctx, p.ID, sid, in)
		require.NoError(t, err)
	}

	stats := w.MemberStats("ana")
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 10, stats.Points)
	assert.Equal(t, 3, stats.CompletedPoints)
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, map[model.TaskStatus]int{
		model.StatusTodo: 1, model.StatusInProgress: 0, model.StatusReview: 1, model.StatusDone: 1,
	}, stats.ByStatus)

	empty := w.MemberStats("nobody")
	assert.Equal(t, 0, empty.Total)
	assert.Len(t, empty.ByStatus, 4)
}

func TestSprintProgress(t *testing.T) {
	w, _, _ := newSeeded(t)

	prog, err := w.SprintProgress(seed.ProjectPlatformID, seed.SprintPlatform1ID)
	require.NoError(t, err)
	assert.Equal(t, 4, prog.Total)
	assert.Equal(t, 1, prog.Done)
	assert.Equal(t, 13, prog.Points)
	assert.Equal(t, 3, prog.CompletedPoints)
	assert.Equal(t, 25, prog.Percent())

	_, err = w.SprintProgress(seed.ProjectPlatformID, "missing")
	require.ErrorIs(t, err, workspace.ErrNotFound)
}
