package workspace_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/teamspace/internal/model"
	"github.com/nhle/teamspace/internal/workspace"
)

func TestCreateTask_Validation(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newWorkspace(t)
	p := createSite(t, w)
	sid := p.Sprints[0].ID

	tests := []struct {
		name string
		in   model.TaskInput
	}{
		{"empty title", model.TaskInput{Title: "  "}},
		{"negative points", model.TaskInput{Title: "x", StoryPoints: -1}},
		{"unknown status", model.TaskInput{Title: "x", Status: "blocked"}},
		{"unknown priority", model.TaskInput{Title: "x", Priority: "critical"}},
		{"unknown type", model.TaskInput{Title: "x", Type: "chore"}},
		{"bad attachment kind", model.TaskInput{Title: "x", Attachments: []model.AttachmentRef{{Kind: "link", ID: "1"}}}},
		{"attachment without id", model.TaskInput{Title: "x", Attachments: []model.AttachmentRef{{Kind: model.AttachDocument}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.CreateTask(ctx, p.ID, sid, tt.in)
			require.ErrorIs(t, err, workspace.ErrInvalid)
		})
	}

	s, err := w.Sprint(p.ID, sid)
	require.NoError(t, err)
	assert.Empty(t, s.Tasks)
}

func TestCreateTask_IDsUniqueAndNeverReused(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newWorkspace(t)
	p := createSite(t, w)
	s1 := p.Sprints[0].ID
	s2, err := w.CreateSprint(ctx, p.ID, model.SprintInput{Name: "Sprint 2"})
	require.NoError(t, err)

	a, err := w.CreateTask(ctx, p.ID, s1, model.TaskInput{Title: "a"})
	require.NoError(t, err)
	b, err := w.CreateTask(ctx, p.ID, s2.ID, model.TaskInput{Title: "b"})
	require.NoError(t, err)
	assert.Equal(t, "1", a.ID)
	assert.Equal(t, "2", b.ID)
	assert.Equal(t, s1, a.SprintID)
	assert.Equal(t, s2.ID, b.SprintID)

	require.NoError(t, w.DeleteTask(ctx, p.ID, s2.ID, b.ID))
	c, err := w.CreateTask(ctx, p.ID, s2.ID, model.TaskInput{Title: "c"})
	require.NoError(t, err)
	assert.Equal(t, "3", c.ID)

	// Other projects have their own sequence.
	other, err := w.CreateProject(ctx, model.ProjectInput{Name: "Other", Key: "OT"})
	require.NoError(t, err)
	d, err := w.CreateTask(ctx, other.ID, other.Sprints[0].ID, model.TaskInput{Title: "d"})
	require.NoError(t, err)
	assert.Equal(t, "OT-1", d.Key)
}

func TestUpdateTask_EmptyPatchIsNoop(t *testing.T) {
	ctx := context.Background()
	w, b, _ := newWorkspace(t)
	p := createSite(t, w)
	sid := p.Sprints[0].ID

	due := epoch.Add(48 * time.Hour)
	target, err := w.CreateTask(ctx, p.ID, sid, model.TaskInput{
		Title: "target", Description: "d", Priority: model.PriorityUrgent,
		Assignee: &model.Person{ID: "u1", Name: "Ana"}, StoryPoints: 5, DueDate: &due, Tags: []string{"x"},
	})
	require.NoError(t, err)
	_, err = w.CreateTask(ctx, p.ID, sid, model.TaskInput{Title: "bystander"})
	require.NoError(t, err)

	before, err := w.Sprint(p.ID, sid)
	require.NoError(t, err)
	saves := b.Saves()

	got, err := w.UpdateTask(ctx, p.ID, sid, target.ID, model.TaskPatch{})
	require.NoError(t, err)
	assert.Equal(t, target.Task, got.Task)

	after, err := w.Sprint(p.ID, sid)
	require.NoError(t, err)
	assert.Equal(t, before.Tasks, after.Tasks)
	assert.Equal(t, saves+1, b.Saves())
}

func TestUpdateTask_Fields(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newWorkspace(t)
	p := createSite(t, w)
	sid := p.Sprints[0].ID
	due := epoch.Add(24 * time.Hour)

	task, err := w.CreateTask(ctx, p.ID, sid, model.TaskInput{
		Title: "Build", Assignee: &model.Person{ID: "u1", Name: "Ana"}, DueDate: &due,
	})
	require.NoError(t, err)
	other, err := w.CreateTask(ctx, p.ID, sid, model.TaskInput{Title: "Other"})
	require.NoError(t, err)

	got, err := w.UpdateTask(ctx, p.ID, sid, task.ID, model.TaskPatch{
		Status:        ptr(model.StatusInProgress),
		StoryPoints:   ptr(8),
		Tags:          &[]string{"api"},
		ClearAssignee: true,
		ClearDueDate:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)
	assert.Equal(t, "In Progress", got.StatusLabel)
	assert.Equal(t, 8, got.StoryPoints)
	assert.Equal(t, []string{"api"}, got.Tags)
	assert.Nil(t, got.Assignee)
	assert.Nil(t, got.DueDate)
	assert.Equal(t, "Build", got.Title)

	t.Run("invalid patch leaves task alone", func(t *testing.T) {
		_, err := w.UpdateTask(ctx, p.ID, sid, task.ID, model.TaskPatch{
			Title:       ptr("Renamed"),
			StoryPoints: ptr(-3),
		})
		require.ErrorIs(t, err, workspace.ErrInvalid)

		cur, err := w.TaskByKey(task.Key)
		require.NoError(t, err)
		assert.Equal(t, "Build", cur.Title)
		assert.Equal(t, 8, cur.StoryPoints)
	})

	t.Run("other task untouched", func(t *testing.T) {
		cur, err := w.TaskByKey(other.Key)
		require.NoError(t, err)
		assert.Equal(t, other.Task, cur.Task)
	})
}

func TestMoveTask_KeepsKey(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newWorkspace(t)
	p := createSite(t, w)
	s1 := p.Sprints[0].ID
	s2, err := w.CreateSprint(ctx, p.ID, model.SprintInput{Name: "Sprint 2"})
	require.NoError(t, err)

	task, err := w.CreateTask(ctx, p.ID, s1, model.TaskInput{Title: "carry over"})
	require.NoError(t, err)

	moved, err := w.MoveTask(ctx, p.ID, s1, s2.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Key, moved.Key)
	assert.Equal(t, s2.ID, moved.SprintID)
	assert.Equal(t, "Sprint 2", moved.SprintName)

	from, err := w.Sprint(p.ID, s1)
	require.NoError(t, err)
	assert.Empty(t, from.Tasks)
	to, err := w.Sprint(p.ID, s2.ID)
	require.NoError(t, err)
	assert.Len(t, to.Tasks, 1)

	_, err = w.MoveTask(ctx, p.ID, s2.ID, "missing", task.ID)
	require.ErrorIs(t, err, workspace.ErrNotFound)
}

func TestTaskByKey(t *testing.T) {
	w, _, _ := newSeeded(t)

	got, err := w.TaskByKey("mdx-3")
	require.NoError(t, err)
	assert.Equal(t, "Autosave drops last keystroke", got.Title)
	assert.Equal(t, "Review", got.StatusLabel)

	_, err = w.TaskByKey("MDX-99")
	require.ErrorIs(t, err, workspace.ErrNotFound)

	_, err = w.TaskByKey("not a key")
	require.ErrorIs(t, err, workspace.ErrInvalid)
}
