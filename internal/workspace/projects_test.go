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

func ptr[T any](v T) *T { return &v }

func TestCreateProject_SiteScenario(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newWorkspace(t)

	p := createSite(t, w)
	require.Len(t, p.Sprints, 1)
	s := p.Sprints[0]
	assert.Equal(t, "Sprint 1", s.Name)
	assert.Equal(t, model.SprintPlanned, s.Status)
	assert.Empty(t, s.Tasks)
	assert.Equal(t, epoch, s.StartDate)
	assert.Equal(t, epoch.Add(14*24*time.Hour), s.EndDate)

	ft, err := w.CreateTask(ctx, p.ID, s.ID, model.TaskInput{Title: "Build", Priority: model.PriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, "ST-"+ft.ID, ft.Key)
	assert.Equal(t, "To Do", ft.StatusLabel)
	assert.Equal(t, model.StatusTodo, ft.Status)
	assert.Equal(t, model.TypeTask, ft.Type)
	assert.Equal(t, model.PriorityHigh, ft.Priority)
	assert.Equal(t, epoch, ft.CreatedAt)

	got, err := w.Sprint(p.ID, s.ID)
	require.NoError(t, err)
	assert.Len(t, got.Tasks, 1)

	rows, err := w.ProjectTasks(p.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "To Do", rows[0].StatusLabel)
	assert.Equal(t, "ST-"+ft.ID, rows[0].Key)
	assert.Equal(t, "Site", rows[0].ProjectName)
	assert.Equal(t, "Sprint 1", rows[0].SprintName)
}

func TestCreateProject_KeyRules(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		key     string
		wantKey string
		wantErr error
	}{
		{name: "uppercased and trimmed", key: "  st ", wantKey: "ST"},
		{name: "five characters", key: "ABCDE", wantKey: "ABCDE"},
		{name: "digits after letter", key: "A1", wantKey: "A1"},
		{name: "empty", key: "  ", wantErr: workspace.ErrInvalid},
		{name: "too long", key: "ABCDEF", wantErr: workspace.ErrInvalid},
		{name: "leading digit", key: "1AB", wantErr: workspace.ErrInvalid},
		{name: "punctuation", key: "A-B", wantErr: workspace.ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _, _ := newWorkspace(t)
			p, err := w.CreateProject(ctx, model.ProjectInput{Name: "Proj", Key: tt.key})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, p.Key)
		})
	}
}

func TestCreateProject_DuplicateKey(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newWorkspace(t)
	createSite(t, w)

	_, err := w.CreateProject(ctx, model.ProjectInput{Name: "Other", Key: "st"})
	require.ErrorIs(t, err, workspace.ErrDuplicate)
	assert.Len(t, w.Projects(), 1)
}

func TestUpdateProject(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newWorkspace(t)
	p := createSite(t, w)
	other, err := w.CreateProject(ctx, model.ProjectInput{Name: "Other", Key: "OT"})
	require.NoError(t, err)

	updated, err := w.UpdateProject(ctx, p.ID, model.ProjectPatch{Name: ptr("Website"), Color: ptr("#fff")})
	require.NoError(t, err)
	assert.Equal(t, "Website", updated.Name)
	assert.Equal(t, "ST", updated.Key)
	assert.Equal(t, "#fff", updated.Color)

	// Keeping its own key is not a conflict.
	_, err = w.UpdateProject(ctx, p.ID, model.ProjectPatch{Key: ptr("st")})
	require.NoError(t, err)

	_, err = w.UpdateProject(ctx, p.ID, model.ProjectPatch{Key: ptr("OT")})
	require.ErrorIs(t, err, workspace.ErrDuplicate)

	_, err = w.UpdateProject(ctx, p.ID, model.ProjectPatch{Name: ptr(" ")})
	require.ErrorIs(t, err, workspace.ErrInvalid)

	got, err := w.Project(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Website", got.Name)

	byKey, err := w.ProjectByKey("ot")
	require.NoError(t, err)
	assert.Equal(t, other.ID, byKey.ID)
}

func TestDeleteProject_LeavesDocumentsDangling(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newWorkspace(t)
	p := createSite(t, w)
	doc, err := w.CreateDocument(ctx, model.DocumentInput{Title: "Plan", ProjectID: p.ID})
	require.NoError(t, err)

	require.NoError(t, w.DeleteProject(ctx, p.ID))
	assert.Empty(t, w.Projects())

	got, err := w.Document(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ProjectID, "no cascade")

	_, ok, err := w.DocumentProject(doc.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMembers_AssigneeCopiesAreSnapshots(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newWorkspace(t)
	p := createSite(t, w)

	m, err := w.AddMember(ctx, p.ID, model.Member{Name: "Ana", Email: "ana@x.io"})
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, model.RoleMember, m.Role)

	assignee := m.Person()
	ft, err := w.CreateTask(ctx, p.ID, p.Sprints[0].ID, model.TaskInput{Title: "Build", Assignee: &assignee})
	require.NoError(t, err)

	_, err = w.UpdateMember(ctx, p.ID, m.ID, model.MemberPatch{Name: ptr("Ana Maria")})
	require.NoError(t, err)

	got, err := w.TaskByKey(ft.Key)
	require.NoError(t, err)
	require.NotNil(t, got.Assignee)
	assert.Equal(t, "Ana", got.Assignee.Name)

	require.NoError(t, w.RemoveMember(ctx, p.ID, m.ID))
	got, err = w.TaskByKey(ft.Key)
	require.NoError(t, err)
	require.NotNil(t, got.Assignee)
	assert.Equal(t, m.ID, got.Assignee.ID)

	_, err = w.AddMember(ctx, p.ID, model.Member{ID: "dup", Name: "A"})
	require.NoError(t, err)
	_, err = w.AddMember(ctx, p.ID, model.Member{ID: "dup", Name: "B"})
	require.ErrorIs(t, err, workspace.ErrDuplicate)
}

func TestSprints(t *testing.T) {
	ctx := context.Background()
	w, _, clock := newWorkspace(t)
	p := createSite(t, w)

	t.Run("defaults", func(t *testing.T) {
		clock.Advance(time.Hour)
		s, err := w.CreateSprint(ctx, p.ID, model.SprintInput{Name: "Sprint 2", Goal: "Ship"})
		require.NoError(t, err)
		assert.Equal(t, model.SprintPlanned, s.Status)
		assert.Equal(t, clock.Now(), s.StartDate)
		assert.Equal(t, clock.Now().Add(14*24*time.Hour), s.EndDate)
		assert.NotNil(t, s.Tasks)
		assert.Empty(t, s.Tasks)
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := w.CreateSprint(ctx, p.ID, model.SprintInput{
			Name: "Bad", Start: epoch, End: epoch.Add(-time.Hour),
		})
		require.ErrorIs(t, err, workspace.ErrInvalid)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := w.CreateSprint(ctx, p.ID, model.SprintInput{Name: " "})
		require.ErrorIs(t, err, workspace.ErrInvalid)
	})

	t.Run("update status", func(t *testing.T) {
		s, err := w.UpdateSprint(ctx, p.ID, p.Sprints[0].ID, model.SprintPatch{Status: ptr(model.SprintActive)})
		require.NoError(t, err)
		assert.Equal(t, model.SprintActive, s.Status)

		_, err = w.UpdateSprint(ctx, p.ID, p.Sprints[0].ID, model.SprintPatch{Status: ptr(model.SprintStatus("paused"))})
		require.ErrorIs(t, err, workspace.ErrInvalid)

		_, err = w.UpdateSprint(ctx, p.ID, p.Sprints[0].ID, model.SprintPatch{EndDate: ptr(epoch.Add(-time.Hour))})
		require.ErrorIs(t, err, workspace.ErrInvalid)

		got, err := w.Sprint(p.ID, p.Sprints[0].ID)
		require.NoError(t, err)
		assert.Equal(t, model.SprintActive, got.Status)
		assert.Equal(t, epoch.Add(14*24*time.Hour), got.EndDate)
	})
}

func TestDeleteSprint_RemovesOnlyItsTasks(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newWorkspace(t)
	p := createSite(t, w)
	s1 := p.Sprints[0]
	s2, err := w.CreateSprint(ctx, p.ID, model.SprintInput{Name: "Sprint 2"})
	require.NoError(t, err)

	for _, title := range []string{"a", "b", "c"} {
		_, err := w.CreateTask(ctx, p.ID, s1.ID, model.TaskInput{Title: title})
		require.NoError(t, err)
	}
	kept, err := w.CreateTask(ctx, p.ID, s2.ID, model.TaskInput{Title: "kept"})
	require.NoError(t, err)

	require.NoError(t, w.DeleteSprint(ctx, p.ID, s1.ID))

	_, err = w.Sprint(p.ID, s1.ID)
	require.ErrorIs(t, err, workspace.ErrNotFound)

	rows, err := w.ProjectTasks(p.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, kept.Key, rows[0].Key)

	got, err := w.Sprint(p.ID, s2.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sprint 2", got.Name)
	assert.Len(t, got.Tasks, 1)
}
