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

func TestFolders_Membership(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newWorkspace(t)
	doc, err := w.CreateDocument(ctx, model.DocumentInput{Title: "Runbook"})
	require.NoError(t, err)

	f, err := w.CreateFolder(ctx, model.FolderInput{Name: "Ops"})
	require.NoError(t, err)
	assert.Equal(t, "folder", f.Icon)
	assert.NotEmpty(t, f.Color)
	assert.Empty(t, f.DocumentIDs)

	f, err = w.AddDocumentToFolder(ctx, f.ID, doc.ID)
	require.NoError(t, err)
	f, err = w.AddDocumentToFolder(ctx, f.ID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{doc.ID}, f.DocumentIDs, "adding twice is a no-op")

	_, err = w.AddDocumentToFolder(ctx, f.ID, "missing")
	require.ErrorIs(t, err, workspace.ErrNotFound)

	in := w.FoldersForDocument(doc.ID)
	require.Len(t, in, 1)
	assert.Equal(t, f.ID, in[0].ID)

	f, err = w.RemoveDocumentFromFolder(ctx, f.ID, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, f.DocumentIDs)
	assert.Empty(t, w.FoldersForDocument(doc.ID))

	_, err = w.CreateFolder(ctx, model.FolderInput{Name: ""})
	require.ErrorIs(t, err, workspace.ErrInvalid)

	renamed, err := w.UpdateFolder(ctx, f.ID, model.FolderPatch{Name: ptr("Operations"), Icon: ptr("wrench")})
	require.NoError(t, err)
	assert.Equal(t, "Operations", renamed.Name)
	assert.Equal(t, "wrench", renamed.Icon)

	require.NoError(t, w.DeleteFolder(ctx, f.ID))
	_, err = w.Document(doc.ID)
	require.NoError(t, err, "deleting a folder keeps its documents")
}

func TestFolders_NoOpEditsAreNotStored(t *testing.T) {
	ctx := context.Background()
	w, b, clock := newWorkspace(t)
	doc, err := w.CreateDocument(ctx, model.DocumentInput{Title: "Runbook"})
	require.NoError(t, err)
	f, err := w.CreateFolder(ctx, model.FolderInput{Name: "Ops"})
	require.NoError(t, err)
	f, err = w.AddDocumentToFolder(ctx, f.ID, doc.ID)
	require.NoError(t, err)

	saves := b.Saves()
	clock.Advance(time.Hour)

	again, err := w.AddDocumentToFolder(ctx, f.ID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, f.UpdatedAt, again.UpdatedAt)
	assert.Equal(t, []string{doc.ID}, again.DocumentIDs)

	_, err = w.UpdateFolder(ctx, f.ID, model.FolderPatch{Name: ptr("Ops")})
	require.NoError(t, err)
	_, err = w.RemoveDocumentFromFolder(ctx, f.ID, "never-added")
	require.NoError(t, err)
	assert.Equal(t, saves, b.Saves(), "unchanged folders are not written")

	stored, err := w.Folder(f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.UpdatedAt, stored.UpdatedAt)

	renamed, err := w.UpdateFolder(ctx, f.ID, model.FolderPatch{Name: ptr("Operations")})
	require.NoError(t, err)
	assert.True(t, renamed.UpdatedAt.After(f.UpdatedAt))
	assert.Equal(t, saves+1, b.Saves())
}

func TestFolders_Assignments(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newWorkspace(t)
	p := createSite(t, w)
	task, err := w.CreateTask(ctx, p.ID, p.Sprints[0].ID, model.TaskInput{Title: "Build"})
	require.NoError(t, err)
	f, err := w.CreateFolder(ctx, model.FolderInput{Name: "Specs"})
	require.NoError(t, err)

	f, err = w.AssignFolderToProject(ctx, f.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{p.ID}, f.AssignedToProjects)

	f, err = w.AssignFolderToTask(ctx, f.ID, " st-1 ")
	require.NoError(t, err)
	assert.Equal(t, []string{task.Key}, f.AssignedToTasks)

	_, err = w.AssignFolderToTask(ctx, f.ID, "ST-42")
	require.ErrorIs(t, err, workspace.ErrNotFound)
	_, err = w.AssignFolderToProject(ctx, f.ID, "missing")
	require.ErrorIs(t, err, workspace.ErrNotFound)

	f, err = w.UnassignFolderFromTask(ctx, f.ID, task.Key)
	require.NoError(t, err)
	assert.Empty(t, f.AssignedToTasks)
	f, err = w.UnassignFolderFromProject(ctx, f.ID, p.ID)
	require.NoError(t, err)
	assert.Empty(t, f.AssignedToProjects)
}

func TestResolveFolder_ReportsDanglingReferences(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newSeeded(t)

	view, err := w.ResolveFolder(seed.FolderEngineeringID)
	require.NoError(t, err)
	assert.False(t, view.Dangling())
	assert.Len(t, view.Documents, 2)
	require.Len(t, view.Tasks, 1)
	assert.Equal(t, "MDX-2", view.Tasks[0].Key)

	require.NoError(t, w.DeleteDocument(ctx, seed.DocReleaseID))
	require.NoError(t, w.DeleteSprint(ctx, seed.ProjectPlatformID, seed.SprintPlatform1ID))

	view, err = w.ResolveFolder(seed.FolderEngineeringID)
	require.NoError(t, err)
	assert.True(t, view.Dangling())
	assert.Equal(t, []string{seed.DocReleaseID}, view.MissingDocuments)
	assert.Equal(t, []string{"MDX-2"}, view.MissingTasks)
	assert.Empty(t, view.MissingProjects)
	require.Len(t, view.Documents, 1)
	assert.Equal(t, seed.DocArchitectureID, view.Documents[0].ID)

	// The stored folder still lists the ids.
	f, err := w.Folder(seed.FolderEngineeringID)
	require.NoError(t, err)
	assert.Contains(t, f.DocumentIDs, seed.DocReleaseID)
	assert.Contains(t, f.AssignedToTasks, "MDX-2")

	require.NoError(t, w.DeleteProject(ctx, seed.ProjectPlatformID))
	view, err = w.ResolveFolder(seed.FolderEngineeringID)
	require.NoError(t, err)
	assert.Equal(t, []string{seed.ProjectPlatformID}, view.MissingProjects)
}

func TestResolveTaskAttachments(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newSeeded(t)

	view, err := w.ResolveTaskAttachments(seed.ProjectPlatformID, seed.SprintPlatform1ID, "2")
	require.NoError(t, err)
	require.Len(t, view.Documents, 1)
	assert.Equal(t, "Architecture Overview", view.Documents[0].Title)
	assert.Empty(t, view.Missing)

	_, err = w.UpdateTask(ctx, seed.ProjectPlatformID, seed.SprintPlatform1ID, "2", model.TaskPatch{
		Attachments: &[]model.AttachmentRef{
			{Kind: model.AttachDocument, ID: seed.DocArchitectureID},
			{Kind: model.AttachFolder, ID: seed.FolderHandbookID},
			{Kind: model.AttachDocument, ID: "gone"},
		},
	})
	require.NoError(t, err)

	view, err = w.ResolveTaskAttachments(seed.ProjectPlatformID, seed.SprintPlatform1ID, "2")
	require.NoError(t, err)
	assert.Len(t, view.Documents, 1)
	require.Len(t, view.Folders, 1)
	assert.Equal(t, "Team Handbook", view.Folders[0].Name)
	assert.Equal(t, []model.AttachmentRef{{Kind: model.AttachDocument, ID: "gone"}}, view.Missing)
}
