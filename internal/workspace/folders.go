package workspace

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/nhle/teamspace/internal/crossref"
	"github.com/nhle/teamspace/internal/ident"
	"github.com/nhle/teamspace/internal/model"
	"github.com/nhle/teamspace/internal/store"
)

const (
	defaultFolderIcon  = "folder"
	defaultFolderColor = "#6366f1"
)

// Folders returns every folder in creation order.
func (w *Workspace) Folders() []model.Folder {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return cloneFolders(w.folders)
}

// Folder returns one folder.
func (w *Workspace) Folder(id string) (model.Folder, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	i := w.findFolder(id)
	if i < 0 {
		return model.Folder{}, fmt.Errorf("folder %s: %w", id, ErrNotFound)
	}
	return w.folders[i].Clone(), nil
}

// FoldersForDocument returns the folders that list docID.
func (w *Workspace) FoldersForDocument(docID string) []model.Folder {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := []model.Folder{}
	for _, f := range w.folders {
		if slices.Contains(f.DocumentIDs, docID) {
			out = append(out, f.Clone())
		}
	}
	return out
}

// CreateFolder adds an empty folder.
func (w *Workspace) CreateFolder(ctx context.Context, in model.FolderInput) (model.Folder, error) {
	var created model.Folder
	err := w.mutate(ctx, store.KeyFolders, func() error {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return fmt.Errorf("folder name must not be empty: %w", ErrInvalid)
		}
		icon, color := in.Icon, in.Color
		if icon == "" {
			icon = defaultFolderIcon
		}
		if color == "" {
			color = defaultFolderColor
		}
		now := w.now()
		f := model.Folder{
			ID:                 ident.New(),
			Name:               name,
			Description:        in.Description,
			Icon:               icon,
			Color:              color,
			DocumentIDs:        []string{},
			AssignedToProjects: []string{},
			AssignedToTasks:    []string{},
			Author:             in.Author,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		w.folders = append(w.folders, f)
		created = f.Clone()
		return nil
	})
	if err != nil && created.ID == "" {
		return model.Folder{}, err
	}
	return created, err
}

// UpdateFolder merges the non-nil fields of patch into the folder.
func (w *Workspace) UpdateFolder(ctx context.Context, id string, patch model.FolderPatch) (model.Folder, error) {
	return w.editFolder(ctx, id, func(f *model.Folder) error {
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return fmt.Errorf("folder name must not be empty: %w", ErrInvalid)
			}
			f.Name = name
		}
		if patch.Description != nil {
			f.Description = *patch.Description
		}
		if patch.Icon != nil {
			f.Icon = *patch.Icon
		}
		if patch.Color != nil {
			f.Color = *patch.Color
		}
		return nil
	})
}

// DeleteFolder removes a folder. The documents it listed are untouched.
func (w *Workspace) DeleteFolder(ctx context.Context, id string) error {
	return w.mutate(ctx, store.KeyFolders, func() error {
		i := w.findFolder(id)
		if i < 0 {
			return fmt.Errorf("folder %s: %w", id, ErrNotFound)
		}
		w.folders = append(w.folders[:i:i], w.folders[i+1:]...)
		return nil
	})
}

// AddDocumentToFolder lists an existing document in a folder. Adding a
// document twice is a no-op.
func (w *Workspace) AddDocumentToFolder(ctx context.Context, folderID, docID string) (model.Folder, error) {
	return w.editFolder(ctx, folderID, func(f *model.Folder) error {
		if w.findDocument(docID) < 0 {
			return fmt.Errorf("document %s: %w", docID, ErrNotFound)
		}
		f.DocumentIDs = appendUnique(f.DocumentIDs, docID)
		return nil
	})
}

// RemoveDocumentFromFolder drops a document id from a folder, whether or
// not the document still exists.
func (w *Workspace) RemoveDocumentFromFolder(ctx context.Context, folderID, docID string) (model.Folder, error) {
	return w.editFolder(ctx, folderID, func(f *model.Folder) error {
		f.DocumentIDs = remove(f.DocumentIDs, docID)
		return nil
	})
}

// AssignFolderToProject links a folder to an existing project.
func (w *Workspace) AssignFolderToProject(ctx context.Context, folderID, projectID string) (model.Folder, error) {
	return w.editFolder(ctx, folderID, func(f *model.Folder) error {
		if w.findProject(projectID) < 0 {
			return fmt.Errorf("project %s: %w", projectID, ErrNotFound)
		}
		f.AssignedToProjects = appendUnique(f.AssignedToProjects, projectID)
		return nil
	})
}

// UnassignFolderFromProject removes a project link.
func (w *Workspace) UnassignFolderFromProject(ctx context.Context, folderID, projectID string) (model.Folder, error) {
	return w.editFolder(ctx, folderID, func(f *model.Folder) error {
		f.AssignedToProjects = remove(f.AssignedToProjects, projectID)
		return nil
	})
}

// AssignFolderToTask links a folder to a task by display key.
func (w *Workspace) AssignFolderToTask(ctx context.Context, folderID, taskKey string) (model.Folder, error) {
	key := strings.ToUpper(strings.TrimSpace(taskKey))
	return w.editFolder(ctx, folderID, func(f *model.Folder) error {
		if _, ok := w.lookupTask(key); !ok {
			return fmt.Errorf("task %s: %w", key, ErrNotFound)
		}
		f.AssignedToTasks = appendUnique(f.AssignedToTasks, key)
		return nil
	})
}

// UnassignFolderFromTask removes a task link.
func (w *Workspace) UnassignFolderFromTask(ctx context.Context, folderID, taskKey string) (model.Folder, error) {
	key := strings.ToUpper(strings.TrimSpace(taskKey))
	return w.editFolder(ctx, folderID, func(f *model.Folder) error {
		f.AssignedToTasks = remove(f.AssignedToTasks, key)
		return nil
	})
}

// editFolder applies fn to a private copy of the folder, then stores it
// with a fresh UpdatedAt. An edit that changes nothing is not stored.
func (w *Workspace) editFolder(ctx context.Context, id string, fn func(*model.Folder) error) (model.Folder, error) {
	var updated model.Folder
	err := w.mutate(ctx, store.KeyFolders, func() error {
		i := w.findFolder(id)
		if i < 0 {
			return fmt.Errorf("folder %s: %w", id, ErrNotFound)
		}
		next := w.folders[i].Clone()
		if err := fn(&next); err != nil {
			return err
		}
		if sameFolder(w.folders[i], next) {
			updated = next
			return errUnchanged
		}
		next.UpdatedAt = w.now()
		w.folders[i] = next
		updated = next.Clone()
		return nil
	})
	if err != nil && updated.ID == "" {
		return model.Folder{}, err
	}
	return updated, err
}

func sameFolder(a, b model.Folder) bool {
	return a.Name == b.Name &&
		a.Description == b.Description &&
		a.Icon == b.Icon &&
		a.Color == b.Color &&
		a.Author == b.Author &&
		slices.Equal(a.DocumentIDs, b.DocumentIDs) &&
		slices.Equal(a.AssignedToProjects, b.AssignedToProjects) &&
		slices.Equal(a.AssignedToTasks, b.AssignedToTasks)
}

func (w *Workspace) findFolder(id string) int {
	for i := range w.folders {
		if w.folders[i].ID == id {
			return i
		}
	}
	return -1
}

// lookupTask finds a task by display key. Caller holds the lock.
func (w *Workspace) lookupTask(key string) (model.FlatTask, bool) {
	projectKey, taskID, err := crossref.ParseTaskKey(key)
	if err != nil {
		return model.FlatTask{}, false
	}
	for _, p := range w.projects {
		if p.Key != projectKey {
			continue
		}
		for _, s := range p.Sprints {
			if k := s.FindTask(taskID); k >= 0 {
				return flatten(p, s, s.Tasks[k]), true
			}
		}
	}
	return model.FlatTask{}, false
}

func appendUnique(ids []string, id string) []string {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

func remove(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
