package workspace

import (
	"fmt"

	"github.com/nhle/teamspace/internal/model"
)

// FolderView is a folder with its weak references resolved. Ids whose
// targets no longer exist are listed under Missing* instead.
type FolderView struct {
	Folder    model.Folder
	Documents []model.Document
	Projects  []model.Project
	Tasks     []model.FlatTask

	MissingDocuments []string
	MissingProjects  []string
	MissingTasks     []string
}

// Dangling reports whether any reference failed to resolve.
func (v FolderView) Dangling() bool {
	return len(v.MissingDocuments)+len(v.MissingProjects)+len(v.MissingTasks) > 0
}

// AttachmentView is a task's attachment list with documents and folders
// looked up.
type AttachmentView struct {
	Documents []model.Document
	Folders   []model.Folder
	Missing   []model.AttachmentRef
}

// ResolveFolder looks up everything a folder points at. Deleted targets are
// treated as absent and reported in the Missing lists; nothing is cleaned
// up.
func (w *Workspace) ResolveFolder(id string) (FolderView, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	i := w.findFolder(id)
	if i < 0 {
		return FolderView{}, fmt.Errorf("folder %s: %w", id, ErrNotFound)
	}
	f := w.folders[i]
	view := FolderView{
		Folder:    f.Clone(),
		Documents: []model.Document{},
		Projects:  []model.Project{},
		Tasks:     []model.FlatTask{},
	}

	for _, docID := range f.DocumentIDs {
		if j := w.findDocument(docID); j >= 0 {
			view.Documents = append(view.Documents, w.documents[j])
		} else {
			view.MissingDocuments = append(view.MissingDocuments, docID)
		}
	}
	for _, pid := range f.AssignedToProjects {
		if j := w.findProject(pid); j >= 0 {
			view.Projects = append(view.Projects, w.projects[j].Clone())
		} else {
			view.MissingProjects = append(view.MissingProjects, pid)
		}
	}
	for _, key := range f.AssignedToTasks {
		if ft, ok := w.lookupTask(key); ok {
			view.Tasks = append(view.Tasks, ft)
		} else {
			view.MissingTasks = append(view.MissingTasks, key)
		}
	}
	return view, nil
}

// ResolveTaskAttachments looks up the documents and folders attached to a
// task.
func (w *Workspace) ResolveTaskAttachments(projectID, sprintID, taskID string) (AttachmentView, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	i := w.findProject(projectID)
	if i < 0 {
		return AttachmentView{}, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	p := w.projects[i]
	j := p.FindSprint(sprintID)
	if j < 0 {
		return AttachmentView{}, fmt.Errorf("sprint %s in project %s: %w", sprintID, projectID, ErrNotFound)
	}
	k := p.Sprints[j].FindTask(taskID)
	if k < 0 {
		return AttachmentView{}, fmt.Errorf("task %s in sprint %s: %w", taskID, sprintID, ErrNotFound)
	}

	view := AttachmentView{Documents: []model.Document{}, Folders: []model.Folder{}}
	for _, ref := range p.Sprints[j].Tasks[k].Attachments {
		switch ref.Kind {
		case model.AttachDocument:
			if d := w.findDocument(ref.ID); d >= 0 {
				view.Documents = append(view.Documents, w.documents[d])
				continue
			}
		case model.AttachFolder:
			if f := w.findFolder(ref.ID); f >= 0 {
				view.Folders = append(view.Folders, w.folders[f].Clone())
				continue
			}
		}
		view.Missing = append(view.Missing, ref)
	}
	return view, nil
}
