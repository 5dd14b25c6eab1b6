package workspace

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nhle/teamspace/internal/docs"
	"github.com/nhle/teamspace/internal/ident"
	"github.com/nhle/teamspace/internal/model"
	"github.com/nhle/teamspace/internal/store"
)

const untitledDocument = "Untitled"

// Documents returns every document, most recently updated first.
func (w *Workspace) Documents() []model.Document {
	w.mu.RLock()
	out := append([]model.Document{}, w.documents...)
	w.mu.RUnlock()

	sortDocuments(out)
	return out
}

// Document returns one document.
func (w *Workspace) Document(id string) (model.Document, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	i := w.findDocument(id)
	if i < 0 {
		return model.Document{}, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return w.documents[i], nil
}

// DocumentsForProject returns the documents linked to a project.
func (w *Workspace) DocumentsForProject(projectID string) []model.Document {
	w.mu.RLock()
	out := []model.Document{}
	for _, d := range w.documents {
		if d.ProjectID == projectID {
			out = append(out, d)
		}
	}
	w.mu.RUnlock()

	sortDocuments(out)
	return out
}

// SearchDocuments matches query against titles and the plain text of the
// bodies, ignoring case and markup.
func (w *Workspace) SearchDocuments(query string) []model.Document {
	q := strings.TrimSpace(query)
	all := w.Documents()
	if q == "" {
		return all
	}

	lq := strings.ToLower(q)
	out := []model.Document{}
	for _, d := range all {
		if strings.Contains(strings.ToLower(d.Title), lq) || docs.Contains(d.Content, q) {
			out = append(out, d)
		}
	}
	return out
}

// ExportDocumentMarkdown renders a document as Markdown with its title as
// the top heading.
func (w *Workspace) ExportDocumentMarkdown(id string) (string, error) {
	d, err := w.Document(id)
	if err != nil {
		return "", err
	}
	out, err := w.converter.ToMarkdown(d.Title, d.Content)
	if err != nil {
		return "", fmt.Errorf("converting document %s: %w", id, err)
	}
	return out, nil
}

// DocumentExcerpt returns up to n characters of a document's plain text.
func (w *Workspace) DocumentExcerpt(id string, n int) (string, error) {
	d, err := w.Document(id)
	if err != nil {
		return "", err
	}
	return docs.Excerpt(d.Content, n), nil
}

// DocumentProject resolves the project a document is linked to. ok is false
// when the document has no project or the project has been deleted.
func (w *Workspace) DocumentProject(docID string) (p model.Project, ok bool, err error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	i := w.findDocument(docID)
	if i < 0 {
		return model.Project{}, false, fmt.Errorf("document %s: %w", docID, ErrNotFound)
	}
	pid := w.documents[i].ProjectID
	if pid == "" {
		return model.Project{}, false, nil
	}
	j := w.findProject(pid)
	if j < 0 {
		return model.Project{}, false, nil
	}
	return w.projects[j].Clone(), true, nil
}

// CreateDocument adds a document. An empty title becomes "Untitled". A
// project link must point at an existing project.
func (w *Workspace) CreateDocument(ctx context.Context, in model.DocumentInput) (model.Document, error) {
	var created model.Document
	err := w.mutate(ctx, store.KeyDocuments, func() error {
		title := strings.TrimSpace(in.Title)
		if title == "" {
			title = untitledDocument
		}
		if in.ProjectID != "" && w.findProject(in.ProjectID) < 0 {
			return fmt.Errorf("project %s: %w", in.ProjectID, ErrNotFound)
		}
		now := w.now()
		created = model.Document{
			ID:        ident.New(),
			Title:     title,
			Content:   in.Content,
			ProjectID: in.ProjectID,
			Author:    in.Author,
			CreatedAt: now,
			UpdatedAt: now,
		}
		w.documents = append(w.documents, created)
		return nil
	})
	if err != nil && created.ID == "" {
		return model.Document{}, err
	}
	return created, err
}

// UpdateDocument merges patch into a document and bumps UpdatedAt.
func (w *Workspace) UpdateDocument(ctx context.Context, id string, patch model.DocumentPatch) (model.Document, error) {
	var updated model.Document
	err := w.mutate(ctx, store.KeyDocuments, func() error {
		i := w.findDocument(id)
		if i < 0 {
			return fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		next := w.documents[i]
		if patch.Title != nil {
			next.Title = strings.TrimSpace(*patch.Title)
			if next.Title == "" {
				next.Title = untitledDocument
			}
		}
		if patch.Content != nil {
			next.Content = *patch.Content
		}
		if patch.ClearProject {
			next.ProjectID = ""
		}
		if patch.ProjectID != nil {
			if *patch.ProjectID != "" && w.findProject(*patch.ProjectID) < 0 {
				return fmt.Errorf("project %s: %w", *patch.ProjectID, ErrNotFound)
			}
			next.ProjectID = *patch.ProjectID
		}
		next.UpdatedAt = w.now()
		w.documents[i] = next
		updated = next
		return nil
	})
	if err != nil && updated.ID == "" {
		return model.Document{}, err
	}
	return updated, err
}

// DeleteDocument removes a document. Folders keep its id and report it as
// dangling when resolved.
func (w *Workspace) DeleteDocument(ctx context.Context, id string) error {
	return w.mutate(ctx, store.KeyDocuments, func() error {
		i := w.findDocument(id)
		if i < 0 {
			return fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		w.documents = append(w.documents[:i:i], w.documents[i+1:]...)
		return nil
	})
}

func (w *Workspace) findDocument(id string) int {
	for i := range w.documents {
		if w.documents[i].ID == id {
			return i
		}
	}
	return -1
}

func sortDocuments(ds []model.Document) {
	sort.SliceStable(ds, func(i, j int) bool {
		return ds[i].UpdatedAt.After(ds[j].UpdatedAt)
	})
}
