package workspace

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nhle/teamspace/internal/crossref"
	"github.com/nhle/teamspace/internal/ident"
	"github.com/nhle/teamspace/internal/model"
	"github.com/nhle/teamspace/internal/store"
)

// defaultSprintLength is the span of the sprint created with every project.
const defaultSprintLength = 14 * 24 * time.Hour

// Projects returns a copy of every project, in creation order.
func (w *Workspace) Projects() []model.Project {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return cloneProjects(w.projects)
}

// Project returns a copy of one project.
func (w *Workspace) Project(id string) (model.Project, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	i := w.findProject(id)
	if i < 0 {
		return model.Project{}, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return w.projects[i].Clone(), nil
}

// ProjectByKey returns the project whose key matches, ignoring case.
func (w *Workspace) ProjectByKey(key string) (model.Project, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	key = normalizeKey(key)
	for _, p := range w.projects {
		if p.Key == key {
			return p.Clone(), nil
		}
	}
	return model.Project{}, fmt.Errorf("project key %s: %w", key, ErrNotFound)
}

// CreateProject adds a project with one empty, planned default sprint.
func (w *Workspace) CreateProject(ctx context.Context, in model.ProjectInput) (model.Project, error) {
	var created model.Project
	err := w.mutate(ctx, store.KeyProjects, func() error {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return fmt.Errorf("project name must not be empty: %w", ErrInvalid)
		}
		key, err := w.checkKey(in.Key, "")
		if err != nil {
			return err
		}

		now := w.now()
		members := make([]model.Member, 0, len(in.Members))
		for _, m := range in.Members {
			if m.ID == "" {
				m.ID = ident.New()
			}
			if m.Role == "" {
				m.Role = model.RoleMember
			}
			members = append(members, m)
		}

		created = model.Project{
			ID:          ident.New(),
			Name:        name,
			Key:         key,
			Description: in.Description,
			Color:       in.Color,
			CreatedAt:   now,
			Sprints:     []model.Sprint{defaultSprint(now)},
			Members:     members,
		}
		w.projects = append(w.projects, created)
		created = created.Clone()
		return nil
	})
	if err != nil && created.ID == "" {
		return model.Project{}, err
	}
	return created, err
}

// UpdateProject merges the non-nil fields of patch into the project.
func (w *Workspace) UpdateProject(ctx context.Context, id string, patch model.ProjectPatch) (model.Project, error) {
	var updated model.Project
	err := w.mutate(ctx, store.KeyProjects, func() error {
		i := w.findProject(id)
		if i < 0 {
			return fmt.Errorf("project %s: %w", id, ErrNotFound)
		}
		p := &w.projects[i]

		name := p.Name
		if patch.Name != nil {
			name = strings.TrimSpace(*patch.Name)
			if name == "" {
				return fmt.Errorf("project name must not be empty: %w", ErrInvalid)
			}
		}
		key := p.Key
		if patch.Key != nil {
			k, err := w.checkKey(*patch.Key, id)
			if err != nil {
				return err
			}
			key = k
		}

		p.Name = name
		p.Key = key
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.Color != nil {
			p.Color = *patch.Color
		}
		updated = p.Clone()
		return nil
	})
	if err != nil && updated.ID == "" {
		return model.Project{}, err
	}
	return updated, err
}

// DeleteProject removes the project with all of its sprints and tasks.
// Documents and folders that point at it are left alone and resolve the
// reference as absent from now on.
func (w *Workspace) DeleteProject(ctx context.Context, id string) error {
	return w.mutate(ctx, store.KeyProjects, func() error {
		i := w.findProject(id)
		if i < 0 {
			return fmt.Errorf("project %s: %w", id, ErrNotFound)
		}
		w.projects = append(w.projects[:i:i], w.projects[i+1:]...)
		return nil
	})
}

// AddMember appends a member to a project. Tasks are not touched.
func (w *Workspace) AddMember(ctx context.Context, projectID string, m model.Member) (model.Member, error) {
	var added model.Member
	err := w.mutate(ctx, store.KeyProjects, func() error {
		p, err := w.projectRef(projectID)
		if err != nil {
			return err
		}
		if strings.TrimSpace(m.Name) == "" {
			return fmt.Errorf("member name must not be empty: %w", ErrInvalid)
		}
		if m.ID == "" {
			m.ID = ident.New()
		}
		if m.Role == "" {
			m.Role = model.RoleMember
		}
		for _, existing := range p.Members {
			if existing.ID == m.ID {
				return fmt.Errorf("member %s in project %s: %w", m.ID, projectID, ErrDuplicate)
			}
		}
		p.Members = append(p.Members, m)
		added = m
		return nil
	})
	if err != nil && added.ID == "" {
		return model.Member{}, err
	}
	return added, err
}

// UpdateMember edits a member in place. Tasks keep the copy of the member
// taken when they were assigned, so names and avatars on existing tasks do
// not change.
func (w *Workspace) UpdateMember(ctx context.Context, projectID, memberID string, patch model.MemberPatch) (model.Member, error) {
	var updated model.Member
	err := w.mutate(ctx, store.KeyProjects, func() error {
		p, err := w.projectRef(projectID)
		if err != nil {
			return err
		}
		for i := range p.Members {
			m := &p.Members[i]
			if m.ID != memberID {
				continue
			}
			if patch.Name != nil {
				if strings.TrimSpace(*patch.Name) == "" {
					return fmt.Errorf("member name must not be empty: %w", ErrInvalid)
				}
				m.Name = *patch.Name
			}
			if patch.Email != nil {
				m.Email = *patch.Email
			}
			if patch.Avatar != nil {
				m.Avatar = *patch.Avatar
			}
			if patch.Role != nil {
				m.Role = *patch.Role
			}
			updated = *m
			return nil
		}
		return fmt.Errorf("member %s in project %s: %w", memberID, projectID, ErrNotFound)
	})
	if err != nil && updated.ID == "" {
		return model.Member{}, err
	}
	return updated, err
}

// RemoveMember drops a member from a project. Tasks assigned to them keep
// their assignee copy.
func (w *Workspace) RemoveMember(ctx context.Context, projectID, memberID string) error {
	return w.mutate(ctx, store.KeyProjects, func() error {
		p, err := w.projectRef(projectID)
		if err != nil {
			return err
		}
		for i, m := range p.Members {
			if m.ID == memberID {
				p.Members = append(p.Members[:i:i], p.Members[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("member %s in project %s: %w", memberID, projectID, ErrNotFound)
	})
}

// checkKey normalizes a project key and makes sure no other project uses it.
// exceptID is the project being renamed, if any. Caller holds the lock.
func (w *Workspace) checkKey(raw, exceptID string) (string, error) {
	key := normalizeKey(raw)
	if key == "" {
		return "", fmt.Errorf("project key must not be empty: %w", ErrInvalid)
	}
	if len(key) > model.MaxProjectKeyLen {
		return "", fmt.Errorf("project key %q longer than %d characters: %w", key, model.MaxProjectKeyLen, ErrInvalid)
	}
	if !crossref.ValidProjectKey(key) {
		return "", fmt.Errorf("project key %q must be letters and digits starting with a letter: %w", key, ErrInvalid)
	}
	for _, p := range w.projects {
		if p.Key == key && p.ID != exceptID {
			return "", fmt.Errorf("project key %s: %w", key, ErrDuplicate)
		}
	}
	return key, nil
}

// findProject returns the index of the project, or -1. Caller holds the lock.
func (w *Workspace) findProject(id string) int {
	for i := range w.projects {
		if w.projects[i].ID == id {
			return i
		}
	}
	return -1
}

// projectRef returns a pointer into the project slice. Caller holds the
// write lock.
func (w *Workspace) projectRef(id string) (*model.Project, error) {
	i := w.findProject(id)
	if i < 0 {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return &w.projects[i], nil
}

func normalizeKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

func defaultSprint(now time.Time) model.Sprint {
	return model.Sprint{
		ID:        ident.New(),
		Name:      "Sprint 1",
		StartDate: now,
		EndDate:   now.Add(defaultSprintLength),
		Status:    model.SprintPlanned,
		Tasks:     []model.Task{},
	}
}
