package workspace

import (
	"context"
	"fmt"
	"strings"

	"github.com/nhle/teamspace/internal/ident"
	"github.com/nhle/teamspace/internal/model"
	"github.com/nhle/teamspace/internal/store"
)

// Sprint returns a copy of one sprint.
func (w *Workspace) Sprint(projectID, sprintID string) (model.Sprint, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	i := w.findProject(projectID)
	if i < 0 {
		return model.Sprint{}, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	j := w.projects[i].FindSprint(sprintID)
	if j < 0 {
		return model.Sprint{}, fmt.Errorf("sprint %s in project %s: %w", sprintID, projectID, ErrNotFound)
	}
	return w.projects[i].Sprints[j].Clone(), nil
}

// CreateSprint appends a planned sprint with no tasks to the project.
// A zero start means now; a zero end means two weeks after the start.
func (w *Workspace) CreateSprint(ctx context.Context, projectID string, in model.SprintInput) (model.Sprint, error) {
	var created model.Sprint
	err := w.mutate(ctx, store.KeyProjects, func() error {
		p, err := w.projectRef(projectID)
		if err != nil {
			return err
		}
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return fmt.Errorf("sprint name must not be empty: %w", ErrInvalid)
		}

		start, end := in.Start, in.End
		if start.IsZero() {
			start = w.now()
		}
		if end.IsZero() {
			end = start.Add(defaultSprintLength)
		}
		if end.Before(start) {
			return fmt.Errorf("sprint %q ends before it starts: %w", name, ErrInvalid)
		}

		created = model.Sprint{
			ID:        ident.New(),
			Name:      name,
			Goal:      in.Goal,
			StartDate: start,
			EndDate:   end,
			Status:    model.SprintPlanned,
			Tasks:     []model.Task{},
		}
		p.Sprints = append(p.Sprints, created)
		created = created.Clone()
		return nil
	})
	if err != nil && created.ID == "" {
		return model.Sprint{}, err
	}
	return created, err
}

// UpdateSprint merges the non-nil fields of patch into the sprint.
func (w *Workspace) UpdateSprint(ctx context.Context, projectID, sprintID string, patch model.SprintPatch) (model.Sprint, error) {
	var updated model.Sprint
	err := w.mutate(ctx, store.KeyProjects, func() error {
		s, err := w.sprintRef(projectID, sprintID)
		if err != nil {
			return err
		}

		next := *s
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return fmt.Errorf("sprint name must not be empty: %w", ErrInvalid)
			}
			next.Name = name
		}
		if patch.Goal != nil {
			next.Goal = *patch.Goal
		}
		if patch.StartDate != nil {
			next.StartDate = *patch.StartDate
		}
		if patch.EndDate != nil {
			next.EndDate = *patch.EndDate
		}
		if patch.Status != nil {
			if !patch.Status.Valid() {
				return fmt.Errorf("sprint status %q: %w", *patch.Status, ErrInvalid)
			}
			next.Status = *patch.Status
		}
		if next.EndDate.Before(next.StartDate) {
			return fmt.Errorf("sprint %q ends before it starts: %w", next.Name, ErrInvalid)
		}

		*s = next
		updated = s.Clone()
		return nil
	})
	if err != nil && updated.ID == "" {
		return model.Sprint{}, err
	}
	return updated, err
}

// DeleteSprint removes a sprint and every task in it. Other sprints of the
// project are unaffected. Folder task assignments that pointed into the
// sprint become dangling and resolve as absent.
func (w *Workspace) DeleteSprint(ctx context.Context, projectID, sprintID string) error {
	return w.mutate(ctx, store.KeyProjects, func() error {
		p, err := w.projectRef(projectID)
		if err != nil {
			return err
		}
		j := p.FindSprint(sprintID)
		if j < 0 {
			return fmt.Errorf("sprint %s in project %s: %w", sprintID, projectID, ErrNotFound)
		}
		p.Sprints = append(p.Sprints[:j:j], p.Sprints[j+1:]...)
		return nil
	})
}

// sprintRef returns a pointer to a sprint. Caller holds the write lock.
func (w *Workspace) sprintRef(projectID, sprintID string) (*model.Sprint, error) {
	p, err := w.projectRef(projectID)
	if err != nil {
		return nil, err
	}
	j := p.FindSprint(sprintID)
	if j < 0 {
		return nil, fmt.Errorf("sprint %s in project %s: %w", sprintID, projectID, ErrNotFound)
	}
	return &p.Sprints[j], nil
}
