package workspace

import (
	"context"
	"fmt"
	"strings"

	"github.com/nhle/teamspace/internal/ident"
	"github.com/nhle/teamspace/internal/model"
	"github.com/nhle/teamspace/internal/store"
)

// CreateTask appends a task to a sprint. The id comes from the project's
// task counter, so it is unique within the sprint for the life of the
// project, including across restarts.
func (w *Workspace) CreateTask(ctx context.Context, projectID, sprintID string, in model.TaskInput) (model.FlatTask, error) {
	var created model.FlatTask
	err := w.mutate(ctx, store.KeyProjects, func() error {
		p, err := w.projectRef(projectID)
		if err != nil {
			return err
		}
		j := p.FindSprint(sprintID)
		if j < 0 {
			return fmt.Errorf("sprint %s in project %s: %w", sprintID, projectID, ErrNotFound)
		}
		s := &p.Sprints[j]

		task, err := newTask(in)
		if err != nil {
			return err
		}
		task.CreatedAt = w.now()
		task.ID = ident.NextSeq(&p.NextTaskSeq)
		for s.FindTask(task.ID) >= 0 {
			task.ID = ident.NextSeq(&p.NextTaskSeq)
		}

		s.Tasks = append(s.Tasks, task)
		created = flatten(*p, *s, task)
		return nil
	})
	if err != nil && created.ID == "" {
		return model.FlatTask{}, err
	}
	return created, err
}

// UpdateTask merges the non-nil fields of patch into one task. An empty
// patch leaves the task as it was.
func (w *Workspace) UpdateTask(ctx context.Context, projectID, sprintID, taskID string, patch model.TaskPatch) (model.FlatTask, error) {
	var updated model.FlatTask
	err := w.mutate(ctx, store.KeyProjects, func() error {
		p, s, k, err := w.taskRef(projectID, sprintID, taskID)
		if err != nil {
			return err
		}

		next := s.Tasks[k].Clone()
		if err := applyTaskPatch(&next, patch); err != nil {
			return err
		}
		s.Tasks[k] = next
		updated = flatten(*p, *s, next)
		return nil
	})
	if err != nil && updated.ID == "" {
		return model.FlatTask{}, err
	}
	return updated, err
}

// DeleteTask removes one task from its sprint.
func (w *Workspace) DeleteTask(ctx context.Context, projectID, sprintID, taskID string) error {
	return w.mutate(ctx, store.KeyProjects, func() error {
		_, s, k, err := w.taskRef(projectID, sprintID, taskID)
		if err != nil {
			return err
		}
		s.Tasks = append(s.Tasks[:k:k], s.Tasks[k+1:]...)
		return nil
	})
}

// MoveTask moves a task to another sprint of the same project. The id, and
// with it the task key, stays the same.
func (w *Workspace) MoveTask(ctx context.Context, projectID, fromSprintID, toSprintID, taskID string) (model.FlatTask, error) {
	var moved model.FlatTask
	err := w.mutate(ctx, store.KeyProjects, func() error {
		p, from, k, err := w.taskRef(projectID, fromSprintID, taskID)
		if err != nil {
			return err
		}
		j := p.FindSprint(toSprintID)
		if j < 0 {
			return fmt.Errorf("sprint %s in project %s: %w", toSprintID, projectID, ErrNotFound)
		}
		to := &p.Sprints[j]

		task := from.Tasks[k]
		if from.ID != to.ID {
			from.Tasks = append(from.Tasks[:k:k], from.Tasks[k+1:]...)
			to.Tasks = append(to.Tasks, task)
		}
		moved = flatten(*p, *to, task)
		return nil
	})
	if err != nil && moved.ID == "" {
		return model.FlatTask{}, err
	}
	return moved, err
}

// taskRef locates a task. Caller holds the write lock.
func (w *Workspace) taskRef(projectID, sprintID, taskID string) (*model.Project, *model.Sprint, int, error) {
	p, err := w.projectRef(projectID)
	if err != nil {
		return nil, nil, -1, err
	}
	j := p.FindSprint(sprintID)
	if j < 0 {
		return nil, nil, -1, fmt.Errorf("sprint %s in project %s: %w", sprintID, projectID, ErrNotFound)
	}
	s := &p.Sprints[j]
	k := s.FindTask(taskID)
	if k < 0 {
		return nil, nil, -1, fmt.Errorf("task %s in sprint %s: %w", taskID, sprintID, ErrNotFound)
	}
	return p, s, k, nil
}

// newTask validates input and fills defaults.
func newTask(in model.TaskInput) (model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Task{}, fmt.Errorf("task title must not be empty: %w", ErrInvalid)
	}
	if in.StoryPoints < 0 {
		return model.Task{}, fmt.Errorf("story points must not be negative: %w", ErrInvalid)
	}

	t := model.Task{
		Title:       title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		Type:        in.Type,
		StoryPoints: in.StoryPoints,
		Tags:        append([]string(nil), in.Tags...),
		Attachments: append([]model.AttachmentRef(nil), in.Attachments...),
	}
	if t.Status == "" {
		t.Status = model.StatusTodo
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if t.Type == "" {
		t.Type = model.TypeTask
	}
	if err := validateEnums(t); err != nil {
		return model.Task{}, err
	}
	if err := validateAttachments(t.Attachments); err != nil {
		return model.Task{}, err
	}
	if in.Assignee != nil {
		a := *in.Assignee
		t.Assignee = &a
	}
	if in.Reporter != nil {
		r := *in.Reporter
		t.Reporter = &r
	}
	if in.DueDate != nil {
		d := *in.DueDate
		t.DueDate = &d
	}
	return t, nil
}

// applyTaskPatch merges patch into t, validating as it goes. t must be a
// private copy; on error it is discarded.
func applyTaskPatch(t *model.Task, patch model.TaskPatch) error {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return fmt.Errorf("task title must not be empty: %w", ErrInvalid)
		}
		t.Title = title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.Type != nil {
		t.Type = *patch.Type
	}
	if err := validateEnums(*t); err != nil {
		return err
	}
	if patch.ClearAssignee {
		t.Assignee = nil
	}
	if patch.Assignee != nil {
		a := *patch.Assignee
		t.Assignee = &a
	}
	if patch.Reporter != nil {
		r := *patch.Reporter
		t.Reporter = &r
	}
	if patch.StoryPoints != nil {
		if *patch.StoryPoints < 0 {
			return fmt.Errorf("story points must not be negative: %w", ErrInvalid)
		}
		t.StoryPoints = *patch.StoryPoints
	}
	if patch.ClearDueDate {
		t.DueDate = nil
	}
	if patch.DueDate != nil {
		d := *patch.DueDate
		t.DueDate = &d
	}
	if patch.Tags != nil {
		t.Tags = append([]string(nil), (*patch.Tags)...)
	}
	if patch.Attachments != nil {
		if err := validateAttachments(*patch.Attachments); err != nil {
			return err
		}
		t.Attachments = append([]model.AttachmentRef(nil), (*patch.Attachments)...)
	}
	return nil
}

func validateEnums(t model.Task) error {
	if !t.Status.Valid() {
		return fmt.Errorf("task status %q: %w", t.Status, ErrInvalid)
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("task priority %q: %w", t.Priority, ErrInvalid)
	}
	if !t.Type.Valid() {
		return fmt.Errorf("task type %q: %w", t.Type, ErrInvalid)
	}
	return nil
}

func validateAttachments(refs []model.AttachmentRef) error {
	for _, r := range refs {
		if r.Kind != model.AttachDocument && r.Kind != model.AttachFolder {
			return fmt.Errorf("attachment kind %q: %w", r.Kind, ErrInvalid)
		}
		if r.ID == "" {
			return fmt.Errorf("attachment without id: %w", ErrInvalid)
		}
	}
	return nil
}
