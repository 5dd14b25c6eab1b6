package workspace

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nhle/teamspace/internal/crossref"
	"github.com/nhle/teamspace/internal/model"
)

// Tasks returns every task of every project as flat rows, in project,
// sprint and task order. The list is rebuilt on each call.
func (w *Workspace) Tasks() []model.FlatTask {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.flatTasks(func(model.FlatTask) bool { return true })
}

// ProjectTasks returns the flat rows of one project.
func (w *Workspace) ProjectTasks(projectID string) ([]model.FlatTask, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	i := w.findProject(projectID)
	if i < 0 {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	p := w.projects[i]
	out := []model.FlatTask{}
	for _, s := range p.Sprints {
		for _, t := range s.Tasks {
			out = append(out, flatten(p, s, t))
		}
	}
	return out, nil
}

// TaskByKey looks a task up by its display key, e.g. "ST-4".
func (w *Workspace) TaskByKey(key string) (model.FlatTask, error) {
	key = strings.ToUpper(strings.TrimSpace(key))
	if _, _, err := crossref.ParseTaskKey(key); err != nil {
		return model.FlatTask{}, fmt.Errorf("task key %q: %w", key, ErrInvalid)
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	if ft, ok := w.lookupTask(key); ok {
		return ft, nil
	}
	return model.FlatTask{}, fmt.Errorf("task %s: %w", key, ErrNotFound)
}

// SearchTasks matches query case-insensitively against title, description,
// tags and display key. An empty query matches everything.
func (w *Workspace) SearchTasks(query string) []model.FlatTask {
	q := strings.ToLower(strings.TrimSpace(query))

	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.flatTasks(func(ft model.FlatTask) bool {
		if q == "" {
			return true
		}
		if strings.Contains(strings.ToLower(ft.Title), q) ||
			strings.Contains(strings.ToLower(ft.Description), q) ||
			strings.Contains(strings.ToLower(ft.Key), q) {
			return true
		}
		for _, tag := range ft.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				return true
			}
		}
		return false
	})
}

// TasksDue returns tasks with a due date in [from, to), sorted by due date.
func (w *Workspace) TasksDue(from, to time.Time) []model.FlatTask {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := w.flatTasks(func(ft model.FlatTask) bool {
		return ft.DueDate != nil && !ft.DueDate.Before(from) && ft.DueDate.Before(to)
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(*out[j].DueDate)
	})
	return out
}

// TasksAssignedTo returns the tasks whose assignee copy carries memberID.
func (w *Workspace) TasksAssignedTo(memberID string) []model.FlatTask {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.flatTasks(func(ft model.FlatTask) bool {
		return ft.Assignee != nil && ft.Assignee.ID == memberID
	})
}

// MemberStats counts the tasks assigned to memberID across all projects.
func (w *Workspace) MemberStats(memberID string) model.MemberStats {
	now := w.now()
	stats := model.MemberStats{
		MemberID: memberID,
		ByStatus: make(map[model.TaskStatus]int, len(model.TaskStatuses)),
	}
	for _, st := range model.TaskStatuses {
		stats.ByStatus[st] = 0
	}

	for _, ft := range w.TasksAssignedTo(memberID) {
		stats.Total++
		stats.ByStatus[ft.Status]++
		stats.Points += ft.StoryPoints
		if ft.Status == model.StatusDone {
			stats.CompletedPoints += ft.StoryPoints
		}
		if ft.IsOverdue(now) {
			stats.Overdue++
		}
	}
	return stats
}

// SprintProgress summarizes one sprint.
func (w *Workspace) SprintProgress(projectID, sprintID string) (model.SprintProgress, error) {
	s, err := w.Sprint(projectID, sprintID)
	if err != nil {
		return model.SprintProgress{}, err
	}

	prog := model.SprintProgress{
		SprintID: sprintID,
		ByStatus: make(map[model.TaskStatus]int, len(model.TaskStatuses)),
	}
	for _, st := range model.TaskStatuses {
		prog.ByStatus[st] = 0
	}
	for _, t := range s.Tasks {
		prog.Total++
		prog.ByStatus[t.Status]++
		prog.Points += t.StoryPoints
		if t.Status == model.StatusDone {
			prog.Done++
			prog.CompletedPoints += t.StoryPoints
		}
	}
	return prog, nil
}

// flatTasks walks the tree and keeps rows accepted by keep. Caller holds
// the read lock.
func (w *Workspace) flatTasks(keep func(model.FlatTask) bool) []model.FlatTask {
	out := []model.FlatTask{}
	for _, p := range w.projects {
		for _, s := range p.Sprints {
			for _, t := range s.Tasks {
				ft := flatten(p, s, t)
				if keep(ft) {
					out = append(out, ft)
				}
			}
		}
	}
	return out
}

// flatten builds a detached FlatTask row.
func flatten(p model.Project, s model.Sprint, t model.Task) model.FlatTask {
	return model.FlatTask{
		Task:        t.Clone(),
		ProjectID:   p.ID,
		ProjectKey:  p.Key,
		ProjectName: p.Name,
		SprintID:    s.ID,
		SprintName:  s.Name,
		Key:         crossref.FormatTaskKey(p.Key, t.ID),
		StatusLabel: t.Status.Label(),
	}
}
