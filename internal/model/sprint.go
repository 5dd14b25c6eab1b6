package model

import "time"

// SprintStatus is the lifecycle state of a sprint.
type SprintStatus string

const (
	SprintPlanned   SprintStatus = "planned"
	SprintActive    SprintStatus = "active"
	SprintCompleted SprintStatus = "completed"
)

// Valid reports whether s is a known sprint status.
func (s SprintStatus) Valid() bool {
	switch s {
	case SprintPlanned, SprintActive, SprintCompleted:
		return true
	}
	return false
}

// Sprint is a time-boxed list of tasks owned by exactly one project.
type Sprint struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Goal      string       `json:"goal,omitempty"`
	StartDate time.Time    `json:"startDate"`
	EndDate   time.Time    `json:"endDate"`
	Status    SprintStatus `json:"status"`
	Tasks     []Task       `json:"tasks"`
}

// Clone returns a deep copy of the sprint.
func (s Sprint) Clone() Sprint {
	out := s
	out.Tasks = make([]Task, len(s.Tasks))
	for i, t := range s.Tasks {
		out.Tasks[i] = t.Clone()
	}
	return out
}

// FindTask returns the index of the task with the given id, or -1.
func (s Sprint) FindTask(id string) int {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// SprintInput carries the fields needed to create a sprint.
type SprintInput struct {
	Name  string
	Goal  string
	Start time.Time
	End   time.Time
}

// SprintPatch holds a partial sprint update.
type SprintPatch struct {
	Name      *string
	Goal      *string
	StartDate *time.Time
	EndDate   *time.Time
	Status    *SprintStatus
}
