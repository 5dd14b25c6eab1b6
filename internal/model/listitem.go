package model

import "time"

// FlatTask is one row of the denormalized cross-project task list used by
// calendars, profile stats and search. It is derived from the project tree
// on every read and never stored.
type FlatTask struct {
	Task

	ProjectID   string `json:"projectId"`
	ProjectKey  string `json:"projectKey"`
	ProjectName string `json:"projectName"`
	SprintID    string `json:"sprintId"`
	SprintName  string `json:"sprintName"`

	// Key is the display identifier, e.g. "ST-4".
	Key string `json:"key"`

	// StatusLabel is Status rendered for display, e.g. "To Do".
	StatusLabel string `json:"statusLabel"`
}

func (t FlatTask) GetID() string           { return t.Key }
func (t FlatTask) GetTitle() string        { return t.Title }
func (t FlatTask) GetStatus() TaskStatus   { return t.Status }
func (t FlatTask) IsCompleted() bool       { return t.Status == StatusDone }
func (t FlatTask) GetCreatedAt() time.Time { return t.CreatedAt }
func (t FlatTask) GetDueDate() *time.Time  { return t.DueDate }

// MemberStats summarizes the tasks assigned to one member.
type MemberStats struct {
	MemberID        string             `json:"memberId"`
	Total           int                `json:"total"`
	ByStatus        map[TaskStatus]int `json:"byStatus"`
	Points          int                `json:"points"`
	CompletedPoints int                `json:"completedPoints"`
	Overdue         int                `json:"overdue"`
}

// SprintProgress summarizes completion of one sprint.
type SprintProgress struct {
	SprintID        string             `json:"sprintId"`
	Total           int                `json:"total"`
	Done            int                `json:"done"`
	ByStatus        map[TaskStatus]int `json:"byStatus"`
	Points          int                `json:"points"`
	CompletedPoints int                `json:"completedPoints"`
}

// Percent returns completed tasks as a whole percentage.
func (p SprintProgress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return p.Done * 100 / p.Total
}
