package model

import "time"

// TaskStatus is the kanban column a task sits in.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusReview     TaskStatus = "review"
	StatusDone       TaskStatus = "done"
)

// TaskStatuses lists the statuses in board order.
var TaskStatuses = []TaskStatus{StatusTodo, StatusInProgress, StatusReview, StatusDone}

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

// Label returns the human-facing column name.
func (s TaskStatus) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusReview:
		return "Review"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Rank orders priorities, higher is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// TaskType classifies a task.
type TaskType string

const (
	TypeTask  TaskType = "task"
	TypeBug   TaskType = "bug"
	TypeStory TaskType = "story"
	TypeEpic  TaskType = "epic"
)

// Valid reports whether t is a known task type.
func (t TaskType) Valid() bool {
	switch t {
	case TypeTask, TypeBug, TypeStory, TypeEpic:
		return true
	}
	return false
}

// Person is a denormalized copy of a member's identity. It is captured at
// assignment time and is not refreshed when the member changes.
type Person struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Task is a unit of work owned by exactly one sprint.
type Task struct {
	// ID is unique within the owning project. The display key is
	// "{ProjectKey}-{ID}".
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      TaskStatus      `json:"status"`
	Priority    Priority        `json:"priority"`
	Type        TaskType        `json:"type"`
	Assignee    *Person         `json:"assignee,omitempty"`
	Reporter    *Person         `json:"reporter,omitempty"`
	StoryPoints int             `json:"storyPoints"`
	DueDate     *time.Time      `json:"dueDate,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	Tags        []string        `json:"tags,omitempty"`
	Attachments []AttachmentRef `json:"attachments,omitempty"`
}

// IsOverdue reports whether the task is past due at now and not done.
func (t Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != StatusDone
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	out := t
	if t.Assignee != nil {
		a := *t.Assignee
		out.Assignee = &a
	}
	if t.Reporter != nil {
		r := *t.Reporter
		out.Reporter = &r
	}
	if t.DueDate != nil {
		d := *t.DueDate
		out.DueDate = &d
	}
	if t.Tags != nil {
		out.Tags = append([]string(nil), t.Tags...)
	}
	if t.Attachments != nil {
		out.Attachments = append([]AttachmentRef(nil), t.Attachments...)
	}
	return out
}

// TaskInput carries the fields supplied when creating a task. Zero-valued
// enums fall back to todo / medium / task.
type TaskInput struct {
	Title       string
	Description string
	Status      TaskStatus
	Priority    Priority
	Type        TaskType
	Assignee    *Person
	Reporter    *Person
	StoryPoints int
	DueDate     *time.Time
	Tags        []string
	Attachments []AttachmentRef
}

// TaskPatch holds a partial task update. Nil fields are left untouched.
// ClearAssignee and ClearDueDate remove the optional values.
type TaskPatch struct {
	Title         *string
	Description   *string
	Status        *TaskStatus
	Priority      *Priority
	Type          *TaskType
	Assignee      *Person
	ClearAssignee bool
	Reporter      *Person
	StoryPoints   *int
	DueDate       *time.Time
	ClearDueDate  bool
	Tags          *[]string
	Attachments   *[]AttachmentRef
}
