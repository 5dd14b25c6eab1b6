package model

import "time"

// MaxProjectKeyLen is the longest allowed project key.
const MaxProjectKeyLen = 5

// Member roles.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleViewer = "viewer"
)

// Project is the top-level container for sprints and the people working on them.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Key         string    `json:"key"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"createdAt"`
	Sprints     []Sprint  `json:"sprints"`
	Members     []Member  `json:"members"`

	// NextTaskSeq is the last task number handed out in this project.
	// Task ids are drawn from it so they never repeat, even across sprints.
	NextTaskSeq int `json:"nextTaskSeq"`
}

// Member is a person participating in a project.
type Member struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
	Role   string `json:"role"`
}

// Person returns the denormalized copy of m stored on tasks and documents.
func (m Member) Person() Person {
	return Person{ID: m.ID, Name: m.Name, Avatar: m.Avatar}
}

// Clone returns a deep copy of the project.
func (p Project) Clone() Project {
	out := p
	if p.Sprints != nil {
		out.Sprints = make([]Sprint, len(p.Sprints))
		for i, s := range p.Sprints {
			out.Sprints[i] = s.Clone()
		}
	}
	if p.Members != nil {
		out.Members = append([]Member(nil), p.Members...)
	}
	return out
}

// FindSprint returns the index of the sprint with the given id, or -1.
func (p Project) FindSprint(id string) int {
	for i := range p.Sprints {
		if p.Sprints[i].ID == id {
			return i
		}
	}
	return -1
}

// TaskCount returns the number of tasks across all sprints.
func (p Project) TaskCount() int {
	n := 0
	for _, s := range p.Sprints {
		n += len(s.Tasks)
	}
	return n
}

// ProjectInput carries the fields needed to create a project.
type ProjectInput struct {
	Name        string
	Key         string
	Description string
	Color       string
	Members     []Member
}

// ProjectPatch holds a partial project update. Nil fields are left untouched.
type ProjectPatch struct {
	Name        *string
	Key         *string
	Description *string
	Color       *string
}

// MemberPatch holds a partial member update.
type MemberPatch struct {
	Name   *string
	Email  *string
	Avatar *string
	Role   *string
}
