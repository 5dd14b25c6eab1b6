package model

import "time"

// Document is a MarineDox article. Content is an HTML blob.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ProjectID string    `json:"projectId,omitempty"`
	Author    Person    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Folder is a named collection of document references. Membership does not
// imply ownership; a document may sit in any number of folders.
type Folder struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description,omitempty"`
	Icon               string    `json:"icon"`
	Color              string    `json:"color"`
	DocumentIDs        []string  `json:"documentIds"`
	AssignedToProjects []string  `json:"assignedToProjects"`
	AssignedToTasks    []string  `json:"assignedToTasks"`
	Author             Person    `json:"author"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of the folder.
func (f Folder) Clone() Folder {
	out := f
	out.DocumentIDs = append([]string(nil), f.DocumentIDs...)
	out.AssignedToProjects = append([]string(nil), f.AssignedToProjects...)
	out.AssignedToTasks = append([]string(nil), f.AssignedToTasks...)
	return out
}

// DocumentInput carries the fields needed to create a document.
type DocumentInput struct {
	Title     string
	Content   string
	ProjectID string
	Author    Person
}

// DocumentPatch holds a partial document update.
type DocumentPatch struct {
	Title        *string
	Content      *string
	ProjectID    *string
	ClearProject bool
}

// FolderInput carries the fields needed to create a folder.
type FolderInput struct {
	Name        string
	Description string
	Icon        string
	Color       string
	Author      Person
}

// FolderPatch holds a partial folder update.
type FolderPatch struct {
	Name        *string
	Description *string
	Icon        *string
	Color       *string
}
