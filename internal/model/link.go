package model

// Attachment kinds a task can point at.
const (
	AttachDocument = "document"
	AttachFolder   = "folder"
)

// AttachmentRef is a weak reference from a task to a document or folder.
// The target may have been deleted since; readers resolve it lazily.
type AttachmentRef struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}
