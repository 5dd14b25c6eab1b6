package model

import "time"

// ChannelType distinguishes public rooms, invite-only rooms and DMs.
type ChannelType string

const (
	ChannelPublic  ChannelType = "public"
	ChannelPrivate ChannelType = "private"
	ChannelDM      ChannelType = "dm"
)

// Valid reports whether t is a known channel type.
func (t ChannelType) Valid() bool {
	switch t {
	case ChannelPublic, ChannelPrivate, ChannelDM:
		return true
	}
	return false
}

// Channel is a chat room. A DM channel has exactly two members, or one for
// notes to self.
type Channel struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        ChannelType `json:"type"`
	Members     []string    `json:"members"`
	Description string      `json:"description,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// HasMember reports whether userID belongs to the channel.
func (c Channel) HasMember(userID string) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the channel.
func (c Channel) Clone() Channel {
	out := c
	out.Members = append([]string(nil), c.Members...)
	return out
}

// Message attachment types.
const (
	AttachmentImage    = "image"
	AttachmentFile     = "file"
	AttachmentDocument = "document"
	AttachmentTask     = "task"
)

// MessageAttachment is a file, image, or reference to a document or task.
// RefID holds the document id or task key for references.
type MessageAttachment struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	URL   string `json:"url,omitempty"`
	RefID string `json:"refId,omitempty"`
}

// Message is a single chat message in a channel.
type Message struct {
	ID          string              `json:"id"`
	ChannelID   string              `json:"channelId"`
	SenderID    string              `json:"senderId"`
	Content     string              `json:"content"`
	Attachments []MessageAttachment `json:"attachments,omitempty"`
	Timestamp   time.Time           `json:"timestamp"`
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	out := m
	if m.Attachments != nil {
		out.Attachments = append([]MessageAttachment(nil), m.Attachments...)
	}
	return out
}

// PresenceType is a chat user's availability.
type PresenceType string

const (
	PresenceOnline  PresenceType = "online"
	PresenceAway    PresenceType = "away"
	PresenceBusy    PresenceType = "busy"
	PresenceOffline PresenceType = "offline"
)

// Valid reports whether p is a known presence type.
func (p PresenceType) Valid() bool {
	switch p {
	case PresenceOnline, PresenceAway, PresenceBusy, PresenceOffline:
		return true
	}
	return false
}

// Presence is a user's status with an optional emoji and free-text override.
type Presence struct {
	Type  PresenceType `json:"type"`
	Emoji string       `json:"emoji,omitempty"`
	Text  string       `json:"text,omitempty"`
}

// ChatUser is a participant as shown in the chat sidebar.
type ChatUser struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Avatar string   `json:"avatar"`
	Status Presence `json:"status"`
}

// ChannelInput carries the fields needed to create a channel.
type ChannelInput struct {
	Name        string
	Type        ChannelType
	Members     []string
	Description string
}

// MessageInput carries the fields needed to post a message.
type MessageInput struct {
	ChannelID   string
	SenderID    string
	Content     string
	Attachments []MessageAttachment
}
