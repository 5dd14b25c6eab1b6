package seed

import (
	"time"

	"github.com/nhle/teamspace/internal/ident"
	"github.com/nhle/teamspace/internal/model"
)

// Chat channel ids.
var (
	ChannelGeneralID     = ident.FromName("seed/channel/general")
	ChannelEngineeringID = ident.FromName("seed/channel/engineering")
	ChannelLeadsID       = ident.FromName("seed/channel/leads")
)

// ChatUsers returns the team as chat participants.
func ChatUsers() []model.ChatUser {
	presence := []model.Presence{
		{Type: model.PresenceOnline},
		{Type: model.PresenceBusy, Emoji: "📅", Text: "In meetings"},
		{Type: model.PresenceOnline},
		{Type: model.PresenceAway, Emoji: "🌴", Text: "Back Monday"},
		{Type: model.PresenceOffline},
	}
	out := make([]model.ChatUser, len(Team))
	for i, m := range Team {
		out[i] = model.ChatUser{ID: m.ID, Name: m.Name, Avatar: m.Avatar, Status: presence[i]}
	}
	return out
}

// Channels returns the demo channels.
func Channels(now time.Time) []model.Channel {
	all := make([]string, len(Team))
	for i, m := range Team {
		all[i] = m.ID
	}
	return []model.Channel{
		{ID: ChannelGeneralID, Name: "general", Type: model.ChannelPublic, Members: all,
			Description: "Company-wide announcements", CreatedAt: now.Add(-30 * day)},
		{ID: ChannelEngineeringID, Name: "engineering", Type: model.ChannelPublic,
			Members: []string{Team[0].ID, Team[1].ID, Team[2].ID, Team[3].ID},
			Description: "Builds, reviews and incidents", CreatedAt: now.Add(-30 * day)},
		{ID: ChannelLeadsID, Name: "leads", Type: model.ChannelPrivate,
			Members: []string{Team[0].ID, Team[1].ID}, CreatedAt: now.Add(-20 * day)},
	}
}

// Messages returns the demo messages in chronological order.
func Messages(now time.Time) []model.Message {
	m := func(slug, channel string, sender int, content string, ago time.Duration, att ...model.MessageAttachment) model.Message {
		return model.Message{
			ID:          ident.FromName("seed/message/" + slug),
			ChannelID:   channel,
			SenderID:    Team[sender].ID,
			Content:     content,
			Attachments: att,
			Timestamp:   now.Add(-ago),
		}
	}
	return []model.Message{
		m("welcome", ChannelGeneralID, 0, "Welcome to the team space!", 3*day),
		m("standup", ChannelEngineeringID, 1, "CI is green again after MDX-1.", 26*time.Hour),
		m("review", ChannelEngineeringID, 3, "Could someone review the autosave fix?", 2*time.Hour,
			model.MessageAttachment{Type: model.AttachmentTask, Name: "Autosave drops last keystroke", RefID: "MDX-3"}),
		m("arch", ChannelEngineeringID, 2, "Updated the architecture doc with the store split.", 90*time.Minute,
			model.MessageAttachment{Type: model.AttachmentDocument, Name: "Architecture Overview", RefID: DocArchitectureID}),
		m("plan", ChannelLeadsID, 0, "Let's move MOB-3 into this sprint.", 30*time.Minute),
	}
}
