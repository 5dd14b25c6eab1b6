// Package chat keeps chat channels, their messages and the chat user list,
// and persists all three as one snapshot.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nhle/teamspace/internal/crossref"
	"github.com/nhle/teamspace/internal/ident"
	"github.com/nhle/teamspace/internal/model"
	"github.com/nhle/teamspace/internal/seed"
	"github.com/nhle/teamspace/internal/store"
)

var (
	// ErrNotFound is returned when a channel or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalid is returned when input fails validation.
	ErrInvalid = errors.New("invalid input")

	// ErrNotMember is returned when posting to a private or DM channel
	// the sender does not belong to.
	ErrNotMember = errors.New("not a channel member")

	// ErrForbidden is returned when one user tries to change another
	// user's status.
	ErrForbidden = errors.New("forbidden")
)

// state is the persisted shape of the chat blob.
type state struct {
	Channels []model.Channel  `json:"channels"`
	Messages []model.Message  `json:"messages"`
	Users    []model.ChatUser `json:"users"`
}

// Service manages chat state. It is safe for concurrent use.
type Service struct {
	backend store.Backend
	logger  *slog.Logger
	now     func() time.Time

	mu    sync.RWMutex
	state state
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates an empty service. Call Load to rehydrate it.
func New(backend store.Backend, opts ...Option) *Service {
	s := &Service{
		backend: backend,
		logger:  slog.Default(),
		now:     time.Now,
		state: state{
			Channels: []model.Channel{},
			Messages: []model.Message{},
			Users:    []model.ChatUser{},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the chat snapshot, falling back to the seed data when it has
// never been saved.
func (s *Service) Load(ctx context.Context) error {
	st, ok, err := store.LoadJSON[state](ctx, s.backend, store.KeyChat)
	if err != nil {
		return fmt.Errorf("loading chat: %w", err)
	}
	if !ok {
		now := s.now()
		st = state{
			Channels: seed.Channels(now),
			Messages: seed.Messages(now),
			Users:    seed.ChatUsers(),
		}
		s.logger.Debug("seeded collection", slog.String("key", store.KeyChat))
	}
	if st.Channels == nil {
		st.Channels = []model.Channel{}
	}
	if st.Messages == nil {
		st.Messages = []model.Message{}
	}
	if st.Users == nil {
		st.Users = []model.ChatUser{}
	}

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	return nil
}

// Persist writes the whole chat snapshot.
func (s *Service) Persist(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return store.SaveJSON(ctx, s.backend, store.KeyChat, s.state)
}

// Channels returns every channel.
func (s *Service) Channels() []model.Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Channel, len(s.state.Channels))
	for i, c := range s.state.Channels {
		out[i] = c.Clone()
	}
	return out
}

// ChannelsFor returns the channels userID can see: every public channel
// plus the private and DM channels they belong to.
func (s *Service) ChannelsFor(userID string) []model.Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Channel{}
	for _, c := range s.state.Channels {
		if c.Type == model.ChannelPublic || c.HasMember(userID) {
			out = append(out, c.Clone())
		}
	}
	return out
}

// CreateChannel adds a public or private channel. DM channels are created
// through FindOrCreateDirectChannel.
func (s *Service) CreateChannel(ctx context.Context, in model.ChannelInput) (model.Channel, error) {
	var created model.Channel
	err := s.mutate(ctx, func() error {
		name := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(in.Name), "#"))
		if name == "" {
			return fmt.Errorf("channel name must not be empty: %w", ErrInvalid)
		}
		typ := in.Type
		if typ == "" {
			typ = model.ChannelPublic
		}
		if !typ.Valid() || typ == model.ChannelDM {
			return fmt.Errorf("channel type %q: %w", typ, ErrInvalid)
		}
		for _, c := range s.state.Channels {
			if c.Type != model.ChannelDM && strings.EqualFold(c.Name, name) {
				return fmt.Errorf("channel %s already exists: %w", name, ErrInvalid)
			}
		}
		members := []string{}
		for _, m := range in.Members {
			if !slices.Contains(members, m) {
				members = append(members, m)
			}
		}
		c := model.Channel{
			ID:          ident.New(),
			Name:        name,
			Type:        typ,
			Members:     members,
			Description: in.Description,
			CreatedAt:   s.now(),
		}
		s.state.Channels = append(s.state.Channels, c)
		created = c.Clone()
		return nil
	})
	if err != nil && created.ID == "" {
		return model.Channel{}, err
	}
	return created, err
}

// JoinChannel adds userID to a public or private channel. Joining twice is
// a no-op.
func (s *Service) JoinChannel(ctx context.Context, channelID, userID string) error {
	return s.mutate(ctx, func() error {
		c, err := s.channelRef(channelID)
		if err != nil {
			return err
		}
		if c.Type == model.ChannelDM {
			return fmt.Errorf("cannot join direct channel %s: %w", channelID, ErrForbidden)
		}
		if !c.HasMember(userID) {
			c.Members = append(c.Members, userID)
		}
		return nil
	})
}

// LeaveChannel removes userID from a channel.
func (s *Service) LeaveChannel(ctx context.Context, channelID, userID string) error {
	return s.mutate(ctx, func() error {
		c, err := s.channelRef(channelID)
		if err != nil {
			return err
		}
		if !c.HasMember(userID) {
			return fmt.Errorf("user %s in channel %s: %w", userID, channelID, ErrNotMember)
		}
		c.Members = slices.DeleteFunc(slices.Clone(c.Members), func(m string) bool { return m == userID })
		return nil
	})
}

// SendMessage posts a message. A message needs content or at least one
// attachment. Private and DM channels only accept messages from members.
func (s *Service) SendMessage(ctx context.Context, in model.MessageInput) (model.Message, error) {
	var sent model.Message
	err := s.mutate(ctx, func() error {
		c, err := s.channelRef(in.ChannelID)
		if err != nil {
			return err
		}
		if in.SenderID == "" {
			return fmt.Errorf("message without sender: %w", ErrInvalid)
		}
		content := strings.TrimSpace(in.Content)
		if content == "" && len(in.Attachments) == 0 {
			return fmt.Errorf("message must have content or an attachment: %w", ErrInvalid)
		}
		if c.Type != model.ChannelPublic && !c.HasMember(in.SenderID) {
			return fmt.Errorf("user %s in channel %s: %w", in.SenderID, c.ID, ErrNotMember)
		}
		for _, a := range in.Attachments {
			if err := validateAttachment(a); err != nil {
				return err
			}
		}

		m := model.Message{
			ID:        ident.New(),
			ChannelID: c.ID,
			SenderID:  in.SenderID,
			Content:   content,
			Timestamp: s.now(),
		}
		if len(in.Attachments) > 0 {
			m.Attachments = append([]model.MessageAttachment(nil), in.Attachments...)
		}
		s.state.Messages = append(s.state.Messages, m)
		sent = m.Clone()
		return nil
	})
	if err != nil && sent.ID == "" {
		return model.Message{}, err
	}
	return sent, err
}

// Messages returns the messages of one channel in chronological order.
func (s *Service) Messages(channelID string) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.findChannel(channelID) < 0 {
		return nil, fmt.Errorf("channel %s: %w", channelID, ErrNotFound)
	}
	out := []model.Message{}
	for _, m := range s.state.Messages {
		if m.ChannelID == channelID {
			out = append(out, m.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// FindOrCreateDirectChannel returns the DM channel between a and b,
// creating it on first use. The argument order does not matter. When a
// equals b the channel has a single member.
func (s *Service) FindOrCreateDirectChannel(ctx context.Context, a, b string) (model.Channel, error) {
	if a == "" || b == "" {
		return model.Channel{}, fmt.Errorf("direct channel needs two users: %w", ErrInvalid)
	}
	members := directMembers(a, b)

	s.mu.RLock()
	for _, c := range s.state.Channels {
		if c.Type == model.ChannelDM && sameMembers(c.Members, members) {
			s.mu.RUnlock()
			return c.Clone(), nil
		}
	}
	s.mu.RUnlock()

	var found model.Channel
	err := s.mutate(ctx, func() error {
		// Another caller may have created it between the locks.
		for _, c := range s.state.Channels {
			if c.Type == model.ChannelDM && sameMembers(c.Members, members) {
				found = c.Clone()
				return errExists
			}
		}
		c := model.Channel{
			ID:        ident.New(),
			Name:      strings.Join(members, ":"),
			Type:      model.ChannelDM,
			Members:   members,
			CreatedAt: s.now(),
		}
		s.state.Channels = append(s.state.Channels, c)
		found = c.Clone()
		return nil
	})
	if errors.Is(err, errExists) {
		return found, nil
	}
	if err != nil && found.ID == "" {
		return model.Channel{}, err
	}
	return found, err
}

// errExists aborts a mutation without persisting.
var errExists = errors.New("exists")

// Users returns every chat user.
func (s *Service) Users() []model.ChatUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.ChatUser{}, s.state.Users...)
}

// User returns one chat user.
func (s *Service) User(id string) (model.ChatUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.findUser(id); i >= 0 {
		return s.state.Users[i], nil
	}
	return model.ChatUser{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
}

// UpsertUser adds a chat user or refreshes the name and avatar of an
// existing one. The presence of an existing user is kept.
func (s *Service) UpsertUser(ctx context.Context, u model.ChatUser) (model.ChatUser, error) {
	var out model.ChatUser
	err := s.mutate(ctx, func() error {
		if u.ID == "" || strings.TrimSpace(u.Name) == "" {
			return fmt.Errorf("chat user needs an id and a name: %w", ErrInvalid)
		}
		if i := s.findUser(u.ID); i >= 0 {
			s.state.Users[i].Name = u.Name
			s.state.Users[i].Avatar = u.Avatar
			out = s.state.Users[i]
			return nil
		}
		if u.Status.Type == "" {
			u.Status.Type = model.PresenceOnline
		}
		s.state.Users = append(s.state.Users, u)
		out = u
		return nil
	})
	if err != nil && out.ID == "" {
		return model.ChatUser{}, err
	}
	return out, err
}

// SetStatus changes a user's presence. Only the user themself may do so.
func (s *Service) SetStatus(ctx context.Context, actorID, userID string, p model.Presence) (model.ChatUser, error) {
	var out model.ChatUser
	err := s.mutate(ctx, func() error {
		if actorID != userID {
			return fmt.Errorf("user %s setting status of %s: %w", actorID, userID, ErrForbidden)
		}
		if !p.Type.Valid() {
			return fmt.Errorf("presence %q: %w", p.Type, ErrInvalid)
		}
		i := s.findUser(userID)
		if i < 0 {
			return fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		s.state.Users[i].Status = p
		out = s.state.Users[i]
		return nil
	})
	if err != nil && out.ID == "" {
		return model.ChatUser{}, err
	}
	return out, err
}

// TaskKeys returns the task keys a message refers to: task attachments
// first, then keys mentioned in the text, without duplicates.
func TaskKeys(m model.Message) []string {
	var texts []string
	for _, a := range m.Attachments {
		if a.Type == model.AttachmentTask && a.RefID != "" {
			texts = append(texts, a.RefID)
		}
	}
	texts = append(texts, m.Content)
	return crossref.MatchTaskKeys(nil, texts...)
}

// mutate runs fn under the write lock and persists the chat blob when it
// succeeds. A failed write returns *store.SaveError; the change stays.
func (s *Service) mutate(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(); err != nil {
		return err
	}
	if err := store.SaveJSON(ctx, s.backend, store.KeyChat, s.state); err != nil {
		s.logger.Warn("persisting collection failed",
			slog.String("key", store.KeyChat),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

func (s *Service) channelRef(id string) (*model.Channel, error) {
	i := s.findChannel(id)
	if i < 0 {
		return nil, fmt.Errorf("channel %s: %w", id, ErrNotFound)
	}
	return &s.state.Channels[i], nil
}

func (s *Service) findChannel(id string) int {
	for i := range s.state.Channels {
		if s.state.Channels[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) findUser(id string) int {
	for i := range s.state.Users {
		if s.state.Users[i].ID == id {
			return i
		}
	}
	return -1
}

func validateAttachment(a model.MessageAttachment) error {
	switch a.Type {
	case model.AttachmentImage, model.AttachmentFile:
		if a.URL == "" {
			return fmt.Errorf("%s attachment without url: %w", a.Type, ErrInvalid)
		}
	case model.AttachmentDocument:
		if a.RefID == "" {
			return fmt.Errorf("document attachment without id: %w", ErrInvalid)
		}
	case model.AttachmentTask:
		if _, _, err := crossref.ParseTaskKey(a.RefID); err != nil {
			return fmt.Errorf("task attachment %q: %w", a.RefID, ErrInvalid)
		}
	default:
		return fmt.Errorf("attachment type %q: %w", a.Type, ErrInvalid)
	}
	return nil
}

// directMembers returns the sorted member set of a DM.
func directMembers(a, b string) []string {
	if a == b {
		return []string{a}
	}
	if b < a {
		a, b = b, a
	}
	return []string{a, b}
}

func sameMembers(have, want []string) bool {
	if len(have) != len(want) {
		return false
	}
	sorted := slices.Clone(have)
	slices.Sort(sorted)
	return slices.Equal(sorted, want)
}
