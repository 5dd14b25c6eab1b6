// Package workspace holds the in-memory project, notification, document and
// folder collections and mirrors each one into a store.Backend after every
// change.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nhle/teamspace/internal/docs"
	"github.com/nhle/teamspace/internal/ident"
	"github.com/nhle/teamspace/internal/model"
	"github.com/nhle/teamspace/internal/seed"
	"github.com/nhle/teamspace/internal/store"
)

// Change tells subscribers which collection a mutation replaced.
type Change struct {
	Collection string
}

// Snapshot is a deep copy of every collection at one point in time.
type Snapshot struct {
	Projects      []model.Project      `json:"projects"`
	Notifications []model.Notification `json:"notifications"`
	Documents     []model.Document     `json:"documents"`
	Folders       []model.Folder       `json:"folders"`
}

// Workspace is the single store object for one application session. It is
// safe for concurrent use; every read returns a copy.
type Workspace struct {
	backend   store.Backend
	logger    *slog.Logger
	now       func() time.Time
	converter *docs.Converter

	mu            sync.RWMutex
	projects      []model.Project
	notifications []model.Notification
	documents     []model.Document
	folders       []model.Folder

	subMu   sync.Mutex
	subs    map[int]func(Change)
	nextSub int
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(w *Workspace) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(w *Workspace) { w.now = now }
}

// New creates an empty workspace persisting to backend. Call Load to
// rehydrate it.
func New(backend store.Backend, opts ...Option) *Workspace {
	w := &Workspace{
		backend:       backend,
		logger:        slog.Default(),
		now:           time.Now,
		converter:     docs.NewConverter(),
		projects:      []model.Project{},
		notifications: []model.Notification{},
		documents:     []model.Document{},
		folders:       []model.Folder{},
		subs:          make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Load reads every collection from the backend. Collections that have
// never been saved are replaced with the seed dataset.
func (w *Workspace) Load(ctx context.Context) error {
	now := w.now()

	projects, ok, err := store.LoadJSON[[]model.Project](ctx, w.backend, store.KeyProjects)
	if err != nil {
		return fmt.Errorf("loading projects: %w", err)
	}
	if !ok {
		projects = seed.Projects(now)
		w.logger.Debug("seeded collection", slog.String("key", store.KeyProjects))
	}

	notifications, ok, err := store.LoadJSON[[]model.Notification](ctx, w.backend, store.KeyNotifications)
	if err != nil {
		return fmt.Errorf("loading notifications: %w", err)
	}
	if !ok {
		notifications = seed.Notifications(now)
		w.logger.Debug("seeded collection", slog.String("key", store.KeyNotifications))
	}

	documents, ok, err := store.LoadJSON[[]model.Document](ctx, w.backend, store.KeyDocuments)
	if err != nil {
		return fmt.Errorf("loading documents: %w", err)
	}
	if !ok {
		documents = seed.Documents(now)
		w.logger.Debug("seeded collection", slog.String("key", store.KeyDocuments))
	}

	folders, ok, err := store.LoadJSON[[]model.Folder](ctx, w.backend, store.KeyFolders)
	if err != nil {
		return fmt.Errorf("loading folders: %w", err)
	}
	if !ok {
		folders = seed.Folders(now)
		w.logger.Debug("seeded collection", slog.String("key", store.KeyFolders))
	}

	for i := range projects {
		repairSequence(&projects[i])
	}

	w.mu.Lock()
	w.projects = nonNil(projects)
	w.notifications = nonNil(notifications)
	w.documents = nonNil(documents)
	w.folders = nonNil(folders)
	w.mu.Unlock()

	for _, key := range []string{store.KeyProjects, store.KeyNotifications, store.KeyDocuments, store.KeyFolders} {
		w.notify(Change{Collection: key})
	}
	return nil
}

// Persist writes every collection, e.g. to recover after a failed write.
func (w *Workspace) Persist(ctx context.Context) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, key := range []string{store.KeyProjects, store.KeyNotifications, store.KeyDocuments, store.KeyFolders} {
		if err := w.persistLocked(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns a deep copy of all collections.
func (w *Workspace) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return Snapshot{
		Projects:      cloneProjects(w.projects),
		Notifications: append([]model.Notification{}, w.notifications...),
		Documents:     append([]model.Document{}, w.documents...),
		Folders:       cloneFolders(w.folders),
	}
}

// Subscribe registers fn to be called after every successful mutation and
// returns a function that removes it. fn runs on the mutating goroutine
// after the lock is released, so it may read from the workspace.
func (w *Workspace) Subscribe(fn func(Change)) (unsubscribe func()) {
	w.subMu.Lock()
	defer w.subMu.Unlock()

	id := w.nextSub
	w.nextSub++
	w.subs[id] = fn

	return func() {
		w.subMu.Lock()
		defer w.subMu.Unlock()
		delete(w.subs, id)
	}
}

func (w *Workspace) notify(c Change) {
	w.subMu.Lock()
	fns := make([]func(Change), 0, len(w.subs))
	for _, fn := range w.subs {
		fns = append(fns, fn)
	}
	w.subMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}

// mutate runs fn under the write lock and, if it succeeds, persists the
// collection named by key. A failed write is returned as *store.SaveError
// but the in-memory change is kept.
func (w *Workspace) mutate(ctx context.Context, key string, fn func() error) error {
	w.mu.Lock()
	if err := fn(); err != nil {
		w.mu.Unlock()
		if errors.Is(err, errUnchanged) {
			return nil
		}
		return err
	}
	saveErr := w.persistLocked(ctx, key)
	w.mu.Unlock()

	w.notify(Change{Collection: key})
	return saveErr
}

func (w *Workspace) persistLocked(ctx context.Context, key string) error {
	var v any
	switch key {
	case store.KeyProjects:
		v = w.projects
	case store.KeyNotifications:
		v = w.notifications
	case store.KeyDocuments:
		v = w.documents
	case store.KeyFolders:
		v = w.folders
	default:
		return fmt.Errorf("unknown collection %q", key)
	}

	if err := store.SaveJSON(ctx, w.backend, key, v); err != nil {
		w.logger.Warn("persisting collection failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return err
	}
	w.logger.Debug("persisted collection", slog.String("key", key))
	return nil
}

// repairSequence makes sure the task counter is past every existing id.
func repairSequence(p *model.Project) {
	var ids []string
	for _, s := range p.Sprints {
		for _, t := range s.Tasks {
			ids = append(ids, t.ID)
		}
	}
	if floor := ident.SeqFloor(ids); p.NextTaskSeq < floor {
		p.NextTaskSeq = floor
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func cloneProjects(in []model.Project) []model.Project {
	out := make([]model.Project, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}

func cloneFolders(in []model.Folder) []model.Folder {
	out := make([]model.Folder, len(in))
	for i, f := range in {
		out[i] = f.Clone()
	}
	return out
}
