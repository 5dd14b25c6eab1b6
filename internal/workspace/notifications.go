package workspace

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nhle/teamspace/internal/ident"
	"github.com/nhle/teamspace/internal/model"
	"github.com/nhle/teamspace/internal/store"
)

// Notifications returns every notification, newest first.
func (w *Workspace) Notifications() []model.Notification {
	w.mu.RLock()
	out := append([]model.Notification{}, w.notifications...)
	w.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// UnreadCount returns the number of notifications not yet read.
func (w *Workspace) UnreadCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	n := 0
	for _, nt := range w.notifications {
		if !nt.Read {
			n++
		}
	}
	return n
}

// CreateNotification appends an unread notification.
func (w *Workspace) CreateNotification(ctx context.Context, in model.NotificationInput) (model.Notification, error) {
	var created model.Notification
	err := w.mutate(ctx, store.KeyNotifications, func() error {
		title := strings.TrimSpace(in.Title)
		if title == "" {
			return fmt.Errorf("notification title must not be empty: %w", ErrInvalid)
		}
		typ := in.Type
		if typ == "" {
			typ = model.NotificationInfo
		}
		created = model.Notification{
			ID:        ident.New(),
			Title:     title,
			Message:   in.Message,
			Type:      typ,
			CreatedAt: w.now(),
			Link:      in.Link,
			Category:  in.Category,
		}
		w.notifications = append(w.notifications, created)
		return nil
	})
	if err != nil && created.ID == "" {
		return model.Notification{}, err
	}
	return created, err
}

// MarkNotificationRead flags one notification as read.
func (w *Workspace) MarkNotificationRead(ctx context.Context, id string) error {
	return w.mutate(ctx, store.KeyNotifications, func() error {
		for i := range w.notifications {
			if w.notifications[i].ID == id {
				w.notifications[i].Read = true
				return nil
			}
		}
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	})
}

// MarkAllNotificationsRead flags every notification as read.
func (w *Workspace) MarkAllNotificationsRead(ctx context.Context) error {
	return w.mutate(ctx, store.KeyNotifications, func() error {
		for i := range w.notifications {
			w.notifications[i].Read = true
		}
		return nil
	})
}

// DeleteNotification removes exactly one notification.
func (w *Workspace) DeleteNotification(ctx context.Context, id string) error {
	return w.mutate(ctx, store.KeyNotifications, func() error {
		for i := range w.notifications {
			if w.notifications[i].ID == id {
				w.notifications = append(w.notifications[:i:i], w.notifications[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	})
}
