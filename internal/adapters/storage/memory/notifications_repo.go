package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"plant-care-service/internal/domain/notifications"
)

type notificationsRepo struct {
	mu   sync.RWMutex
	byID map[string]notifications.Notification
}

func NewNotificationsRepo() notifications.Repository {
	return &notificationsRepo{
		byID: make(map[string]notifications.Notification),
	}
}

func (r *notificationsRepo) Create(ctx context.Context, n notifications.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(n.ID) == "" {
		return errors.New("notification id required")
	}
	if _, exists := r.byID[n.ID]; exists {
		return errors.New("notification already exists")
	}
	r.byID[n.ID] = n
	return nil
}

func (r *notificationsRepo) GetByID(ctx context.Context, id string) (notifications.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.byID[id]
	if !ok {
		return notifications.Notification{}, ErrNotFound
	}
	return n, nil
}

func (r *notificationsRepo) Update(ctx context.Context, n notifications.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(n.ID) == "" {
		return errors.New("notification id required")
	}
	if _, exists := r.byID[n.ID]; !exists {
		return ErrNotFound
	}
	r.byID[n.ID] = n
	return nil
}

func (r *notificationsRepo) ListByUser(ctx context.Context, userID string, filter notifications.ListFilter) ([]notifications.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]notifications.Notification, 0)
	for _, n := range r.byID {
		if n.UserID != userID {
			continue
		}
		if filter.Status != "" && n.Status != filter.Status {
			continue
		}
		if filter.Type != "" && n.Type != filter.Type {
			continue
		}
		if !filter.Since.IsZero() && n.CreatedAt.Before(filter.Since) {
			continue
		}
		out = append(out, n)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ScheduledFor.After(out[j].ScheduledFor)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []notifications.Notification{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *notificationsRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]notifications.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]notifications.Notification, 0)
	for _, n := range r.byID {
		if n.Status == notifications.StatusScheduled && !n.ScheduledFor.After(now) {
			out = append(out, n)
		}
	}

	// Más antiguas primero: lo más atrasado sale antes.
	sort.Slice(out, func(i, j int) bool {
		return out[i].ScheduledFor.Before(out[j].ScheduledFor)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *notificationsRepo) ExistsPendingWatering(ctx context.Context, userID, plantID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, n := range r.byID {
		if n.UserID != userID || n.Type != notifications.TypeWatering {
			continue
		}
		if n.Status != notifications.StatusScheduled && n.Status != notifications.StatusSent {
			continue
		}
		if n.Metadata[notifications.MetadataKeyPlantID] == plantID {
			return true, nil
		}
	}
	return false, nil
}

func (r *notificationsRepo) CountSentSince(ctx context.Context, userID string, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, n := range r.byID {
		if n.UserID == userID && n.SentAt != nil && !n.SentAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *notificationsRepo) CountSentByTypeSince(ctx context.Context, userID string, t notifications.Type, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, n := range r.byID {
		if n.UserID == userID && n.Type == t && n.SentAt != nil && !n.SentAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *notificationsRepo) DeleteTerminalOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	purgeable := make(map[notifications.Status]bool, len(notifications.TerminalStatuses))
	for _, s := range notifications.TerminalStatuses {
		purgeable[s] = true
	}

	deleted := 0
	for id, n := range r.byID {
		if purgeable[n.Status] && n.CreatedAt.Before(cutoff) {
			delete(r.byID, id)
			deleted++
		}
	}
	return deleted, nil
}
