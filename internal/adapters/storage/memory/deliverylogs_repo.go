package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"plant-care-service/internal/domain/notifications"
)

type deliveryLogsRepo struct {
	mu             sync.RWMutex
	byNotification map[string][]notifications.DeliveryLogEntry
}

func NewDeliveryLogsRepo() notifications.DeliveryLogRepository {
	return &deliveryLogsRepo{
		byNotification: make(map[string][]notifications.DeliveryLogEntry),
	}
}

func (r *deliveryLogsRepo) Create(ctx context.Context, e notifications.DeliveryLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(e.ID) == "" {
		return errors.New("delivery log id required")
	}
	if strings.TrimSpace(e.NotificationID) == "" {
		return errors.New("notification id required")
	}
	r.byNotification[e.NotificationID] = append(r.byNotification[e.NotificationID], e)
	return nil
}

func (r *deliveryLogsRepo) ListByNotification(ctx context.Context, notificationID string) ([]notifications.DeliveryLogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.byNotification[notificationID]
	out := make([]notifications.DeliveryLogEntry, len(entries))
	copy(out, entries)

	sort.Slice(out, func(i, j int) bool {
		return out[i].AttemptedAt.Before(out[j].AttemptedAt)
	})

	return out, nil
}
