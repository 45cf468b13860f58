package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"plant-care-service/internal/domain/notifications"
)

type preferencesRepo struct {
	mu sync.RWMutex
	// clave: user_id + "|" + tipo
	byKey map[string]notifications.Preference
}

func NewPreferencesRepo() notifications.PreferenceRepository {
	return &preferencesRepo{
		byKey: make(map[string]notifications.Preference),
	}
}

func (r *preferencesRepo) ListByUser(ctx context.Context, userID string) ([]notifications.Preference, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]notifications.Preference, 0)
	for _, p := range r.byKey {
		if p.UserID == userID {
			out = append(out, p)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Type < out[j].Type
	})

	return out, nil
}

func (r *preferencesRepo) Upsert(ctx context.Context, p notifications.Preference) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.UserID) == "" || strings.TrimSpace(string(p.Type)) == "" {
		return errors.New("preference user id and type required")
	}
	r.byKey[p.UserID+"|"+string(p.Type)] = p
	return nil
}
