package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"plant-care-service/internal/domain/waterings"
)

type wateringsRepo struct {
	mu      sync.RWMutex
	byPlant map[string][]waterings.WateringEvent
}

func NewWateringsRepo() waterings.Repository {
	return &wateringsRepo{
		byPlant: make(map[string][]waterings.WateringEvent),
	}
}

func (r *wateringsRepo) Create(ctx context.Context, e waterings.WateringEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(e.ID) == "" {
		return errors.New("watering id required")
	}
	if strings.TrimSpace(e.PlantID) == "" {
		return errors.New("plant id required")
	}
	r.byPlant[e.PlantID] = append(r.byPlant[e.PlantID], e)
	return nil
}

func (r *wateringsRepo) ListRecent(ctx context.Context, plantID string, limit int) ([]waterings.WateringEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := r.byPlant[plantID]
	out := make([]waterings.WateringEvent, len(events))
	copy(out, events)

	// Más recientes primero.
	sort.Slice(out, func(i, j int) bool {
		return out[i].WateredAt.After(out[j].WateredAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
