package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"plant-care-service/internal/domain/plants"
)

var (
	ErrNotFound = errors.New("not found")
)

type plantsRepo struct {
	mu   sync.RWMutex
	byID map[string]plants.PlantInstance
}

func NewPlantsRepo() plants.Repository {
	return &plantsRepo{
		byID: make(map[string]plants.PlantInstance),
	}
}

func (r *plantsRepo) Create(ctx context.Context, p plants.PlantInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("plant id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("plant already exists")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *plantsRepo) Update(ctx context.Context, p plants.PlantInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("plant id required")
	}
	if _, exists := r.byID[p.ID]; !exists {
		return ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *plantsRepo) GetByID(ctx context.Context, id string) (plants.PlantInstance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return plants.PlantInstance{}, ErrNotFound
	}
	return p, nil
}

func (r *plantsRepo) ListByUser(ctx context.Context, userID string) ([]plants.PlantInstance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]plants.PlantInstance, 0)
	for _, p := range r.byID {
		if p.UserID == userID {
			out = append(out, p)
		}
	}

	// Orden estable por created_at asc (solo para consistencia en dev)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *plantsRepo) ListActive(ctx context.Context) ([]plants.PlantInstance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]plants.PlantInstance, 0)
	for _, p := range r.byID {
		if p.Active {
			out = append(out, p)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}
