package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"plant-care-service/internal/domain/plants"
)

type ProfilesRepo struct {
	mu   sync.RWMutex
	byID map[string]plants.CareProfile
}

func NewProfilesRepo() *ProfilesRepo {
	return &ProfilesRepo{
		byID: make(map[string]plants.CareProfile),
	}
}

func (r *ProfilesRepo) Create(ctx context.Context, p plants.CareProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("profile id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("profile already exists")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *ProfilesRepo) GetByID(ctx context.Context, id string) (plants.CareProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return plants.CareProfile{}, ErrNotFound
	}
	return p, nil
}

// Seed carga fichas de especie al arrancar en modo memoria; ignora
// las que fallan por id duplicado.
func (r *ProfilesRepo) Seed(profiles []plants.CareProfile) {
	for _, p := range profiles {
		_ = r.Create(context.Background(), p)
	}
}
