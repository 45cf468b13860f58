package plants

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
)

// testRepo y testProfiles imitan los adapters en memoria sin salir
// del paquete.
type testRepo struct {
	mu   sync.RWMutex
	byID map[string]PlantInstance
}

func newTestRepo() *testRepo {
	return &testRepo{byID: make(map[string]PlantInstance)}
}

func (r *testRepo) Create(ctx context.Context, p PlantInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Update(ctx context.Context, p PlantInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.ID]; !ok {
		return ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (PlantInstance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return PlantInstance{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) ListByUser(ctx context.Context, userID string) ([]PlantInstance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]PlantInstance, 0)
	for _, p := range r.byID {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *testRepo) ListActive(ctx context.Context) ([]PlantInstance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]PlantInstance, 0)
	for _, p := range r.byID {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

type testProfiles struct {
	byID map[string]CareProfile
}

func newTestProfiles() *testProfiles {
	tp := &testProfiles{byID: make(map[string]CareProfile)}
	for _, cp := range DefaultCatalog() {
		tp.byID[cp.ID] = cp
	}
	return tp
}

func (r *testProfiles) Create(ctx context.Context, cp CareProfile) error {
	r.byID[cp.ID] = cp
	return nil
}

func (r *testProfiles) GetByID(ctx context.Context, id string) (CareProfile, error) {
	cp, ok := r.byID[id]
	if !ok {
		return CareProfile{}, ErrNotFound
	}
	return cp, nil
}

func newTestService() *Service {
	return NewService(newTestRepo(), newTestProfiles())
}

func TestCreate_Validaciones(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	if _, err := svc.Create(ctx, "user-1", CreateInput{Name: "   "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty name, got %v", err)
	}

	hot := 60.0
	if _, err := svc.Create(ctx, "user-1", CreateInput{Name: "Monstera", AmbientTemperature: &hot}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for 60°C, got %v", err)
	}

	if _, err := svc.Create(ctx, "user-1", CreateInput{Name: "Monstera", ProfileID: "no-such-profile"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown profile, got %v", err)
	}

	p, err := svc.Create(ctx, "user-1", CreateInput{Name: "  Monstera  ", ProfileID: "monstera-deliciosa"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Name != "Monstera" {
		t.Fatalf("expected trimmed name, got %q", p.Name)
	}
	if !p.Active || p.HealthStatus != HealthHealthy {
		t.Fatalf("new plant should be active and healthy: %+v", p)
	}
}

func TestGetOwned(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	p, err := svc.Create(ctx, "user-1", CreateInput{Name: "Monstera"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.GetOwned(ctx, p.ID, "user-2"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.GetOwned(ctx, "missing", "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.GetOwned(ctx, p.ID, "user-1"); err != nil {
		t.Fatalf("owner lookup: %v", err)
	}
}

func TestUpdateConditions_ParcheParcial(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	p, err := svc.Create(ctx, "user-1", CreateInput{Name: "Monstera", Location: "salon"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	pot := "grand pot"
	sick := "sick"
	got, err := svc.UpdateConditions(ctx, p.ID, "user-1", UpdateConditionsInput{
		PotSize:      &pot,
		HealthStatus: &sick,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.PotSize != "grand pot" || got.HealthStatus != HealthSick {
		t.Fatalf("patch not applied: %+v", got)
	}
	// Lo no tocado se conserva.
	if got.Location != "salon" {
		t.Fatalf("untouched field changed: %q", got.Location)
	}

	bad := "zombie"
	if _, err := svc.UpdateConditions(ctx, p.ID, "user-1", UpdateConditionsInput{HealthStatus: &bad}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad health status, got %v", err)
	}

	if _, err := svc.UpdateConditions(ctx, p.ID, "user-2", UpdateConditionsInput{PotSize: &pot}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestListActive_ExcluyeDesactivadas(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	p1, _ := svc.Create(ctx, "user-1", CreateInput{Name: "Monstera"})
	p2, _ := svc.Create(ctx, "user-2", CreateInput{Name: "Basilic"})

	inactive := false
	if _, err := svc.UpdateConditions(ctx, p2.ID, "user-2", UpdateConditionsInput{Active: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	active, err := svc.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ID != p1.ID {
		t.Fatalf("expected only the active plant, got %+v", active)
	}
}

func TestProfile_Fallback(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	con, _ := svc.Create(ctx, "user-1", CreateInput{Name: "Monstera", ProfileID: "monstera-deliciosa"})
	sin, _ := svc.Create(ctx, "user-1", CreateInput{Name: "Mystère"})

	cp, ok := svc.Profile(ctx, con)
	if !ok || cp.ID != "monstera-deliciosa" {
		t.Fatalf("expected catalog profile, got %+v ok=%v", cp, ok)
	}
	if _, ok := svc.Profile(ctx, sin); ok {
		t.Fatalf("expected no profile for uncataloged plant")
	}
}
