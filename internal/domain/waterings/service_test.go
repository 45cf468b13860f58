package waterings

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"
)

type testRepo struct {
	byPlant map[string][]WateringEvent
}

func newTestRepo() *testRepo {
	return &testRepo{byPlant: make(map[string][]WateringEvent)}
}

func (r *testRepo) Create(ctx context.Context, e WateringEvent) error {
	r.byPlant[e.PlantID] = append(r.byPlant[e.PlantID], e)
	return nil
}

func (r *testRepo) ListRecent(ctx context.Context, plantID string, limit int) ([]WateringEvent, error) {
	events := append([]WateringEvent(nil), r.byPlant[plantID]...)
	sort.Slice(events, func(i, j int) bool { return events[i].WateredAt.After(events[j].WateredAt) })
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func TestRecord_Validaciones(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newTestRepo())

	if _, err := svc.Record(ctx, "  ", RecordInput{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty plant id, got %v", err)
	}

	negative := -5
	if _, err := svc.Record(ctx, "plant-1", RecordInput{AmountML: &negative}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative amount, got %v", err)
	}

	if _, err := svc.Record(ctx, "plant-1", RecordInput{WaterType: "lava"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown water type, got %v", err)
	}

	amount := 250
	e, err := svc.Record(ctx, "plant-1", RecordInput{AmountML: &amount, WaterType: "tap"})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if e.WateredAt.IsZero() {
		t.Fatalf("expected watered_at defaulted to now")
	}
	if e.WaterType != WaterTap || *e.AmountML != 250 {
		t.Fatalf("unexpected event: %+v", e)
	}
}

func TestLast_MasRecientePrimero(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newTestRepo())

	if _, found, err := svc.Last(ctx, "plant-1"); err != nil || found {
		t.Fatalf("expected no watering yet, found=%v err=%v", found, err)
	}

	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	for _, daysAgo := range []int{5, 1, 3} {
		if _, err := svc.Record(ctx, "plant-1", RecordInput{WateredAt: now.AddDate(0, 0, -daysAgo)}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	last, found, err := svc.Last(ctx, "plant-1")
	if err != nil || !found {
		t.Fatalf("last: found=%v err=%v", found, err)
	}
	if !last.WateredAt.Equal(now.AddDate(0, 0, -1)) {
		t.Fatalf("expected most recent watering, got %v", last.WateredAt)
	}

	recent, err := svc.ListRecent(ctx, "plant-1", 2)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent) != 2 || recent[0].WateredAt.Before(recent[1].WateredAt) {
		t.Fatalf("expected 2 events newest first, got %+v", recent)
	}
}
