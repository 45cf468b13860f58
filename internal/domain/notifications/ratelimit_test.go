package notifications

import (
	"context"
	"errors"
	"testing"
	"time"
)

var guardNow = time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)

// countsRepo implementa solo los conteos que mira el SpamGuard.
type countsRepo struct {
	Repository

	hourly int
	daily  int
	byType map[Type]int
	err    error
}

func (r *countsRepo) CountSentSince(ctx context.Context, userID string, since time.Time) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	if guardNow.Sub(since) <= time.Hour+time.Minute {
		return r.hourly, nil
	}
	return r.daily, nil
}

func (r *countsRepo) CountSentByTypeSince(ctx context.Context, userID string, t Type, since time.Time) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	return r.byType[t], nil
}

func newGuard(repo Repository) *SpamGuard {
	g := NewSpamGuard(repo, nil)
	g.now = func() time.Time { return guardNow }
	return g
}

func TestSpamGuard_PermiteBajoLosLimites(t *testing.T) {
	g := newGuard(&countsRepo{hourly: 2, daily: 10, byType: map[Type]int{TypeWatering: 4}})
	if !g.CanSend(context.Background(), "user-1", TypeWatering) {
		t.Fatalf("expected allowed under limits")
	}
}

func TestSpamGuard_TopePorHora(t *testing.T) {
	g := newGuard(&countsRepo{hourly: 3, daily: 3})
	if g.CanSend(context.Background(), "user-1", TypeWatering) {
		t.Fatalf("expected blocked at 3 sends in the hour")
	}
}

func TestSpamGuard_TopePorDia(t *testing.T) {
	g := newGuard(&countsRepo{hourly: 0, daily: 15})
	if g.CanSend(context.Background(), "user-1", TypeWatering) {
		t.Fatalf("expected blocked at 15 sends in 24h")
	}
}

func TestSpamGuard_TopePorTipo(t *testing.T) {
	// watering admite 5/24h; el 5º bloquea el 6º.
	g := newGuard(&countsRepo{byType: map[Type]int{TypeWatering: 5}})
	if g.CanSend(context.Background(), "user-1", TypeWatering) {
		t.Fatalf("expected watering blocked at its type cap")
	}

	// otro tipo con su propio presupuesto sigue pasando
	if !g.CanSend(context.Background(), "user-1", TypeHarvest) {
		t.Fatalf("expected harvest still allowed")
	}
}

func TestSpamGuard_TipoDesconocidoUsaDefault(t *testing.T) {
	g := newGuard(&countsRepo{byType: map[Type]int{TypeTest: 2}})
	if g.CanSend(context.Background(), "user-1", TypeTest) {
		t.Fatalf("expected default cap of 2 for unknown type")
	}
}

func TestSpamGuard_FailOpen(t *testing.T) {
	g := newGuard(&countsRepo{err: errors.New("db down")})
	if !g.CanSend(context.Background(), "user-1", TypeWatering) {
		t.Fatalf("expected fail-open on repo error")
	}
}
