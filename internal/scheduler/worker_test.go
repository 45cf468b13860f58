package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	mem "plant-care-service/internal/adapters/storage/memory"
	"plant-care-service/internal/domain/notifications"
	"plant-care-service/internal/domain/plants"
	"plant-care-service/internal/domain/schedule"
	"plant-care-service/internal/domain/waterings"
	"plant-care-service/internal/ports/channels"
)

type stubSender struct {
	err   error
	calls int
}

func (s *stubSender) Send(ctx context.Context, msg channels.Message) (channels.Receipt, error) {
	s.calls++
	if s.err != nil {
		return channels.Receipt{}, s.err
	}
	return channels.Receipt{Provider: "stub", ProviderID: "msg-1"}, nil
}

type workerFixture struct {
	worker *Worker
	plants *plants.Service
	notifs *notifications.Service
	repo   notifications.Repository
	inapp  *stubSender
	push   *stubSender
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()

	profiles := mem.NewProfilesRepo()
	profiles.Seed(plants.DefaultCatalog())

	plantsSvc := plants.NewService(mem.NewPlantsRepo(), profiles)
	wateringsSvc := waterings.NewService(mem.NewWateringsRepo())
	schedSvc := schedule.NewService(plantsSvc, wateringsSvc, nil, nil, nil)

	f := &workerFixture{
		plants: plantsSvc,
		repo:   mem.NewNotificationsRepo(),
		inapp:  &stubSender{},
		push:   &stubSender{},
	}
	f.notifs = notifications.NewService(
		f.repo,
		mem.NewPreferencesRepo(),
		mem.NewDeliveryLogsRepo(),
		map[notifications.Channel]channels.Sender{
			notifications.ChannelInApp: f.inapp,
			notifications.ChannelPush:  f.push,
		},
		nil,
	)
	f.worker = NewWorker(plantsSvc, schedSvc, f.notifs, nil)
	return f
}

func TestRunOnce_CreaRecordatorioSinDuplicar(t *testing.T) {
	ctx := context.Background()
	f := newWorkerFixture(t)

	// Planta activa sin historial de riego: el ciclo debe generar
	// el recordatorio aunque la urgencia calculada sea baja.
	if _, err := f.plants.Create(ctx, "user-1", plants.CreateInput{
		ProfileID: "monstera-deliciosa",
		Name:      "Fernand",
	}); err != nil {
		t.Fatalf("create plant: %v", err)
	}

	f.worker.RunOnce(ctx)

	items, err := f.notifs.ListByUser(ctx, "user-1", notifications.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 watering reminder, got %d", len(items))
	}
	n := items[0]
	if n.Type != notifications.TypeWatering {
		t.Fatalf("expected watering type, got %s", n.Type)
	}
	if n.Metadata["plant_name"] != "Fernand" {
		t.Fatalf("expected plant name in metadata, got %+v", n.Metadata)
	}

	// Segundo ciclo con el recordatorio aún pendiente: dedup, no duplica.
	f.worker.RunOnce(ctx)

	items, err = f.notifs.ListByUser(ctx, "user-1", notifications.ListFilter{})
	if err != nil {
		t.Fatalf("list after second run: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected still 1 reminder after second cycle, got %d", len(items))
	}
}

func TestProcessDue_DespachaVencidasYCuentaFallos(t *testing.T) {
	ctx := context.Background()
	f := newWorkerFixture(t)

	past := time.Now().Add(-1 * time.Hour)

	// Vencida con canal operativo.
	ok, err := f.notifs.Schedule(ctx, "user-1", notifications.ScheduleInput{
		Type:         notifications.TypeMaintenance,
		Title:        "Rempoter",
		Body:         "Le pot est trop petit.",
		ScheduledFor: past,
		Channels:     []string{"in_app"},
	})
	if err != nil {
		t.Fatalf("schedule ok: %v", err)
	}

	// Vencida cuyo único canal falla.
	f.push.err = errors.New("gateway down")
	bad, err := f.notifs.Schedule(ctx, "user-2", notifications.ScheduleInput{
		Type:         notifications.TypeMaintenance,
		Title:        "Tailler",
		Body:         "Les feuilles mortes s'accumulent.",
		ScheduledFor: past,
		Channels:     []string{"push"},
	})
	if err != nil {
		t.Fatalf("schedule bad: %v", err)
	}

	// Futura: no debe salir en este ciclo.
	future, err := f.notifs.Schedule(ctx, "user-1", notifications.ScheduleInput{
		Type:         notifications.TypeMaintenance,
		Title:        "Rempoter",
		Body:         "Pas encore.",
		ScheduledFor: time.Now().Add(24 * time.Hour),
		Channels:     []string{"in_app"},
	})
	if err != nil {
		t.Fatalf("schedule future: %v", err)
	}

	sent, failed := f.worker.batch.ProcessDue(ctx)
	if sent != 1 || failed != 1 {
		t.Fatalf("expected sent=1 failed=1, got sent=%d failed=%d", sent, failed)
	}

	got, _ := f.notifs.Get(ctx, ok.ID, "user-1")
	if got.Status != notifications.StatusSent {
		t.Fatalf("expected sent, got %s", got.Status)
	}
	got, _ = f.notifs.Get(ctx, bad.ID, "user-2")
	if got.Status != notifications.StatusFailed {
		t.Fatalf("expected failed, got %s", got.Status)
	}
	got, _ = f.notifs.Get(ctx, future.ID, "user-1")
	if got.Status != notifications.StatusScheduled {
		t.Fatalf("future notification must stay scheduled, got %s", got.Status)
	}
}

func TestProcessDue_BloqueadaQuedaScheduled(t *testing.T) {
	ctx := context.Background()
	f := newWorkerFixture(t)

	enabled := false
	if _, err := f.notifs.UpdatePreferences(ctx, "user-1", []notifications.PreferenceUpdate{
		{Type: notifications.TypeMaintenance, Enabled: &enabled},
	}); err != nil {
		t.Fatalf("disable pref: %v", err)
	}

	n, err := f.notifs.Schedule(ctx, "user-1", notifications.ScheduleInput{
		Type:         notifications.TypeMaintenance,
		Title:        "Rempoter",
		Body:         "Le pot est trop petit.",
		ScheduledFor: time.Now().Add(-1 * time.Hour),
		Channels:     []string{"in_app"},
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	// Bloqueada por preferencias: ni sent ni failed, y no entra en
	// bucle aunque vuelva a aparecer como vencida.
	sent, failed := f.worker.batch.ProcessDue(ctx)
	if sent != 0 || failed != 0 {
		t.Fatalf("expected sent=0 failed=0, got sent=%d failed=%d", sent, failed)
	}

	got, _ := f.notifs.Get(ctx, n.ID, "user-1")
	if got.Status != notifications.StatusScheduled {
		t.Fatalf("blocked notification must stay scheduled, got %s", got.Status)
	}
	if f.inapp.calls != 0 {
		t.Fatalf("no channel should be attempted for blocked notification")
	}
}

func TestRunOnce_PurgaTerminalesViejas(t *testing.T) {
	ctx := context.Background()
	f := newWorkerFixture(t)

	old := time.Now().AddDate(0, 0, -40)
	if err := f.repo.Create(ctx, notifications.Notification{
		ID:           "old-dismissed",
		UserID:       "user-1",
		Type:         notifications.TypeWatering,
		Status:       notifications.StatusDismissed,
		ScheduledFor: old,
		CreatedAt:    old,
	}); err != nil {
		t.Fatalf("seed old notification: %v", err)
	}

	f.worker.RunOnce(ctx)

	if _, err := f.repo.GetByID(ctx, "old-dismissed"); err == nil {
		t.Fatalf("expected old terminal notification purged")
	}
}
