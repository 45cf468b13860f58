package scheduler

import (
	"context"
	"strings"
	"time"

	"plant-care-service/internal/domain/notifications"
	"plant-care-service/internal/domain/plants"
	"plant-care-service/internal/domain/schedule"
	"plant-care-service/internal/platform/logger"

	"github.com/robfig/cron/v3"
)

const (
	// defaultSpec: un ciclo cada 5 minutos.
	defaultSpec = "@every 5m"

	// terminalRetention: notificaciones terminales más viejas se purgan.
	terminalRetention = 30 * 24 * time.Hour

	// reminderUrgencyThreshold: urgencia mínima (escala 0-10) para
	// generar recordatorio aunque la planta aún no esté vencida.
	reminderUrgencyThreshold = 6
)

// Worker es el ciclo de fondo del motor: despacha notificaciones
// vencidas, genera recordatorios de riego y purga historial viejo.
type Worker struct {
	plants   *plants.Service
	schedule *schedule.Service
	notifs   *notifications.Service
	batch    *BatchProcessor
	log      logger.Logger

	cron *cron.Cron
	spec string
}

func NewWorker(
	plantsSvc *plants.Service,
	scheduleSvc *schedule.Service,
	notifsSvc *notifications.Service,
	log logger.Logger,
) *Worker {
	if log == nil {
		log = logger.Nop()
	}
	return &Worker{
		plants:   plantsSvc,
		schedule: scheduleSvc,
		notifs:   notifsSvc,
		batch:    NewBatchProcessor(notifsSvc, log),
		log:      log,
		cron:     cron.New(),
		spec:     defaultSpec,
	}
}

// SetSpec reemplaza la recurrencia por defecto ("@every 5m"). Acepta
// cualquier spec de robfig/cron. Debe llamarse antes de Start.
func (w *Worker) SetSpec(spec string) {
	if strings.TrimSpace(spec) != "" {
		w.spec = spec
	}
}

// Start registra el ciclo en el cron y arranca. Se detiene solo cuando
// ctx se cancela; Start no bloquea.
func (w *Worker) Start(ctx context.Context) error {
	_, err := w.cron.AddFunc(w.spec, func() {
		w.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	w.cron.Start()
	w.log.Info("scheduler started", map[string]any{"spec": w.spec})

	go func() {
		<-ctx.Done()
		stopped := w.cron.Stop()
		<-stopped.Done()
		w.log.Info("scheduler stopped", nil)
	}()
	return nil
}

// RunOnce ejecuta un ciclo completo. Cada fase aísla sus errores: un
// fallo procesando una planta o notificación no corta el resto.
func (w *Worker) RunOnce(ctx context.Context) {
	started := time.Now()

	sent, failed := w.batch.ProcessDue(ctx)
	created := w.generateWateringReminders(ctx)
	purged := w.cleanup(ctx)

	w.log.Info("scheduler cycle done", map[string]any{
		"sent":        sent,
		"failed":      failed,
		"created":     created,
		"purged":      purged,
		"duration_ms": time.Since(started).Milliseconds(),
	})
}

// generateWateringReminders recalcula el calendario de cada planta
// activa y crea el recordatorio si hace falta: urgencia alta, riego
// vencido, o planta sin historial. El dedup vive en el servicio de
// notificaciones, así que repetir el ciclo no duplica recordatorios.
func (w *Worker) generateWateringReminders(ctx context.Context) int {
	active, err := w.plants.ListActive(ctx)
	if err != nil {
		w.log.Error("active plants listing failed", map[string]any{"err": err.Error()})
		return 0
	}

	created := 0
	for _, p := range active {
		if ctx.Err() != nil {
			return created
		}

		sched, err := w.schedule.Compute(ctx, p)
		if err != nil {
			w.log.Warn("schedule computation failed", map[string]any{
				"plant_id": p.ID, "err": err.Error(),
			})
			continue
		}

		urgency := sched.Urgency.Level()
		overdue := sched.DaysUntilNext <= 0
		noHistory := sched.LastWatering == nil
		if urgency < reminderUrgencyThreshold && !overdue && !noHistory {
			continue
		}

		species := ""
		if profile, ok := w.plants.Profile(ctx, p); ok {
			species = profile.CommonName
		}

		_, ok, err := w.notifs.CreateWateringReminder(ctx, notifications.WateringReminderInput{
			UserID:       p.UserID,
			PlantID:      p.ID,
			PlantName:    p.Name,
			SpeciesName:  species,
			UrgencyLevel: urgency,
			Weather:      sched.Weather,
		})
		if err != nil {
			w.log.Warn("watering reminder creation failed", map[string]any{
				"plant_id": p.ID, "err": err.Error(),
			})
			continue
		}
		if ok {
			created++
		}
	}
	return created
}

func (w *Worker) cleanup(ctx context.Context) int {
	purged, err := w.notifs.Cleanup(ctx, terminalRetention)
	if err != nil {
		w.log.Warn("notification cleanup failed", map[string]any{"err": err.Error()})
		return 0
	}
	return purged
}
