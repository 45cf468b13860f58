package scheduler

import (
	"context"
	"errors"
	"time"

	"plant-care-service/internal/domain/notifications"
	"plant-care-service/internal/platform/logger"
)

const (
	// batchSize acota cada página de notificaciones vencidas.
	batchSize = 100

	// batchPause entre páginas, para no monopolizar el repositorio.
	batchPause = 100 * time.Millisecond
)

// BatchProcessor despacha las notificaciones vencidas por páginas.
type BatchProcessor struct {
	notifs *notifications.Service
	log    logger.Logger
}

func NewBatchProcessor(notifs *notifications.Service, log logger.Logger) *BatchProcessor {
	if log == nil {
		log = logger.Nop()
	}
	return &BatchProcessor{notifs: notifs, log: log}
}

// ProcessDue pagina sobre las scheduled vencidas y las envía una a una.
// Una notificación bloqueada (preferencias o anti-spam) queda scheduled
// y volvería a salir en la siguiente página, así que se lleva un set de
// vistas para no reprocesarla dentro del mismo ciclo.
func (b *BatchProcessor) ProcessDue(ctx context.Context) (sent, failed int) {
	seen := make(map[string]bool)

	for {
		if ctx.Err() != nil {
			return sent, failed
		}

		due, err := b.notifs.ListDue(ctx, batchSize)
		if err != nil {
			b.log.Error("due notifications listing failed", map[string]any{"err": err.Error()})
			return sent, failed
		}

		progressed := false
		for _, n := range due {
			if seen[n.ID] {
				continue
			}
			seen[n.ID] = true
			progressed = true

			if err := b.notifs.Send(ctx, n.ID); err != nil {
				switch {
				case errors.Is(err, notifications.ErrBlocked), errors.Is(err, notifications.ErrRateLimited):
					// Queda scheduled; se reintenta en un ciclo futuro.
					b.log.Info("notification held back", map[string]any{
						"notification_id": n.ID, "reason": err.Error(),
					})
				default:
					failed++
					b.log.Warn("notification dispatch failed", map[string]any{
						"notification_id": n.ID, "err": err.Error(),
					})
				}
				continue
			}
			sent++
		}

		if len(due) < batchSize || !progressed {
			return sent, failed
		}
		time.Sleep(batchPause)
	}
}
