package notifications

import (
	"context"
	"time"

	"plant-care-service/internal/platform/logger"
)

// Límites anti-spam. Fijos a propósito: son una protección del
// producto, no una preferencia del usuario.
const (
	maxPerHour       = 3
	maxPerDay        = 15
	defaultTypeLimit = 2
)

// typeLimits son los topes por tipo en 24h rolling.
var typeLimits = map[Type]int{
	TypeWatering:     5,
	TypeHarvest:      3,
	TypePlanting:     2,
	TypeMaintenance:  3,
	TypeWeatherAlert: 2,
	TypeCareGuide:    2,
}

// SpamGuard decide si un envío respeta los límites anti-spam.
// Todo se deriva de sent_at persistido, así que la decisión es
// consistente aunque haya varias instancias del scheduler.
//
// Nota: el check-then-act (contar y luego escribir el sent) puede
// sobre-admitir bajo concurrencia; como los topes son blandos, se
// tolera en lugar de serializar los envíos.
type SpamGuard struct {
	repo Repository
	log  logger.Logger
	now  func() time.Time
}

func NewSpamGuard(repo Repository, log logger.Logger) *SpamGuard {
	if log == nil {
		log = logger.Nop()
	}
	return &SpamGuard{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// CanSend devuelve false si algún tope aplicable ya está alcanzado.
// Si una consulta falla, permite el envío (fail open): mejor un envío
// de más que bloquear todas las notificaciones por un error interno.
func (g *SpamGuard) CanSend(ctx context.Context, userID string, t Type) bool {
	now := g.now()

	hourly, err := g.repo.CountSentSince(ctx, userID, now.Add(-1*time.Hour))
	if err != nil {
		g.log.Warn("spam guard hourly count failed", map[string]any{"user_id": userID, "err": err.Error()})
		return true
	}
	if hourly >= maxPerHour {
		return false
	}

	daily, err := g.repo.CountSentSince(ctx, userID, now.Add(-24*time.Hour))
	if err != nil {
		g.log.Warn("spam guard daily count failed", map[string]any{"user_id": userID, "err": err.Error()})
		return true
	}
	if daily >= maxPerDay {
		return false
	}

	limit, ok := typeLimits[t]
	if !ok {
		limit = defaultTypeLimit
	}
	byType, err := g.repo.CountSentByTypeSince(ctx, userID, t, now.Add(-24*time.Hour))
	if err != nil {
		g.log.Warn("spam guard type count failed", map[string]any{"user_id": userID, "type": string(t), "err": err.Error()})
		return true
	}
	return byType < limit
}
