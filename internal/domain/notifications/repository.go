package notifications

import (
	"context"
	"time"
)

// ListFilter acota ListByUser. Zero values = sin filtro.
type ListFilter struct {
	Status Status
	Type   Type
	Since  time.Time
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, n Notification) error
	GetByID(ctx context.Context, id string) (Notification, error)
	Update(ctx context.Context, n Notification) error

	// ListByUser ordena por scheduled_for descendente.
	ListByUser(ctx context.Context, userID string, filter ListFilter) ([]Notification, error)

	// ListDue devuelve notificaciones scheduled con scheduled_for <= now,
	// hasta limit (0 = sin límite), las más antiguas primero.
	ListDue(ctx context.Context, now time.Time, limit int) ([]Notification, error)

	// ExistsPendingWatering implementa el dedup del recordatorio de riego:
	// true si ya hay una notificación watering scheduled o sent para
	// (usuario, planta).
	ExistsPendingWatering(ctx context.Context, userID, plantID string) (bool, error)

	// CountSentSince cuenta notificaciones con sent_at >= since.
	// Es la base del rate limiter: estado derivado de lo persistido,
	// no contadores en memoria.
	CountSentSince(ctx context.Context, userID string, since time.Time) (int, error)
	CountSentByTypeSince(ctx context.Context, userID string, t Type, since time.Time) (int, error)

	// DeleteTerminalOlderThan purga notificaciones en estado terminal
	// creadas antes del cutoff. Devuelve cuántas borró.
	DeleteTerminalOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

type PreferenceRepository interface {
	ListByUser(ctx context.Context, userID string) ([]Preference, error)
	// Upsert crea o reemplaza la preferencia (user_id, type).
	Upsert(ctx context.Context, p Preference) error
}

type DeliveryLogRepository interface {
	Create(ctx context.Context, e DeliveryLogEntry) error
	ListByNotification(ctx context.Context, notificationID string) ([]DeliveryLogEntry, error)
}
