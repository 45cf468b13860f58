package postgres

import (
	"context"
	"database/sql"
	"strings"

	"plant-care-service/internal/domain/notifications"
)

type DeliveryLogsRepo struct {
	db *sql.DB
}

func NewDeliveryLogsRepo(db *sql.DB) *DeliveryLogsRepo {
	return &DeliveryLogsRepo{db: db}
}

func (r *DeliveryLogsRepo) Create(ctx context.Context, e notifications.DeliveryLogEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notification_delivery_logs (
			id, notification_id, channel,
			success, error_message,
			provider, provider_id,
			attempted_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		e.ID,
		e.NotificationID,
		string(e.Channel),
		e.Success,
		e.ErrorMessage,
		e.Provider,
		e.ProviderID,
		e.AttemptedAt,
	)
	return err
}

func (r *DeliveryLogsRepo) ListByNotification(ctx context.Context, notificationID string) ([]notifications.DeliveryLogEntry, error) {
	notificationID = strings.TrimSpace(notificationID)
	if notificationID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, notification_id, channel,
			success, error_message,
			provider, provider_id,
			attempted_at
		FROM notification_delivery_logs
		WHERE notification_id = $1
		ORDER BY attempted_at ASC
	`, notificationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notifications.DeliveryLogEntry, 0)
	for rows.Next() {
		var e notifications.DeliveryLogEntry
		var channel string
		if err := rows.Scan(
			&e.ID,
			&e.NotificationID,
			&channel,
			&e.Success,
			&e.ErrorMessage,
			&e.Provider,
			&e.ProviderID,
			&e.AttemptedAt,
		); err != nil {
			return nil, err
		}
		e.Channel = notifications.Channel(channel)
		out = append(out, e)
	}
	return out, rows.Err()
}
