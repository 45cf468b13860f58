package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"plant-care-service/internal/domain/notifications"
)

type PreferencesRepo struct {
	db *sql.DB
}

func NewPreferencesRepo(db *sql.DB) *PreferencesRepo {
	return &PreferencesRepo{db: db}
}

func (r *PreferencesRepo) ListByUser(ctx context.Context, userID string) ([]notifications.Preference, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, user_id, notification_type,
			enabled, channels, preferred_hour, frequency,
			quiet_hours_start, quiet_hours_end,
			created_at, updated_at
		FROM notification_preferences
		WHERE user_id = $1
		ORDER BY notification_type ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notifications.Preference, 0)
	for rows.Next() {
		var p notifications.Preference
		var typ, frequency string
		var channels []byte
		if err := rows.Scan(
			&p.ID,
			&p.UserID,
			&typ,
			&p.Enabled,
			&channels,
			&p.PreferredHour,
			&frequency,
			&p.QuietHoursStart,
			&p.QuietHoursEnd,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		p.Type = notifications.Type(typ)
		p.Frequency = notifications.Frequency(frequency)
		if len(channels) > 0 {
			if err := json.Unmarshal(channels, &p.Channels); err != nil {
				return nil, err
			}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PreferencesRepo) Upsert(ctx context.Context, p notifications.Preference) error {
	channels, err := json.Marshal(p.Channels)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO notification_preferences (
			id, user_id, notification_type,
			enabled, channels, preferred_hour, frequency,
			quiet_hours_start, quiet_hours_end,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (user_id, notification_type) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			channels = EXCLUDED.channels,
			preferred_hour = EXCLUDED.preferred_hour,
			frequency = EXCLUDED.frequency,
			quiet_hours_start = EXCLUDED.quiet_hours_start,
			quiet_hours_end = EXCLUDED.quiet_hours_end,
			updated_at = EXCLUDED.updated_at
	`,
		p.ID,
		p.UserID,
		string(p.Type),
		p.Enabled,
		channels,
		p.PreferredHour,
		string(p.Frequency),
		p.QuietHoursStart,
		p.QuietHoursEnd,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}
