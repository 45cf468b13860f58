package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"plant-care-service/internal/domain/notifications"
)

type NotificationsRepo struct {
	db *sql.DB
}

func NewNotificationsRepo(db *sql.DB) *NotificationsRepo {
	return &NotificationsRepo{db: db}
}

const notificationColumns = `
	id, user_id, notification_type,
	title, body,
	scheduled_for, sent_at, delivered_at, opened_at,
	status, priority,
	channels, metadata,
	user_action, action_taken_at,
	created_at, updated_at
`

func (r *NotificationsRepo) Create(ctx context.Context, n notifications.Notification) error {
	channels, metadata, err := encodeJSONCols(n)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`,
		n.ID,
		n.UserID,
		string(n.Type),
		n.Title,
		n.Body,
		n.ScheduledFor,
		toNullTime(n.SentAt),
		toNullTime(n.DeliveredAt),
		toNullTime(n.OpenedAt),
		string(n.Status),
		n.Priority,
		channels,
		metadata,
		n.UserAction,
		toNullTime(n.ActionTakenAt),
		n.CreatedAt,
		n.UpdatedAt,
	)
	return err
}

func (r *NotificationsRepo) Update(ctx context.Context, n notifications.Notification) error {
	channels, metadata, err := encodeJSONCols(n)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET
			sent_at = $2,
			delivered_at = $3,
			opened_at = $4,
			status = $5,
			priority = $6,
			channels = $7,
			metadata = $8,
			user_action = $9,
			action_taken_at = $10,
			updated_at = $11
		WHERE id = $1
	`,
		n.ID,
		toNullTime(n.SentAt),
		toNullTime(n.DeliveredAt),
		toNullTime(n.OpenedAt),
		string(n.Status),
		n.Priority,
		channels,
		metadata,
		n.UserAction,
		toNullTime(n.ActionTakenAt),
		n.UpdatedAt,
	)
	if err != nil {
		return err
	}
	count, _ := res.RowsAffected()
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NotificationsRepo) GetByID(ctx context.Context, id string) (notifications.Notification, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return notifications.Notification{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE id = $1
	`, id)

	n, err := scanNotification(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return notifications.Notification{}, ErrNotFound
		}
		return notifications.Notification{}, err
	}
	return n, nil
}

func (r *NotificationsRepo) ListByUser(ctx context.Context, userID string, filter notifications.ListFilter) ([]notifications.Notification, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	// Query dinámica acotada: cada filtro agrega su placeholder.
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	args := []any{userID}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		query += ` AND notification_type = $` + strconv.Itoa(len(args))
	}
	if !filter.Since.IsZero() {
		args = append(args, filter.Since)
		query += ` AND created_at >= $` + strconv.Itoa(len(args))
	}

	query += ` ORDER BY scheduled_for DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectNotifications(rows)
}

func (r *NotificationsRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]notifications.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE status = $1 AND scheduled_for <= $2
		ORDER BY scheduled_for ASC
	`
	args := []any{string(notifications.StatusScheduled), now}
	if limit > 0 {
		args = append(args, limit)
		query += ` LIMIT $3`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectNotifications(rows)
}

func (r *NotificationsRepo) ExistsPendingWatering(ctx context.Context, userID, plantID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM notifications
			WHERE user_id = $1
			  AND notification_type = $2
			  AND status IN ($3, $4)
			  AND metadata->>'plant_id' = $5
		)
	`,
		userID,
		string(notifications.TypeWatering),
		string(notifications.StatusScheduled),
		string(notifications.StatusSent),
		plantID,
	).Scan(&exists)
	return exists, err
}

func (r *NotificationsRepo) CountSentSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM notifications
		WHERE user_id = $1 AND sent_at >= $2
	`, userID, since).Scan(&count)
	return count, err
}

func (r *NotificationsRepo) CountSentByTypeSince(ctx context.Context, userID string, t notifications.Type, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM notifications
		WHERE user_id = $1 AND notification_type = $2 AND sent_at >= $3
	`, userID, string(t), since).Scan(&count)
	return count, err
}

func (r *NotificationsRepo) DeleteTerminalOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	statuses := make([]string, 0, len(notifications.TerminalStatuses))
	for _, s := range notifications.TerminalStatuses {
		statuses = append(statuses, string(s))
	}

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM notifications
		WHERE created_at < $1 AND status = ANY($2)
	`, cutoff, statuses)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func encodeJSONCols(n notifications.Notification) ([]byte, []byte, error) {
	channels, err := json.Marshal(n.Channels)
	if err != nil {
		return nil, nil, err
	}
	metadata := n.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	meta, err := json.Marshal(metadata)
	if err != nil {
		return nil, nil, err
	}
	return channels, meta, nil
}

func scanNotification(row rowScanner) (notifications.Notification, error) {
	var n notifications.Notification
	var typ, status string
	var sentAt, deliveredAt, openedAt, actionTakenAt sql.NullTime
	var channels, metadata []byte

	if err := row.Scan(
		&n.ID,
		&n.UserID,
		&typ,
		&n.Title,
		&n.Body,
		&n.ScheduledFor,
		&sentAt,
		&deliveredAt,
		&openedAt,
		&status,
		&n.Priority,
		&channels,
		&metadata,
		&n.UserAction,
		&actionTakenAt,
		&n.CreatedAt,
		&n.UpdatedAt,
	); err != nil {
		return notifications.Notification{}, err
	}

	n.Type = notifications.Type(typ)
	n.Status = notifications.Status(status)
	n.SentAt = fromNullTime(sentAt)
	n.DeliveredAt = fromNullTime(deliveredAt)
	n.OpenedAt = fromNullTime(openedAt)
	n.ActionTakenAt = fromNullTime(actionTakenAt)

	if len(channels) > 0 {
		if err := json.Unmarshal(channels, &n.Channels); err != nil {
			return notifications.Notification{}, err
		}
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &n.Metadata); err != nil {
			return notifications.Notification{}, err
		}
	}
	return n, nil
}

func collectNotifications(rows *sql.Rows) ([]notifications.Notification, error) {
	out := make([]notifications.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
