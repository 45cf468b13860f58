package postgres

import (
	"context"
	"database/sql"
	"strings"

	"plant-care-service/internal/domain/waterings"
)

type WateringsRepo struct {
	db *sql.DB
}

func NewWateringsRepo(db *sql.DB) *WateringsRepo {
	return &WateringsRepo{db: db}
}

func (r *WateringsRepo) Create(ctx context.Context, e waterings.WateringEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO watering_events (
			id, plant_id, watered_at, amount_ml, water_type, notes, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		e.ID,
		e.PlantID,
		e.WateredAt,
		toNullInt(e.AmountML),
		string(e.WaterType),
		e.Notes,
		e.CreatedAt,
	)
	return err
}

func (r *WateringsRepo) ListRecent(ctx context.Context, plantID string, limit int) ([]waterings.WateringEvent, error) {
	plantID = strings.TrimSpace(plantID)
	if plantID == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, plant_id, watered_at, amount_ml, water_type, notes, created_at
		FROM watering_events
		WHERE plant_id = $1
		ORDER BY watered_at DESC
		LIMIT $2
	`, plantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]waterings.WateringEvent, 0)
	for rows.Next() {
		var e waterings.WateringEvent
		var amount sql.NullInt64
		var waterType string
		if err := rows.Scan(
			&e.ID,
			&e.PlantID,
			&e.WateredAt,
			&amount,
			&waterType,
			&e.Notes,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		if amount.Valid {
			v := int(amount.Int64)
			e.AmountML = &v
		}
		e.WaterType = waterings.WaterType(waterType)
		out = append(out, e)
	}
	return out, rows.Err()
}

func toNullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
