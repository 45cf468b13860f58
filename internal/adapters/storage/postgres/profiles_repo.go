package postgres

import (
	"context"
	"database/sql"
	"strings"

	"plant-care-service/internal/domain/plants"
)

type ProfilesRepo struct {
	db *sql.DB
}

func NewProfilesRepo(db *sql.DB) *ProfilesRepo {
	return &ProfilesRepo{db: db}
}

func (r *ProfilesRepo) Create(ctx context.Context, p plants.CareProfile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO care_profiles (
			id, scientific_name, common_name,
			base_watering_days, light, humidity, toxicity
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		p.ID,
		p.ScientificName,
		p.CommonName,
		p.BaseWateringDays,
		p.Light,
		p.Humidity,
		p.Toxicity,
	)
	return err
}

func (r *ProfilesRepo) GetByID(ctx context.Context, id string) (plants.CareProfile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return plants.CareProfile{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, scientific_name, common_name,
			base_watering_days, light, humidity, toxicity
		FROM care_profiles
		WHERE id = $1
	`, id)

	var p plants.CareProfile
	if err := row.Scan(
		&p.ID,
		&p.ScientificName,
		&p.CommonName,
		&p.BaseWateringDays,
		&p.Light,
		&p.Humidity,
		&p.Toxicity,
	); err != nil {
		if err == sql.ErrNoRows {
			return plants.CareProfile{}, ErrNotFound
		}
		return plants.CareProfile{}, err
	}
	return p, nil
}
