package postgres

import (
	"context"
	"database/sql"
	"strings"

	"plant-care-service/internal/domain/plants"
)

type PlantsRepo struct {
	db *sql.DB
}

func NewPlantsRepo(db *sql.DB) *PlantsRepo {
	return &PlantsRepo{db: db}
}

func (r *PlantsRepo) Create(ctx context.Context, p plants.PlantInstance) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO plants (
			id, user_id, profile_id,
			name, location, pot_size, soil_type, light_exposure,
			ambient_temperature, latitude, longitude,
			health_status, active, notes,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`,
		p.ID,
		p.UserID,
		toNullString(p.ProfileID),
		p.Name,
		p.Location,
		p.PotSize,
		p.SoilType,
		p.LightExposure,
		toNullFloat(p.AmbientTemperature),
		toNullFloat(p.Latitude),
		toNullFloat(p.Longitude),
		string(p.HealthStatus),
		p.Active,
		p.Notes,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PlantsRepo) Update(ctx context.Context, p plants.PlantInstance) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE plants
		SET
			name = $2,
			location = $3,
			pot_size = $4,
			soil_type = $5,
			light_exposure = $6,
			ambient_temperature = $7,
			latitude = $8,
			longitude = $9,
			health_status = $10,
			active = $11,
			notes = $12,
			updated_at = $13
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		p.Location,
		p.PotSize,
		p.SoilType,
		p.LightExposure,
		toNullFloat(p.AmbientTemperature),
		toNullFloat(p.Latitude),
		toNullFloat(p.Longitude),
		string(p.HealthStatus),
		p.Active,
		p.Notes,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const plantColumns = `
	id, user_id, profile_id,
	name, location, pot_size, soil_type, light_exposure,
	ambient_temperature, latitude, longitude,
	health_status, active, notes,
	created_at, updated_at
`

func (r *PlantsRepo) GetByID(ctx context.Context, id string) (plants.PlantInstance, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return plants.PlantInstance{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+plantColumns+`
		FROM plants
		WHERE id = $1
	`, id)

	p, err := scanPlant(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return plants.PlantInstance{}, ErrNotFound
		}
		return plants.PlantInstance{}, err
	}
	return p, nil
}

func (r *PlantsRepo) ListByUser(ctx context.Context, userID string) ([]plants.PlantInstance, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+plantColumns+`
		FROM plants
		WHERE user_id = $1
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPlants(rows)
}

func (r *PlantsRepo) ListActive(ctx context.Context) ([]plants.PlantInstance, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+plantColumns+`
		FROM plants
		WHERE active = TRUE
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPlants(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlant(row rowScanner) (plants.PlantInstance, error) {
	var p plants.PlantInstance
	var profileID sql.NullString
	var ambient, lat, lon sql.NullFloat64
	var health string

	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&profileID,
		&p.Name,
		&p.Location,
		&p.PotSize,
		&p.SoilType,
		&p.LightExposure,
		&ambient,
		&lat,
		&lon,
		&health,
		&p.Active,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return plants.PlantInstance{}, err
	}

	p.ProfileID = profileID.String
	p.AmbientTemperature = fromNullFloat(ambient)
	p.Latitude = fromNullFloat(lat)
	p.Longitude = fromNullFloat(lon)
	p.HealthStatus = plants.HealthStatus(health)
	return p, nil
}

func collectPlants(rows *sql.Rows) ([]plants.PlantInstance, error) {
	out := make([]plants.PlantInstance, 0)
	for rows.Next() {
		p, err := scanPlant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func toNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func toNullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func fromNullFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
