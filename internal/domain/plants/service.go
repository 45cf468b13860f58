package plants

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("plant not found")
	ErrForbidden    = errors.New("plant belongs to another user")
)

type Service struct {
	repo     Repository
	profiles ProfileRepository
	now      func() time.Time
}

func NewService(repo Repository, profiles ProfileRepository) *Service {
	return &Service{
		repo:     repo,
		profiles: profiles,
		now:      time.Now,
	}
}

type CreateInput struct {
	ProfileID          string
	Name               string
	Location           string
	PotSize            string
	SoilType           string
	LightExposure      string
	AmbientTemperature *float64
	Latitude           *float64
	Longitude          *float64
	Notes              string
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (PlantInstance, error) {
	if strings.TrimSpace(userID) == "" {
		return PlantInstance{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return PlantInstance{}, ErrInvalidInput
	}
	if in.AmbientTemperature != nil && (*in.AmbientTemperature < -20 || *in.AmbientTemperature > 50) {
		return PlantInstance{}, ErrInvalidInput
	}
	// ProfileID es opcional, pero si viene tiene que existir en el catálogo.
	if pid := strings.TrimSpace(in.ProfileID); pid != "" {
		if _, err := s.profiles.GetByID(ctx, pid); err != nil {
			return PlantInstance{}, ErrInvalidInput
		}
	}

	now := s.now()
	p := PlantInstance{
		ID:                 uuid.NewString(),
		UserID:             userID,
		ProfileID:          strings.TrimSpace(in.ProfileID),
		Name:               strings.TrimSpace(in.Name),
		Location:           strings.TrimSpace(in.Location),
		PotSize:            strings.TrimSpace(in.PotSize),
		SoilType:           strings.TrimSpace(in.SoilType),
		LightExposure:      strings.TrimSpace(in.LightExposure),
		AmbientTemperature: in.AmbientTemperature,
		Latitude:           in.Latitude,
		Longitude:          in.Longitude,
		HealthStatus:       HealthHealthy,
		Active:             true,
		Notes:              strings.TrimSpace(in.Notes),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return PlantInstance{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (PlantInstance, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return PlantInstance{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// GetOwned resuelve la planta y valida que pertenezca al usuario.
func (s *Service) GetOwned(ctx context.Context, plantID, userID string) (PlantInstance, error) {
	p, err := s.GetByID(ctx, plantID)
	if err != nil {
		return PlantInstance{}, err
	}
	if p.UserID != userID {
		return PlantInstance{}, ErrForbidden
	}
	return p, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]PlantInstance, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListActive(ctx context.Context) ([]PlantInstance, error) {
	return s.repo.ListActive(ctx)
}

// Profile devuelve la ficha de especie de la planta, o false si no hay.
func (s *Service) Profile(ctx context.Context, p PlantInstance) (CareProfile, bool) {
	if strings.TrimSpace(p.ProfileID) == "" {
		return CareProfile{}, false
	}
	cp, err := s.profiles.GetByID(ctx, p.ProfileID)
	if err != nil {
		return CareProfile{}, false
	}
	return cp, true
}

type UpdateConditionsInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name               *string
	Location           *string
	PotSize            *string
	SoilType           *string
	LightExposure      *string
	AmbientTemperature *float64
	Latitude           *float64
	Longitude          *float64
	HealthStatus       *string
	Active             *bool
	Notes              *string
}

// UpdateConditions actualiza las condiciones mutables de la planta.
// Solo el dueño puede modificarla.
func (s *Service) UpdateConditions(ctx context.Context, plantID, userID string, in UpdateConditionsInput) (PlantInstance, error) {
	p, err := s.GetOwned(ctx, plantID, userID)
	if err != nil {
		return PlantInstance{}, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return PlantInstance{}, ErrInvalidInput
		}
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Location != nil {
		p.Location = strings.TrimSpace(*in.Location)
	}
	if in.PotSize != nil {
		p.PotSize = strings.TrimSpace(*in.PotSize)
	}
	if in.SoilType != nil {
		p.SoilType = strings.TrimSpace(*in.SoilType)
	}
	if in.LightExposure != nil {
		p.LightExposure = strings.TrimSpace(*in.LightExposure)
	}
	if in.AmbientTemperature != nil {
		if *in.AmbientTemperature < -20 || *in.AmbientTemperature > 50 {
			return PlantInstance{}, ErrInvalidInput
		}
		p.AmbientTemperature = in.AmbientTemperature
	}
	if in.Latitude != nil {
		p.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		p.Longitude = in.Longitude
	}
	if in.HealthStatus != nil {
		hs := HealthStatus(strings.TrimSpace(*in.HealthStatus))
		switch hs {
		case HealthHealthy, HealthSick, HealthDying, HealthDead:
			p.HealthStatus = hs
		default:
			return PlantInstance{}, ErrInvalidInput
		}
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	if in.Notes != nil {
		p.Notes = strings.TrimSpace(*in.Notes)
	}

	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return PlantInstance{}, err
	}
	return p, nil
}
