package schedule

import (
	"context"
	"math"
	"strings"
	"time"

	"plant-care-service/internal/domain/plants"
	"plant-care-service/internal/domain/waterings"
	"plant-care-service/internal/platform/logger"
	"plant-care-service/internal/ports/weather"
)

// WeatherService es el nombre bajo el que los usuarios registran su
// credencial del proveedor meteorológico.
const WeatherService = "openweathermap"

type Service struct {
	plants    *plants.Service
	waterings *waterings.Service
	provider  weather.Provider
	keys      weather.KeySource
	log       logger.Logger
	now       func() time.Time
}

// NewService arma el motor de riego. provider y keys pueden ser nil:
// el motor degrada a factor meteorológico neutro.
func NewService(
	plantsSvc *plants.Service,
	wateringsSvc *waterings.Service,
	provider weather.Provider,
	keys weather.KeySource,
	log logger.Logger,
) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		plants:    plantsSvc,
		waterings: wateringsSvc,
		provider:  provider,
		keys:      keys,
		log:       log,
		now:       time.Now,
	}
}

// ComputeForUser resuelve la planta validando dueño y calcula el plan.
func (s *Service) ComputeForUser(ctx context.Context, plantID, userID string) (Schedule, error) {
	p, err := s.plants.GetOwned(ctx, plantID, userID)
	if err != nil {
		return Schedule{}, err
	}
	return s.Compute(ctx, p)
}

// Compute calcula el plan de riego de una planta ya resuelta.
// Semántica numérica: producto de factores, luego round, luego clamp
// a entero en [1, 30]. El orden importa para que el resultado sea
// reproducible.
func (s *Service) Compute(ctx context.Context, p plants.PlantInstance) (Schedule, error) {
	now := s.now()

	base := defaultBaseDays
	if profile, ok := s.plants.Profile(ctx, p); ok && profile.BaseWateringDays > 0 {
		base = profile.BaseWateringDays
	}

	conditions := s.currentConditions(ctx, p)

	factors := Factors{
		Base:    base,
		Season:  seasonFactor(now),
		Weather: weatherFactor(conditions),
		Plant:   plantFactor(p),
		History: 1.0,
	}

	history, err := s.waterings.ListRecent(ctx, p.ID, maxHistoryEvents)
	if err != nil {
		// Historial inaccesible: factor neutro, el plan sigue saliendo.
		s.log.Warn("watering history unavailable", map[string]any{
			"plant_id": p.ID, "err": err.Error(),
		})
		history = nil
	}
	factors.History = historyFactor(history, base)

	adjusted := base * factors.Season * factors.Weather * factors.Plant * factors.History
	days := int(math.Round(adjusted))
	if days < 1 {
		days = 1
	}
	if days > 30 {
		days = 30
	}

	sched := Schedule{
		PlantID:               p.ID,
		AdjustedFrequencyDays: days,
		Factors:               factors,
		Weather:               conditions,
		CalculatedAt:          now,
	}

	if len(history) > 0 {
		last := history[0].WateredAt
		sched.LastWatering = &last
		sched.NextWatering = last.AddDate(0, 0, days)
		sched.DaysUntilNext = int(math.Floor(sched.NextWatering.Sub(now).Hours() / 24))
	} else {
		// Sin historial: hay que regar ya.
		sched.NextWatering = now
		sched.DaysUntilNext = 0
	}

	sched.Urgency = urgencyFor(sched.DaysUntilNext)
	return sched, nil
}

// currentConditions consulta el proveedor meteorológico. Cualquier fallo
// (sin credencial, red caída, respuesta rota) degrada a "sin datos":
// nunca se propaga al caller.
func (s *Service) currentConditions(ctx context.Context, p plants.PlantInstance) *weather.Conditions {
	if s.provider == nil || s.keys == nil {
		return nil
	}

	apiKey, err := s.keys.APIKey(ctx, p.UserID, WeatherService)
	if err != nil || strings.TrimSpace(apiKey) == "" {
		return nil
	}

	loc := weather.DefaultLocation
	if p.Latitude != nil && p.Longitude != nil {
		loc = weather.Location{Latitude: *p.Latitude, Longitude: *p.Longitude}
	}

	cond, err := s.provider.Current(ctx, apiKey, loc)
	if err != nil {
		s.log.Warn("weather lookup failed", map[string]any{
			"plant_id": p.ID, "err": err.Error(),
		})
		return nil
	}
	return &cond
}
