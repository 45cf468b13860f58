package schedule

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"plant-care-service/internal/domain/plants"
	"plant-care-service/internal/middleware"
	"plant-care-service/internal/ports/weather"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/plants/{plantID}/watering-schedule", getScheduleHandler(svc))
}

type factorsResponse struct {
	BaseFrequency float64 `json:"base_frequency"`
	SeasonFactor  float64 `json:"season_factor"`
	WeatherFactor float64 `json:"weather_factor"`
	PlantFactor   float64 `json:"plant_factor"`
	HistoryFactor float64 `json:"history_factor"`
}

type weatherResponse struct {
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Pressure    float64   `json:"pressure,omitempty"`
	WeatherMain string    `json:"weather_main,omitempty"`
	WeatherDesc string    `json:"weather_description,omitempty"`
	WindSpeed   float64   `json:"wind_speed,omitempty"`
	ObservedAt  time.Time `json:"observed_at"`
}

type scheduleResponse struct {
	PlantID               string           `json:"plant_id"`
	AdjustedFrequencyDays int              `json:"adjusted_frequency_days"`
	LastWatering          *time.Time       `json:"last_watering"`
	NextWatering          time.Time        `json:"next_watering"`
	DaysUntilNext         int              `json:"days_until_next"`
	Urgency               Urgency          `json:"urgency"`
	Factors               factorsResponse  `json:"factors"`
	Weather               *weatherResponse `json:"weather_data,omitempty"`
	CalculatedAt          time.Time        `json:"calculated_at"`
}

// getScheduleHandler godoc
// @Summary Plan de riego recomendado
// @Description Calcula el intervalo ajustado, la próxima fecha de riego y la urgencia para una planta del usuario. Incluye cada factor intermedio para poder explicar el resultado.
// @Tags schedule
// @Produce json
// @Param plantID path string true "ID de la planta"
// @Success 200 {object} scheduleResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "plant not found"
// @Router /plants/{plantID}/watering-schedule [get]
func getScheduleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		sched, err := svc.ComputeForUser(r.Context(), chi.URLParam(r, "plantID"), claims.UserID)
		if err != nil {
			if errors.Is(err, plants.ErrForbidden) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			http.Error(w, "plant not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toScheduleResponse(sched))
	}
}

func toScheduleResponse(s Schedule) scheduleResponse {
	out := scheduleResponse{
		PlantID:               s.PlantID,
		AdjustedFrequencyDays: s.AdjustedFrequencyDays,
		LastWatering:          s.LastWatering,
		NextWatering:          s.NextWatering,
		DaysUntilNext:         s.DaysUntilNext,
		Urgency:               s.Urgency,
		Factors: factorsResponse{
			BaseFrequency: s.Factors.Base,
			SeasonFactor:  s.Factors.Season,
			WeatherFactor: s.Factors.Weather,
			PlantFactor:   s.Factors.Plant,
			HistoryFactor: s.Factors.History,
		},
		CalculatedAt: s.CalculatedAt,
	}
	if s.Weather != nil {
		out.Weather = toWeatherResponse(*s.Weather)
	}
	return out
}

func toWeatherResponse(c weather.Conditions) *weatherResponse {
	return &weatherResponse{
		Temperature: c.TemperatureC,
		Humidity:    c.HumidityPct,
		Pressure:    c.PressureHPa,
		WeatherMain: c.WeatherMain,
		WeatherDesc: c.WeatherDesc,
		WindSpeed:   c.WindSpeedMS,
		ObservedAt:  c.ObservedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
