package plants

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"plant-care-service/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/plants", func(pr chi.Router) {
		pr.Post("/", createPlantHandler(svc))
		pr.Get("/", listPlantsHandler(svc))
		pr.Get("/{plantID}", getPlantHandler(svc))
		pr.Patch("/{plantID}", updatePlantHandler(svc))
	})
}

type createPlantRequest struct {
	ProfileID          string   `json:"profile_id"`
	Name               string   `json:"name"`
	Location           string   `json:"location"`
	PotSize            string   `json:"pot_size"`
	SoilType           string   `json:"soil_type"`
	LightExposure      string   `json:"light_exposure"`
	AmbientTemperature *float64 `json:"ambient_temperature"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
	Notes              string   `json:"notes"`
}

type updatePlantRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name               *string  `json:"name"`
	Location           *string  `json:"location"`
	PotSize            *string  `json:"pot_size"`
	SoilType           *string  `json:"soil_type"`
	LightExposure      *string  `json:"light_exposure"`
	AmbientTemperature *float64 `json:"ambient_temperature"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
	HealthStatus       *string  `json:"health_status"`
	Active             *bool    `json:"active"`
	Notes              *string  `json:"notes"`
}

type plantResponse struct {
	ID                 string       `json:"id"`
	UserID             string       `json:"user_id"`
	ProfileID          string       `json:"profile_id,omitempty"`
	Name               string       `json:"name"`
	Location           string       `json:"location"`
	PotSize            string       `json:"pot_size"`
	SoilType           string       `json:"soil_type"`
	LightExposure      string       `json:"light_exposure"`
	AmbientTemperature *float64     `json:"ambient_temperature,omitempty"`
	Latitude           *float64     `json:"latitude,omitempty"`
	Longitude          *float64     `json:"longitude,omitempty"`
	HealthStatus       HealthStatus `json:"health_status"`
	Active             bool         `json:"active"`
	Notes              string       `json:"notes"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// createPlantHandler godoc
// @Summary Registrar una planta
// @Description Crea una planta del usuario autenticado con sus condiciones actuales. profile_id es opcional (especie fuera de catálogo => el motor usa 7 días base).
// @Tags plants
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param payload body createPlantRequest true "Datos de la planta"
// @Success 201 {object} plantResponse
// @Failure 400 {string} string "invalid json / datos inválidos"
// @Failure 401 {string} string "unauthorized"
// @Router /plants [post]
func createPlantHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createPlantRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			ProfileID:          req.ProfileID,
			Name:               req.Name,
			Location:           req.Location,
			PotSize:            req.PotSize,
			SoilType:           req.SoilType,
			LightExposure:      req.LightExposure,
			AmbientTemperature: req.AmbientTemperature,
			Latitude:           req.Latitude,
			Longitude:          req.Longitude,
			Notes:              req.Notes,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toPlantResponse(p))
	}
}

// listPlantsHandler godoc
// @Summary Listar mis plantas
// @Tags plants
// @Produce json
// @Success 200 {array} plantResponse
// @Failure 401 {string} string "unauthorized"
// @Router /plants [get]
func listPlantsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByUser(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]plantResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPlantResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getPlantHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.GetOwned(r.Context(), chi.URLParam(r, "plantID"), claims.UserID)
		if err != nil {
			if errors.Is(err, ErrForbidden) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			http.Error(w, "plant not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toPlantResponse(p))
	}
}

func updatePlantHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req updatePlantRequest
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.UpdateConditions(r.Context(), chi.URLParam(r, "plantID"), claims.UserID, UpdateConditionsInput{
			Name:               req.Name,
			Location:           req.Location,
			PotSize:            req.PotSize,
			SoilType:           req.SoilType,
			LightExposure:      req.LightExposure,
			AmbientTemperature: req.AmbientTemperature,
			Latitude:           req.Latitude,
			Longitude:          req.Longitude,
			HealthStatus:       req.HealthStatus,
			Active:             req.Active,
			Notes:              req.Notes,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				http.Error(w, "plant not found", http.StatusNotFound)
			}
			return
		}

		writeJSON(w, http.StatusOK, toPlantResponse(p))
	}
}

func toPlantResponse(p PlantInstance) plantResponse {
	return plantResponse{
		ID:                 p.ID,
		UserID:             p.UserID,
		ProfileID:          p.ProfileID,
		Name:               p.Name,
		Location:           p.Location,
		PotSize:            p.PotSize,
		SoilType:           p.SoilType,
		LightExposure:      p.LightExposure,
		AmbientTemperature: p.AmbientTemperature,
		Latitude:           p.Latitude,
		Longitude:          p.Longitude,
		HealthStatus:       p.HealthStatus,
		Active:             p.Active,
		Notes:              p.Notes,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para no crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
