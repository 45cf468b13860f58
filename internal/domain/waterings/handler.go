package waterings

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"plant-care-service/internal/domain/plants"
	"plant-care-service/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, plantsSvc *plants.Service) {
	r.Route("/plants/{plantID}/waterings", func(wr chi.Router) {
		wr.Post("/", recordWateringHandler(svc, plantsSvc))
		wr.Get("/", listWateringsHandler(svc, plantsSvc))
	})
}

type recordWateringRequest struct {
	WateredAt string `json:"watered_at"` // RFC3339 opcional; vacío => ahora
	AmountML  *int   `json:"amount_ml"`
	WaterType string `json:"water_type"`
	Notes     string `json:"notes"`
}

type wateringResponse struct {
	ID        string    `json:"id"`
	PlantID   string    `json:"plant_id"`
	WateredAt time.Time `json:"watered_at"`
	AmountML  *int      `json:"amount_ml,omitempty"`
	WaterType WaterType `json:"water_type,omitempty"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// recordWateringHandler godoc
// @Summary Registrar un riego
// @Description Agrega un evento de riego al historial de la planta. Solo el dueño puede registrar riegos.
// @Tags waterings
// @Accept json
// @Produce json
// @Param plantID path string true "ID de la planta"
// @Param payload body recordWateringRequest true "Datos del riego; watered_at en RFC3339 (vacío = ahora)"
// @Success 201 {object} wateringResponse
// @Failure 400 {string} string "invalid json / datos inválidos"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "plant not found"
// @Router /plants/{plantID}/waterings [post]
func recordWateringHandler(svc *Service, plantsSvc *plants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		plantID := chi.URLParam(r, "plantID")
		if _, err := plantsSvc.GetOwned(r.Context(), plantID, claims.UserID); err != nil {
			if errors.Is(err, plants.ErrForbidden) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			http.Error(w, "plant not found", http.StatusNotFound)
			return
		}

		var req recordWateringRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var wateredAt time.Time
		if strings.TrimSpace(req.WateredAt) != "" {
			t, err := time.Parse(time.RFC3339, req.WateredAt)
			if err != nil {
				http.Error(w, "watered_at must be RFC3339", http.StatusBadRequest)
				return
			}
			wateredAt = t
		}

		e, err := svc.Record(r.Context(), plantID, RecordInput{
			WateredAt: wateredAt,
			AmountML:  req.AmountML,
			WaterType: req.WaterType,
			Notes:     req.Notes,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toWateringResponse(e))
	}
}

// listWateringsHandler godoc
// @Summary Historial de riegos
// @Tags waterings
// @Produce json
// @Param plantID path string true "ID de la planta"
// @Param limit query int false "Máximo de eventos (default 10)"
// @Success 200 {array} wateringResponse
// @Router /plants/{plantID}/waterings [get]
func listWateringsHandler(svc *Service, plantsSvc *plants.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		plantID := chi.URLParam(r, "plantID")
		if _, err := plantsSvc.GetOwned(r.Context(), plantID, claims.UserID); err != nil {
			if errors.Is(err, plants.ErrForbidden) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			http.Error(w, "plant not found", http.StatusNotFound)
			return
		}

		limit := 10
		if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}

		items, err := svc.ListRecent(r.Context(), plantID, limit)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]wateringResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toWateringResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toWateringResponse(e WateringEvent) wateringResponse {
	return wateringResponse{
		ID:        e.ID,
		PlantID:   e.PlantID,
		WateredAt: e.WateredAt,
		AmountML:  e.AmountML,
		WaterType: e.WaterType,
		Notes:     e.Notes,
		CreatedAt: e.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
