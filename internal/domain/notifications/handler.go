package notifications

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"plant-care-service/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/notifications", func(nr chi.Router) {
		nr.Get("/", listNotificationsHandler(svc))
		nr.Post("/schedule", scheduleNotificationHandler(svc))
		nr.Post("/test", sendTestNotificationHandler(svc))
		nr.Get("/stats", notificationStatsHandler(svc))
		nr.Get("/preferences", getPreferencesHandler(svc))
		nr.Put("/preferences", updatePreferencesHandler(svc))
		nr.Get("/{notificationID}", getNotificationHandler(svc))
		nr.Get("/{notificationID}/delivery-logs", deliveryLogsHandler(svc))
		nr.Post("/{notificationID}/cancel", cancelNotificationHandler(svc))
		nr.Post("/{notificationID}/dismiss", dismissNotificationHandler(svc))
		nr.Post("/{notificationID}/mark-opened", markOpenedHandler(svc))
		nr.Post("/{notificationID}/mark-acted", markActedHandler(svc))
	})
}

type notificationResponse struct {
	ID            string            `json:"id"`
	UserID        string            `json:"user_id"`
	Type          Type              `json:"type"`
	Title         string            `json:"title"`
	Body          string            `json:"body"`
	ScheduledFor  time.Time         `json:"scheduled_for"`
	SentAt        *time.Time        `json:"sent_at,omitempty"`
	DeliveredAt   *time.Time        `json:"delivered_at,omitempty"`
	OpenedAt      *time.Time        `json:"opened_at,omitempty"`
	Status        Status            `json:"status"`
	Priority      int               `json:"priority"`
	Channels      []Channel         `json:"channels"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	UserAction    string            `json:"user_action,omitempty"`
	ActionTakenAt *time.Time        `json:"action_taken_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

type preferenceResponse struct {
	ID              string    `json:"id"`
	Type            Type      `json:"notification_type"`
	Enabled         bool      `json:"enabled"`
	Channels        []Channel `json:"channels"`
	PreferredHour   int       `json:"preferred_hour"`
	Frequency       Frequency `json:"frequency"`
	QuietHoursStart string    `json:"quiet_hours_start,omitempty"`
	QuietHoursEnd   string    `json:"quiet_hours_end,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// listNotificationsHandler godoc
// @Summary Listar mis notificaciones
// @Description Historial del usuario, más recientes primero. Filtros opcionales por estado, tipo y límite/offset.
// @Tags notifications
// @Produce json
// @Param status query string false "Filtrar por estado (scheduled, sent, ...)"
// @Param type query string false "Filtrar por tipo (watering, harvest, ...)"
// @Param limit query int false "Máximo de resultados (default 50)"
// @Param offset query int false "Offset de paginación"
// @Success 200 {array} notificationResponse
// @Failure 401 {string} string "unauthorized"
// @Router /notifications [get]
func listNotificationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		q := r.URL.Query()
		filter := ListFilter{
			Status: Status(q.Get("status")),
			Type:   Type(q.Get("type")),
			Limit:  50,
		}
		if v := q.Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 200 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			filter.Limit = n
		}
		if v := q.Get("offset"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				http.Error(w, "invalid offset", http.StatusBadRequest)
				return
			}
			filter.Offset = n
		}

		items, err := svc.ListByUser(r.Context(), claims.UserID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]notificationResponse, 0, len(items))
		for _, n := range items {
			out = append(out, toNotificationResponse(n))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getNotificationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		n, err := svc.Get(r.Context(), chi.URLParam(r, "notificationID"), claims.UserID)
		if err != nil {
			if errors.Is(err, ErrForbidden) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			http.Error(w, "notification not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toNotificationResponse(n))
	}
}

type scheduleNotificationRequest struct {
	Type         string            `json:"notification_type"`
	Title        string            `json:"title"`
	Body         string            `json:"body"`
	ScheduledFor string            `json:"scheduled_for"` // RFC3339; vacío => hora óptima de hoy
	Priority     int               `json:"priority"`
	Channels     []string          `json:"channels"`
	Metadata     map[string]string `json:"metadata"`
}

// scheduleNotificationHandler godoc
// @Summary Programar una notificación
// @Description Crea una notificación en estado scheduled. Sin scheduled_for, el motor elige la hora óptima del usuario para ese tipo.
// @Tags notifications
// @Accept json
// @Produce json
// @Param payload body scheduleNotificationRequest true "Notificación a programar"
// @Success 201 {object} notificationResponse
// @Failure 400 {string} string "invalid json / datos inválidos"
// @Failure 401 {string} string "unauthorized"
// @Router /notifications/schedule [post]
func scheduleNotificationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req scheduleNotificationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var scheduledFor time.Time
		if strings.TrimSpace(req.ScheduledFor) != "" {
			t, err := time.Parse(time.RFC3339, req.ScheduledFor)
			if err != nil {
				http.Error(w, "scheduled_for must be RFC3339", http.StatusBadRequest)
				return
			}
			scheduledFor = t
		}

		n, err := svc.Schedule(r.Context(), claims.UserID, ScheduleInput{
			Type:         Type(strings.TrimSpace(req.Type)),
			Title:        req.Title,
			Body:         req.Body,
			ScheduledFor: scheduledFor,
			Priority:     req.Priority,
			Channels:     req.Channels,
			Metadata:     req.Metadata,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toNotificationResponse(n))
	}
}

type testNotificationRequest struct {
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Channels []string `json:"channels"`
}

// sendTestNotificationHandler godoc
// @Summary Enviar una notificación de prueba
// @Description Crea y despacha de inmediato una notificación de tipo test por los canales indicados (default push). El status del resultado refleja el envío.
// @Tags notifications
// @Accept json
// @Produce json
// @Param payload body testNotificationRequest false "Contenido de prueba"
// @Success 200 {object} notificationResponse
// @Failure 401 {string} string "unauthorized"
// @Router /notifications/test [post]
func sendTestNotificationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req testNotificationRequest
		if r.Body != nil {
			// Cuerpo opcional: un POST vacío manda el test por defecto.
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		n, err := svc.SendTest(r.Context(), claims.UserID, req.Title, req.Body, req.Channels)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusOK, toNotificationResponse(n))
	}
}

// getPreferencesHandler godoc
// @Summary Mis preferencias de notificación
// @Description Una preferencia por tipo conocido; se crean con defaults en la primera consulta.
// @Tags notifications
// @Produce json
// @Success 200 {array} preferenceResponse
// @Failure 401 {string} string "unauthorized"
// @Router /notifications/preferences [get]
func getPreferencesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		prefs, err := svc.GetPreferences(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]preferenceResponse, 0, len(prefs))
		for _, p := range prefs {
			out = append(out, toPreferenceResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type preferenceUpdateRequest struct {
	Type            string   `json:"notification_type"`
	Enabled         *bool    `json:"enabled"`
	Channels        []string `json:"channels"`
	PreferredHour   *int     `json:"preferred_hour"`
	Frequency       *string  `json:"frequency"`
	QuietHoursStart *string  `json:"quiet_hours_start"`
	QuietHoursEnd   *string  `json:"quiet_hours_end"`
}

// updatePreferencesHandler godoc
// @Summary Actualizar preferencias de notificación
// @Description Acepta una lista de parches parciales. Tipos desconocidos se ignoran; un valor inválido rechaza toda la petición.
// @Tags notifications
// @Accept json
// @Produce json
// @Param payload body []preferenceUpdateRequest true "Parches por tipo"
// @Success 200 {array} preferenceResponse
// @Failure 400 {string} string "invalid json / datos inválidos"
// @Failure 401 {string} string "unauthorized"
// @Router /notifications/preferences [put]
func updatePreferencesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var reqs []preferenceUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		updates := make([]PreferenceUpdate, 0, len(reqs))
		for _, req := range reqs {
			updates = append(updates, PreferenceUpdate{
				Type:            Type(strings.TrimSpace(req.Type)),
				Enabled:         req.Enabled,
				Channels:        req.Channels,
				PreferredHour:   req.PreferredHour,
				Frequency:       req.Frequency,
				QuietHoursStart: req.QuietHoursStart,
				QuietHoursEnd:   req.QuietHoursEnd,
			})
		}

		prefs, err := svc.UpdatePreferences(r.Context(), claims.UserID, updates)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		out := make([]preferenceResponse, 0, len(prefs))
		for _, p := range prefs {
			out = append(out, toPreferenceResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type deliveryLogResponse struct {
	ID           string    `json:"id"`
	Channel      Channel   `json:"channel"`
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Provider     string    `json:"provider,omitempty"`
	ProviderID   string    `json:"provider_id,omitempty"`
	AttemptedAt  time.Time `json:"attempted_at"`
}

func deliveryLogsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		logs, err := svc.DeliveryLogs(r.Context(), chi.URLParam(r, "notificationID"), claims.UserID)
		if err != nil {
			if errors.Is(err, ErrForbidden) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			http.Error(w, "notification not found", http.StatusNotFound)
			return
		}

		out := make([]deliveryLogResponse, 0, len(logs))
		for _, e := range logs {
			out = append(out, deliveryLogResponse{
				ID:           e.ID,
				Channel:      e.Channel,
				Success:      e.Success,
				ErrorMessage: e.ErrorMessage,
				Provider:     e.Provider,
				ProviderID:   e.ProviderID,
				AttemptedAt:  e.AttemptedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type statsResponse struct {
	Total      int            `json:"total"`
	ByStatus   map[Status]int `json:"by_status"`
	ByType     map[Type]int   `json:"by_type"`
	PeriodDays int            `json:"period_days"`
}

// notificationStatsHandler godoc
// @Summary Estadísticas de notificaciones
// @Tags notifications
// @Produce json
// @Param days query int false "Período en días (default 30)"
// @Success 200 {object} statsResponse
// @Failure 401 {string} string "unauthorized"
// @Router /notifications/stats [get]
func notificationStatsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		days := 0
		if v := r.URL.Query().Get("days"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 365 {
				http.Error(w, "invalid days", http.StatusBadRequest)
				return
			}
			days = n
		}

		st, err := svc.StatsForUser(r.Context(), claims.UserID, days)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, statsResponse{
			Total:      st.Total,
			ByStatus:   st.ByStatus,
			ByType:     st.ByType,
			PeriodDays: st.PeriodDays,
		})
	}
}

func cancelNotificationHandler(svc *Service) http.HandlerFunc {
	return transitionHandler(svc, func(r *http.Request, svc *Service, id, userID string) (Notification, error) {
		return svc.Cancel(r.Context(), id, userID)
	})
}

func dismissNotificationHandler(svc *Service) http.HandlerFunc {
	return transitionHandler(svc, func(r *http.Request, svc *Service, id, userID string) (Notification, error) {
		return svc.Dismiss(r.Context(), id, userID)
	})
}

func markOpenedHandler(svc *Service) http.HandlerFunc {
	return transitionHandler(svc, func(r *http.Request, svc *Service, id, userID string) (Notification, error) {
		return svc.MarkOpened(r.Context(), id, userID)
	})
}

type markActedRequest struct {
	Action string `json:"action"`
}

// markActedHandler godoc
// @Summary Marcar una notificación como accionada
// @Description Registra la acción que el usuario tomó a partir de la notificación (p. ej. watered).
// @Tags notifications
// @Accept json
// @Produce json
// @Param notificationID path string true "ID de la notificación"
// @Param payload body markActedRequest true "Acción tomada"
// @Success 200 {object} notificationResponse
// @Failure 400 {string} string "invalid json / transición inválida"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "notification not found"
// @Router /notifications/{notificationID}/mark-acted [post]
func markActedHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req markActedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		n, err := svc.MarkActedUpon(r.Context(), chi.URLParam(r, "notificationID"), claims.UserID, req.Action)
		if err != nil {
			writeTransitionError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toNotificationResponse(n))
	}
}

// transitionHandler factoriza cancel/dismiss/mark-opened: misma
// autenticación, misma traducción de errores.
func transitionHandler(svc *Service, op func(r *http.Request, svc *Service, id, userID string) (Notification, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		n, err := op(r, svc, chi.URLParam(r, "notificationID"), claims.UserID)
		if err != nil {
			writeTransitionError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toNotificationResponse(n))
	}
}

func writeTransitionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, "notification not found", http.StatusNotFound)
	}
}

func toNotificationResponse(n Notification) notificationResponse {
	return notificationResponse{
		ID:            n.ID,
		UserID:        n.UserID,
		Type:          n.Type,
		Title:         n.Title,
		Body:          n.Body,
		ScheduledFor:  n.ScheduledFor,
		SentAt:        n.SentAt,
		DeliveredAt:   n.DeliveredAt,
		OpenedAt:      n.OpenedAt,
		Status:        n.Status,
		Priority:      n.Priority,
		Channels:      n.Channels,
		Metadata:      n.Metadata,
		UserAction:    n.UserAction,
		ActionTakenAt: n.ActionTakenAt,
		CreatedAt:     n.CreatedAt,
		UpdatedAt:     n.UpdatedAt,
	}
}

func toPreferenceResponse(p Preference) preferenceResponse {
	return preferenceResponse{
		ID:              p.ID,
		Type:            p.Type,
		Enabled:         p.Enabled,
		Channels:        p.Channels,
		PreferredHour:   p.PreferredHour,
		Frequency:       p.Frequency,
		QuietHoursStart: p.QuietHoursStart,
		QuietHoursEnd:   p.QuietHoursEnd,
		UpdatedAt:       p.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para no crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
