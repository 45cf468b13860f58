package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"plant-care-service/internal/router"
)

func TestHTTP_EndToEnd_PlantCareFlow(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	ownerID := "user-1"
	strangerID := "user-2"

	// 1) Owner registra su planta contra el catálogo
	plantID := createPlant(t, ts.URL, ownerID, map[string]any{
		"profile_id":     "monstera-deliciosa",
		"name":           "Monstera du salon",
		"location":       "salon",
		"pot_size":       "grand pot",
		"soil_type":      "terreau",
		"light_exposure": "lumière indirecte",
	})

	// 2) Otro usuario no puede verla
	{
		st, _ := doReq(t, ts.URL, "GET", "/plants/"+plantID, strangerID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 get plant by stranger, got %d", st)
		}
	}

	// 3) Owner registra un riego
	{
		st, body := doReq(t, ts.URL, "POST", "/plants/"+plantID+"/waterings", ownerID, map[string]any{
			"watered_at": time.Now().UTC().Add(-48 * time.Hour).Format(time.RFC3339),
			"amount_ml":  250,
			"water_type": "tap",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 record watering, got %d body=%s", st, string(body))
		}
	}

	// 4) El calendario sale con el riego como ancla
	{
		st, body := doReq(t, ts.URL, "GET", "/plants/"+plantID+"/watering-schedule", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 schedule, got %d body=%s", st, string(body))
		}

		var resp struct {
			AdjustedFrequencyDays int     `json:"adjusted_frequency_days"`
			LastWatering          *string `json:"last_watering"`
			Urgency               string  `json:"urgency"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.AdjustedFrequencyDays < 1 || resp.AdjustedFrequencyDays > 30 {
			t.Fatalf("adjusted frequency out of range: %d", resp.AdjustedFrequencyDays)
		}
		if resp.LastWatering == nil {
			t.Fatalf("expected last_watering set, body=%s", string(body))
		}
		if resp.Urgency == "" {
			t.Fatalf("expected urgency set, body=%s", string(body))
		}
	}

	// 5) Preferencias: nacen con defaults para todos los tipos
	{
		st, body := doReq(t, ts.URL, "GET", "/notifications/preferences", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 preferences, got %d body=%s", st, string(body))
		}
		var prefs []map[string]any
		_ = json.Unmarshal(body, &prefs)
		if len(prefs) != 6 {
			t.Fatalf("expected 6 default preferences, got %d body=%s", len(prefs), string(body))
		}
	}

	// 6) Owner ajusta la hora del recordatorio de riego
	{
		st, body := doReq(t, ts.URL, "PUT", "/notifications/preferences", ownerID, []map[string]any{
			{"notification_type": "watering", "preferred_hour": 8},
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 update preferences, got %d body=%s", st, string(body))
		}
	}

	// 7) Programa una notificación manual y la cancela
	notifID := scheduleNotification(t, ts.URL, ownerID, map[string]any{
		"notification_type": "maintenance",
		"title":             "Rempoter la monstera",
		"body":              "Le pot est devenu trop petit.",
		"scheduled_for":     time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339),
	})
	{
		st, body := doReq(t, ts.URL, "POST", "/notifications/"+notifID+"/cancel", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 cancel, got %d body=%s", st, string(body))
		}
		var resp struct {
			Status string `json:"status"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Status != "cancelled" {
			t.Fatalf("expected cancelled, got %q", resp.Status)
		}
	}

	// 8) Cancelar dos veces es transición inválida
	{
		st, _ := doReq(t, ts.URL, "POST", "/notifications/"+notifID+"/cancel", ownerID, nil)
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 double cancel, got %d", st)
		}
	}

	// 9) Notificación de prueba por in_app: se envía al instante
	{
		st, body := doReq(t, ts.URL, "POST", "/notifications/test", ownerID, map[string]any{
			"channels": []string{"in_app"},
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 test notification, got %d body=%s", st, string(body))
		}
		var resp struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Status != "sent" {
			t.Fatalf("expected sent test notification, got %q body=%s", resp.Status, string(body))
		}

		// y deja rastro en el delivery log
		st, body = doReq(t, ts.URL, "GET", "/notifications/"+resp.ID+"/delivery-logs", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 delivery logs, got %d body=%s", st, string(body))
		}
		var logs []map[string]any
		_ = json.Unmarshal(body, &logs)
		if len(logs) == 0 {
			t.Fatalf("expected at least one delivery log entry")
		}
	}

	// 10) El historial del usuario lista ambas notificaciones
	{
		st, body := doReq(t, ts.URL, "GET", "/notifications", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list notifications, got %d body=%s", st, string(body))
		}
		var items []map[string]any
		_ = json.Unmarshal(body, &items)
		if len(items) != 2 {
			t.Fatalf("expected 2 notifications, got %d body=%s", len(items), string(body))
		}
	}

	// 11) Un extraño no ve las notificaciones del owner
	{
		st, _ := doReq(t, ts.URL, "GET", "/notifications/"+notifID, strangerID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 get notification by stranger, got %d", st)
		}
	}
}

func TestHTTP_Validation(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	userID := "user-1"

	// planta sin nombre => 400
	{
		st, _ := doReq(t, ts.URL, "POST", "/plants", userID, map[string]any{
			"location": "cuisine",
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 plant without name, got %d", st)
		}
	}

	// canal desconocido en preferencias => 400
	{
		st, _ := doReq(t, ts.URL, "PUT", "/notifications/preferences", userID, []map[string]any{
			{"notification_type": "watering", "channels": []string{"pigeon"}},
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 unknown channel, got %d", st)
		}
	}

	// sin user => 401
	{
		st, _ := doReq(t, ts.URL, "GET", "/plants", "", nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without user, got %d", st)
		}
	}
}

func createPlant(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/plants", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create plant, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create plant: missing id body=%s", string(body))
	}
	return resp.ID
}

func scheduleNotification(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/notifications/schedule", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 schedule notification, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("schedule notification: missing id body=%s", string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
