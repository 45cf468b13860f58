package notifications

import (
	"strings"
	"testing"
	"time"

	"plant-care-service/internal/ports/weather"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, time.June, 10, hour, minute, 0, 0, time.UTC)
}

func TestInQuietHours_VentanaQueCruzaMedianoche(t *testing.T) {
	p := Preference{QuietHoursStart: "22:00", QuietHoursEnd: "08:00"}

	if !p.InQuietHours(at(2, 0)) {
		t.Fatalf("02:00 should be inside 22:00-08:00")
	}
	if !p.InQuietHours(at(23, 30)) {
		t.Fatalf("23:30 should be inside 22:00-08:00")
	}
	if p.InQuietHours(at(10, 0)) {
		t.Fatalf("10:00 should be outside 22:00-08:00")
	}

	// Bordes inclusivos.
	if !p.InQuietHours(at(22, 0)) || !p.InQuietHours(at(8, 0)) {
		t.Fatalf("window edges should be inside")
	}
}

func TestInQuietHours_VentanaNormal(t *testing.T) {
	p := Preference{QuietHoursStart: "12:00", QuietHoursEnd: "14:00"}

	if !p.InQuietHours(at(13, 0)) {
		t.Fatalf("13:00 should be inside 12:00-14:00")
	}
	if p.InQuietHours(at(15, 0)) {
		t.Fatalf("15:00 should be outside 12:00-14:00")
	}
}

func TestInQuietHours_SinVentana(t *testing.T) {
	var p Preference
	if p.InQuietHours(at(3, 0)) {
		t.Fatalf("empty window should never match")
	}

	rota := Preference{QuietHoursStart: "25:99", QuietHoursEnd: "08:00"}
	if rota.InQuietHours(at(3, 0)) {
		t.Fatalf("invalid window should never match")
	}
}

func TestTemplateRender(t *testing.T) {
	tpl := Template{
		TitleTemplate: "Arroser {plant_name}",
		BodyTemplate:  "Votre {plant_name} attend depuis {days} jours.",
	}

	title, body := tpl.Render(map[string]string{
		"plant_name": "Monstera",
		"days":       "3",
	})

	if title != "Arroser Monstera" {
		t.Fatalf("title = %q", title)
	}
	if body != "Votre Monstera attend depuis 3 jours." {
		t.Fatalf("body = %q", body)
	}
}

func TestTemplateRender_VariableSinValorQuedaVisible(t *testing.T) {
	tpl := Template{TitleTemplate: "Arroser {plant_name}"}
	title, _ := tpl.Render(nil)
	if title != "Arroser {plant_name}" {
		t.Fatalf("expected placeholder untouched, got %q", title)
	}
}

func TestBuildWateringContent_PorUrgencia(t *testing.T) {
	urgent := WateringReminderInput{PlantName: "Fernand", SpeciesName: "Monstera", UrgencyLevel: 9}
	title, _, priority := buildWateringContent(urgent)
	if priority != 9 {
		t.Fatalf("expected priority 9, got %d", priority)
	}
	if title != "🚨 Fernand a soif !" {
		t.Fatalf("unexpected urgent title %q", title)
	}

	medio := WateringReminderInput{PlantName: "Fernand", UrgencyLevel: 6}
	_, _, priority = buildWateringContent(medio)
	if priority != 7 {
		t.Fatalf("expected priority 7, got %d", priority)
	}

	suave := WateringReminderInput{PlantName: "Fernand", UrgencyLevel: 3}
	title, _, priority = buildWateringContent(suave)
	if priority != 5 {
		t.Fatalf("expected priority 5, got %d", priority)
	}
	if title != "🌱 Fernand aura bientôt besoin d'eau" {
		t.Fatalf("unexpected soft title %q", title)
	}
}

func TestWeatherContext_UnaSolaFrasePorPrioridad(t *testing.T) {
	if got := weatherContext(nil); got != "" {
		t.Fatalf("expected empty without weather, got %q", got)
	}

	// Lluvia gana aunque también haga calor y esté seco.
	lluvia := &weather.Conditions{PrecipForecastMM: 8, TemperatureC: 32, HumidityPct: 30}
	if got := weatherContext(lluvia); !strings.Contains(got, "Pluie") {
		t.Fatalf("expected rain sentence, got %q", got)
	}

	calor := &weather.Conditions{TemperatureC: 30, HumidityPct: 30}
	if got := weatherContext(calor); !strings.Contains(got, "Température") {
		t.Fatalf("expected heat sentence, got %q", got)
	}

	seco := &weather.Conditions{TemperatureC: 22, HumidityPct: 35}
	if got := weatherContext(seco); !strings.Contains(got, "Air sec") {
		t.Fatalf("expected dry-air sentence, got %q", got)
	}

	templado := &weather.Conditions{TemperatureC: 22, HumidityPct: 55}
	if got := weatherContext(templado); got != "" {
		t.Fatalf("expected no sentence for mild weather, got %q", got)
	}
}
