package notifications

import (
	"fmt"

	"plant-care-service/internal/ports/weather"
)

// WateringReminderInput es lo que el scheduler sabe de la planta al
// momento de sintetizar el recordatorio.
type WateringReminderInput struct {
	UserID       string
	PlantID      string
	PlantName    string
	SpeciesName  string // nombre común de la especie; vacío => se usa PlantName
	UrgencyLevel int    // escala 0-10
	Weather      *weather.Conditions
}

// buildWateringContent arma título, cuerpo y prioridad según urgencia.
// Textos en francés: es la copy del producto.
func buildWateringContent(in WateringReminderInput) (title, body string, priority int) {
	species := in.SpeciesName
	if species == "" {
		species = in.PlantName
	}

	switch {
	case in.UrgencyLevel >= 8:
		title = fmt.Sprintf("🚨 %s a soif !", in.PlantName)
		body = fmt.Sprintf("Votre %s semble avoir vraiment soif. Un arrosage est recommandé dès maintenant.", species)
		priority = 9
	case in.UrgencyLevel >= 6:
		title = fmt.Sprintf("💧 Temps d'arroser %s", in.PlantName)
		body = fmt.Sprintf("Votre %s a besoin d'être arrosée. Le moment est idéal pour l'arroser.", species)
		priority = 7
	default:
		title = fmt.Sprintf("🌱 %s aura bientôt besoin d'eau", in.PlantName)
		body = fmt.Sprintf("Votre %s aura bientôt besoin d'eau. Préparez-vous pour l'arrosage.", species)
		priority = 5
	}

	if extra := weatherContext(in.Weather); extra != "" {
		body += "\n\n" + extra
	}
	return title, body, priority
}

// weatherContext devuelve como máximo una frase contextual, elegida
// por prioridad: lluvia prevista > calor > aire seco. Sin datos o sin
// condición aplicable => vacío (el texto base se entrega igual).
func weatherContext(c *weather.Conditions) string {
	if c == nil {
		return ""
	}
	switch {
	case c.PrecipForecastMM > 5:
		return "☔ Pluie prévue dans les prochaines heures, vous pourriez reporter l'arrosage."
	case c.TemperatureC > 28:
		return "🌡️ Température élevée, arrosez de préférence tôt le matin ou en soirée."
	case c.HumidityPct < 40:
		return "💨 Air sec aujourd'hui, vos plantes peuvent avoir besoin d'un arrosage plus généreux."
	}
	return ""
}
