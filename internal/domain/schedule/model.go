package schedule

import (
	"time"

	"plant-care-service/internal/ports/weather"
)

// Urgency clasifica qué tan pronto hay que regar.
// @Enum urgent, high, medium, low
type Urgency string

const (
	UrgencyUrgent Urgency = "urgent"
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// Level proyecta el tier a la escala 0-10 que usan las notificaciones
// (el umbral de creación de recordatorios es >= 6).
func (u Urgency) Level() int {
	switch u {
	case UrgencyUrgent:
		return 9
	case UrgencyHigh:
		return 7
	case UrgencyMedium:
		return 5
	default:
		return 3
	}
}

// Factors expone cada factor intermedio del cálculo, para explicar
// el resultado y para los tests.
type Factors struct {
	Base    float64
	Season  float64
	Weather float64
	Plant   float64
	History float64
}

// Schedule es la recomendación de riego para una planta concreta.
type Schedule struct {
	PlantID string

	// AdjustedFrequencyDays es el intervalo final, entero en [1, 30].
	AdjustedFrequencyDays int

	LastWatering  *time.Time
	NextWatering  time.Time
	DaysUntilNext int
	Urgency       Urgency

	Factors Factors

	// Weather es el snapshot crudo usado en el cálculo (nil si no hubo datos).
	Weather *weather.Conditions

	CalculatedAt time.Time
}
