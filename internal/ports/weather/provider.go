package weather

import (
	"context"
	"time"
)

// Location es un par lat/lon para la consulta meteorológica.
type Location struct {
	Latitude  float64
	Longitude float64
}

// DefaultLocation se usa cuando la planta no tiene coordenadas (París).
var DefaultLocation = Location{Latitude: 48.8566, Longitude: 2.3522}

// Conditions son las condiciones actuales reducidas a lo que necesita
// el motor de riego.
type Conditions struct {
	TemperatureC float64
	HumidityPct  float64
	PressureHPa  float64
	WeatherMain  string
	WeatherDesc  string
	WindSpeedMS  float64

	// PrecipForecastMM es lluvia prevista en mm (0 si el proveedor no la da).
	PrecipForecastMM float64

	ObservedAt time.Time
}

// Provider consulta condiciones actuales para una localización.
// apiKey es la credencial del usuario (cada usuario registra la suya).
type Provider interface {
	Current(ctx context.Context, apiKey string, loc Location) (Conditions, error)
}

// KeySource resuelve la credencial de un usuario para un servicio externo.
// La persistencia real vive fuera de este core.
type KeySource interface {
	APIKey(ctx context.Context, userID, service string) (string, error)
}
