package plants

import "time"

// HealthStatus define el estado de salud de la planta.
// @Enum healthy, sick, dying, dead
type HealthStatus string

const (
	HealthHealthy HealthStatus = "healthy"
	HealthSick    HealthStatus = "sick"
	HealthDying   HealthStatus = "dying"
	HealthDead    HealthStatus = "dead"
)

// CareProfile es la ficha de especie (datos de referencia, read-only
// para este servicio: el catálogo lo mantiene otro sistema).
type CareProfile struct {
	ID             string
	ScientificName string
	CommonName     string

	// BaseWateringDays es el intervalo recomendado entre riegos.
	// 0 = desconocido (el motor usa 7.0 por defecto).
	BaseWateringDays float64

	Light    string
	Humidity string
	Toxicity string
}

// PlantInstance es una planta concreta de un usuario, con sus
// condiciones ambientales actuales.
type PlantInstance struct {
	ID        string
	UserID    string
	ProfileID string // puede estar vacío si la especie no está en el catálogo

	Name     string
	Location string // texto libre ("salón", "balcón norte")

	// Condiciones que afectan al cálculo de riego
	PotSize            string
	SoilType           string
	LightExposure      string
	AmbientTemperature *float64

	// Coordenadas para la consulta meteorológica
	Latitude  *float64
	Longitude *float64

	HealthStatus HealthStatus
	Active       bool
	Notes        string

	CreatedAt time.Time
	UpdatedAt time.Time
}
