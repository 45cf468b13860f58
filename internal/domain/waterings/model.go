package waterings

import "time"

// WaterType define los tipos de agua conocidos.
// @Enum tap, filtered, rainwater, distilled, other
type WaterType string

const (
	WaterTap       WaterType = "tap"
	WaterFiltered  WaterType = "filtered"
	WaterRainwater WaterType = "rainwater"
	WaterDistilled WaterType = "distilled"
	WaterOther     WaterType = "other"
)

// WateringEvent es un registro de riego. Historial append-only:
// nunca se edita ni se borra.
type WateringEvent struct {
	ID      string
	PlantID string

	WateredAt time.Time
	AmountML  *int
	WaterType WaterType
	Notes     string

	CreatedAt time.Time
}
