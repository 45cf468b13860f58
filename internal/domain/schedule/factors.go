package schedule

import (
	"strings"
	"time"

	"plant-care-service/internal/domain/plants"
	"plant-care-service/internal/domain/waterings"
	"plant-care-service/internal/ports/weather"
)

const (
	// defaultBaseDays se usa cuando la especie no está en catálogo
	// o no declara intervalo.
	defaultBaseDays = 7.0

	// maxHistoryEvents limita cuántos riegos mira el factor histórico.
	maxHistoryEvents = 10
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// weatherFactor reduce las condiciones actuales a un factor en [0.5, 2.0].
// Valores < 1.0 acortan el intervalo (más calor/menos humedad => regar más
// seguido). Sin datos => 1.0 neutro.
func weatherFactor(c *weather.Conditions) float64 {
	if c == nil {
		return 1.0
	}

	// Referencias: 20°C y 60% de humedad.
	tempFactor := clamp(1.0+(c.TemperatureC-20)*0.02, 0.5, 2.0)
	humidityFactor := clamp(1.0-(c.HumidityPct-60)*0.01, 0.5, 2.0)

	return clamp((tempFactor+humidityFactor)/2, 0.5, 2.0)
}

// seasonFactor: marzo-agosto es la mitad de crecimiento activo.
func seasonFactor(t time.Time) float64 {
	month := int(t.Month())
	if month >= 3 && month <= 8 {
		return 0.8
	}
	return 1.3
}

// plantFactor combina los ajustes por maceta, sustrato, luz y temperatura
// ambiente. Matching por substring case-insensitive contra vocabulario
// conocido (francés del producto, más equivalentes en inglés); valores
// no reconocidos son neutros. Resultado en [0.5, 2.0].
func plantFactor(p plants.PlantInstance) float64 {
	factor := 1.0

	if pot := strings.ToLower(p.PotSize); pot != "" {
		switch {
		case containsAny(pot, "small", "petit"):
			factor *= 0.8
		case containsAny(pot, "large", "grand"):
			factor *= 1.2
		}
	}

	if soil := strings.ToLower(p.SoilType); soil != "" {
		switch {
		case containsAny(soil, "drainant", "sable", "sandy"):
			factor *= 0.9
		case containsAny(soil, "retenteur", "terreau", "retentive"):
			factor *= 1.1
		}
	}

	if light := strings.ToLower(p.LightExposure); light != "" {
		switch {
		case containsAny(light, "direct", "fort", "strong"):
			factor *= 0.9
		case containsAny(light, "faible", "ombre", "shade", "weak"):
			factor *= 1.1
		}
	}

	if p.AmbientTemperature != nil {
		switch {
		case *p.AmbientTemperature > 25:
			factor *= 0.9
		case *p.AmbientTemperature < 18:
			factor *= 1.1
		}
	}

	return clamp(factor, 0.5, 2.0)
}

// historyFactor compara la frecuencia observada (promedio de gaps entre
// riegos consecutivos, ignorando gaps no positivos) contra la frecuencia
// base. Si el usuario riega bastante menos seguido que el plan (> +20%),
// alarga el plan; si riega bastante más seguido (< -20%), lo acorta.
func historyFactor(events []waterings.WateringEvent, base float64) float64 {
	if len(events) < 2 {
		return 1.0
	}
	if len(events) > maxHistoryEvents {
		events = events[:maxHistoryEvents]
	}

	// events viene ordenado del más reciente al más viejo.
	var total float64
	var count int
	for i := 0; i < len(events)-1; i++ {
		gap := events[i].WateredAt.Sub(events[i+1].WateredAt).Hours() / 24
		if gap > 0 {
			total += gap
			count++
		}
	}
	if count == 0 {
		return 1.0
	}

	avg := total / float64(count)
	switch {
	case avg > base*1.2:
		return 1.1
	case avg < base*0.8:
		return 0.9
	default:
		return 1.0
	}
}

// urgencyFor clasifica los días restantes (pueden ser negativos).
func urgencyFor(daysUntilNext int) Urgency {
	switch {
	case daysUntilNext <= 0:
		return UrgencyUrgent
	case daysUntilNext == 1:
		return UrgencyHigh
	case daysUntilNext <= 3:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

func containsAny(s string, tokens ...string) bool {
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}
