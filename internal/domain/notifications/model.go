package notifications

import (
	"strconv"
	"strings"
	"time"
)

// Notification es la entidad central del pipeline de despacho.
type Notification struct {
	ID     string
	UserID string
	Type   Type

	Title string
	Body  string

	ScheduledFor time.Time
	SentAt       *time.Time
	DeliveredAt  *time.Time
	OpenedAt     *time.Time

	Status   Status
	Priority int // 1-10, 10 es lo más urgente

	Channels []Channel

	// Metadata es opaca para el pipeline (plant_id, urgency_level, ...).
	Metadata map[string]string

	UserAction    string
	ActionTakenAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MetadataKeyPlantID referencia la planta que originó un recordatorio
// de riego; la usa el dedup del scheduler.
const MetadataKeyPlantID = "plant_id"

// Preference son los ajustes de un usuario para un tipo de notificación.
type Preference struct {
	ID     string
	UserID string
	Type   Type

	Enabled bool

	// Channels en orden de preferencia.
	Channels []Channel

	PreferredHour int // 0-23
	Frequency     Frequency

	// Ventana de silencio "HH:MM"; puede cruzar medianoche
	// (start > end). Vacías = sin ventana.
	QuietHoursStart string
	QuietHoursEnd   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// InQuietHours indica si t cae dentro de la ventana de silencio.
// Si la ventana cruza medianoche (start > end), "dentro" significa
// t >= start O t <= end.
func (p Preference) InQuietHours(t time.Time) bool {
	start, okS := parseClock(p.QuietHoursStart)
	end, okE := parseClock(p.QuietHoursEnd)
	if !okS || !okE {
		return false
	}

	cur := t.Hour()*60 + t.Minute()
	if start <= end {
		return cur >= start && cur <= end
	}
	return cur >= start || cur <= end
}

// parseClock convierte "HH:MM" a minutos desde medianoche.
func parseClock(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// Template es una plantilla reutilizable de título/cuerpo con
// variables {nombre}.
type Template struct {
	ID       string
	Type     Type
	Priority int

	TitleTemplate string
	BodyTemplate  string

	Variables []string
	Locale    string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Render sustituye cada {var} por su valor. Variables sin valor
// quedan tal cual (visible en QA, preferible a texto vacío).
func (t Template) Render(vars map[string]string) (title, body string) {
	title = t.TitleTemplate
	body = t.BodyTemplate
	for name, value := range vars {
		placeholder := "{" + name + "}"
		title = strings.ReplaceAll(title, placeholder, value)
		body = strings.ReplaceAll(body, placeholder, value)
	}
	return title, body
}

// DeliveryLogEntry es el registro inmutable de un intento de entrega
// por canal. Append-only: nunca se edita.
type DeliveryLogEntry struct {
	ID             string
	NotificationID string
	Channel        Channel

	Success      bool
	ErrorMessage string

	Provider   string
	ProviderID string

	AttemptedAt time.Time
}
