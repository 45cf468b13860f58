package notifications

// Type define los tipos de notificación soportados.
// @Enum watering, harvest, planting, maintenance, weather_alert, plant_care_guide, test
type Type string

const (
	TypeWatering     Type = "watering"
	TypeHarvest      Type = "harvest"
	TypePlanting     Type = "planting"
	TypeMaintenance  Type = "maintenance"
	TypeWeatherAlert Type = "weather_alert"
	TypeCareGuide    Type = "plant_care_guide"
	TypeTest         Type = "test"
)

// KnownTypes en orden estable (para crear preferencias por defecto).
var KnownTypes = []Type{
	TypeWatering,
	TypeHarvest,
	TypePlanting,
	TypeMaintenance,
	TypeWeatherAlert,
	TypeCareGuide,
}

func ValidType(t Type) bool {
	switch t {
	case TypeWatering, TypeHarvest, TypePlanting, TypeMaintenance,
		TypeWeatherAlert, TypeCareGuide, TypeTest:
		return true
	}
	return false
}

// Status es la máquina de estados de una notificación:
//
//	scheduled -> sent -> delivered -> opened -> acted_upon
//
// con salidas alternativas dismissed (desde scheduled/sent),
// cancelled (solo desde scheduled) y failed. Las transiciones son
// unidireccionales; de un estado terminal solo se sale por el purge.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusOpened    Status = "opened"
	StatusActedUpon Status = "acted_upon"
	StatusDismissed Status = "dismissed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Terminal indica si el estado no admite más transiciones.
func (s Status) Terminal() bool {
	switch s {
	case StatusDelivered, StatusOpened, StatusActedUpon,
		StatusDismissed, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// TerminalStatuses son los estados que el cleanup puede purgar.
var TerminalStatuses = []Status{
	StatusDelivered,
	StatusOpened,
	StatusActedUpon,
	StatusDismissed,
	StatusFailed,
}

// Channel es el conjunto cerrado de canales de entrega.
// @Enum push, email, sms, in_app
type Channel string

const (
	ChannelPush  Channel = "push"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelInApp Channel = "in_app"
)

func ValidChannel(c Channel) bool {
	switch c {
	case ChannelPush, ChannelEmail, ChannelSMS, ChannelInApp:
		return true
	}
	return false
}

// Frequency modula cuántas notificaciones de un tipo quiere el usuario.
// @Enum normal, reduced, minimal
type Frequency string

const (
	FrequencyNormal  Frequency = "normal"
	FrequencyReduced Frequency = "reduced"
	FrequencyMinimal Frequency = "minimal"
)

func ValidFrequency(f Frequency) bool {
	switch f {
	case FrequencyNormal, FrequencyReduced, FrequencyMinimal:
		return true
	}
	return false
}
