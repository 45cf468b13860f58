package notifications

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"plant-care-service/internal/platform/logger"
	"plant-care-service/internal/ports/channels"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("notification not found")
	ErrForbidden         = errors.New("notification belongs to another user")
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrBlocked: preferencia deshabilitada o ventana de silencio.
	ErrBlocked = errors.New("notification blocked by user preferences")
	// ErrRateLimited: algún tope anti-spam alcanzado.
	ErrRateLimited = errors.New("notification blocked by rate limits")
	// ErrDeliveryFailed: todos los canales fallaron.
	ErrDeliveryFailed = errors.New("delivery failed on every channel")
)

// defaultChannels cuando ni la notificación ni las preferencias
// traen canales.
var defaultChannels = []Channel{ChannelPush, ChannelInApp}

type defaultPref struct {
	channels  []Channel
	hour      int
	frequency Frequency
}

// defaultPrefs replica la tabla de defaults del producto: cada tipo
// nace habilitado con su hora y canales preferidos.
var defaultPrefs = map[Type]defaultPref{
	TypeWatering:     {channels: []Channel{ChannelPush, ChannelInApp}, hour: 9, frequency: FrequencyNormal},
	TypeHarvest:      {channels: []Channel{ChannelPush, ChannelInApp}, hour: 8, frequency: FrequencyNormal},
	TypePlanting:     {channels: []Channel{ChannelPush, ChannelInApp}, hour: 9, frequency: FrequencyNormal},
	TypeMaintenance:  {channels: []Channel{ChannelPush, ChannelInApp}, hour: 10, frequency: FrequencyReduced},
	TypeWeatherAlert: {channels: []Channel{ChannelPush, ChannelEmail}, hour: 7, frequency: FrequencyNormal},
	TypeCareGuide:    {channels: []Channel{ChannelInApp}, hour: 11, frequency: FrequencyReduced},
}

type Service struct {
	repo    Repository
	prefs   PreferenceRepository
	logs    DeliveryLogRepository
	senders map[Channel]channels.Sender
	guard   *SpamGuard
	log     logger.Logger
	now     func() time.Time
}

// NewService arma el pipeline de despacho. senders mapea cada canal a
// su adapter; un canal sin adapter se trata como no soportado al enviar.
func NewService(
	repo Repository,
	prefs PreferenceRepository,
	logs DeliveryLogRepository,
	senders map[Channel]channels.Sender,
	log logger.Logger,
) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:    repo,
		prefs:   prefs,
		logs:    logs,
		senders: senders,
		guard:   NewSpamGuard(repo, log),
		log:     log,
		now:     time.Now,
	}
}

// ---------------------------------------------------------------------
// Preferencias
// ---------------------------------------------------------------------

// GetPreferences devuelve las preferencias del usuario, creándolas con
// defaults la primera vez que se consultan.
func (s *Service) GetPreferences(ctx context.Context, userID string) ([]Preference, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}

	existing, err := s.prefs.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		sortPreferences(existing)
		return existing, nil
	}

	now := s.now()
	created := make([]Preference, 0, len(KnownTypes))
	for _, t := range KnownTypes {
		p := s.defaultPreference(userID, t, now)
		if err := s.prefs.Upsert(ctx, p); err != nil {
			return nil, err
		}
		created = append(created, p)
	}
	return created, nil
}

func (s *Service) defaultPreference(userID string, t Type, now time.Time) Preference {
	d, ok := defaultPrefs[t]
	if !ok {
		d = defaultPref{channels: defaultChannels, hour: 9, frequency: FrequencyNormal}
	}
	return Preference{
		ID:            uuid.NewString(),
		UserID:        userID,
		Type:          t,
		Enabled:       true,
		Channels:      append([]Channel(nil), d.channels...),
		PreferredHour: d.hour,
		Frequency:     d.frequency,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// preferenceFor resuelve la preferencia de un tipo concreto, con
// default si el usuario nunca la tocó.
func (s *Service) preferenceFor(ctx context.Context, userID string, t Type) Preference {
	prefs, err := s.GetPreferences(ctx, userID)
	if err != nil {
		s.log.Warn("preferences unavailable, using defaults", map[string]any{
			"user_id": userID, "err": err.Error(),
		})
		return s.defaultPreference(userID, t, s.now())
	}
	for _, p := range prefs {
		if p.Type == t {
			return p
		}
	}
	return s.defaultPreference(userID, t, s.now())
}

// PreferenceUpdate es un parche parcial de una preferencia.
type PreferenceUpdate struct {
	Type            Type
	Enabled         *bool
	Channels        []string // nil = no tocar
	PreferredHour   *int
	Frequency       *string
	QuietHoursStart *string // "HH:MM"; "" limpia la ventana
	QuietHoursEnd   *string
}

// UpdatePreferences aplica una lista de parches. Tipos desconocidos se
// ignoran; valores inválidos dentro de un parche rechazan toda la
// operación.
func (s *Service) UpdatePreferences(ctx context.Context, userID string, updates []PreferenceUpdate) ([]Preference, error) {
	if strings.TrimSpace(userID) == "" || len(updates) == 0 {
		return nil, ErrInvalidInput
	}

	current, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	byType := make(map[Type]Preference, len(current))
	for _, p := range current {
		byType[p.Type] = p
	}

	now := s.now()
	out := make([]Preference, 0, len(updates))

	for _, u := range updates {
		if !ValidType(u.Type) {
			continue
		}

		p, ok := byType[u.Type]
		if !ok {
			p = s.defaultPreference(userID, u.Type, now)
		}

		if u.Enabled != nil {
			p.Enabled = *u.Enabled
		}
		if u.Channels != nil {
			chs := make([]Channel, 0, len(u.Channels))
			for _, raw := range u.Channels {
				c := Channel(strings.TrimSpace(raw))
				if !ValidChannel(c) {
					return nil, ErrInvalidInput
				}
				chs = append(chs, c)
			}
			p.Channels = chs
		}
		if u.PreferredHour != nil {
			if *u.PreferredHour < 0 || *u.PreferredHour > 23 {
				return nil, ErrInvalidInput
			}
			p.PreferredHour = *u.PreferredHour
		}
		if u.Frequency != nil {
			f := Frequency(strings.TrimSpace(*u.Frequency))
			if !ValidFrequency(f) {
				return nil, ErrInvalidInput
			}
			p.Frequency = f
		}
		if u.QuietHoursStart != nil {
			v := strings.TrimSpace(*u.QuietHoursStart)
			if v != "" {
				if _, ok := parseClock(v); !ok {
					return nil, ErrInvalidInput
				}
			}
			p.QuietHoursStart = v
		}
		if u.QuietHoursEnd != nil {
			v := strings.TrimSpace(*u.QuietHoursEnd)
			if v != "" {
				if _, ok := parseClock(v); !ok {
					return nil, ErrInvalidInput
				}
			}
			p.QuietHoursEnd = v
		}

		p.UpdatedAt = now
		if err := s.prefs.Upsert(ctx, p); err != nil {
			return nil, err
		}
		byType[u.Type] = p
		out = append(out, p)
	}

	return out, nil
}

// ---------------------------------------------------------------------
// Gate de envío
// ---------------------------------------------------------------------

// CanSend devuelve true si (a) la preferencia del tipo está habilitada,
// (b) no estamos en la ventana de silencio y (c) el anti-spam lo permite.
// Se evalúa en cada envío, venga de donde venga la notificación.
func (s *Service) CanSend(ctx context.Context, userID string, t Type) bool {
	pref := s.preferenceFor(ctx, userID, t)
	if !pref.Enabled {
		return false
	}
	if pref.InQuietHours(s.now()) {
		return false
	}
	return s.guard.CanSend(ctx, userID, t)
}

// OptimalTime calcula cuándo enviar: hora preferida del usuario
// (default 9), sesgada a la mañana según el tipo, sobre targetDate
// (zero = hoy). Nunca devuelve un instante pasado: en ese caso,
// ahora + 5 minutos.
func (s *Service) OptimalTime(ctx context.Context, userID string, t Type, targetDate time.Time) time.Time {
	now := s.now()

	hour := 9
	if pref := s.preferenceFor(ctx, userID, t); pref.PreferredHour >= 0 && pref.PreferredHour <= 23 {
		hour = pref.PreferredHour
	}

	switch t {
	case TypeWatering:
		hour = min(hour, 10)
	case TypeHarvest:
		hour = min(hour, 11)
	case TypeWeatherAlert:
		hour = min(hour, 8)
	}

	day := targetDate
	if day.IsZero() {
		day = now
	}

	optimal := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, now.Location())
	if optimal.Before(now) {
		return now.Add(5 * time.Minute)
	}
	return optimal
}

// ---------------------------------------------------------------------
// Creación
// ---------------------------------------------------------------------

// ScheduleInput es la petición de programar una notificación arbitraria.
type ScheduleInput struct {
	Type         Type
	Title        string
	Body         string
	ScheduledFor time.Time // zero => OptimalTime de hoy
	Priority     int       // 0 => 5
	Channels     []string  // vacío => preferencias del usuario
	Metadata     map[string]string
}

// Schedule valida y persiste una notificación en estado scheduled.
func (s *Service) Schedule(ctx context.Context, userID string, in ScheduleInput) (Notification, error) {
	if strings.TrimSpace(userID) == "" {
		return Notification{}, ErrInvalidInput
	}
	if !ValidType(in.Type) {
		return Notification{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Body) == "" {
		return Notification{}, ErrInvalidInput
	}
	if in.Priority < 0 || in.Priority > 10 {
		return Notification{}, ErrInvalidInput
	}

	priority := in.Priority
	if priority == 0 {
		priority = 5
	}

	chs := make([]Channel, 0, len(in.Channels))
	for _, raw := range in.Channels {
		c := Channel(strings.TrimSpace(raw))
		if !ValidChannel(c) {
			return Notification{}, ErrInvalidInput
		}
		chs = append(chs, c)
	}

	scheduledFor := in.ScheduledFor
	if scheduledFor.IsZero() {
		scheduledFor = s.OptimalTime(ctx, userID, in.Type, time.Time{})
	}

	now := s.now()
	n := Notification{
		ID:           uuid.NewString(),
		UserID:       userID,
		Type:         in.Type,
		Title:        strings.TrimSpace(in.Title),
		Body:         strings.TrimSpace(in.Body),
		ScheduledFor: scheduledFor,
		Status:       StatusScheduled,
		Priority:     priority,
		Channels:     chs,
		Metadata:     in.Metadata,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return Notification{}, err
	}
	return n, nil
}

// CreateWateringReminder sintetiza el recordatorio de riego de una
// planta. Aplica el dedup: como máximo una notificación watering
// pendiente (scheduled o sent) por (usuario, planta). Devuelve false
// sin error cuando ya existía una.
func (s *Service) CreateWateringReminder(ctx context.Context, in WateringReminderInput) (Notification, bool, error) {
	if strings.TrimSpace(in.UserID) == "" || strings.TrimSpace(in.PlantID) == "" {
		return Notification{}, false, ErrInvalidInput
	}

	exists, err := s.repo.ExistsPendingWatering(ctx, in.UserID, in.PlantID)
	if err != nil {
		return Notification{}, false, err
	}
	if exists {
		return Notification{}, false, nil
	}

	title, body, priority := buildWateringContent(in)
	pref := s.preferenceFor(ctx, in.UserID, TypeWatering)

	now := s.now()
	n := Notification{
		ID:           uuid.NewString(),
		UserID:       in.UserID,
		Type:         TypeWatering,
		Title:        title,
		Body:         body,
		ScheduledFor: s.OptimalTime(ctx, in.UserID, TypeWatering, time.Time{}),
		Status:       StatusScheduled,
		Priority:     priority,
		Channels:     append([]Channel(nil), pref.Channels...),
		Metadata: map[string]string{
			MetadataKeyPlantID: in.PlantID,
			"plant_name":       in.PlantName,
			"urgency_level":    strconv.Itoa(in.UrgencyLevel),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return Notification{}, false, err
	}
	return n, true, nil
}

// SendTest crea una notificación de prueba y la envía de inmediato.
// El resultado del envío queda reflejado en el status devuelto.
func (s *Service) SendTest(ctx context.Context, userID, title, body string, chs []string) (Notification, error) {
	if strings.TrimSpace(title) == "" {
		title = "Test de notification"
	}
	if strings.TrimSpace(body) == "" {
		body = "Ceci est une notification de test."
	}
	if len(chs) == 0 {
		chs = []string{string(ChannelPush)}
	}

	n, err := s.Schedule(ctx, userID, ScheduleInput{
		Type:         TypeTest,
		Title:        title,
		Body:         body,
		ScheduledFor: s.now(),
		Channels:     chs,
		Metadata:     map[string]string{"test": "true"},
	})
	if err != nil {
		return Notification{}, err
	}

	if err := s.Send(ctx, n.ID); err != nil {
		s.log.Warn("test notification not sent", map[string]any{
			"notification_id": n.ID, "err": err.Error(),
		})
	}
	return s.repo.GetByID(ctx, n.ID)
}

// ---------------------------------------------------------------------
// Envío
// ---------------------------------------------------------------------

// Send despacha una notificación scheduled por todos sus canales.
// Re-chequea CanSend: si el gate bloquea, la notificación queda
// scheduled sin mutar. Un canal desconocido se registra en el log de
// entregas y se salta; no es fatal. Con al menos un canal exitoso la
// notificación pasa a sent; si todos fallan, a failed.
func (s *Service) Send(ctx context.Context, id string) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.Status != StatusScheduled {
		return ErrInvalidTransition
	}

	pref := s.preferenceFor(ctx, n.UserID, n.Type)
	if !pref.Enabled || pref.InQuietHours(s.now()) {
		return ErrBlocked
	}
	if !s.guard.CanSend(ctx, n.UserID, n.Type) {
		return ErrRateLimited
	}

	targets := n.Channels
	if len(targets) == 0 {
		targets = pref.Channels
	}
	if len(targets) == 0 {
		targets = defaultChannels
	}

	msg := channels.Message{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Title:          n.Title,
		Body:           n.Body,
		Priority:       n.Priority,
		Metadata:       n.Metadata,
	}

	anySuccess := false
	for _, ch := range targets {
		sender, ok := s.senders[ch]
		if !ok {
			s.log.Warn("unsupported channel skipped", map[string]any{
				"notification_id": n.ID, "channel": string(ch),
			})
			s.appendDeliveryLog(ctx, n.ID, ch, false, "unsupported channel", channels.Receipt{})
			continue
		}

		receipt, err := sender.Send(ctx, msg)
		if err != nil {
			s.log.Warn("channel delivery failed", map[string]any{
				"notification_id": n.ID, "channel": string(ch), "err": err.Error(),
			})
			s.appendDeliveryLog(ctx, n.ID, ch, false, err.Error(), channels.Receipt{})
			continue
		}

		anySuccess = true
		s.appendDeliveryLog(ctx, n.ID, ch, true, "", receipt)
	}

	now := s.now()
	n.UpdatedAt = now
	if anySuccess {
		n.Status = StatusSent
		n.SentAt = &now
		if err := s.repo.Update(ctx, n); err != nil {
			return err
		}
		return nil
	}

	n.Status = StatusFailed
	if err := s.repo.Update(ctx, n); err != nil {
		return err
	}
	return ErrDeliveryFailed
}

// appendDeliveryLog registra un intento; si el log falla no frena el
// envío, solo se deja constancia en el logger.
func (s *Service) appendDeliveryLog(ctx context.Context, notificationID string, ch Channel, success bool, errMsg string, receipt channels.Receipt) {
	entry := DeliveryLogEntry{
		ID:             uuid.NewString(),
		NotificationID: notificationID,
		Channel:        ch,
		Success:        success,
		ErrorMessage:   errMsg,
		Provider:       receipt.Provider,
		ProviderID:     receipt.ProviderID,
		AttemptedAt:    s.now(),
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		s.log.Error("delivery log write failed", map[string]any{
			"notification_id": notificationID, "channel": string(ch), "err": err.Error(),
		})
	}
}

// ---------------------------------------------------------------------
// Transiciones de estado
// ---------------------------------------------------------------------

func (s *Service) getOwned(ctx context.Context, id, userID string) (Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if n.UserID != userID {
		return Notification{}, ErrForbidden
	}
	return n, nil
}

// Cancel solo aplica a scheduled: algo ya despachado no se puede
// retirar de los canales.
func (s *Service) Cancel(ctx context.Context, id, userID string) (Notification, error) {
	n, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return Notification{}, err
	}
	if n.Status != StatusScheduled {
		return Notification{}, ErrInvalidTransition
	}
	n.Status = StatusCancelled
	n.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, n); err != nil {
		return Notification{}, err
	}
	return n, nil
}

// Dismiss aplica desde scheduled o sent.
func (s *Service) Dismiss(ctx context.Context, id, userID string) (Notification, error) {
	n, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return Notification{}, err
	}
	if n.Status != StatusScheduled && n.Status != StatusSent {
		return Notification{}, ErrInvalidTransition
	}
	n.Status = StatusDismissed
	n.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, n); err != nil {
		return Notification{}, err
	}
	return n, nil
}

// MarkDelivered lo reporta el canal (webhook del proveedor).
func (s *Service) MarkDelivered(ctx context.Context, id string) (Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if n.Status != StatusSent {
		return Notification{}, ErrInvalidTransition
	}
	now := s.now()
	n.Status = StatusDelivered
	n.DeliveredAt = &now
	n.UpdatedAt = now
	if err := s.repo.Update(ctx, n); err != nil {
		return Notification{}, err
	}
	return n, nil
}

func (s *Service) MarkOpened(ctx context.Context, id, userID string) (Notification, error) {
	n, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return Notification{}, err
	}
	if n.Status != StatusSent && n.Status != StatusDelivered {
		return Notification{}, ErrInvalidTransition
	}
	now := s.now()
	n.Status = StatusOpened
	n.OpenedAt = &now
	n.UpdatedAt = now
	if err := s.repo.Update(ctx, n); err != nil {
		return Notification{}, err
	}
	return n, nil
}

func (s *Service) MarkActedUpon(ctx context.Context, id, userID, action string) (Notification, error) {
	if strings.TrimSpace(action) == "" {
		return Notification{}, ErrInvalidInput
	}
	n, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return Notification{}, err
	}
	if n.Status != StatusSent && n.Status != StatusDelivered && n.Status != StatusOpened {
		return Notification{}, ErrInvalidTransition
	}
	now := s.now()
	n.Status = StatusActedUpon
	n.UserAction = strings.TrimSpace(action)
	n.ActionTakenAt = &now
	n.UpdatedAt = now
	if err := s.repo.Update(ctx, n); err != nil {
		return Notification{}, err
	}
	return n, nil
}

// ---------------------------------------------------------------------
// Lectura
// ---------------------------------------------------------------------

func (s *Service) Get(ctx context.Context, id, userID string) (Notification, error) {
	return s.getOwned(ctx, id, userID)
}

func (s *Service) ListByUser(ctx context.Context, userID string, filter ListFilter) ([]Notification, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByUser(ctx, userID, filter)
}

func (s *Service) DeliveryLogs(ctx context.Context, id, userID string) ([]DeliveryLogEntry, error) {
	if _, err := s.getOwned(ctx, id, userID); err != nil {
		return nil, err
	}
	return s.logs.ListByNotification(ctx, id)
}

// Stats son los agregados del período para el usuario.
type Stats struct {
	Total      int
	ByStatus   map[Status]int
	ByType     map[Type]int
	PeriodDays int
}

// StatsForUser cuenta notificaciones del período por estado y tipo.
func (s *Service) StatsForUser(ctx context.Context, userID string, periodDays int) (Stats, error) {
	if periodDays <= 0 {
		periodDays = 30
	}
	since := s.now().AddDate(0, 0, -periodDays)

	items, err := s.repo.ListByUser(ctx, userID, ListFilter{Since: since})
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		Total:      len(items),
		ByStatus:   make(map[Status]int),
		ByType:     make(map[Type]int),
		PeriodDays: periodDays,
	}
	for _, n := range items {
		st.ByStatus[n.Status]++
		st.ByType[n.Type]++
	}
	return st, nil
}

// ---------------------------------------------------------------------
// Soporte del scheduler
// ---------------------------------------------------------------------

// ListDue expone las scheduled vencidas para el scheduler.
func (s *Service) ListDue(ctx context.Context, limit int) ([]Notification, error) {
	return s.repo.ListDue(ctx, s.now(), limit)
}

// Cleanup purga notificaciones terminales más viejas que la retención.
func (s *Service) Cleanup(ctx context.Context, retention time.Duration) (int, error) {
	return s.repo.DeleteTerminalOlderThan(ctx, s.now().Add(-retention))
}

func sortPreferences(prefs []Preference) {
	sort.Slice(prefs, func(i, j int) bool {
		return prefs[i].Type < prefs[j].Type
	})
}
