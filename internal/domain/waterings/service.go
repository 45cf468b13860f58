package waterings

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type RecordInput struct {
	WateredAt time.Time // zero => ahora
	AmountML  *int
	WaterType string
	Notes     string
}

func (s *Service) Record(ctx context.Context, plantID string, in RecordInput) (WateringEvent, error) {
	if strings.TrimSpace(plantID) == "" {
		return WateringEvent{}, ErrInvalidInput
	}
	if in.AmountML != nil && (*in.AmountML < 0 || *in.AmountML > 10000) {
		return WateringEvent{}, ErrInvalidInput
	}

	wt := WaterType(strings.TrimSpace(in.WaterType))
	switch wt {
	case "", WaterTap, WaterFiltered, WaterRainwater, WaterDistilled, WaterOther:
	default:
		return WateringEvent{}, ErrInvalidInput
	}

	now := s.now()
	wateredAt := in.WateredAt
	if wateredAt.IsZero() {
		wateredAt = now
	}

	e := WateringEvent{
		ID:        uuid.NewString(),
		PlantID:   plantID,
		WateredAt: wateredAt,
		AmountML:  in.AmountML,
		WaterType: wt,
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: now,
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return WateringEvent{}, err
	}
	return e, nil
}

// ListRecent devuelve hasta limit riegos, el más reciente primero.
func (s *Service) ListRecent(ctx context.Context, plantID string, limit int) ([]WateringEvent, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.ListRecent(ctx, plantID, limit)
}

// Last devuelve el último riego de la planta, o false si nunca se regó.
func (s *Service) Last(ctx context.Context, plantID string) (WateringEvent, bool, error) {
	events, err := s.repo.ListRecent(ctx, plantID, 1)
	if err != nil {
		return WateringEvent{}, false, err
	}
	if len(events) == 0 {
		return WateringEvent{}, false, nil
	}
	return events[0], true, nil
}
