package waterings

import "context"

type Repository interface {
	Create(ctx context.Context, e WateringEvent) error
	// ListRecent devuelve hasta limit eventos, el más reciente primero.
	ListRecent(ctx context.Context, plantID string, limit int) ([]WateringEvent, error)
}
