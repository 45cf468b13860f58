package plants

import "context"

type Repository interface {
	Create(ctx context.Context, p PlantInstance) error
	GetByID(ctx context.Context, id string) (PlantInstance, error)
	ListByUser(ctx context.Context, userID string) ([]PlantInstance, error)
	// ListActive devuelve todas las plantas activas de todos los usuarios
	// (la recorre el scheduler en cada pasada).
	ListActive(ctx context.Context) ([]PlantInstance, error)
	Update(ctx context.Context, p PlantInstance) error
}

type ProfileRepository interface {
	Create(ctx context.Context, cp CareProfile) error
	GetByID(ctx context.Context, id string) (CareProfile, error)
}
