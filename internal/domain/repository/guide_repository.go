package repository

import (
	"context"

	"github.com/jhoicas/guias-api/internal/domain/entity"
)

// GuideFilter filtros para listar guías.
type GuideFilter struct {
	CompanyID string
	Status    entity.GuideStatus // vacío = todos
	Limit     int
	Offset    int
}

// GuideRepository define el puerto de persistencia para guías y su historial.
type GuideRepository interface {
	// Create persiste la guía junto con su historial inicial.
	Create(ctx context.Context, guide *entity.Guide) error
	GetByID(ctx context.Context, id string) (*entity.Guide, error)
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (*entity.Guide, error)
	// GetForUpdate obtiene la guía por número de rastreo bloqueando su fila.
	GetForUpdate(ctx context.Context, trackingNumber string) (*entity.Guide, error)
	// UpdateStatus persiste el estado actual y agrega la última entrada del historial.
	UpdateStatus(ctx context.Context, guide *entity.Guide) error
	List(ctx context.Context, filter GuideFilter) ([]*entity.Guide, error)
	CountByCompany(ctx context.Context, companyID string) (int64, error)
}
