package repository

import (
	"context"

	"github.com/jhoicas/guias-api/internal/domain/entity"
)

// PurchaseRequestFilter filtros para listar solicitudes.
type PurchaseRequestFilter struct {
	CompanyID string // vacío = todas las empresas
	Status    string // vacío = todos
	Limit     int
	Offset    int
}

// PurchaseRequestRepository define el puerto de persistencia para solicitudes de compra de guías.
type PurchaseRequestRepository interface {
	Create(ctx context.Context, req *entity.PurchaseRequest) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseRequest, error)
	GetForUpdate(ctx context.Context, id string) (*entity.PurchaseRequest, error)
	// Resolve persiste estado y metadatos de resolución.
	Resolve(ctx context.Context, req *entity.PurchaseRequest) error
	List(ctx context.Context, filter PurchaseRequestFilter) ([]*entity.PurchaseRequest, error)
}
