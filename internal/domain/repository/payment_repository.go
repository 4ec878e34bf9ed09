package repository

import (
	"context"

	"github.com/jhoicas/guias-api/internal/domain/entity"
)

// PaymentFilter filtros para listar pagos.
type PaymentFilter struct {
	CompanyID      string
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// PaymentRepository define el puerto de persistencia para pagos.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetByID(ctx context.Context, id string) (*entity.Payment, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Payment, error)
	// MarkDeleted registra la retractación (DeletedAt, DeletedBy, DeleteReason); la fila se conserva.
	MarkDeleted(ctx context.Context, payment *entity.Payment) error
	List(ctx context.Context, filter PaymentFilter) ([]*entity.Payment, error)
}
