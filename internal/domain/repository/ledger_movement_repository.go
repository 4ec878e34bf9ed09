package repository

import (
	"context"

	"github.com/jhoicas/guias-api/internal/domain/entity"
)

// LedgerMovementRepository define el puerto de persistencia para el diario del libro de guías.
type LedgerMovementRepository interface {
	Create(ctx context.Context, movement *entity.LedgerMovement) error
	// ListByCompany devuelve movimientos en orden cronológico. limit <= 0 devuelve todos.
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.LedgerMovement, error)
}
