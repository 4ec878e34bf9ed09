package repository

import (
	"context"

	"github.com/jhoicas/guias-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
// La implementación vive en infrastructure.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	GetByNIT(ctx context.Context, nit string) (*entity.Company, error)
	// GetForUpdate obtiene la empresa bloqueando su fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Company, error)
	// Update actualiza datos de contacto; nunca toca el saldo.
	Update(ctx context.Context, company *entity.Company) error
	// UpdateBalance persiste guías disponibles y saldo pendiente. Solo lo usa el libro de guías.
	UpdateBalance(ctx context.Context, company *entity.Company) error
	List(ctx context.Context, limit, offset int) ([]*entity.Company, error)
}
