package ledger

import (
	"context"

	"github.com/jhoicas/guias-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn retorna error se hace Rollback; si no, Commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx repository.TxRepositories) error) error
}

// Locker serializa las operaciones de saldo por empresa. Operaciones sobre empresas
// distintas no se bloquean entre sí.
type Locker interface {
	// Lock adquiere el bloqueo de la empresa; unlock lo libera.
	// Devuelve domain.ErrBusy si no se pudo obtener a tiempo.
	Lock(ctx context.Context, companyID string) (unlock func(), err error)
}
