package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/guias-api/internal/domain/entity"
	"github.com/jhoicas/guias-api/internal/domain/repository"
)

var _ repository.LedgerMovementRepository = (*LedgerMovementRepo)(nil)

// LedgerMovementRepo diario del libro de guías (solo inserción). El orden cronológico
// lo da la columna seq (BIGSERIAL), no created_at.
type LedgerMovementRepo struct {
	q Querier
}

// NewLedgerMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerMovementRepository(q Querier) *LedgerMovementRepo {
	return &LedgerMovementRepo{q: q}
}

func (r *LedgerMovementRepo) Create(ctx context.Context, m *entity.LedgerMovement) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO ledger_movements
			(id, transaction_id, company_id, type, guides_delta, amount_delta, ref_type, ref_id, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		m.ID, m.TransactionID, m.CompanyID, m.Type, m.GuidesDelta, m.AmountDelta,
		m.RefType, m.RefID, m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert ledger movement: %w", err)
	}
	return nil
}

func (r *LedgerMovementRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.LedgerMovement, error) {
	lim, off := pageArgs(limit, offset)
	rows, err := r.q.Query(ctx, `
		SELECT id, transaction_id, company_id, type, guides_delta, amount_delta, ref_type, ref_id, created_at, created_by
		  FROM ledger_movements
		 WHERE company_id = $1
		 ORDER BY seq
		 LIMIT $2 OFFSET $3`,
		companyID, lim, off,
	)
	if err != nil {
		return nil, fmt.Errorf("list ledger movements: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.LedgerMovement, 0)
	for rows.Next() {
		var m entity.LedgerMovement
		if err := rows.Scan(
			&m.ID, &m.TransactionID, &m.CompanyID, &m.Type, &m.GuidesDelta, &m.AmountDelta,
			&m.RefType, &m.RefID, &m.CreatedAt, &m.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("scan ledger movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
