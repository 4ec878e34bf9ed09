package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/guias-api/internal/domain"
	"github.com/jhoicas/guias-api/internal/domain/entity"
	"github.com/jhoicas/guias-api/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

const paymentColumns = `id, company_id, monto, fecha, metodo, referencia, notas, attachment_ref, registered_by,
	deleted_at, deleted_by, delete_reason, created_at, updated_at`

// PaymentRepo pagos sobre PostgreSQL. Los eliminados se conservan con deleted_at.
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

func scanPayment(row scanner) (*entity.Payment, error) {
	var p entity.Payment
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.Monto, &p.Fecha, &p.Metodo, &p.Referencia, &p.Notas, &p.AttachmentRef, &p.RegisteredBy,
		&p.DeletedAt, &p.DeletedBy, &p.DeleteReason, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.CompanyID, p.Monto, p.Fecha, p.Metodo, p.Referencia, p.Notas, p.AttachmentRef, p.RegisteredBy,
		p.DeletedAt, p.DeletedBy, p.DeleteReason, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *PaymentRepo) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
}

func (r *PaymentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id)
}

func (r *PaymentRepo) getOne(ctx context.Context, query, id string) (*entity.Payment, error) {
	p, err := scanPayment(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// MarkDeleted registra la retractación. domain.ErrAlreadyDeleted si ya estaba eliminado.
func (r *PaymentRepo) MarkDeleted(ctx context.Context, p *entity.Payment) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE payments SET deleted_at = $2, deleted_by = $3, delete_reason = $4, updated_at = $5
		 WHERE id = $1 AND deleted_at IS NULL`,
		p.ID, p.DeletedAt, p.DeletedBy, p.DeleteReason, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrAlreadyDeleted
	}
	return nil
}

func (r *PaymentRepo) List(ctx context.Context, f repository.PaymentFilter) ([]*entity.Payment, error) {
	lim, off := pageArgs(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, `
		SELECT `+paymentColumns+` FROM payments
		 WHERE ($1 = '' OR company_id::text = $1)
		   AND ($2 OR deleted_at IS NULL)
		 ORDER BY fecha DESC, created_at DESC
		 LIMIT $3 OFFSET $4`,
		f.CompanyID, f.IncludeDeleted, lim, off,
	)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
