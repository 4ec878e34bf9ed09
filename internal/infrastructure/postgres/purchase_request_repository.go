package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/guias-api/internal/domain"
	"github.com/jhoicas/guias-api/internal/domain/entity"
	"github.com/jhoicas/guias-api/internal/domain/repository"
)

var _ repository.PurchaseRequestRepository = (*PurchaseRequestRepo)(nil)

const requestColumns = `id, company_id, cantidad, costo_unitario, monto_total, status, notes, requested_by,
	resolved_by, resolved_at, approval_note, reject_reason, reject_comment, created_at, updated_at`

// PurchaseRequestRepo solicitudes de compra de guías sobre PostgreSQL.
type PurchaseRequestRepo struct {
	q Querier
}

// NewPurchaseRequestRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseRequestRepository(q Querier) *PurchaseRequestRepo {
	return &PurchaseRequestRepo{q: q}
}

func scanRequest(row scanner) (*entity.PurchaseRequest, error) {
	var p entity.PurchaseRequest
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.Cantidad, &p.CostoUnitario, &p.MontoTotal, &p.Status, &p.Notes, &p.RequestedBy,
		&p.ResolvedBy, &p.ResolvedAt, &p.ApprovalNote, &p.RejectReason, &p.RejectComment, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PurchaseRequestRepo) Create(ctx context.Context, p *entity.PurchaseRequest) error {
	query := `
		INSERT INTO purchase_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.CompanyID, p.Cantidad, p.CostoUnitario, p.MontoTotal, p.Status, p.Notes, p.RequestedBy,
		p.ResolvedBy, p.ResolvedAt, p.ApprovalNote, p.RejectReason, p.RejectComment, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase request: %w", err)
	}
	return nil
}

func (r *PurchaseRequestRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseRequest, error) {
	return r.getOne(ctx, `SELECT `+requestColumns+` FROM purchase_requests WHERE id = $1`, id)
}

func (r *PurchaseRequestRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseRequest, error) {
	return r.getOne(ctx, `SELECT `+requestColumns+` FROM purchase_requests WHERE id = $1 FOR UPDATE`, id)
}

func (r *PurchaseRequestRepo) getOne(ctx context.Context, query, id string) (*entity.PurchaseRequest, error) {
	p, err := scanRequest(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase request: %w", err)
	}
	return p, nil
}

// Resolve persiste la resolución. Solo actualiza filas todavía pendientes.
func (r *PurchaseRequestRepo) Resolve(ctx context.Context, p *entity.PurchaseRequest) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE purchase_requests
		   SET status = $2, resolved_by = $3, resolved_at = $4, approval_note = $5,
		       reject_reason = $6, reject_comment = $7, updated_at = $8
		 WHERE id = $1 AND status = $9`,
		p.ID, p.Status, p.ResolvedBy, p.ResolvedAt, p.ApprovalNote,
		p.RejectReason, p.RejectComment, p.UpdatedAt, entity.RequestStatusPendiente,
	)
	if err != nil {
		return fmt.Errorf("resolve purchase request: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrAlreadyResolved
	}
	return nil
}

func (r *PurchaseRequestRepo) List(ctx context.Context, f repository.PurchaseRequestFilter) ([]*entity.PurchaseRequest, error) {
	var (
		where []string
		args  []any
	)
	if f.CompanyID != "" {
		args = append(args, f.CompanyID)
		where = append(where, fmt.Sprintf("company_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	query := `SELECT ` + requestColumns + ` FROM purchase_requests`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	lim, off := pageArgs(f.Limit, f.Offset)
	args = append(args, lim, off)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase requests: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.PurchaseRequest, 0)
	for rows.Next() {
		p, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase request: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
