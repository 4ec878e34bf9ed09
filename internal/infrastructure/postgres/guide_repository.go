package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/guias-api/internal/domain"
	"github.com/jhoicas/guias-api/internal/domain/entity"
	"github.com/jhoicas/guias-api/internal/domain/repository"
)

var _ repository.GuideRepository = (*GuideRepo)(nil)

const guideColumns = `id, tracking_number, company_id, sender, consignee, sobres, paquetes, cajas,
	real_weight, dimensional_weight, total_weight, declared_value, description,
	status, created_by, created_at, updated_at`

// addressJSON forma persistida de entity.Address en las columnas JSONB.
type addressJSON struct {
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	Street     string `json:"street"`
	City       string `json:"city"`
	Department string `json:"department,omitempty"`
	Reference  string `json:"reference,omitempty"`
}

func toAddressJSON(a entity.Address) addressJSON {
	return addressJSON(a)
}

func (a addressJSON) entity() entity.Address {
	return entity.Address(a)
}

// GuideRepo guías y su historial (tabla guide_history) sobre PostgreSQL.
type GuideRepo struct {
	q Querier
}

// NewGuideRepository construye el adaptador. Pasar pool o tx (Querier).
func NewGuideRepository(q Querier) *GuideRepo {
	return &GuideRepo{q: q}
}

func scanGuide(row scanner) (*entity.Guide, error) {
	var (
		g                 entity.Guide
		sender, consignee addressJSON
		status            string
	)
	err := row.Scan(
		&g.ID, &g.TrackingNumber, &g.CompanyID, &sender, &consignee,
		&g.Package.Sobres, &g.Package.Paquetes, &g.Package.Cajas,
		&g.Package.RealWeight, &g.Package.DimensionalWeight, &g.Package.TotalWeight,
		&g.Package.DeclaredValue, &g.Package.Description,
		&status, &g.CreatedBy, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	g.Sender = sender.entity()
	g.Consignee = consignee.entity()
	g.Status = entity.GuideStatus(status)
	return &g, nil
}

// Create inserta la guía y su historial inicial. domain.ErrDuplicate si el número de guía ya existe.
func (r *GuideRepo) Create(ctx context.Context, g *entity.Guide) error {
	query := `
		INSERT INTO guides (` + guideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		g.ID, g.TrackingNumber, g.CompanyID, toAddressJSON(g.Sender), toAddressJSON(g.Consignee),
		g.Package.Sobres, g.Package.Paquetes, g.Package.Cajas,
		g.Package.RealWeight, g.Package.DimensionalWeight, g.Package.TotalWeight,
		g.Package.DeclaredValue, g.Package.Description,
		string(g.Status), g.CreatedBy, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert guide: %w", err)
	}
	for i, h := range g.History {
		if err := r.insertHistory(ctx, g.ID, i, h); err != nil {
			return err
		}
	}
	return nil
}

func (r *GuideRepo) insertHistory(ctx context.Context, guideID string, seq int, h entity.GuideHistoryEntry) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO guide_history (guide_id, seq, status, at, note, user_id) VALUES ($1, $2, $3, $4, $5, $6)`,
		guideID, seq, string(h.Status), h.At, h.Note, h.UserID,
	)
	if err != nil {
		return fmt.Errorf("insert guide history: %w", err)
	}
	return nil
}

// GetByID obtiene una guía con su historial.
func (r *GuideRepo) GetByID(ctx context.Context, id string) (*entity.Guide, error) {
	return r.getOne(ctx, `SELECT `+guideColumns+` FROM guides WHERE id = $1`, id)
}

// GetByTrackingNumber obtiene una guía por número de rastreo.
func (r *GuideRepo) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*entity.Guide, error) {
	return r.getOne(ctx, `SELECT `+guideColumns+` FROM guides WHERE tracking_number = $1`, trackingNumber)
}

// GetForUpdate obtiene la guía bloqueando su fila.
func (r *GuideRepo) GetForUpdate(ctx context.Context, trackingNumber string) (*entity.Guide, error) {
	return r.getOne(ctx, `SELECT `+guideColumns+` FROM guides WHERE tracking_number = $1 FOR UPDATE`, trackingNumber)
}

func (r *GuideRepo) getOne(ctx context.Context, query, arg string) (*entity.Guide, error) {
	g, err := scanGuide(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get guide: %w", err)
	}
	if err := r.loadHistory(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (r *GuideRepo) loadHistory(ctx context.Context, g *entity.Guide) error {
	rows, err := r.q.Query(ctx,
		`SELECT status, at, note, user_id FROM guide_history WHERE guide_id = $1 ORDER BY seq`, g.ID)
	if err != nil {
		return fmt.Errorf("list guide history: %w", err)
	}
	defer rows.Close()
	g.History = g.History[:0]
	for rows.Next() {
		var (
			h      entity.GuideHistoryEntry
			status string
		)
		if err := rows.Scan(&status, &h.At, &h.Note, &h.UserID); err != nil {
			return fmt.Errorf("scan guide history: %w", err)
		}
		h.Status = entity.GuideStatus(status)
		g.History = append(g.History, h)
	}
	return rows.Err()
}

// UpdateStatus persiste el estado y agrega la última entrada del historial.
func (r *GuideRepo) UpdateStatus(ctx context.Context, g *entity.Guide) error {
	if len(g.History) == 0 {
		return fmt.Errorf("%w: guía sin historial", domain.ErrInvalidInput)
	}
	cmd, err := r.q.Exec(ctx,
		`UPDATE guides SET status = $2, updated_at = $3 WHERE id = $1`,
		g.ID, string(g.Status), g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update guide status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	last := len(g.History) - 1
	return r.insertHistory(ctx, g.ID, last, g.History[last])
}

// List lista guías (más recientes primero). El historial no se carga en listados.
func (r *GuideRepo) List(ctx context.Context, f repository.GuideFilter) ([]*entity.Guide, error) {
	var (
		where []string
		args  []any
	)
	if f.CompanyID != "" {
		args = append(args, f.CompanyID)
		where = append(where, fmt.Sprintf("company_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	query := `SELECT ` + guideColumns + ` FROM guides`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	lim, off := pageArgs(f.Limit, f.Offset)
	args = append(args, lim, off)
	query += fmt.Sprintf(" ORDER BY created_at DESC, tracking_number DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list guides: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Guide, 0)
	for rows.Next() {
		g, err := scanGuide(rows)
		if err != nil {
			return nil, fmt.Errorf("scan guide: %w", err)
		}
		list = append(list, g)
	}
	return list, rows.Err()
}

// CountByCompany total de guías generadas por la empresa.
func (r *GuideRepo) CountByCompany(ctx context.Context, companyID string) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM guides WHERE company_id = $1`, companyID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count guides: %w", err)
	}
	return n, nil
}
