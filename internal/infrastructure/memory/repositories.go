package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/guias-api/internal/domain"
	"github.com/jhoicas/guias-api/internal/domain/entity"
	"github.com/jhoicas/guias-api/internal/domain/repository"
)

var (
	_ repository.CompanyRepository         = (*CompanyRepo)(nil)
	_ repository.UserRepository            = (*UserRepo)(nil)
	_ repository.GuideRepository           = (*GuideRepo)(nil)
	_ repository.PurchaseRequestRepository = (*PurchaseRequestRepo)(nil)
	_ repository.PaymentRepository         = (*PaymentRepo)(nil)
	_ repository.LedgerMovementRepository  = (*LedgerMovementRepo)(nil)
)

func stagedCompanies(t *txState) map[string]*entity.Company { return t.companies }
func baseCompanies(s *Store) map[string]*entity.Company     { return s.companies }

func stagedRequests(t *txState) map[string]*entity.PurchaseRequest { return t.requests }
func baseRequests(s *Store) map[string]*entity.PurchaseRequest     { return s.requests }

func stagedPayments(t *txState) map[string]*entity.Payment { return t.payments }
func basePayments(s *Store) map[string]*entity.Payment     { return s.payments }

// page aplica offset y limit sobre un slice ya ordenado. limit <= 0 devuelve el resto.
func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// ---- Companies ----

// CompanyRepo empresas en memoria.
type CompanyRepo struct{ s *session }

func (r *CompanyRepo) Create(ctx context.Context, c *entity.Company) error {
	if existing, _ := r.GetByNIT(ctx, c.NIT); existing != nil {
		return domain.ErrDuplicate
	}
	if lookup(r.s, stagedCompanies, baseCompanies, c.ID) != nil {
		return domain.ErrDuplicate
	}
	store(r.s, stagedCompanies, baseCompanies, c.ID, c)
	return nil
}

func (r *CompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	return lookup(r.s, stagedCompanies, baseCompanies, id), nil
}

func (r *CompanyRepo) GetByNIT(_ context.Context, nit string) (*entity.Company, error) {
	if nit == "" {
		return nil, nil
	}
	if r.s.tx != nil {
		for _, c := range r.s.tx.companies {
			if c.NIT == nit {
				cp := *c
				return &cp, nil
			}
		}
	}
	r.s.st.mu.RLock()
	defer r.s.st.mu.RUnlock()
	for _, c := range r.s.st.companies {
		if c.NIT == nit {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *CompanyRepo) GetForUpdate(ctx context.Context, id string) (*entity.Company, error) {
	if err := r.s.lockRow(ctx, "company:"+id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *CompanyRepo) Update(ctx context.Context, c *entity.Company) error {
	current, _ := r.GetByID(ctx, c.ID)
	if current == nil {
		return domain.ErrNotFound
	}
	current.Name = c.Name
	current.NIT = c.NIT
	current.Address = c.Address
	current.Phone = c.Phone
	current.Email = c.Email
	current.Status = c.Status
	current.UpdatedAt = c.UpdatedAt
	store(r.s, stagedCompanies, baseCompanies, c.ID, current)
	return nil
}

func (r *CompanyRepo) UpdateBalance(ctx context.Context, c *entity.Company) error {
	current, _ := r.GetByID(ctx, c.ID)
	if current == nil {
		return domain.ErrNotFound
	}
	current.GuiasDisponibles = c.GuiasDisponibles
	current.SaldoPendiente = c.SaldoPendiente
	current.UpdatedAt = c.UpdatedAt
	store(r.s, stagedCompanies, baseCompanies, c.ID, current)
	return nil
}

func (r *CompanyRepo) List(_ context.Context, limit, offset int) ([]*entity.Company, error) {
	r.s.st.mu.RLock()
	out := make([]*entity.Company, 0, len(r.s.st.companies))
	for _, c := range r.s.st.companies {
		cp := *c
		out = append(out, &cp)
	}
	r.s.st.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

// ---- Users ----

// UserRepo usuarios en memoria. No participan en transacciones del libro.
type UserRepo struct{ st *Store }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.users[u.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, existing := range r.st.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	cp := *u
	r.st.users[u.ID] = &cp
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	u, ok := r.st.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	for _, u := range r.st.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.st.mu.RLock()
	out := make([]*entity.User, 0, len(r.st.users))
	for _, u := range r.st.users {
		cp := *u
		out = append(out, &cp)
	}
	r.st.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return page(out, limit, offset), nil
}

// ---- Guides ----

// GuideRepo guías en memoria.
type GuideRepo struct{ s *session }

func cloneGuide(g *entity.Guide) *entity.Guide {
	cp := *g
	cp.History = append([]entity.GuideHistoryEntry(nil), g.History...)
	return &cp
}

func (r *GuideRepo) get(id string) *entity.Guide {
	if r.s.tx != nil {
		if g, ok := r.s.tx.guides[id]; ok {
			return cloneGuide(g)
		}
	}
	r.s.st.mu.RLock()
	defer r.s.st.mu.RUnlock()
	if g, ok := r.s.st.guides[id]; ok {
		return cloneGuide(g)
	}
	return nil
}

func (r *GuideRepo) idByTracking(tracking string) string {
	if r.s.tx != nil {
		for id, g := range r.s.tx.guides {
			if g.TrackingNumber == tracking {
				return id
			}
		}
	}
	r.s.st.mu.RLock()
	defer r.s.st.mu.RUnlock()
	return r.s.st.tracking[tracking]
}

func (r *GuideRepo) put(g *entity.Guide) {
	cp := cloneGuide(g)
	if r.s.tx != nil {
		r.s.tx.guides[g.ID] = cp
		return
	}
	r.s.st.mu.Lock()
	defer r.s.st.mu.Unlock()
	r.s.st.guides[g.ID] = cp
	r.s.st.tracking[g.TrackingNumber] = g.ID
}

func (r *GuideRepo) Create(_ context.Context, g *entity.Guide) error {
	if r.idByTracking(g.TrackingNumber) != "" || r.get(g.ID) != nil {
		return domain.ErrDuplicate
	}
	r.put(g)
	return nil
}

func (r *GuideRepo) GetByID(_ context.Context, id string) (*entity.Guide, error) {
	return r.get(id), nil
}

func (r *GuideRepo) GetByTrackingNumber(_ context.Context, tracking string) (*entity.Guide, error) {
	id := r.idByTracking(tracking)
	if id == "" {
		return nil, nil
	}
	return r.get(id), nil
}

func (r *GuideRepo) GetForUpdate(ctx context.Context, tracking string) (*entity.Guide, error) {
	if err := r.s.lockRow(ctx, "guide:"+tracking); err != nil {
		return nil, err
	}
	return r.GetByTrackingNumber(ctx, tracking)
}

func (r *GuideRepo) UpdateStatus(_ context.Context, g *entity.Guide) error {
	current := r.get(g.ID)
	if current == nil {
		return domain.ErrNotFound
	}
	current.Status = g.Status
	current.History = g.History
	current.UpdatedAt = g.UpdatedAt
	r.put(current)
	return nil
}

func (r *GuideRepo) List(_ context.Context, f repository.GuideFilter) ([]*entity.Guide, error) {
	r.s.st.mu.RLock()
	out := make([]*entity.Guide, 0)
	for _, g := range r.s.st.guides {
		if f.CompanyID != "" && g.CompanyID != f.CompanyID {
			continue
		}
		if f.Status != "" && g.Status != f.Status {
			continue
		}
		out = append(out, cloneGuide(g))
	}
	r.s.st.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].TrackingNumber > out[j].TrackingNumber
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, f.Limit, f.Offset), nil
}

func (r *GuideRepo) CountByCompany(_ context.Context, companyID string) (int64, error) {
	r.s.st.mu.RLock()
	defer r.s.st.mu.RUnlock()
	var n int64
	for _, g := range r.s.st.guides {
		if g.CompanyID == companyID {
			n++
		}
	}
	return n, nil
}

// ---- Purchase requests ----

// PurchaseRequestRepo solicitudes en memoria.
type PurchaseRequestRepo struct{ s *session }

func (r *PurchaseRequestRepo) Create(_ context.Context, req *entity.PurchaseRequest) error {
	if lookup(r.s, stagedRequests, baseRequests, req.ID) != nil {
		return domain.ErrDuplicate
	}
	store(r.s, stagedRequests, baseRequests, req.ID, req)
	return nil
}

func (r *PurchaseRequestRepo) GetByID(_ context.Context, id string) (*entity.PurchaseRequest, error) {
	return lookup(r.s, stagedRequests, baseRequests, id), nil
}

func (r *PurchaseRequestRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseRequest, error) {
	if err := r.s.lockRow(ctx, "request:"+id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *PurchaseRequestRepo) Resolve(_ context.Context, req *entity.PurchaseRequest) error {
	if lookup(r.s, stagedRequests, baseRequests, req.ID) == nil {
		return domain.ErrNotFound
	}
	store(r.s, stagedRequests, baseRequests, req.ID, req)
	return nil
}

func (r *PurchaseRequestRepo) List(_ context.Context, f repository.PurchaseRequestFilter) ([]*entity.PurchaseRequest, error) {
	r.s.st.mu.RLock()
	out := make([]*entity.PurchaseRequest, 0)
	for _, req := range r.s.st.requests {
		if f.CompanyID != "" && req.CompanyID != f.CompanyID {
			continue
		}
		if f.Status != "" && req.Status != f.Status {
			continue
		}
		cp := *req
		out = append(out, &cp)
	}
	r.s.st.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), nil
}

// ---- Payments ----

// PaymentRepo pagos en memoria.
type PaymentRepo struct{ s *session }

func (r *PaymentRepo) Create(_ context.Context, p *entity.Payment) error {
	if lookup(r.s, stagedPayments, basePayments, p.ID) != nil {
		return domain.ErrDuplicate
	}
	store(r.s, stagedPayments, basePayments, p.ID, p)
	return nil
}

func (r *PaymentRepo) GetByID(_ context.Context, id string) (*entity.Payment, error) {
	return lookup(r.s, stagedPayments, basePayments, id), nil
}

func (r *PaymentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Payment, error) {
	if err := r.s.lockRow(ctx, "payment:"+id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *PaymentRepo) MarkDeleted(_ context.Context, p *entity.Payment) error {
	current := lookup(r.s, stagedPayments, basePayments, p.ID)
	if current == nil {
		return domain.ErrNotFound
	}
	current.DeletedAt = p.DeletedAt
	current.DeletedBy = p.DeletedBy
	current.DeleteReason = p.DeleteReason
	current.UpdatedAt = p.UpdatedAt
	store(r.s, stagedPayments, basePayments, p.ID, current)
	return nil
}

func (r *PaymentRepo) List(_ context.Context, f repository.PaymentFilter) ([]*entity.Payment, error) {
	r.s.st.mu.RLock()
	out := make([]*entity.Payment, 0)
	for _, p := range r.s.st.payments {
		if f.CompanyID != "" && p.CompanyID != f.CompanyID {
			continue
		}
		if !f.IncludeDeleted && p.IsDeleted() {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	r.s.st.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Fecha.Equal(out[j].Fecha) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Fecha.After(out[j].Fecha)
	})
	return page(out, f.Limit, f.Offset), nil
}

// ---- Ledger movements ----

// LedgerMovementRepo diario del libro en memoria (solo inserción).
type LedgerMovementRepo struct{ s *session }

func (r *LedgerMovementRepo) Create(_ context.Context, m *entity.LedgerMovement) error {
	cp := *m
	if r.s.tx != nil {
		r.s.tx.movements = append(r.s.tx.movements, &cp)
		return nil
	}
	r.s.st.mu.Lock()
	defer r.s.st.mu.Unlock()
	r.s.st.movements = append(r.s.st.movements, &cp)
	return nil
}

func (r *LedgerMovementRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.LedgerMovement, error) {
	out := make([]*entity.LedgerMovement, 0)
	r.s.st.mu.RLock()
	for _, m := range r.s.st.movements {
		if m.CompanyID == companyID {
			cp := *m
			out = append(out, &cp)
		}
	}
	r.s.st.mu.RUnlock()
	if r.s.tx != nil {
		for _, m := range r.s.tx.movements {
			if m.CompanyID == companyID {
				cp := *m
				out = append(out, &cp)
			}
		}
	}
	// orden de inserción = orden cronológico
	return page(out, limit, offset), nil
}
