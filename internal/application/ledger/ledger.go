package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/guias-api/internal/domain"
	"github.com/jhoicas/guias-api/internal/domain/entity"
	domledger "github.com/jhoicas/guias-api/internal/domain/ledger"
	"github.com/jhoicas/guias-api/internal/domain/repository"
	"github.com/jhoicas/guias-api/pkg/logger"
)

// Ledger es el único que modifica GuiasDisponibles y SaldoPendiente de una empresa.
// Cada Post bloquea la fila de la empresa (SELECT FOR UPDATE), aplica las operaciones
// todo o nada y registra un movimiento por operación en la misma transacción.
type Ledger struct {
	txRunner     TxRunner
	locker       Locker
	companyRepo  repository.CompanyRepository
	movementRepo repository.LedgerMovementRepository
	log          *logger.Logger
	now          func() time.Time

	// lotes aplicados en la transacción en curso de cada empresa; se registran al confirmar.
	mu      sync.Mutex
	pending map[string][]posted
}

type posted struct {
	entry Entry
	after domledger.Balance
}

// New construye el libro de guías.
func New(
	txRunner TxRunner,
	locker Locker,
	companyRepo repository.CompanyRepository,
	movementRepo repository.LedgerMovementRepository,
	log *logger.Logger,
) *Ledger {
	if log == nil {
		log = logger.Nop()
	}
	return &Ledger{
		txRunner:     txRunner,
		locker:       locker,
		companyRepo:  companyRepo,
		movementRepo: movementRepo,
		log:          log.Component("ledger"),
		now:          time.Now,
		pending:      make(map[string][]posted),
	}
}

// SetClock reemplaza el reloj (tests).
func (l *Ledger) SetClock(now func() time.Time) { l.now = now }

// Now hora actual según el reloj del libro; los casos de uso la usan para sellar entidades.
func (l *Ledger) Now() time.Time { return l.now() }

// Entry lote de operaciones sobre una empresa originado por un documento (solicitud, guía o pago).
type Entry struct {
	CompanyID     string
	TransactionID string
	RefType       string
	RefID         string
	UserID        string
	Ops           []domledger.Op
}

// WithCompany serializa fn con el resto de operaciones de la empresa y la ejecuta en una transacción.
// Todo caso de uso que afecte el saldo debe pasar por aquí.
func (l *Ledger) WithCompany(ctx context.Context, companyID string, fn func(tx repository.TxRepositories) error) error {
	unlock, err := l.locker.Lock(ctx, companyID)
	if err != nil {
		return err
	}
	defer unlock()
	err = l.txRunner.Run(ctx, fn)
	committed := l.takePending(companyID)
	if err != nil {
		return err
	}
	for _, p := range committed {
		l.log.Info().
			Str("company_id", p.entry.CompanyID).
			Str("ref_type", p.entry.RefType).
			Str("ref_id", p.entry.RefID).
			Int("ops", len(p.entry.Ops)).
			Int64("guias", p.after.Guides).
			Str("saldo", p.after.Owed.StringFixed(2)).
			Msg("saldo actualizado")
	}
	return nil
}

func (l *Ledger) takePending(companyID string) []posted {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.pending[companyID]
	delete(l.pending, companyID)
	return out
}

// Post aplica las operaciones del lote dentro de la transacción tx. Debe llamarse desde WithCompany,
// que registra el lote en el log solo si la transacción se confirma.
// Si alguna operación falla no se persiste nada y la empresa queda igual.
func (l *Ledger) Post(ctx context.Context, tx repository.TxRepositories, e Entry) (*entity.Company, error) {
	if len(e.Ops) == 0 {
		return nil, fmt.Errorf("%w: lote de saldo vacío", domain.ErrInvalidInput)
	}
	company, err := tx.Companies.GetForUpdate(ctx, e.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	before := domledger.FromCompany(company)
	after, err := domledger.ApplyAll(before, e.Ops...)
	if err != nil {
		return nil, err
	}

	now := l.now()
	txID := e.TransactionID
	if txID == "" {
		txID = uuid.New().String()
	}
	after.WriteTo(company)
	company.UpdatedAt = now
	if err := tx.Companies.UpdateBalance(ctx, company); err != nil {
		return nil, err
	}
	for _, op := range e.Ops {
		dg, da := op.Deltas()
		mov := &entity.LedgerMovement{
			ID:            uuid.New().String(),
			TransactionID: txID,
			CompanyID:     e.CompanyID,
			Type:          op.Type,
			GuidesDelta:   dg,
			AmountDelta:   da,
			RefType:       e.RefType,
			RefID:         e.RefID,
			CreatedAt:     now,
			CreatedBy:     e.UserID,
		}
		if err := tx.Movements.Create(ctx, mov); err != nil {
			return nil, err
		}
	}

	l.mu.Lock()
	l.pending[e.CompanyID] = append(l.pending[e.CompanyID], posted{entry: e, after: after})
	l.mu.Unlock()
	return company, nil
}

// CreditGuides suma count guías a la empresa.
func (l *Ledger) CreditGuides(ctx context.Context, tx repository.TxRepositories, companyID string, count int64, ref Ref) (*entity.Company, error) {
	return l.Post(ctx, tx, ref.entry(companyID, domledger.CreditGuides(count)))
}

// DebitGuides consume count guías; domain.ErrInsufficientBalance si no alcanzan.
func (l *Ledger) DebitGuides(ctx context.Context, tx repository.TxRepositories, companyID string, count int64, ref Ref) (*entity.Company, error) {
	return l.Post(ctx, tx, ref.entry(companyID, domledger.DebitGuides(count)))
}

// ChargeBalance aumenta el saldo pendiente.
func (l *Ledger) ChargeBalance(ctx context.Context, tx repository.TxRepositories, companyID string, amount decimal.Decimal, ref Ref) (*entity.Company, error) {
	return l.Post(ctx, tx, ref.entry(companyID, domledger.ChargeBalance(amount)))
}

// ApplyPayment disminuye el saldo pendiente; domain.ErrPaymentExceedsBalance si lo excede.
func (l *Ledger) ApplyPayment(ctx context.Context, tx repository.TxRepositories, companyID string, amount decimal.Decimal, ref Ref) (*entity.Company, error) {
	return l.Post(ctx, tx, ref.entry(companyID, domledger.ApplyPayment(amount)))
}

// ReverseBalance revierte un pago eliminado.
func (l *Ledger) ReverseBalance(ctx context.Context, tx repository.TxRepositories, companyID string, amount decimal.Decimal, ref Ref) (*entity.Company, error) {
	return l.Post(ctx, tx, ref.entry(companyID, domledger.ReverseBalance(amount)))
}

// Ref documento que origina un movimiento.
type Ref struct {
	Type   string
	ID     string
	UserID string
}

func (r Ref) entry(companyID string, ops ...domledger.Op) Entry {
	return Entry{CompanyID: companyID, RefType: r.Type, RefID: r.ID, UserID: r.UserID, Ops: ops}
}

// Balance devuelve el saldo actual de la empresa (lectura sin bloqueo).
func (l *Ledger) Balance(ctx context.Context, companyID string) (*entity.Company, error) {
	company, err := l.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return company, nil
}

// Movements lista el diario de la empresa en orden cronológico.
func (l *Ledger) Movements(ctx context.Context, companyID string, limit, offset int) ([]*entity.LedgerMovement, error) {
	if _, err := l.Balance(ctx, companyID); err != nil {
		return nil, err
	}
	return l.movementRepo.ListByCompany(ctx, companyID, limit, offset)
}

// Reconciliation resultado de recalcular el saldo desde el diario.
type Reconciliation struct {
	CompanyID string
	Stored    domledger.Balance
	Computed  domledger.Balance
	Repaired  bool
}

// Reconcile recalcula el saldo como pliegue del diario. Si el saldo guardado difiere,
// se reescribe con el recalculado: el diario es la fuente de verdad.
func (l *Ledger) Reconcile(ctx context.Context, companyID string) (*Reconciliation, error) {
	var out *Reconciliation
	err := l.WithCompany(ctx, companyID, func(tx repository.TxRepositories) error {
		company, err := tx.Companies.GetForUpdate(ctx, companyID)
		if err != nil {
			return err
		}
		if company == nil {
			return domain.ErrNotFound
		}
		movs, err := tx.Movements.ListByCompany(ctx, companyID, 0, 0)
		if err != nil {
			return err
		}
		stored := domledger.FromCompany(company)
		computed := domledger.Replay(movs)
		out = &Reconciliation{CompanyID: companyID, Stored: stored, Computed: computed}
		if stored.Equal(computed) {
			return nil
		}
		if computed.Guides < 0 || computed.Owed.IsNegative() {
			return fmt.Errorf("ledger: diario inconsistente para %s (%s)", companyID, computed)
		}
		l.log.Warn().
			Str("company_id", companyID).
			Str("guardado", stored.String()).
			Str("recalculado", computed.String()).
			Msg("saldo desalineado con el diario; se corrige")
		computed.WriteTo(company)
		company.UpdatedAt = l.now()
		out.Repaired = true
		return tx.Companies.UpdateBalance(ctx, company)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
