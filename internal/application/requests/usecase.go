package requests

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/guias-api/internal/application/ledger"
	"github.com/jhoicas/guias-api/internal/domain"
	"github.com/jhoicas/guias-api/internal/domain/entity"
	domledger "github.com/jhoicas/guias-api/internal/domain/ledger"
	"github.com/jhoicas/guias-api/internal/domain/repository"
	"github.com/jhoicas/guias-api/pkg/logger"
)

// PurchaseRequestUseCase gobierna el ciclo pendiente → aprobada | rechazada de las
// solicitudes de compra de guías. Aprobar acredita guías y carga el costo en una sola transacción.
type PurchaseRequestUseCase struct {
	ledger      *ledger.Ledger
	requestRepo repository.PurchaseRequestRepository
	companyRepo repository.CompanyRepository
	unitCost    decimal.Decimal
	log         *logger.Logger
}

// NewPurchaseRequestUseCase construye el caso de uso. unitCost es el costo por guía que se
// congela en cada solicitud cuando el solicitante no indica uno.
func NewPurchaseRequestUseCase(
	l *ledger.Ledger,
	requestRepo repository.PurchaseRequestRepository,
	companyRepo repository.CompanyRepository,
	unitCost decimal.Decimal,
	log *logger.Logger,
) *PurchaseRequestUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &PurchaseRequestUseCase{
		ledger:      l,
		requestRepo: requestRepo,
		companyRepo: companyRepo,
		unitCost:    unitCost,
		log:         log.Component("purchase_requests"),
	}
}

// UnitCost costo por guía vigente.
func (uc *PurchaseRequestUseCase) UnitCost() decimal.Decimal { return uc.unitCost }

// SubmitInput datos de una nueva solicitud.
type SubmitInput struct {
	CompanyID     string
	UserID        string
	Cantidad      int64
	CostoUnitario decimal.Decimal
	Notes         string
}

// Submit crea una solicitud pendiente. No afecta el saldo. CostoUnitario cero toma el costo vigente.
func (uc *PurchaseRequestUseCase) Submit(ctx context.Context, in SubmitInput) (*entity.PurchaseRequest, error) {
	if in.CostoUnitario.IsZero() {
		in.CostoUnitario = uc.unitCost
	}
	if in.CompanyID == "" {
		return nil, fmt.Errorf("%w: company_id requerido", domain.ErrInvalidInput)
	}
	if in.Cantidad <= 0 {
		return nil, fmt.Errorf("%w: cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if !in.CostoUnitario.IsPositive() {
		return nil, fmt.Errorf("%w: costo unitario debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if !domledger.ValidScale(in.CostoUnitario) {
		return nil, fmt.Errorf("%w: costo unitario admite máximo %d decimales", domain.ErrInvalidInput, domledger.MaxScale)
	}
	company, err := uc.companyRepo.GetByID(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	if company.Status != entity.CompanyStatusActive {
		return nil, domain.ErrForbidden
	}

	now := uc.ledger.Now()
	req := &entity.PurchaseRequest{
		ID:            uuid.New().String(),
		CompanyID:     in.CompanyID,
		Cantidad:      in.Cantidad,
		CostoUnitario: in.CostoUnitario,
		MontoTotal:    TotalAmount(in.Cantidad, in.CostoUnitario),
		Status:        entity.RequestStatusPendiente,
		Notes:         strings.TrimSpace(in.Notes),
		RequestedBy:   in.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("company_id", req.CompanyID).
		Str("request_id", req.ID).
		Int64("cantidad", req.Cantidad).
		Str("monto_total", req.MontoTotal.StringFixed(2)).
		Msg("solicitud de guías registrada")
	return req, nil
}

// TotalAmount montoTotal = cantidad × costoUnitario, exacto.
func TotalAmount(cantidad int64, costoUnitario decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(cantidad).Mul(costoUnitario)
}

// Approve aprueba la solicitud: acredita Cantidad guías y carga MontoTotal al saldo, ambos o ninguno.
// domain.ErrAlreadyResolved si la solicitud ya no está pendiente.
func (uc *PurchaseRequestUseCase) Approve(ctx context.Context, requestID, resolverID, note string) (*entity.PurchaseRequest, error) {
	current, err := uc.load(ctx, requestID)
	if err != nil {
		return nil, err
	}

	var out *entity.PurchaseRequest
	err = uc.ledger.WithCompany(ctx, current.CompanyID, func(tx repository.TxRepositories) error {
		req, err := lockPending(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if _, err := uc.ledger.Post(ctx, tx, ledger.Entry{
			CompanyID:     req.CompanyID,
			TransactionID: req.ID,
			RefType:       entity.LedgerRefPurchaseRequest,
			RefID:         req.ID,
			UserID:        resolverID,
			Ops: []domledger.Op{
				domledger.CreditGuides(req.Cantidad),
				domledger.ChargeBalance(req.MontoTotal),
			},
		}); err != nil {
			return err
		}
		now := uc.ledger.Now()
		req.Status = entity.RequestStatusAprobada
		req.ResolvedBy = resolverID
		req.ResolvedAt = &now
		req.ApprovalNote = strings.TrimSpace(note)
		req.UpdatedAt = now
		if err := tx.Requests.Resolve(ctx, req); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("request_id", out.ID).Str("resolver", resolverID).Msg("solicitud aprobada")
	return out, nil
}

// RejectInput datos de rechazo.
type RejectInput struct {
	RequestID   string
	ResolverID  string
	Motivo      string // ver entity.RejectReason*
	Comentarios string
}

// Reject rechaza la solicitud sin efecto en el saldo. El motivo "otro" exige comentarios.
func (uc *PurchaseRequestUseCase) Reject(ctx context.Context, in RejectInput) (*entity.PurchaseRequest, error) {
	if err := validateRejectReason(in.Motivo, in.Comentarios); err != nil {
		return nil, err
	}
	current, err := uc.load(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}

	var out *entity.PurchaseRequest
	err = uc.ledger.WithCompany(ctx, current.CompanyID, func(tx repository.TxRepositories) error {
		req, err := lockPending(ctx, tx, in.RequestID)
		if err != nil {
			return err
		}
		now := uc.ledger.Now()
		req.Status = entity.RequestStatusRechazada
		req.ResolvedBy = in.ResolverID
		req.ResolvedAt = &now
		req.RejectReason = in.Motivo
		req.RejectComment = strings.TrimSpace(in.Comentarios)
		req.UpdatedAt = now
		if err := tx.Requests.Resolve(ctx, req); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("request_id", out.ID).Str("motivo", out.RejectReason).Msg("solicitud rechazada")
	return out, nil
}

// GetByID obtiene una solicitud.
func (uc *PurchaseRequestUseCase) GetByID(ctx context.Context, requestID string) (*entity.PurchaseRequest, error) {
	return uc.load(ctx, requestID)
}

// List lista solicitudes con filtros.
func (uc *PurchaseRequestUseCase) List(ctx context.Context, filter repository.PurchaseRequestFilter) ([]*entity.PurchaseRequest, error) {
	if filter.Status != "" && !isValidStatus(filter.Status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, filter.Status)
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return uc.requestRepo.List(ctx, filter)
}

func (uc *PurchaseRequestUseCase) load(ctx context.Context, requestID string) (*entity.PurchaseRequest, error) {
	if requestID == "" {
		return nil, fmt.Errorf("%w: id de solicitud requerido", domain.ErrInvalidInput)
	}
	req, err := uc.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	return req, nil
}

// lockPending vuelve a leer la solicitud con bloqueo dentro de la tx: dos resoluciones
// concurrentes ven el estado confirmado por la primera.
func lockPending(ctx context.Context, tx repository.TxRepositories, requestID string) (*entity.PurchaseRequest, error) {
	req, err := tx.Requests.GetForUpdate(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	if req.IsResolved() {
		return nil, domain.ErrAlreadyResolved
	}
	return req, nil
}

func validateRejectReason(motivo, comentarios string) error {
	switch motivo {
	case entity.RejectReasonSaldoPendiente, entity.RejectReasonInformacionIncompleta, entity.RejectReasonLimiteCredito:
		return nil
	case entity.RejectReasonOtro:
		if strings.TrimSpace(comentarios) == "" {
			return fmt.Errorf("%w: el motivo 'otro' requiere comentarios", domain.ErrInvalidInput)
		}
		return nil
	}
	return fmt.Errorf("%w: motivo de rechazo %q", domain.ErrInvalidInput, motivo)
}

func isValidStatus(s string) bool {
	return s == entity.RequestStatusPendiente || s == entity.RequestStatusAprobada || s == entity.RequestStatusRechazada
}
