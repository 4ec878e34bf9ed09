package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/guias-api/internal/application/ledger"
	"github.com/jhoicas/guias-api/internal/domain"
	"github.com/jhoicas/guias-api/internal/domain/entity"
	domledger "github.com/jhoicas/guias-api/internal/domain/ledger"
	"github.com/jhoicas/guias-api/internal/domain/repository"
	"github.com/jhoicas/guias-api/pkg/logger"
)

// PaymentUseCase registra pagos contra el saldo pendiente y los retracta revirtiendo su efecto.
type PaymentUseCase struct {
	ledger      *ledger.Ledger
	paymentRepo repository.PaymentRepository
	log         *logger.Logger
}

// NewPaymentUseCase construye el caso de uso.
func NewPaymentUseCase(l *ledger.Ledger, paymentRepo repository.PaymentRepository, log *logger.Logger) *PaymentUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &PaymentUseCase{ledger: l, paymentRepo: paymentRepo, log: log.Component("payments")}
}

// RegisterInput datos de un pago.
type RegisterInput struct {
	CompanyID     string
	UserID        string
	Monto         decimal.Decimal
	Fecha         time.Time // cero = ahora
	Metodo        string
	Referencia    string
	Notas         string
	AttachmentRef string
}

// Validate valida el pago antes de tocar el saldo.
func (in RegisterInput) Validate() error {
	if in.CompanyID == "" {
		return fmt.Errorf("%w: company_id requerido", domain.ErrInvalidInput)
	}
	if !in.Monto.IsPositive() {
		return fmt.Errorf("%w: el monto debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if !domledger.ValidScale(in.Monto) {
		return fmt.Errorf("%w: el monto admite máximo %d decimales", domain.ErrInvalidInput, domledger.MaxScale)
	}
	if !entity.IsValidPaymentMethod(in.Metodo) {
		return fmt.Errorf("%w: método de pago %q", domain.ErrInvalidInput, in.Metodo)
	}
	if entity.MethodRequiresReference(in.Metodo) && strings.TrimSpace(in.Referencia) == "" {
		return fmt.Errorf("%w: la referencia es obligatoria para %s", domain.ErrInvalidInput, in.Metodo)
	}
	return nil
}

// Register valida el pago, lo aplica al saldo y lo guarda en la misma transacción.
// domain.ErrPaymentExceedsBalance si el monto supera el saldo pendiente.
func (uc *PaymentUseCase) Register(ctx context.Context, in RegisterInput) (*entity.Payment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var out *entity.Payment
	err := uc.ledger.WithCompany(ctx, in.CompanyID, func(tx repository.TxRepositories) error {
		p, err := uc.register(ctx, tx, in)
		out = p
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RegisterFullBalance registra un pago por el saldo pendiente completo. El monto se lee
// bajo el mismo bloqueo de la empresa y sigue la misma validación que Register.
func (uc *PaymentUseCase) RegisterFullBalance(ctx context.Context, in RegisterInput) (*entity.Payment, error) {
	if in.CompanyID == "" {
		return nil, fmt.Errorf("%w: company_id requerido", domain.ErrInvalidInput)
	}
	var out *entity.Payment
	err := uc.ledger.WithCompany(ctx, in.CompanyID, func(tx repository.TxRepositories) error {
		company, err := tx.Companies.GetByID(ctx, in.CompanyID)
		if err != nil {
			return err
		}
		if company == nil {
			return domain.ErrNotFound
		}
		in.Monto = company.SaldoPendiente
		if err := in.Validate(); err != nil {
			return err
		}
		p, err := uc.register(ctx, tx, in)
		out = p
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *PaymentUseCase) register(ctx context.Context, tx repository.TxRepositories, in RegisterInput) (*entity.Payment, error) {
	now := uc.ledger.Now()
	fecha := in.Fecha
	if fecha.IsZero() {
		fecha = now
	}
	p := &entity.Payment{
		ID:            uuid.New().String(),
		CompanyID:     in.CompanyID,
		Monto:         in.Monto,
		Fecha:         fecha,
		Metodo:        in.Metodo,
		Referencia:    strings.TrimSpace(in.Referencia),
		Notas:         strings.TrimSpace(in.Notas),
		AttachmentRef: in.AttachmentRef,
		RegisteredBy:  in.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	ref := ledger.Ref{Type: entity.LedgerRefPayment, ID: p.ID, UserID: in.UserID}
	if _, err := uc.ledger.ApplyPayment(ctx, tx, p.CompanyID, p.Monto, ref); err != nil {
		return nil, err
	}
	if err := tx.Payments.Create(ctx, p); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("company_id", p.CompanyID).
		Str("payment_id", p.ID).
		Str("monto", p.Monto.StringFixed(2)).
		Str("metodo", p.Metodo).
		Msg("pago registrado")
	return p, nil
}

// Delete retracta un pago: revierte su monto en el saldo y lo marca como eliminado con el motivo.
// El registro se conserva para auditoría.
func (uc *PaymentUseCase) Delete(ctx context.Context, paymentID, userID, motivo string) (*entity.Payment, error) {
	motivo = strings.TrimSpace(motivo)
	if motivo == "" {
		return nil, fmt.Errorf("%w: el motivo de eliminación es obligatorio", domain.ErrInvalidInput)
	}
	current, err := uc.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	var out *entity.Payment
	err = uc.ledger.WithCompany(ctx, current.CompanyID, func(tx repository.TxRepositories) error {
		p, err := tx.Payments.GetForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if p.IsDeleted() {
			return domain.ErrAlreadyDeleted
		}
		ref := ledger.Ref{Type: entity.LedgerRefPayment, ID: p.ID, UserID: userID}
		if _, err := uc.ledger.ReverseBalance(ctx, tx, p.CompanyID, p.Monto, ref); err != nil {
			return err
		}
		now := uc.ledger.Now()
		p.DeletedAt = &now
		p.DeletedBy = userID
		p.DeleteReason = motivo
		p.UpdatedAt = now
		if err := tx.Payments.MarkDeleted(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("company_id", out.CompanyID).
		Str("payment_id", out.ID).
		Str("motivo", motivo).
		Msg("pago eliminado")
	return out, nil
}

// GetByID obtiene un pago (incluye eliminados).
func (uc *PaymentUseCase) GetByID(ctx context.Context, paymentID string) (*entity.Payment, error) {
	if paymentID == "" {
		return nil, fmt.Errorf("%w: id de pago requerido", domain.ErrInvalidInput)
	}
	p, err := uc.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// List lista pagos de una empresa.
func (uc *PaymentUseCase) List(ctx context.Context, filter repository.PaymentFilter) ([]*entity.Payment, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return uc.paymentRepo.List(ctx, filter)
}
