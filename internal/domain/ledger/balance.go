// Package ledger contiene la aritmética del libro de guías prepagadas (servicio de dominio puro).
// Cada operación se valida contra el saldo actual y un lote de operaciones se aplica todo o nada.
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/guias-api/internal/domain"
	"github.com/jhoicas/guias-api/internal/domain/entity"
)

// Balance saldo de una empresa: guías disponibles y dinero adeudado.
type Balance struct {
	Guides int64
	Owed   decimal.Decimal
}

// FromCompany toma el saldo actual de la empresa.
func FromCompany(c *entity.Company) Balance {
	return Balance{Guides: c.GuiasDisponibles, Owed: c.SaldoPendiente}
}

// WriteTo copia el saldo sobre la empresa.
func (b Balance) WriteTo(c *entity.Company) {
	c.GuiasDisponibles = b.Guides
	c.SaldoPendiente = b.Owed
}

// Equal compara dos saldos.
func (b Balance) Equal(o Balance) bool {
	return b.Guides == o.Guides && b.Owed.Equal(o.Owed)
}

func (b Balance) String() string {
	return fmt.Sprintf("guias=%d saldo=%s", b.Guides, b.Owed.StringFixed(2))
}

// Op operación sobre el saldo. Type es uno de entity.Ledger*.
type Op struct {
	Type   string
	Guides int64
	Amount decimal.Decimal
}

// CreditGuides suma guías (aprobación de solicitud).
func CreditGuides(count int64) Op {
	return Op{Type: entity.LedgerCreditGuides, Guides: count}
}

// DebitGuides consume guías (generación de guía).
func DebitGuides(count int64) Op {
	return Op{Type: entity.LedgerDebitGuides, Guides: count}
}

// ChargeBalance aumenta el saldo pendiente (costo de la compra aprobada).
func ChargeBalance(amount decimal.Decimal) Op {
	return Op{Type: entity.LedgerChargeBalance, Amount: amount}
}

// ApplyPayment disminuye el saldo pendiente.
func ApplyPayment(amount decimal.Decimal) Op {
	return Op{Type: entity.LedgerApplyPayment, Amount: amount}
}

// ReverseBalance vuelve a aumentar el saldo pendiente (eliminación de un pago).
func ReverseBalance(amount decimal.Decimal) Op {
	return Op{Type: entity.LedgerReverseBalance, Amount: amount}
}

// Deltas devuelve el efecto de la operación sobre guías y saldo pendiente.
func (op Op) Deltas() (guides int64, amount decimal.Decimal) {
	switch op.Type {
	case entity.LedgerCreditGuides:
		return op.Guides, decimal.Zero
	case entity.LedgerDebitGuides:
		return -op.Guides, decimal.Zero
	case entity.LedgerChargeBalance, entity.LedgerReverseBalance:
		return 0, op.Amount
	case entity.LedgerApplyPayment:
		return 0, op.Amount.Neg()
	}
	return 0, decimal.Zero
}

// MaxScale decimales admitidos en montos de dinero.
const MaxScale = 2

// ValidScale indica si el monto cabe en centavos sin redondear.
func ValidScale(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(MaxScale))
}

// Validate comprueba la operación de forma aislada (sin saldo).
func (op Op) Validate() error {
	if !ValidScale(op.Amount) {
		return fmt.Errorf("%w: el monto admite máximo %d decimales", domain.ErrInvalidInput, MaxScale)
	}
	switch op.Type {
	case entity.LedgerCreditGuides, entity.LedgerDebitGuides:
		if op.Guides <= 0 {
			return fmt.Errorf("%w: la cantidad de guías debe ser mayor que cero", domain.ErrInvalidInput)
		}
	case entity.LedgerChargeBalance:
		if op.Amount.IsNegative() {
			return fmt.Errorf("%w: el cargo no puede ser negativo", domain.ErrInvalidInput)
		}
	case entity.LedgerApplyPayment, entity.LedgerReverseBalance:
		if !op.Amount.IsPositive() {
			return fmt.Errorf("%w: el monto debe ser mayor que cero", domain.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: operación de saldo desconocida %q", domain.ErrInvalidInput, op.Type)
	}
	return nil
}

// Apply aplica una operación y devuelve el nuevo saldo. b no se modifica.
func (b Balance) Apply(op Op) (Balance, error) {
	if err := op.Validate(); err != nil {
		return b, err
	}
	switch op.Type {
	case entity.LedgerDebitGuides:
		if b.Guides < op.Guides {
			return b, domain.ErrInsufficientBalance
		}
	case entity.LedgerApplyPayment:
		if op.Amount.GreaterThan(b.Owed) {
			return b, domain.ErrPaymentExceedsBalance
		}
	}
	dg, da := op.Deltas()
	return Balance{Guides: b.Guides + dg, Owed: b.Owed.Add(da)}, nil
}

// ApplyAll aplica las operaciones en orden. Si alguna falla devuelve el saldo original y el error:
// ninguna operación del lote queda aplicada.
func ApplyAll(b Balance, ops ...Op) (Balance, error) {
	next := b
	for _, op := range ops {
		var err error
		next, err = next.Apply(op)
		if err != nil {
			return b, err
		}
	}
	return next, nil
}

// Replay recalcula el saldo como pliegue de los movimientos registrados.
func Replay(movements []*entity.LedgerMovement) Balance {
	b := Balance{Owed: decimal.Zero}
	for _, m := range movements {
		b.Guides += m.GuidesDelta
		b.Owed = b.Owed.Add(m.AmountDelta)
	}
	return b
}
