package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago.
const (
	PaymentMethodTransferencia = "transferencia"
	PaymentMethodEfectivo      = "efectivo"
	PaymentMethodCheque        = "cheque"
	PaymentMethodDeposito      = "deposito"
	PaymentMethodOtro          = "otro"
)

// Payment pago registrado contra el saldo pendiente de una empresa.
// La eliminación es una retractación registrada: el pago se conserva con DeletedAt y DeleteReason.
type Payment struct {
	ID            string
	CompanyID     string
	Monto         decimal.Decimal
	Fecha         time.Time
	Metodo        string
	Referencia    string
	Notas         string
	AttachmentRef string
	RegisteredBy  string
	DeletedAt     *time.Time
	DeletedBy     string
	DeleteReason  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsDeleted indica si el pago fue retractado.
func (p *Payment) IsDeleted() bool {
	return p.DeletedAt != nil
}

// MethodRequiresReference indica si el método exige número de referencia.
func MethodRequiresReference(method string) bool {
	return method == PaymentMethodTransferencia || method == PaymentMethodCheque
}

// IsValidPaymentMethod valida el método contra el catálogo.
func IsValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodTransferencia, PaymentMethodEfectivo, PaymentMethodCheque,
		PaymentMethodDeposito, PaymentMethodOtro:
		return true
	}
	return false
}
