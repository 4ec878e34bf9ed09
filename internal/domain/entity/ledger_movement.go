package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de guías.
const (
	LedgerCreditGuides   = "CREDIT_GUIDES"   // aprobación de solicitud
	LedgerDebitGuides    = "DEBIT_GUIDES"    // generación de guía
	LedgerChargeBalance  = "CHARGE_BALANCE"  // aprobación de solicitud (costo)
	LedgerApplyPayment   = "APPLY_PAYMENT"   // registro de pago
	LedgerReverseBalance = "REVERSE_BALANCE" // eliminación de pago
)

// Tipos de documento que originan un movimiento.
const (
	LedgerRefPurchaseRequest = "purchase_request"
	LedgerRefGuide           = "guide"
	LedgerRefPayment         = "payment"
)

// LedgerMovement asiento del libro de guías de una empresa. El saldo de Company
// es el pliegue (fold) de todos sus movimientos y puede recalcularse en cualquier momento.
type LedgerMovement struct {
	ID            string
	TransactionID string
	CompanyID     string
	Type          string
	GuidesDelta   int64           // positivo crédito, negativo débito
	AmountDelta   decimal.Decimal // positivo aumenta saldo pendiente
	RefType       string
	RefID         string
	CreatedAt     time.Time
	CreatedBy     string
}
