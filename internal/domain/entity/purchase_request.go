package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una solicitud de compra de guías.
const (
	RequestStatusPendiente = "pendiente"
	RequestStatusAprobada  = "aprobada"
	RequestStatusRechazada = "rechazada"
)

// Motivos de rechazo.
const (
	RejectReasonSaldoPendiente        = "saldo_pendiente"
	RejectReasonInformacionIncompleta = "informacion_incompleta"
	RejectReasonLimiteCredito         = "limite_credito"
	RejectReasonOtro                  = "otro"
)

// PurchaseRequest solicitud de una empresa para comprar guías prepagadas.
// Se resuelve una sola vez (aprobada o rechazada) y queda inmutable.
type PurchaseRequest struct {
	ID            string
	CompanyID     string
	Cantidad      int64
	CostoUnitario decimal.Decimal
	MontoTotal    decimal.Decimal // Cantidad × CostoUnitario
	Status        string
	Notes         string
	RequestedBy   string
	ResolvedBy    string
	ResolvedAt    *time.Time
	ApprovalNote  string
	RejectReason  string // ver constantes RejectReason*
	RejectComment string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsResolved indica si la solicitud ya está en un estado terminal.
func (r *PurchaseRequest) IsResolved() bool {
	return r.Status != RequestStatusPendiente
}
