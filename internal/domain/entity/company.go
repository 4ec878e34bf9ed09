package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una empresa cliente.
const (
	CompanyStatusActive    = "active"
	CompanyStatusSuspended = "suspended"
)

// Company representa una empresa cliente de la paquetería (rol "empresa").
// GuiasDisponibles y SaldoPendiente solo los modifica el libro de guías (application/ledger).
type Company struct {
	ID               string
	Name             string
	NIT              string
	Address          string
	Phone            string
	Email            string
	Status           string
	GuiasDisponibles int64           // guías prepagadas sin usar, nunca negativo
	SaldoPendiente   decimal.Decimal // dinero adeudado, nunca negativo
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
