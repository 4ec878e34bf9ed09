package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// GuideStatus estado de una guía dentro de su ciclo de vida.
type GuideStatus string

// Estados de la guía, en el único orden permitido.
const (
	GuideStatusGenerada    GuideStatus = "generada"
	GuideStatusRecolectada GuideStatus = "recolectada"
	GuideStatusEnTransito  GuideStatus = "en_transito"
	GuideStatusEntregada   GuideStatus = "entregada"
)

// Address datos de remitente o destinatario.
type Address struct {
	Name       string
	Phone      string
	Street     string
	City       string
	Department string
	Reference  string
}

// PackageComposition conteo de piezas y pesos del envío.
// TotalWeight = max(RealWeight, DimensionalWeight) por convención del transportista.
type PackageComposition struct {
	Sobres            int
	Paquetes          int
	Cajas             int
	RealWeight        decimal.Decimal // kg
	DimensionalWeight decimal.Decimal // kg volumétricos
	TotalWeight       decimal.Decimal
	DeclaredValue     decimal.Decimal
	Description       string
}

// Pieces total de piezas del envío.
func (p PackageComposition) Pieces() int {
	return p.Sobres + p.Paquetes + p.Cajas
}

// GuideHistoryEntry registro inmutable de un cambio de estado.
type GuideHistoryEntry struct {
	Status GuideStatus
	At     time.Time
	Note   string
	UserID string
}

// Guide representa una guía de envío. Se crea consumiendo una guía del saldo de la empresa
// y es inmutable una vez entregada.
type Guide struct {
	ID             string
	TrackingNumber string
	CompanyID      string
	Sender         Address
	Consignee      Address
	Package        PackageComposition
	Status         GuideStatus
	History        []GuideHistoryEntry
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
