package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/guias-api/internal/domain/entity"
)

// AddressDTO remitente o destinatario.
type AddressDTO struct {
	Name       string `json:"name" validate:"required,max=200"`
	Phone      string `json:"phone" validate:"max=30"`
	Street     string `json:"street" validate:"required,max=300"`
	City       string `json:"city" validate:"required,max=100"`
	Department string `json:"department" validate:"max=100"`
	Reference  string `json:"reference" validate:"max=300"`
}

// CreateGuideRequest entrada para generar una guía. Medidas en cm y pesos en kg;
// sin medidas el peso volumétrico es cero.
type CreateGuideRequest struct {
	CompanyID      string          `json:"company_id" validate:"omitempty,uuid"`
	Sender         AddressDTO      `json:"sender"`
	Consignee      AddressDTO      `json:"consignee"`
	Sobres         int             `json:"sobres" validate:"gte=0"`
	Paquetes       int             `json:"paquetes" validate:"gte=0"`
	Cajas          int             `json:"cajas" validate:"gte=0"`
	PesoReal       decimal.Decimal `json:"peso_real" validate:"required,gt=0"`
	Largo          decimal.Decimal `json:"largo" validate:"gte=0"`
	Ancho          decimal.Decimal `json:"ancho" validate:"gte=0"`
	Alto           decimal.Decimal `json:"alto" validate:"gte=0"`
	ValorDeclarado decimal.Decimal `json:"valor_declarado" validate:"gte=0"`
	Descripcion    string          `json:"descripcion" validate:"max=500"`
}

// AdvanceGuideRequest siguiente estado de la guía.
type AdvanceGuideRequest struct {
	Estado string `json:"estado" validate:"required,oneof=recolectada en_transito entregada"`
	Nota   string `json:"nota" validate:"max=500"`
}

// PackageResponse composición y pesos del envío.
type PackageResponse struct {
	Sobres          int    `json:"sobres"`
	Paquetes        int    `json:"paquetes"`
	Cajas           int    `json:"cajas"`
	Piezas          int    `json:"piezas"`
	PesoReal        string `json:"peso_real"`
	PesoVolumetrico string `json:"peso_volumetrico"`
	PesoTotal       string `json:"peso_total"`
	ValorDeclarado  string `json:"valor_declarado"`
	Descripcion     string `json:"descripcion,omitempty"`
}

// HistoryEntryResponse cambio de estado registrado.
type HistoryEntryResponse struct {
	Estado string    `json:"estado"`
	Fecha  time.Time `json:"fecha"`
	Nota   string    `json:"nota,omitempty"`
}

// GuideResponse salida completa de una guía.
type GuideResponse struct {
	ID             string                 `json:"id"`
	TrackingNumber string                 `json:"tracking_number"`
	CompanyID      string                 `json:"company_id"`
	Sender         AddressDTO             `json:"sender"`
	Consignee      AddressDTO             `json:"consignee"`
	Package        PackageResponse        `json:"package"`
	Status         string                 `json:"status"`
	History        []HistoryEntryResponse `json:"history"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// GuideListResponse lista paginada de guías.
type GuideListResponse struct {
	Items []GuideResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// TrackingResponse consulta pública: estado e historial sin datos personales.
type TrackingResponse struct {
	TrackingNumber string                 `json:"tracking_number"`
	Status         string                 `json:"status"`
	Origen         string                 `json:"origen"`
	Destino        string                 `json:"destino"`
	History        []HistoryEntryResponse `json:"history"`
}

// ToAddress convierte la entrada a la entidad.
func (a AddressDTO) ToAddress() entity.Address {
	return entity.Address(a)
}

func newAddressDTO(a entity.Address) AddressDTO {
	return AddressDTO(a)
}

func newHistory(h []entity.GuideHistoryEntry) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, 0, len(h))
	for _, e := range h {
		out = append(out, HistoryEntryResponse{Estado: string(e.Status), Fecha: e.At, Nota: e.Note})
	}
	return out
}

// NewGuideResponse mapea la entidad.
func NewGuideResponse(g *entity.Guide) *GuideResponse {
	if g == nil {
		return nil
	}
	p := g.Package
	return &GuideResponse{
		ID:             g.ID,
		TrackingNumber: g.TrackingNumber,
		CompanyID:      g.CompanyID,
		Sender:         newAddressDTO(g.Sender),
		Consignee:      newAddressDTO(g.Consignee),
		Package: PackageResponse{
			Sobres:          p.Sobres,
			Paquetes:        p.Paquetes,
			Cajas:           p.Cajas,
			Piezas:          p.Pieces(),
			PesoReal:        p.RealWeight.StringFixed(2),
			PesoVolumetrico: p.DimensionalWeight.StringFixed(2),
			PesoTotal:       p.TotalWeight.StringFixed(2),
			ValorDeclarado:  p.DeclaredValue.StringFixed(2),
			Descripcion:     p.Description,
		},
		Status:    string(g.Status),
		History:   newHistory(g.History),
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

// NewGuideListResponse mapea una página de guías.
func NewGuideListResponse(list []*entity.Guide, limit, offset int) *GuideListResponse {
	items := make([]GuideResponse, 0, len(list))
	for _, g := range list {
		items = append(items, *NewGuideResponse(g))
	}
	return &GuideListResponse{Items: items, Page: PageResponse{Limit: limit, Offset: offset}}
}

// NewTrackingResponse vista pública de la guía.
func NewTrackingResponse(g *entity.Guide) *TrackingResponse {
	return &TrackingResponse{
		TrackingNumber: g.TrackingNumber,
		Status:         string(g.Status),
		Origen:         g.Sender.City,
		Destino:        g.Consignee.City,
		History:        newHistory(g.History),
	}
}
