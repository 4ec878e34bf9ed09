package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/guias-api/internal/domain/entity"
)

// CreatePurchaseRequestRequest solicitud de compra de guías.
// Un usuario empresa solo puede pedir para su propia empresa; company_id se toma del token.
// costo_unitario vacío = costo vigente.
type CreatePurchaseRequestRequest struct {
	CompanyID     string          `json:"company_id" validate:"omitempty,uuid"`
	Cantidad      int64           `json:"cantidad" validate:"required,gt=0"`
	CostoUnitario decimal.Decimal `json:"costo_unitario" validate:"gte=0"`
	Notes         string          `json:"notes" validate:"max=500"`
}

// ApprovePurchaseRequestRequest nota opcional de aprobación.
type ApprovePurchaseRequestRequest struct {
	Nota string `json:"nota" validate:"max=500"`
}

// RejectPurchaseRequestRequest motivo de rechazo; "otro" exige comentarios.
type RejectPurchaseRequestRequest struct {
	Motivo      string `json:"motivo" validate:"required,oneof=saldo_pendiente informacion_incompleta limite_credito otro"`
	Comentarios string `json:"comentarios" validate:"required_if=Motivo otro,max=500"`
}

// PurchaseRequestResponse salida de una solicitud.
type PurchaseRequestResponse struct {
	ID            string     `json:"id"`
	CompanyID     string     `json:"company_id"`
	Cantidad      int64      `json:"cantidad"`
	CostoUnitario string     `json:"costo_unitario"`
	MontoTotal    string     `json:"monto_total"`
	Status        string     `json:"status"`
	Notes         string     `json:"notes,omitempty"`
	RequestedBy   string     `json:"requested_by,omitempty"`
	ResolvedBy    string     `json:"resolved_by,omitempty"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	ApprovalNote  string     `json:"approval_note,omitempty"`
	RejectReason  string     `json:"reject_reason,omitempty"`
	RejectComment string     `json:"reject_comment,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// PurchaseRequestListResponse lista paginada de solicitudes.
type PurchaseRequestListResponse struct {
	Items []PurchaseRequestResponse `json:"items"`
	Page  PageResponse              `json:"page"`
}

// NewPurchaseRequestResponse mapea la entidad.
func NewPurchaseRequestResponse(r *entity.PurchaseRequest) *PurchaseRequestResponse {
	if r == nil {
		return nil
	}
	return &PurchaseRequestResponse{
		ID:            r.ID,
		CompanyID:     r.CompanyID,
		Cantidad:      r.Cantidad,
		CostoUnitario: r.CostoUnitario.StringFixed(2),
		MontoTotal:    r.MontoTotal.StringFixed(2),
		Status:        r.Status,
		Notes:         r.Notes,
		RequestedBy:   r.RequestedBy,
		ResolvedBy:    r.ResolvedBy,
		ResolvedAt:    r.ResolvedAt,
		ApprovalNote:  r.ApprovalNote,
		RejectReason:  r.RejectReason,
		RejectComment: r.RejectComment,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// NewPurchaseRequestListResponse mapea una página de solicitudes.
func NewPurchaseRequestListResponse(list []*entity.PurchaseRequest, limit, offset int) *PurchaseRequestListResponse {
	items := make([]PurchaseRequestResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *NewPurchaseRequestResponse(r))
	}
	return &PurchaseRequestListResponse{Items: items, Page: PageResponse{Limit: limit, Offset: offset}}
}
