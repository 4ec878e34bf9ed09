package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/guias-api/internal/domain/entity"
)

// RegisterPaymentRequest pago contra el saldo pendiente de una empresa.
type RegisterPaymentRequest struct {
	Monto         decimal.Decimal `json:"monto" validate:"required,gt=0"`
	Fecha         *time.Time      `json:"fecha"`
	Metodo        string          `json:"metodo" validate:"required,oneof=transferencia efectivo cheque deposito otro"`
	Referencia    string          `json:"referencia" validate:"required_if=Metodo transferencia,required_if=Metodo cheque,max=100"`
	Notas         string          `json:"notas" validate:"max=500"`
	AttachmentRef string          `json:"attachment_ref" validate:"max=500"`
}

// FullPaymentRequest pago por el total del saldo pendiente; el monto lo fija el servidor.
type FullPaymentRequest struct {
	Fecha         *time.Time `json:"fecha"`
	Metodo        string     `json:"metodo" validate:"required,oneof=transferencia efectivo cheque deposito otro"`
	Referencia    string     `json:"referencia" validate:"required_if=Metodo transferencia,required_if=Metodo cheque,max=100"`
	Notas         string     `json:"notas" validate:"max=500"`
	AttachmentRef string     `json:"attachment_ref" validate:"max=500"`
}

// DeletePaymentRequest motivo de la retractación.
type DeletePaymentRequest struct {
	Motivo string `json:"motivo" validate:"required,max=500"`
}

// PaymentResponse salida de un pago (incluye datos de eliminación si aplica).
type PaymentResponse struct {
	ID            string     `json:"id"`
	CompanyID     string     `json:"company_id"`
	Monto         string     `json:"monto"`
	Fecha         time.Time  `json:"fecha"`
	Metodo        string     `json:"metodo"`
	Referencia    string     `json:"referencia,omitempty"`
	Notas         string     `json:"notas,omitempty"`
	AttachmentRef string     `json:"attachment_ref,omitempty"`
	RegisteredBy  string     `json:"registered_by,omitempty"`
	Deleted       bool       `json:"deleted"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
	DeletedBy     string     `json:"deleted_by,omitempty"`
	DeleteReason  string     `json:"delete_reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// PaymentListResponse lista paginada de pagos.
type PaymentListResponse struct {
	Items []PaymentResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// NewPaymentResponse mapea la entidad.
func NewPaymentResponse(p *entity.Payment) *PaymentResponse {
	if p == nil {
		return nil
	}
	return &PaymentResponse{
		ID:            p.ID,
		CompanyID:     p.CompanyID,
		Monto:         p.Monto.StringFixed(2),
		Fecha:         p.Fecha,
		Metodo:        p.Metodo,
		Referencia:    p.Referencia,
		Notas:         p.Notas,
		AttachmentRef: p.AttachmentRef,
		RegisteredBy:  p.RegisteredBy,
		Deleted:       p.IsDeleted(),
		DeletedAt:     p.DeletedAt,
		DeletedBy:     p.DeletedBy,
		DeleteReason:  p.DeleteReason,
		CreatedAt:     p.CreatedAt,
	}
}

// NewPaymentListResponse mapea una página de pagos.
func NewPaymentListResponse(list []*entity.Payment, limit, offset int) *PaymentListResponse {
	items := make([]PaymentResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *NewPaymentResponse(p))
	}
	return &PaymentListResponse{Items: items, Page: PageResponse{Limit: limit, Offset: offset}}
}
