package dto

import (
	"time"

	"github.com/jhoicas/guias-api/internal/domain/entity"
	domledger "github.com/jhoicas/guias-api/internal/domain/ledger"
)

// CreateCompanyRequest entrada para crear una empresa.
type CreateCompanyRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	NIT     string `json:"nit" validate:"required,min=1,max=20"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
}

// UpdateCompanyRequest entrada para actualizar una empresa (campos opcionales).
// El saldo no se edita por aquí: solo cambia a través de solicitudes, guías y pagos.
type UpdateCompanyRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Status  *string `json:"status" validate:"omitempty,oneof=active suspended"`
}

// CompanyResponse salida de una empresa con su saldo.
type CompanyResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	NIT              string    `json:"nit"`
	Address          string    `json:"address"`
	Phone            string    `json:"phone"`
	Email            string    `json:"email"`
	Status           string    `json:"status"`
	GuiasDisponibles int64     `json:"guias_disponibles"`
	SaldoPendiente   string    `json:"saldo_pendiente"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CompanyListResponse lista paginada de empresas.
type CompanyListResponse struct {
	Items []CompanyResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// BalanceResponse saldo de guías y dinero de una empresa.
type BalanceResponse struct {
	CompanyID        string `json:"company_id"`
	GuiasDisponibles int64  `json:"guias_disponibles"`
	GuiasGeneradas   int64  `json:"guias_generadas,omitempty"`
	SaldoPendiente   string `json:"saldo_pendiente"`
}

// LedgerMovementResponse asiento del diario del libro de guías.
type LedgerMovementResponse struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transaction_id"`
	Type          string    `json:"type"`
	GuidesDelta   int64     `json:"guides_delta"`
	AmountDelta   string    `json:"amount_delta"`
	RefType       string    `json:"ref_type"`
	RefID         string    `json:"ref_id"`
	CreatedBy     string    `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// LedgerMovementListResponse diario paginado de una empresa.
type LedgerMovementListResponse struct {
	Items []LedgerMovementResponse `json:"items"`
	Page  PageResponse             `json:"page"`
}

// ReconcileResponse resultado de recalcular el saldo desde el diario.
type ReconcileResponse struct {
	CompanyID string          `json:"company_id"`
	Stored    BalanceResponse `json:"stored"`
	Computed  BalanceResponse `json:"computed"`
	Repaired  bool            `json:"repaired"`
}

// NewCompanyResponse mapea la entidad a su salida.
func NewCompanyResponse(c *entity.Company) *CompanyResponse {
	if c == nil {
		return nil
	}
	return &CompanyResponse{
		ID:               c.ID,
		Name:             c.Name,
		NIT:              c.NIT,
		Address:          c.Address,
		Phone:            c.Phone,
		Email:            c.Email,
		Status:           c.Status,
		GuiasDisponibles: c.GuiasDisponibles,
		SaldoPendiente:   c.SaldoPendiente.StringFixed(2),
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

// NewBalanceResponse saldo actual de la empresa.
func NewBalanceResponse(c *entity.Company) BalanceResponse {
	return BalanceResponse{
		CompanyID:        c.ID,
		GuiasDisponibles: c.GuiasDisponibles,
		SaldoPendiente:   c.SaldoPendiente.StringFixed(2),
	}
}

func balanceOf(companyID string, b domledger.Balance) BalanceResponse {
	return BalanceResponse{CompanyID: companyID, GuiasDisponibles: b.Guides, SaldoPendiente: b.Owed.StringFixed(2)}
}

// NewReconcileResponse compara el saldo guardado con el recalculado.
func NewReconcileResponse(companyID string, stored, computed domledger.Balance, repaired bool) *ReconcileResponse {
	return &ReconcileResponse{
		CompanyID: companyID,
		Stored:    balanceOf(companyID, stored),
		Computed:  balanceOf(companyID, computed),
		Repaired:  repaired,
	}
}

// NewLedgerMovementListResponse mapea el diario.
func NewLedgerMovementListResponse(movs []*entity.LedgerMovement, limit, offset int) *LedgerMovementListResponse {
	items := make([]LedgerMovementResponse, 0, len(movs))
	for _, m := range movs {
		items = append(items, LedgerMovementResponse{
			ID:            m.ID,
			TransactionID: m.TransactionID,
			Type:          m.Type,
			GuidesDelta:   m.GuidesDelta,
			AmountDelta:   m.AmountDelta.StringFixed(2),
			RefType:       m.RefType,
			RefID:         m.RefID,
			CreatedBy:     m.CreatedBy,
			CreatedAt:     m.CreatedAt,
		})
	}
	return &LedgerMovementListResponse{Items: items, Page: PageResponse{Limit: limit, Offset: offset}}
}
