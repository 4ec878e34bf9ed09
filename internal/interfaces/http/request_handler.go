package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/guias-api/internal/application/dto"
	"github.com/jhoicas/guias-api/internal/application/requests"
	"github.com/jhoicas/guias-api/internal/domain"
	"github.com/jhoicas/guias-api/internal/domain/repository"
)

// PurchaseRequestHandler solicitudes de compra de guías.
type PurchaseRequestHandler struct {
	uc *requests.PurchaseRequestUseCase
}

// NewPurchaseRequestHandler construye el handler.
func NewPurchaseRequestHandler(uc *requests.PurchaseRequestUseCase) *PurchaseRequestHandler {
	return &PurchaseRequestHandler{uc: uc}
}

// Submit godoc
// @Summary      Solicitar guías
// @Description  Crea una solicitud pendiente; no afecta el saldo hasta su aprobación.
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreatePurchaseRequestRequest  true  "Cantidad y costo"
// @Success      201   {object}  dto.PurchaseRequestResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/requests [post]
func (h *PurchaseRequestHandler) Submit(c *fiber.Ctx) error {
	var in dto.CreatePurchaseRequestRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	companyID, err := scopeCompany(c, in.CompanyID)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Submit(c.UserContext(), requests.SubmitInput{
		CompanyID:     companyID,
		UserID:        GetUserID(c),
		Cantidad:      in.Cantidad,
		CostoUnitario: in.CostoUnitario,
		Notes:         in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewPurchaseRequestResponse(out))
}

// Approve godoc
// @Summary      Aprobar solicitud
// @Description  Acredita las guías y carga el monto al saldo pendiente, ambos o ninguno.
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                             true   "ID de la solicitud"
// @Param        body  body  dto.ApprovePurchaseRequestRequest  false  "Nota"
// @Success      200   {object}  dto.PurchaseRequestResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/approve [post]
func (h *PurchaseRequestHandler) Approve(c *fiber.Ctx) error {
	var in dto.ApprovePurchaseRequestRequest
	if len(c.Body()) > 0 {
		if err := bindAndValidate(c, &in); err != nil {
			return writeError(c, err)
		}
	}
	out, err := h.uc.Approve(c.UserContext(), c.Params("id"), GetUserID(c), in.Nota)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewPurchaseRequestResponse(out))
}

// Reject godoc
// @Summary      Rechazar solicitud
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                            true  "ID de la solicitud"
// @Param        body  body  dto.RejectPurchaseRequestRequest  true  "Motivo"
// @Success      200   {object}  dto.PurchaseRequestResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/reject [post]
func (h *PurchaseRequestHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectPurchaseRequestRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Reject(c.UserContext(), requests.RejectInput{
		RequestID:   c.Params("id"),
		ResolverID:  GetUserID(c),
		Motivo:      in.Motivo,
		Comentarios: in.Comentarios,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewPurchaseRequestResponse(out))
}

// GetByID godoc
// @Summary      Obtener solicitud
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.PurchaseRequestResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requests/{id} [get]
func (h *PurchaseRequestHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if !canSee(c, out.CompanyID) {
		return writeError(c, domain.ErrForbidden)
	}
	return c.JSON(dto.NewPurchaseRequestResponse(out))
}

// List godoc
// @Summary      Listar solicitudes
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        company_id  query  string  false  "Empresa (solo personal)"
// @Param        status      query  string  false  "pendiente | aprobada | rechazada"
// @Param        limit       query  int     false  "Límite"  default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200         {object}  dto.PurchaseRequestListResponse
// @Router       /api/requests [get]
func (h *PurchaseRequestHandler) List(c *fiber.Ctx) error {
	companyID, err := scopeCompany(c, c.Query("company_id"))
	if err != nil {
		return writeError(c, err)
	}
	limit, offset := pageParams(c)
	list, err := h.uc.List(c.UserContext(), repository.PurchaseRequestFilter{
		CompanyID: companyID,
		Status:    c.Query("status"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewPurchaseRequestListResponse(list, limit, offset))
}
