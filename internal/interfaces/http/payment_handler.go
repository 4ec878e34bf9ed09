package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/guias-api/internal/application/dto"
	"github.com/jhoicas/guias-api/internal/application/payments"
	"github.com/jhoicas/guias-api/internal/domain"
	"github.com/jhoicas/guias-api/internal/domain/repository"
)

// PaymentHandler registro y retractación de pagos.
type PaymentHandler struct {
	uc *payments.PaymentUseCase
}

// NewPaymentHandler construye el handler.
func NewPaymentHandler(uc *payments.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

func fecha(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// Register godoc
// @Summary      Registrar pago
// @Description  Reduce el saldo pendiente. Un monto mayor al saldo se rechaza.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                      true  "ID de la empresa"
// @Param        body  body  dto.RegisterPaymentRequest  true  "Datos del pago"
// @Success      201   {object}  dto.PaymentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/companies/{id}/payments [post]
func (h *PaymentHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterPaymentRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Register(c.UserContext(), payments.RegisterInput{
		CompanyID:     c.Params("id"),
		UserID:        GetUserID(c),
		Monto:         in.Monto,
		Fecha:         fecha(in.Fecha),
		Metodo:        in.Metodo,
		Referencia:    in.Referencia,
		Notas:         in.Notas,
		AttachmentRef: in.AttachmentRef,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewPaymentResponse(out))
}

// RegisterFull godoc
// @Summary      Pagar saldo completo
// @Description  Registra un pago por el total del saldo pendiente.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                  true  "ID de la empresa"
// @Param        body  body  dto.FullPaymentRequest  true  "Método y referencia"
// @Success      201   {object}  dto.PaymentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/companies/{id}/payments/full [post]
func (h *PaymentHandler) RegisterFull(c *fiber.Ctx) error {
	var in dto.FullPaymentRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.RegisterFullBalance(c.UserContext(), payments.RegisterInput{
		CompanyID:     c.Params("id"),
		UserID:        GetUserID(c),
		Fecha:         fecha(in.Fecha),
		Metodo:        in.Metodo,
		Referencia:    in.Referencia,
		Notas:         in.Notas,
		AttachmentRef: in.AttachmentRef,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewPaymentResponse(out))
}

// List godoc
// @Summary      Listar pagos de una empresa
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id               path   string  true   "ID de la empresa"
// @Param        include_deleted  query  bool    false  "Incluir eliminados"
// @Param        limit            query  int     false  "Límite"  default(20)
// @Param        offset           query  int     false  "Offset"  default(0)
// @Success      200              {object}  dto.PaymentListResponse
// @Failure      403              {object}  dto.ErrorResponse
// @Router       /api/companies/{id}/payments [get]
func (h *PaymentHandler) List(c *fiber.Ctx) error {
	id := c.Params("id")
	if !canSee(c, id) {
		return writeError(c, domain.ErrForbidden)
	}
	limit, offset := pageParams(c)
	list, err := h.uc.List(c.UserContext(), repository.PaymentFilter{
		CompanyID:      id,
		IncludeDeleted: c.QueryBool("include_deleted", false),
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewPaymentListResponse(list, limit, offset))
}

// GetByID godoc
// @Summary      Obtener pago (incluye eliminados)
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del pago"
// @Success      200  {object}  dto.PaymentResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/payments/{id} [get]
func (h *PaymentHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if !canSee(c, out.CompanyID) {
		return writeError(c, domain.ErrForbidden)
	}
	return c.JSON(dto.NewPaymentResponse(out))
}

// Delete godoc
// @Summary      Eliminar pago
// @Description  Revierte el monto en el saldo pendiente y conserva el pago marcado como eliminado.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                    true  "ID del pago"
// @Param        body  body  dto.DeletePaymentRequest  true  "Motivo"
// @Success      200   {object}  dto.PaymentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/payments/{id} [delete]
func (h *PaymentHandler) Delete(c *fiber.Ctx) error {
	var in dto.DeletePaymentRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Delete(c.UserContext(), c.Params("id"), GetUserID(c), in.Motivo)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewPaymentResponse(out))
}
