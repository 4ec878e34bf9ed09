package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/guias-api/internal/application/dto"
	"github.com/jhoicas/guias-api/internal/application/guides"
	"github.com/jhoicas/guias-api/internal/domain"
	"github.com/jhoicas/guias-api/internal/domain/entity"
	"github.com/jhoicas/guias-api/internal/domain/guide"
	"github.com/jhoicas/guias-api/internal/domain/repository"
)

// GuideHandler generación, seguimiento y rótulo de guías.
type GuideHandler struct {
	uc *guides.GuideUseCase
}

// NewGuideHandler construye el handler.
func NewGuideHandler(uc *guides.GuideUseCase) *GuideHandler {
	return &GuideHandler{uc: uc}
}

// Create godoc
// @Summary      Generar guía
// @Description  Consume una guía del saldo de la empresa. 409 si no hay guías disponibles.
// @Tags         guides
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateGuideRequest  true  "Remitente, destinatario y paquete"
// @Success      201   {object}  dto.GuideResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/guides [post]
func (h *GuideHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateGuideRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	companyID, err := scopeCompany(c, in.CompanyID)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), guides.CreateInput{
		CompanyID:     companyID,
		UserID:        GetUserID(c),
		Sender:        in.Sender.ToAddress(),
		Consignee:     in.Consignee.ToAddress(),
		Sobres:        in.Sobres,
		Paquetes:      in.Paquetes,
		Cajas:         in.Cajas,
		RealWeight:    in.PesoReal,
		Dimensions:    guide.Dimensions{Length: in.Largo, Width: in.Ancho, Height: in.Alto},
		DeclaredValue: in.ValorDeclarado,
		Description:   in.Descripcion,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewGuideResponse(out))
}

// Advance godoc
// @Summary      Avanzar estado de la guía
// @Description  Solo se permite el siguiente estado: generada → recolectada → en_transito → entregada.
// @Tags         guides
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tracking  path  string                   true  "Número de guía"
// @Param        body      body  dto.AdvanceGuideRequest  true  "Estado destino"
// @Success      200       {object}  dto.GuideResponse
// @Failure      404       {object}  dto.ErrorResponse
// @Failure      409       {object}  dto.ErrorResponse
// @Router       /api/guides/{tracking}/advance [post]
func (h *GuideHandler) Advance(c *fiber.Ctx) error {
	var in dto.AdvanceGuideRequest
	if err := bindAndValidate(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Advance(c.UserContext(), guides.AdvanceInput{
		TrackingNumber: c.Params("tracking"),
		Target:         entity.GuideStatus(in.Estado),
		Note:           in.Nota,
		UserID:         GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewGuideResponse(out))
}

// Get godoc
// @Summary      Obtener guía
// @Tags         guides
// @Produce      json
// @Security     BearerAuth
// @Param        tracking  path  string  true  "Número de guía"
// @Success      200       {object}  dto.GuideResponse
// @Failure      403       {object}  dto.ErrorResponse
// @Failure      404       {object}  dto.ErrorResponse
// @Router       /api/guides/{tracking} [get]
func (h *GuideHandler) Get(c *fiber.Ctx) error {
	g, err := h.visible(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewGuideResponse(g))
}

// List godoc
// @Summary      Listar guías
// @Tags         guides
// @Produce      json
// @Security     BearerAuth
// @Param        company_id  query  string  false  "Empresa (solo personal)"
// @Param        status      query  string  false  "generada | recolectada | en_transito | entregada"
// @Param        limit       query  int     false  "Límite"  default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200         {object}  dto.GuideListResponse
// @Router       /api/guides [get]
func (h *GuideHandler) List(c *fiber.Ctx) error {
	companyID, err := scopeCompany(c, c.Query("company_id"))
	if err != nil {
		return writeError(c, err)
	}
	limit, offset := pageParams(c)
	list, err := h.uc.List(c.UserContext(), repository.GuideFilter{
		CompanyID: companyID,
		Status:    entity.GuideStatus(c.Query("status")),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewGuideListResponse(list, limit, offset))
}

// Label godoc
// @Summary      Rótulo PDF de la guía
// @Tags         guides
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        tracking  path  string  true  "Número de guía"
// @Success      200       {file}  binary
// @Failure      403       {object}  dto.ErrorResponse
// @Failure      404       {object}  dto.ErrorResponse
// @Router       /api/guides/{tracking}/label [get]
func (h *GuideHandler) Label(c *fiber.Ctx) error {
	g, err := h.visible(c)
	if err != nil {
		return writeError(c, err)
	}
	pdf, filename, err := h.uc.Label(c.UserContext(), g.TrackingNumber)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdf)
}

// Track godoc
// @Summary      Rastrear envío (público)
// @Tags         tracking
// @Produce      json
// @Param        tracking  path  string  true  "Número de guía"
// @Success      200       {object}  dto.TrackingResponse
// @Failure      404       {object}  dto.ErrorResponse
// @Router       /api/tracking/{tracking} [get]
func (h *GuideHandler) Track(c *fiber.Ctx) error {
	g, err := h.uc.Track(c.UserContext(), c.Params("tracking"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewTrackingResponse(g))
}

// visible carga la guía del path; un usuario empresa solo ve las suyas.
func (h *GuideHandler) visible(c *fiber.Ctx) (*entity.Guide, error) {
	g, err := h.uc.Track(c.UserContext(), c.Params("tracking"))
	if err != nil {
		return nil, err
	}
	if !canSee(c, g.CompanyID) {
		return nil, domain.ErrForbidden
	}
	return g, nil
}
