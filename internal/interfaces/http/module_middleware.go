package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/guias-api/internal/application/dto"
	"github.com/jhoicas/guias-api/internal/domain/entity"
)

// companyChecker contrato mínimo para verificar el estado de la empresa del token.
// Lo implementa *usecase.CompanyUseCase.
type companyChecker interface {
	IsActive(ctx context.Context, companyID string) (bool, error)
}

// RequireActiveCompany bloquea a los usuarios empresa cuya empresa fue suspendida después de emitido el token.
// Debe usarse DESPUÉS de AuthMiddleware. El personal pasa sin consulta.
//
//   - 403 COMPANY_SUSPENDED → empresa suspendida o inexistente.
//   - 503 COMPANY_CHECK_FAILED → fallo al consultar la empresa.
func RequireActiveCompany(checker companyChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetRole(c) != entity.RoleEmpresa {
			return c.Next()
		}
		companyID := GetCompanyID(c)
		if companyID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "company_id no encontrado en el token",
			})
		}

		active, err := checker.IsActive(c.UserContext(), companyID)
		if err != nil {
			log.Error().Err(err).Str("company_id", companyID).Msg("verificar estado de empresa")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "COMPANY_CHECK_FAILED",
				Message: "no se pudo verificar la empresa, intente más tarde",
			})
		}
		if !active {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "COMPANY_SUSPENDED",
				Message: "la empresa está suspendida",
			})
		}
		return c.Next()
	}
}
