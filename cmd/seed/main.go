// seed crea los usuarios iniciales (superadmin, admin y una empresa demo con su usuario).
//
// Uso: go run ./cmd/seed
// Lee la misma configuración que la API; la contraseña sale de SEED_PASSWORD (mínimo 8 caracteres).
// Es idempotente: lo que ya existe se omite.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jhoicas/guias-api/internal/application/dto"
	"github.com/jhoicas/guias-api/internal/application/usecase"
	"github.com/jhoicas/guias-api/internal/domain"
	"github.com/jhoicas/guias-api/internal/domain/entity"
	"github.com/jhoicas/guias-api/internal/infrastructure/postgres"
	"github.com/jhoicas/guias-api/pkg/config"
	"github.com/jhoicas/guias-api/pkg/logger"
)

const demoNIT = "900000001"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("seed")

	password := os.Getenv("SEED_PASSWORD")
	if len(password) < 8 {
		log.Fatal().Msg("SEED_PASSWORD requerido (mínimo 8 caracteres)")
	}

	if err := run(cfg, log, password); err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
}

func run(cfg *config.Config, log *logger.Logger, password string) error {
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		return fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migración: %w", err)
	}

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	companyUC := usecase.NewCompanyUseCase(companyRepo, nil, nil, log)
	userUC := usecase.NewUserUseCase(userRepo, companyRepo, log)

	demo, err := companyRepo.GetByNIT(ctx, demoNIT)
	if err != nil {
		return fmt.Errorf("buscar empresa demo: %w", err)
	}
	companyID := ""
	if demo != nil {
		companyID = demo.ID
	} else {
		created, err := companyUC.Create(ctx, dto.CreateCompanyRequest{
			Name:  "Empresa Demo",
			NIT:   demoNIT,
			Email: "demo@empresa.co",
		})
		if err != nil {
			return fmt.Errorf("crear empresa demo: %w", err)
		}
		companyID = created.ID
		log.Info().Str("company_id", companyID).Msg("empresa demo creada")
	}

	users := []dto.CreateUserRequest{
		{Email: "superadmin@guias.co", Name: "Superadmin", Role: entity.RoleSuperAdmin},
		{Email: "admin@guias.co", Name: "Administrador", Role: entity.RoleAdmin},
		{Email: "demo@empresa.co", Name: "Usuario Demo", Role: entity.RoleEmpresa, CompanyID: companyID},
	}
	for _, u := range users {
		u.Password = password
		if _, err := userUC.Create(ctx, u); err != nil {
			if errors.Is(err, domain.ErrEmailAlreadyExists) {
				log.Info().Str("email", u.Email).Msg("usuario ya existe, se omite")
				continue
			}
			return fmt.Errorf("crear usuario %s: %w", u.Email, err)
		}
		log.Info().Str("email", u.Email).Str("role", u.Role).Msg("usuario creado")
	}
	return nil
}
