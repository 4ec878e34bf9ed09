package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/guias-api/internal/application/auth"
	"github.com/jhoicas/guias-api/internal/application/guides"
	"github.com/jhoicas/guias-api/internal/application/ledger"
	"github.com/jhoicas/guias-api/internal/application/payments"
	"github.com/jhoicas/guias-api/internal/application/requests"
	"github.com/jhoicas/guias-api/internal/application/usecase"
	"github.com/jhoicas/guias-api/internal/domain/repository"
	"github.com/jhoicas/guias-api/internal/infrastructure/lock"
	"github.com/jhoicas/guias-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/guias-api/internal/infrastructure/pdf"
	"github.com/jhoicas/guias-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/guias-api/internal/interfaces/http"
	"github.com/jhoicas/guias-api/pkg/config"
	"github.com/jhoicas/guias-api/pkg/logger"
)

// storage repositorios del driver elegido.
type storage struct {
	tx        ledger.TxRunner
	companies repository.CompanyRepository
	users     repository.UserRepository
	guides    repository.GuideRepository
	requests  repository.PurchaseRequestRepository
	payments  repository.PaymentRepository
	movements repository.LedgerMovementRepository
	closer    func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == "memory" {
		st := memory.New()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &storage{
			tx:        st,
			companies: st.Companies(),
			users:     st.Users(),
			guides:    st.Guides(),
			requests:  st.Requests(),
			payments:  st.Payments(),
			movements: st.Movements(),
			closer:    func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("esquema aplicado")
	}
	return &storage{
		tx:        postgres.NewTxRunner(pool),
		companies: postgres.NewCompanyRepository(pool),
		users:     postgres.NewUserRepository(pool),
		guides:    postgres.NewGuideRepository(pool),
		requests:  postgres.NewPurchaseRequestRepository(pool),
		payments:  postgres.NewPaymentRepository(pool),
		movements: postgres.NewLedgerMovementRepository(pool),
		closer:    pool.Close,
	}, nil
}

// openLocker devuelve el bloqueo por empresa y el recurso a cerrar (si aplica).
func openLocker(ctx context.Context, cfg *config.Config, log *logger.Logger) (ledger.Locker, io.Closer, error) {
	if cfg.Lock.Driver != "redis" {
		return lock.NewKeyedMutex(), nil, nil
	}
	rcfg := lock.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Lock.TTL,
	}
	rdb, err := lock.NewRedisClient(ctx, rcfg)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("bloqueo distribuido en Redis")
	return lock.NewRedisLocker(rdb, rcfg, log.Component("lock")), rdb, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Str("lock", cfg.Lock.Driver).
		Msg("iniciando aplicación")

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("aplicación finalizada con error")
		os.Exit(1)
	}
	log.Info().Msg("aplicación detenida")
}

// run arma dependencias y sirve HTTP hasta recibir la señal de apagado.
// Los recursos abiertos se cierran en todos los caminos de retorno.
func run(cfg *config.Config, log *logger.Logger) error {
	ctx := context.Background()
	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("almacenamiento: %w", err)
	}
	defer st.closer()

	locker, lockCloser, err := openLocker(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("conexión a Redis: %w", err)
	}
	if lockCloser != nil {
		defer lockCloser.Close()
	}

	book := ledger.New(st.tx, locker, st.companies, st.movements, log)

	authUC := auth.NewAuthUseCase(st.users, st.companies, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)
	companyUC := usecase.NewCompanyUseCase(st.companies, st.guides, book, log)
	userUC := usecase.NewUserUseCase(st.users, st.companies, log)
	requestUC := requests.NewPurchaseRequestUseCase(book, st.requests, st.companies, cfg.Guides.UnitCost, log)
	paymentUC := payments.NewPaymentUseCase(book, st.payments, log)

	// Rótulo PDF con QR hacia la página pública de rastreo
	labels := infrapdf.NewLabelGenerator(cfg.Guides.TrackingURL)
	guideUC := guides.NewGuideUseCase(book, st.tx, st.guides, st.companies, labels, guides.Config{
		TrackingPrefix:    cfg.Guides.TrackingPrefix,
		VolumetricDivisor: cfg.Guides.VolumetricDivisor,
	}, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Guías API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		CompanyUC: companyUC,
		UserUC:    userUC,
		RequestUC: requestUC,
		PaymentUC: paymentUC,
		GuideUC:   guideUC,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("apagado del servidor: %w", err)
	}
	return nil
}
