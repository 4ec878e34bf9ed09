package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/guias-api/internal/application/auth"
	"github.com/jhoicas/guias-api/internal/application/guides"
	"github.com/jhoicas/guias-api/internal/application/payments"
	"github.com/jhoicas/guias-api/internal/application/requests"
	"github.com/jhoicas/guias-api/internal/application/usecase"
	"github.com/jhoicas/guias-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	CompanyUC *usecase.CompanyUseCase
	UserUC    *usecase.UserUseCase
	RequestUC *requests.PurchaseRequestUseCase
	PaymentUC *payments.PaymentUseCase
	GuideUC   *guides.GuideUseCase
	JWTSecret string
}

// Router registra las rutas de la API.
//
// Roles: superadmin administra empresas y usuarios; admin y superadmin resuelven solicitudes,
// registran pagos y mueven guías; empresa opera solo sobre su propia empresa y, si está suspendida,
// no puede solicitar ni generar guías.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	authMW := AuthMiddleware(deps.JWTSecret)
	anyRole := RequireRole(entity.RoleSuperAdmin, entity.RoleAdmin, entity.RoleEmpresa)
	staff := RequireRole(entity.RoleSuperAdmin, entity.RoleAdmin)
	superOnly := RequireRole(entity.RoleSuperAdmin)
	activeCompany := RequireActiveCompany(deps.CompanyUC)

	authHandler := NewAuthHandler(deps.AuthUC)
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	userHandler := NewUserHandler(deps.UserUC)
	requestHandler := NewPurchaseRequestHandler(deps.RequestUC)
	paymentHandler := NewPaymentHandler(deps.PaymentUC)
	guideHandler := NewGuideHandler(deps.GuideUC)

	// Público
	api.Post("/auth/login", authHandler.Login)
	api.Get("/tracking/:tracking", guideHandler.Track)

	api.Get("/auth/me", authMW, anyRole, authHandler.Me)

	// Usuarios (superadmin)
	users := api.Group("/users", authMW, superOnly)
	users.Post("/", userHandler.Create)
	users.Get("/", userHandler.List)

	// Empresas, saldo y diario
	companies := api.Group("/companies", authMW, anyRole)
	companies.Post("/", superOnly, companyHandler.Create)
	companies.Get("/", staff, companyHandler.List)
	companies.Get("/:id", companyHandler.GetByID)
	companies.Patch("/:id", staff, companyHandler.Update)
	companies.Get("/:id/balance", companyHandler.Balance)
	companies.Get("/:id/ledger", companyHandler.Ledger)
	companies.Post("/:id/reconcile", staff, companyHandler.Reconcile)
	companies.Get("/:id/payments", paymentHandler.List)
	companies.Post("/:id/payments", staff, paymentHandler.Register)
	companies.Post("/:id/payments/full", staff, paymentHandler.RegisterFull)

	// Solicitudes de compra
	reqs := api.Group("/requests", authMW, anyRole)
	reqs.Post("/", activeCompany, requestHandler.Submit)
	reqs.Get("/", requestHandler.List)
	reqs.Get("/:id", requestHandler.GetByID)
	reqs.Post("/:id/approve", staff, requestHandler.Approve)
	reqs.Post("/:id/reject", staff, requestHandler.Reject)

	// Pagos
	pays := api.Group("/payments", authMW, anyRole)
	pays.Get("/:id", paymentHandler.GetByID)
	pays.Delete("/:id", staff, paymentHandler.Delete)

	// Guías
	guidesGroup := api.Group("/guides", authMW, anyRole)
	guidesGroup.Post("/", activeCompany, guideHandler.Create)
	guidesGroup.Get("/", guideHandler.List)
	guidesGroup.Get("/:tracking", guideHandler.Get)
	guidesGroup.Get("/:tracking/label", guideHandler.Label)
	guidesGroup.Post("/:tracking/advance", staff, guideHandler.Advance)
}
