package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/guias-api/internal/application/dto"
	"github.com/jhoicas/guias-api/internal/application/ledger"
	"github.com/jhoicas/guias-api/internal/domain"
	"github.com/jhoicas/guias-api/internal/domain/entity"
	"github.com/jhoicas/guias-api/internal/domain/repository"
	"github.com/jhoicas/guias-api/pkg/logger"
	"github.com/jhoicas/guias-api/pkg/nit"
)

// CompanyUseCase aplica reglas de negocio para empresas (casos de uso).
// El saldo se lee y se recalcula a través del libro de guías; nunca se edita directo.
type CompanyUseCase struct {
	repo   repository.CompanyRepository
	guides repository.GuideRepository
	ledger *ledger.Ledger
	log    *logger.Logger
}

// NewCompanyUseCase construye el caso de uso con los puertos de persistencia.
// guides puede ser nil cuando no se consulta el saldo (p. ej. el seed).
func NewCompanyUseCase(repo repository.CompanyRepository, guides repository.GuideRepository, l *ledger.Ledger, log *logger.Logger) *CompanyUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &CompanyUseCase{repo: repo, guides: guides, ledger: l, log: log.Component("companies")}
}

// Create crea una nueva empresa activa con saldo en cero. El NIT se normaliza; devuelve domain.ErrDuplicate si ya existe.
func (uc *CompanyUseCase) Create(ctx context.Context, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || strings.TrimSpace(in.NIT) == "" {
		return nil, fmt.Errorf("%w: name y nit son requeridos", domain.ErrInvalidInput)
	}
	taxID, err := nit.Normalize(in.NIT)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	existing, err := uc.repo.GetByNIT(ctx, taxID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	company := &entity.Company{
		ID:             uuid.New().String(),
		Name:           name,
		NIT:            taxID,
		Address:        in.Address,
		Phone:          in.Phone,
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		Status:         entity.CompanyStatusActive,
		SaldoPendiente: decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	uc.log.Info().Str("company_id", company.ID).Str("nit", company.NIT).Msg("empresa creada")
	return dto.NewCompanyResponse(company), nil
}

// GetByID obtiene una empresa por ID con su saldo.
func (uc *CompanyUseCase) GetByID(ctx context.Context, id string) (*dto.CompanyResponse, error) {
	company, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewCompanyResponse(company), nil
}

// List lista empresas con paginación.
func (uc *CompanyUseCase) List(ctx context.Context, limit, offset int) (*dto.CompanyListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *dto.NewCompanyResponse(c))
	}
	return &dto.CompanyListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Update modifica datos de contacto y estado. Una empresa suspendida no puede generar guías
// ni pedir nuevas, pero conserva su saldo y puede recibir pagos.
func (uc *CompanyUseCase) Update(ctx context.Context, id string, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	company, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name no puede quedar vacío", domain.ErrInvalidInput)
		}
		company.Name = name
	}
	if in.Address != nil {
		company.Address = *in.Address
	}
	if in.Phone != nil {
		company.Phone = *in.Phone
	}
	if in.Email != nil {
		company.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Status != nil {
		switch *in.Status {
		case entity.CompanyStatusActive, entity.CompanyStatusSuspended:
			company.Status = *in.Status
		default:
			return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, *in.Status)
		}
	}
	company.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	return dto.NewCompanyResponse(company), nil
}

// Balance saldo actual de la empresa junto con el total de guías generadas.
func (uc *CompanyUseCase) Balance(ctx context.Context, id string) (*dto.BalanceResponse, error) {
	company, err := uc.ledger.Balance(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.NewBalanceResponse(company)
	if uc.guides != nil {
		n, err := uc.guides.CountByCompany(ctx, id)
		if err != nil {
			return nil, err
		}
		out.GuiasGeneradas = n
	}
	return &out, nil
}

// Movements diario del libro de guías de la empresa, en orden cronológico.
func (uc *CompanyUseCase) Movements(ctx context.Context, id string, limit, offset int) (*dto.LedgerMovementListResponse, error) {
	movs, err := uc.ledger.Movements(ctx, id, limit, offset)
	if err != nil {
		return nil, err
	}
	return dto.NewLedgerMovementListResponse(movs, limit, offset), nil
}

// Reconcile recalcula el saldo desde el diario y lo corrige si difiere.
func (uc *CompanyUseCase) Reconcile(ctx context.Context, id string) (*dto.ReconcileResponse, error) {
	r, err := uc.ledger.Reconcile(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewReconcileResponse(r.CompanyID, r.Stored, r.Computed, r.Repaired), nil
}

// IsActive informa si la empresa existe y está activa. Devuelve error solo ante fallos de infraestructura.
func (uc *CompanyUseCase) IsActive(ctx context.Context, id string) (bool, error) {
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return company != nil && company.Status == entity.CompanyStatusActive, nil
}

func (uc *CompanyUseCase) get(ctx context.Context, id string) (*entity.Company, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id requerido", domain.ErrInvalidInput)
	}
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return company, nil
}
