package guides

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/guias-api/internal/application/ledger"
	"github.com/jhoicas/guias-api/internal/domain"
	"github.com/jhoicas/guias-api/internal/domain/entity"
	"github.com/jhoicas/guias-api/internal/domain/guide"
	"github.com/jhoicas/guias-api/internal/domain/repository"
	"github.com/jhoicas/guias-api/pkg/logger"
)

// maxTrackingAttempts reintentos ante colisión del número de guía.
const maxTrackingAttempts = 3

// Config parámetros de generación de guías.
type Config struct {
	TrackingPrefix    string
	VolumetricDivisor int64
}

// GuideUseCase crea guías consumiendo saldo y las avanza por su ciclo de vida.
type GuideUseCase struct {
	ledger      *ledger.Ledger
	txRunner    ledger.TxRunner
	guideRepo   repository.GuideRepository
	companyRepo repository.CompanyRepository
	labels      LabelGenerator
	cfg         Config
	log         *logger.Logger
}

// NewGuideUseCase construye el caso de uso. labels puede ser nil si no se generan rótulos.
func NewGuideUseCase(
	l *ledger.Ledger,
	txRunner ledger.TxRunner,
	guideRepo repository.GuideRepository,
	companyRepo repository.CompanyRepository,
	labels LabelGenerator,
	cfg Config,
	log *logger.Logger,
) *GuideUseCase {
	if cfg.TrackingPrefix == "" {
		cfg.TrackingPrefix = guide.DefaultTrackingPrefix
	}
	if cfg.VolumetricDivisor <= 0 {
		cfg.VolumetricDivisor = guide.DefaultVolumetricDivisor
	}
	if log == nil {
		log = logger.Nop()
	}
	return &GuideUseCase{
		ledger:      l,
		txRunner:    txRunner,
		guideRepo:   guideRepo,
		companyRepo: companyRepo,
		labels:      labels,
		cfg:         cfg,
		log:         log.Component("guides"),
	}
}

// CreateInput datos para generar una guía.
type CreateInput struct {
	CompanyID     string
	UserID        string
	Sender        entity.Address
	Consignee     entity.Address
	Sobres        int
	Paquetes      int
	Cajas         int
	RealWeight    decimal.Decimal
	Dimensions    guide.Dimensions
	DeclaredValue decimal.Decimal
	Description   string
}

func (in CreateInput) validate() error {
	if in.CompanyID == "" {
		return fmt.Errorf("%w: company_id requerido", domain.ErrInvalidInput)
	}
	if err := validateAddress("remitente", in.Sender); err != nil {
		return err
	}
	if err := validateAddress("destinatario", in.Consignee); err != nil {
		return err
	}
	if in.Sobres < 0 || in.Paquetes < 0 || in.Cajas < 0 || in.Sobres+in.Paquetes+in.Cajas == 0 {
		return fmt.Errorf("%w: el envío debe tener al menos una pieza", domain.ErrInvalidInput)
	}
	if !in.RealWeight.IsPositive() {
		return fmt.Errorf("%w: el peso real debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if in.Dimensions.Length.IsNegative() || in.Dimensions.Width.IsNegative() || in.Dimensions.Height.IsNegative() {
		return fmt.Errorf("%w: dimensiones negativas", domain.ErrInvalidInput)
	}
	if in.DeclaredValue.IsNegative() {
		return fmt.Errorf("%w: valor declarado negativo", domain.ErrInvalidInput)
	}
	return nil
}

func validateAddress(label string, a entity.Address) error {
	if strings.TrimSpace(a.Name) == "" || strings.TrimSpace(a.Street) == "" || strings.TrimSpace(a.City) == "" {
		return fmt.Errorf("%w: %s requiere nombre, dirección y ciudad", domain.ErrInvalidInput, label)
	}
	return nil
}

// Create genera una guía en estado generada consumiendo una guía del saldo de la empresa.
// domain.ErrInsufficientBalance si la empresa no tiene guías disponibles.
func (uc *GuideUseCase) Create(ctx context.Context, in CreateInput) (*entity.Guide, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var (
		out *entity.Guide
		err error
	)
	for attempt := 0; attempt < maxTrackingAttempts; attempt++ {
		out, err = uc.create(ctx, in)
		if !errors.Is(err, domain.ErrDuplicate) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("company_id", out.CompanyID).
		Str("tracking", out.TrackingNumber).
		Msg("guía generada")
	return out, nil
}

func (uc *GuideUseCase) create(ctx context.Context, in CreateInput) (*entity.Guide, error) {
	var out *entity.Guide
	err := uc.ledger.WithCompany(ctx, in.CompanyID, func(tx repository.TxRepositories) error {
		now := uc.ledger.Now()
		dimensional := decimal.Zero
		if !in.Dimensions.IsZero() {
			dimensional = guide.VolumetricWeight(in.Dimensions, uc.cfg.VolumetricDivisor)
		}
		g := &entity.Guide{
			ID:             uuid.New().String(),
			TrackingNumber: guide.NewTrackingNumber(uc.cfg.TrackingPrefix, now),
			CompanyID:      in.CompanyID,
			Sender:         in.Sender,
			Consignee:      in.Consignee,
			Package: entity.PackageComposition{
				Sobres:            in.Sobres,
				Paquetes:          in.Paquetes,
				Cajas:             in.Cajas,
				RealWeight:        in.RealWeight,
				DimensionalWeight: dimensional,
				TotalWeight:       guide.TotalWeight(in.RealWeight, dimensional),
				DeclaredValue:     in.DeclaredValue,
				Description:       strings.TrimSpace(in.Description),
			},
			CreatedBy: in.UserID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		guide.Start(g, in.UserID, now)

		company, err := tx.Companies.GetForUpdate(ctx, in.CompanyID)
		if err != nil {
			return err
		}
		if company == nil {
			return domain.ErrNotFound
		}
		if company.Status != entity.CompanyStatusActive {
			return domain.ErrForbidden
		}
		if _, err := uc.ledger.DebitGuides(ctx, tx, in.CompanyID, 1,
			ledger.Ref{Type: entity.LedgerRefGuide, ID: g.ID, UserID: in.UserID}); err != nil {
			return err
		}
		if err := tx.Guides.Create(ctx, g); err != nil {
			return err
		}
		out = g
		return nil
	})
	return out, err
}

// AdvanceInput datos para avanzar una guía.
type AdvanceInput struct {
	TrackingNumber string
	Target         entity.GuideStatus
	Note           string
	UserID         string
}

// Advance mueve la guía exactamente al siguiente estado. No toca el saldo: la guía
// ya fue descontada al crearse. domain.ErrInvalidTransition ante saltos, repeticiones o retrocesos.
func (uc *GuideUseCase) Advance(ctx context.Context, in AdvanceInput) (*entity.Guide, error) {
	in.TrackingNumber = strings.ToUpper(strings.TrimSpace(in.TrackingNumber))
	if in.TrackingNumber == "" {
		return nil, fmt.Errorf("%w: número de guía requerido", domain.ErrInvalidInput)
	}
	if !guide.IsValidStatus(in.Target) {
		return nil, fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidTransition, in.Target)
	}
	var out *entity.Guide
	err := uc.txRunner.Run(ctx, func(tx repository.TxRepositories) error {
		g, err := tx.Guides.GetForUpdate(ctx, in.TrackingNumber)
		if err != nil {
			return err
		}
		if g == nil {
			return domain.ErrNotFound
		}
		if err := guide.Advance(g, in.Target, strings.TrimSpace(in.Note), in.UserID, uc.ledger.Now()); err != nil {
			return err
		}
		if err := tx.Guides.UpdateStatus(ctx, g); err != nil {
			return err
		}
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("tracking", out.TrackingNumber).
		Str("estado", string(out.Status)).
		Msg("guía actualizada")
	return out, nil
}

// Track devuelve la guía por número de rastreo (consulta pública).
func (uc *GuideUseCase) Track(ctx context.Context, trackingNumber string) (*entity.Guide, error) {
	if trackingNumber == "" {
		return nil, fmt.Errorf("%w: número de guía requerido", domain.ErrInvalidInput)
	}
	g, err := uc.guideRepo.GetByTrackingNumber(ctx, strings.ToUpper(strings.TrimSpace(trackingNumber)))
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, domain.ErrNotFound
	}
	return g, nil
}

// List lista guías de una empresa.
func (uc *GuideUseCase) List(ctx context.Context, filter repository.GuideFilter) ([]*entity.Guide, error) {
	if filter.Status != "" && !guide.IsValidStatus(filter.Status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, filter.Status)
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return uc.guideRepo.List(ctx, filter)
}

// Label genera el rótulo PDF de la guía. Devuelve bytes y nombre de archivo sugerido.
func (uc *GuideUseCase) Label(ctx context.Context, trackingNumber string) ([]byte, string, error) {
	if uc.labels == nil {
		return nil, "", fmt.Errorf("guides: generador de rótulos no configurado")
	}
	g, err := uc.Track(ctx, trackingNumber)
	if err != nil {
		return nil, "", err
	}
	company, err := uc.companyRepo.GetByID(ctx, g.CompanyID)
	if err != nil {
		return nil, "", err
	}
	if company == nil {
		return nil, "", domain.ErrNotFound
	}
	pdf, err := uc.labels.GenerateLabel(ctx, g, company)
	if err != nil {
		return nil, "", fmt.Errorf("guides: generar rótulo: %w", err)
	}
	return pdf, g.TrackingNumber + ".pdf", nil
}
