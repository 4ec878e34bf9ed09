package guides

import (
	"context"

	"github.com/jhoicas/guias-api/internal/domain/entity"
)

// LabelGenerator genera el rótulo imprimible (PDF) de una guía.
type LabelGenerator interface {
	GenerateLabel(ctx context.Context, guide *entity.Guide, company *entity.Company) ([]byte, error)
}
