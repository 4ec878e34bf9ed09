package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/guias-api/internal/domain/entity"
)

func TestGenerateLabel(t *testing.T) {
	g := &entity.Guide{
		TrackingNumber: "GU-20260314-ABCDEF12",
		Sender:         entity.Address{Name: "Acme", Street: "Cra 1 # 2-3", City: "Bogotá", Department: "Cundinamarca"},
		Consignee:      entity.Address{Name: "Juan", Street: "Cll 10 # 5-6", City: "Medellín", Reference: "Portería"},
		Package: entity.PackageComposition{
			Cajas: 1, RealWeight: decimal.RequireFromString("2.5"),
			DimensionalWeight: decimal.RequireFromString("4.8"), TotalWeight: decimal.RequireFromString("4.8"),
			Description: "Repuestos",
		},
		Status:    entity.GuideStatusGenerada,
		CreatedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
	c := &entity.Company{Name: "Acme SAS", NIT: "900123456"}

	out, err := NewLabelGenerator("https://rastreo.example.com/").GenerateLabel(context.Background(), g, c)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestQRData(t *testing.T) {
	g := &entity.Guide{TrackingNumber: "GU-1"}
	assert.Equal(t, "GU-1", NewLabelGenerator("").qrData(g))
	assert.Equal(t, "https://x.co/t/GU-1", NewLabelGenerator("https://x.co/t/").qrData(g))
}
