package guide_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/guias-api/internal/domain"
	"github.com/jhoicas/guias-api/internal/domain/entity"
	"github.com/jhoicas/guias-api/internal/domain/guide"
)

func newGuide() *entity.Guide {
	g := &entity.Guide{ID: "g1"}
	guide.Start(g, "u1", time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC))
	return g
}

func TestAdvance_SecuenciaCompleta(t *testing.T) {
	g := newGuide()
	at := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

	require.NoError(t, guide.Advance(g, entity.GuideStatusRecolectada, "recogida en bodega", "u2", at))
	require.NoError(t, guide.Advance(g, entity.GuideStatusEnTransito, "", "u2", at.Add(time.Hour)))
	require.NoError(t, guide.Advance(g, entity.GuideStatusEntregada, "recibe portería", "u3", at.Add(2*time.Hour)))

	assert.Equal(t, entity.GuideStatusEntregada, g.Status)
	require.Len(t, g.History, 4)
	assert.Equal(t, "recogida en bodega", g.History[1].Note)
	assert.True(t, guide.HistoryIsPrefix(g), "el historial debe ser un prefijo de la secuencia")
	assert.True(t, guide.IsTerminal(g.Status))
}

func TestAdvance_TransicionesInvalidas_NoModificanGuia(t *testing.T) {
	cases := []struct {
		name string
		prep []entity.GuideStatus
		to   entity.GuideStatus
	}{
		{"repetir estado", nil, entity.GuideStatusGenerada},
		{"saltar estado", nil, entity.GuideStatusEnTransito},
		{"retroceder", []entity.GuideStatus{entity.GuideStatusRecolectada}, entity.GuideStatusGenerada},
		{"desde terminal", []entity.GuideStatus{entity.GuideStatusRecolectada, entity.GuideStatusEnTransito, entity.GuideStatusEntregada}, entity.GuideStatusEntregada},
		{"estado desconocido", nil, entity.GuideStatus("perdida")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newGuide()
			for _, s := range tc.prep {
				require.NoError(t, guide.Advance(g, s, "", "u", time.Now()))
			}
			before := g.Status
			histLen := len(g.History)

			err := guide.Advance(g, tc.to, "x", "u", time.Now())
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
			assert.Equal(t, before, g.Status, "el estado no debe cambiar")
			assert.Len(t, g.History, histLen, "el historial no debe crecer")
		})
	}
}

func TestNext(t *testing.T) {
	n, ok := guide.Next(entity.GuideStatusGenerada)
	assert.True(t, ok)
	assert.Equal(t, entity.GuideStatusRecolectada, n)

	_, ok = guide.Next(entity.GuideStatusEntregada)
	assert.False(t, ok, "entregada es terminal")
}

func TestPesoTotal_EsElMayor(t *testing.T) {
	dims := guide.Dimensions{
		Length: decimal.NewFromInt(50),
		Width:  decimal.NewFromInt(40),
		Height: decimal.NewFromInt(30),
	}
	vol := guide.VolumetricWeight(dims, guide.DefaultVolumetricDivisor)
	assert.True(t, vol.Equal(decimal.NewFromInt(12)), "50×40×30/5000 = 12, obtenido %s", vol)

	assert.True(t, guide.TotalWeight(decimal.NewFromInt(8), vol).Equal(vol))
	assert.True(t, guide.TotalWeight(decimal.NewFromInt(15), vol).Equal(decimal.NewFromInt(15)))
}

func TestNewTrackingNumber_Formato(t *testing.T) {
	at := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	n := guide.NewTrackingNumber("", at)
	assert.Regexp(t, regexp.MustCompile(`^GU-20261019-[0-9A-F]{8}$`), n)
	assert.NotEqual(t, n, guide.NewTrackingNumber("", at))
}
