package requests_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/guias-api/internal/application/apptest"
	"github.com/jhoicas/guias-api/internal/application/requests"
	"github.com/jhoicas/guias-api/internal/domain"
	"github.com/jhoicas/guias-api/internal/domain/entity"
	"github.com/jhoicas/guias-api/internal/domain/repository"
)

func newUseCase(env *apptest.Env) *requests.PurchaseRequestUseCase {
	return requests.NewPurchaseRequestUseCase(env.Ledger, env.Store.Requests(), env.Store.Companies(), decimal.RequireFromString("12.00"), nil)
}

func TestTotalAmount(t *testing.T) {
	assert.Equal(t, "600.00", requests.TotalAmount(50, decimal.RequireFromString("12")).StringFixed(2))
	assert.True(t, requests.TotalAmount(3, decimal.RequireFromString("12.35")).Equal(decimal.RequireFromString("37.05")))
	assert.True(t, requests.TotalAmount(7, decimal.RequireFromString("0.01")).Equal(decimal.RequireFromString("0.07")), "sin redondeo")
}

func TestSubmit_NoAfectaSaldo(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)
	uc := newUseCase(env)
	c := env.Company(t, "Acme")

	req, err := uc.Submit(ctx, requests.SubmitInput{
		CompanyID: c.ID, UserID: "u1", Cantidad: 50, CostoUnitario: decimal.RequireFromString("12.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusPendiente, req.Status)
	assert.True(t, req.MontoTotal.Equal(decimal.RequireFromString("600")))

	got := env.Reload(t, c.ID)
	assert.Equal(t, int64(0), got.GuiasDisponibles)
	assert.True(t, got.SaldoPendiente.IsZero())
}

func TestSubmit_CostoVigentePorDefecto(t *testing.T) {
	env := apptest.New(t)
	uc := newUseCase(env)
	c := env.Company(t, "Acme")

	req, err := uc.Submit(context.Background(), requests.SubmitInput{CompanyID: c.ID, Cantidad: 4})
	require.NoError(t, err)
	assert.Equal(t, "12.00", req.CostoUnitario.StringFixed(2))
	assert.Equal(t, "48.00", req.MontoTotal.StringFixed(2))
}

func TestSubmit_Validaciones(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)
	uc := newUseCase(env)
	c := env.Company(t, "Acme")

	tests := []struct {
		name string
		in   requests.SubmitInput
		want error
	}{
		{"cantidad cero", requests.SubmitInput{CompanyID: c.ID, Cantidad: 0, CostoUnitario: decimal.NewFromInt(12)}, domain.ErrInvalidInput},
		{"costo negativo", requests.SubmitInput{CompanyID: c.ID, Cantidad: 1, CostoUnitario: decimal.NewFromInt(-1)}, domain.ErrInvalidInput},
		{"costo con tres decimales", requests.SubmitInput{CompanyID: c.ID, Cantidad: 3, CostoUnitario: decimal.RequireFromString("12.345")}, domain.ErrInvalidInput},
		{"sin empresa", requests.SubmitInput{Cantidad: 1, CostoUnitario: decimal.NewFromInt(12)}, domain.ErrInvalidInput},
		{"empresa inexistente", requests.SubmitInput{CompanyID: "nope", Cantidad: 1, CostoUnitario: decimal.NewFromInt(12)}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Submit(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestApprove_AcreditaYCarga(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)
	uc := newUseCase(env)
	c := env.Company(t, "Acme")
	req, err := uc.Submit(ctx, requests.SubmitInput{CompanyID: c.ID, Cantidad: 50, CostoUnitario: decimal.NewFromInt(12)})
	require.NoError(t, err)

	approved, err := uc.Approve(ctx, req.ID, "admin-1", "ok")
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusAprobada, approved.Status)
	assert.Equal(t, "admin-1", approved.ResolvedBy)
	require.NotNil(t, approved.ResolvedAt)

	got := env.Reload(t, c.ID)
	assert.Equal(t, int64(50), got.GuiasDisponibles)
	assert.Equal(t, "600.00", got.SaldoPendiente.StringFixed(2))

	movs, err := env.Ledger.Movements(ctx, c.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	for _, m := range movs {
		assert.Equal(t, req.ID, m.RefID)
		assert.Equal(t, entity.LedgerRefPurchaseRequest, m.RefType)
	}
}

func TestApprove_DosVecesFalla(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)
	uc := newUseCase(env)
	c := env.Company(t, "Acme")
	req, err := uc.Submit(ctx, requests.SubmitInput{CompanyID: c.ID, Cantidad: 10, CostoUnitario: decimal.NewFromInt(12)})
	require.NoError(t, err)

	_, err = uc.Approve(ctx, req.ID, "admin-1", "")
	require.NoError(t, err)
	_, err = uc.Approve(ctx, req.ID, "admin-1", "")
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
	_, err = uc.Reject(ctx, requests.RejectInput{RequestID: req.ID, Motivo: entity.RejectReasonLimiteCredito})
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)

	assert.Equal(t, int64(10), env.Reload(t, c.ID).GuiasDisponibles)
}

func TestApprove_ConcurrenteAcreditaUnaVez(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)
	uc := newUseCase(env)
	c := env.Company(t, "Acme")
	req, err := uc.Submit(ctx, requests.SubmitInput{CompanyID: c.ID, Cantidad: 7, CostoUnitario: decimal.NewFromInt(12)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Approve(ctx, req.ID, "admin", "")
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	got := env.Reload(t, c.ID)
	assert.Equal(t, int64(7), got.GuiasDisponibles)
	assert.Equal(t, "84.00", got.SaldoPendiente.StringFixed(2))
}

func TestReject_SinEfectoEnSaldo(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)
	uc := newUseCase(env)
	c := env.Company(t, "Acme")
	req, err := uc.Submit(ctx, requests.SubmitInput{CompanyID: c.ID, Cantidad: 10, CostoUnitario: decimal.NewFromInt(12)})
	require.NoError(t, err)

	_, err = uc.Reject(ctx, requests.RejectInput{RequestID: req.ID, ResolverID: "admin", Motivo: entity.RejectReasonOtro})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "otro exige comentarios")

	_, err = uc.Reject(ctx, requests.RejectInput{RequestID: req.ID, ResolverID: "admin", Motivo: "caprichoso"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	rejected, err := uc.Reject(ctx, requests.RejectInput{
		RequestID: req.ID, ResolverID: "admin", Motivo: entity.RejectReasonOtro, Comentarios: "documentos vencidos",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusRechazada, rejected.Status)
	assert.Equal(t, "documentos vencidos", rejected.RejectComment)

	_, err = uc.Approve(ctx, req.ID, "admin", "")
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)

	got := env.Reload(t, c.ID)
	assert.Equal(t, int64(0), got.GuiasDisponibles)
	assert.True(t, got.SaldoPendiente.IsZero())
	movs, _ := env.Ledger.Movements(ctx, c.ID, 0, 0)
	assert.Empty(t, movs)
}

func TestList_FiltraPorEstado(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)
	uc := newUseCase(env)
	c := env.Company(t, "Acme")
	r1, _ := uc.Submit(ctx, requests.SubmitInput{CompanyID: c.ID, Cantidad: 1, CostoUnitario: decimal.NewFromInt(12)})
	_, _ = uc.Submit(ctx, requests.SubmitInput{CompanyID: c.ID, Cantidad: 2, CostoUnitario: decimal.NewFromInt(12)})
	_, err := uc.Approve(ctx, r1.ID, "admin", "")
	require.NoError(t, err)

	pending, err := uc.List(ctx, repository.PurchaseRequestFilter{CompanyID: c.ID, Status: entity.RequestStatusPendiente})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(2), pending[0].Cantidad)

	_, err = uc.List(ctx, repository.PurchaseRequestFilter{Status: "borrador"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
