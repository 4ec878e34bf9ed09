package payments_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/guias-api/internal/application/apptest"
	"github.com/jhoicas/guias-api/internal/application/payments"
	"github.com/jhoicas/guias-api/internal/application/requests"
	"github.com/jhoicas/guias-api/internal/domain"
	"github.com/jhoicas/guias-api/internal/domain/entity"
	"github.com/jhoicas/guias-api/internal/domain/repository"
)

type fixture struct {
	env      *apptest.Env
	requests *requests.PurchaseRequestUseCase
	payments *payments.PaymentUseCase
	company  *entity.Company
}

// newFixture deja a la empresa con guides guías compradas a 12.00 cada una.
func newFixture(t *testing.T, guides int64) *fixture {
	t.Helper()
	ctx := context.Background()
	env := apptest.New(t)
	f := &fixture{
		env:      env,
		requests: requests.NewPurchaseRequestUseCase(env.Ledger, env.Store.Requests(), env.Store.Companies(), decimal.RequireFromString("12.00"), nil),
		payments: payments.NewPaymentUseCase(env.Ledger, env.Store.Payments(), nil),
		company:  env.Company(t, "Acme"),
	}
	if guides > 0 {
		req, err := f.requests.Submit(ctx, requests.SubmitInput{
			CompanyID: f.company.ID, UserID: "empresa-1", Cantidad: guides, CostoUnitario: decimal.RequireFromString("12.00"),
		})
		require.NoError(t, err)
		_, err = f.requests.Approve(ctx, req.ID, "admin-1", "")
		require.NoError(t, err)
	}
	return f
}

func (f *fixture) saldo(t *testing.T) string {
	return f.env.Reload(t, f.company.ID).SaldoPendiente.StringFixed(2)
}

func TestFlujoCompraPagoYRetractacion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 50)

	c := f.env.Reload(t, f.company.ID)
	assert.Equal(t, int64(50), c.GuiasDisponibles)
	assert.Equal(t, "600.00", f.saldo(t))

	p, err := f.payments.Register(ctx, payments.RegisterInput{
		CompanyID: f.company.ID, UserID: "admin-1", Monto: decimal.RequireFromString("600"),
		Metodo: entity.PaymentMethodTransferencia, Referencia: "TRX-001",
	})
	require.NoError(t, err)
	assert.Equal(t, "0.00", f.saldo(t))

	deleted, err := f.payments.Delete(ctx, p.ID, "admin-1", "duplicate")
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted())
	assert.Equal(t, "duplicate", deleted.DeleteReason)
	assert.Equal(t, "600.00", f.saldo(t))
	assert.Equal(t, int64(50), f.env.Reload(t, f.company.ID).GuiasDisponibles)

	// el pago se conserva para auditoría
	kept, err := f.payments.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, kept.IsDeleted())

	movs, err := f.env.Ledger.Movements(ctx, f.company.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, movs, 4)
	assert.Equal(t, entity.LedgerApplyPayment, movs[2].Type)
	assert.Equal(t, entity.LedgerReverseBalance, movs[3].Type)
	assert.NotEqual(t, movs[2].TransactionID, movs[3].TransactionID)
}

func TestRegister_ExcedeSaldo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5)

	_, err := f.payments.Register(ctx, payments.RegisterInput{
		CompanyID: f.company.ID, Monto: decimal.RequireFromString("60.01"), Metodo: entity.PaymentMethodEfectivo,
	})
	assert.ErrorIs(t, err, domain.ErrPaymentExceedsBalance)
	assert.Equal(t, "60.00", f.saldo(t))

	list, err := f.payments.List(ctx, repository.PaymentFilter{CompanyID: f.company.ID, IncludeDeleted: true})
	require.NoError(t, err)
	assert.Empty(t, list, "un pago rechazado no se guarda")
}

func TestRegister_Validaciones(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5)

	tests := []struct {
		name string
		in   payments.RegisterInput
	}{
		{"monto cero", payments.RegisterInput{CompanyID: f.company.ID, Metodo: entity.PaymentMethodEfectivo}},
		{"monto negativo", payments.RegisterInput{CompanyID: f.company.ID, Monto: decimal.NewFromInt(-1), Metodo: entity.PaymentMethodEfectivo}},
		{"método desconocido", payments.RegisterInput{CompanyID: f.company.ID, Monto: decimal.NewFromInt(1), Metodo: "bitcoin"}},
		{"transferencia sin referencia", payments.RegisterInput{CompanyID: f.company.ID, Monto: decimal.NewFromInt(1), Metodo: entity.PaymentMethodTransferencia}},
		{"monto con tres decimales", payments.RegisterInput{CompanyID: f.company.ID, Monto: decimal.RequireFromString("0.005"), Metodo: entity.PaymentMethodEfectivo}},
		{"cheque sin referencia", payments.RegisterInput{CompanyID: f.company.ID, Monto: decimal.NewFromInt(1), Metodo: entity.PaymentMethodCheque, Referencia: "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.payments.Register(ctx, tt.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Equal(t, "60.00", f.saldo(t))
}

func TestRegisterFullBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3)

	p, err := f.payments.RegisterFullBalance(ctx, payments.RegisterInput{
		CompanyID: f.company.ID, UserID: "admin-1", Metodo: entity.PaymentMethodDeposito,
	})
	require.NoError(t, err)
	assert.Equal(t, "36.00", p.Monto.StringFixed(2))
	assert.Equal(t, "0.00", f.saldo(t))

	_, err = f.payments.RegisterFullBalance(ctx, payments.RegisterInput{
		CompanyID: f.company.ID, Metodo: entity.PaymentMethodDeposito,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin saldo pendiente no hay nada que pagar")
}

func TestDelete_Reglas(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)
	p, err := f.payments.Register(ctx, payments.RegisterInput{
		CompanyID: f.company.ID, Monto: decimal.NewFromInt(10), Metodo: entity.PaymentMethodEfectivo,
	})
	require.NoError(t, err)

	_, err = f.payments.Delete(ctx, p.ID, "admin", "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.payments.Delete(ctx, "nope", "admin", "error")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.payments.Delete(ctx, p.ID, "admin", "error de digitación")
	require.NoError(t, err)
	_, err = f.payments.Delete(ctx, p.ID, "admin", "otra vez")
	assert.ErrorIs(t, err, domain.ErrAlreadyDeleted)
	assert.Equal(t, "24.00", f.saldo(t))

	visible, err := f.payments.List(ctx, repository.PaymentFilter{CompanyID: f.company.ID})
	require.NoError(t, err)
	assert.Empty(t, visible)
}
