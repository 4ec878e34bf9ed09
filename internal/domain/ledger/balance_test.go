package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/guias-api/internal/domain"
	"github.com/jhoicas/guias-api/internal/domain/entity"
	"github.com/jhoicas/guias-api/internal/domain/ledger"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestApply_CreditYCargo(t *testing.T) {
	b := ledger.Balance{}
	next, err := ledger.ApplyAll(b, ledger.CreditGuides(50), ledger.ChargeBalance(dec("600.00")))
	require.NoError(t, err)

	assert.Equal(t, int64(50), next.Guides)
	assert.True(t, next.Owed.Equal(dec("600")), "saldo esperado 600, obtenido %s", next.Owed)
	assert.Equal(t, int64(0), b.Guides, "el saldo original no debe mutar")
}

func TestApply_DebitoSinGuidas_Insuficiente(t *testing.T) {
	_, err := ledger.Balance{Guides: 0}.Apply(ledger.DebitGuides(1))
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	next, err := ledger.Balance{Guides: 3}.Apply(ledger.DebitGuides(3))
	require.NoError(t, err)
	assert.Equal(t, int64(0), next.Guides)
}

func TestApply_PagoMayorQueSaldo_EsError(t *testing.T) {
	b := ledger.Balance{Owed: dec("100")}
	got, err := b.Apply(ledger.ApplyPayment(dec("100.01")))
	assert.ErrorIs(t, err, domain.ErrPaymentExceedsBalance)
	assert.True(t, got.Equal(b), "el saldo no debe cambiar ante un error")
}

func TestApply_ValidaCantidadesYMontos(t *testing.T) {
	cases := []struct {
		name string
		op   ledger.Op
	}{
		{"credito cero", ledger.CreditGuides(0)},
		{"debito negativo", ledger.DebitGuides(-2)},
		{"cargo negativo", ledger.ChargeBalance(dec("-1"))},
		{"pago cero", ledger.ApplyPayment(decimal.Zero)},
		{"reverso negativo", ledger.ReverseBalance(dec("-5"))},
		{"tipo desconocido", ledger.Op{Type: "FOO"}},
		{"cargo con tres decimales", ledger.ChargeBalance(dec("37.035"))},
		{"pago con tres decimales", ledger.ApplyPayment(dec("0.005"))},
		{"reverso con tres decimales", ledger.ReverseBalance(dec("1.001"))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ledger.Balance{Guides: 10, Owed: dec("10")}.Apply(tc.op)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestValidScale(t *testing.T) {
	assert.True(t, ledger.ValidScale(dec("37.04")))
	assert.True(t, ledger.ValidScale(dec("37.040")), "ceros a la derecha no cuentan")
	assert.True(t, ledger.ValidScale(dec("600")))
	assert.False(t, ledger.ValidScale(dec("37.035")))
	assert.False(t, ledger.ValidScale(dec("0.005")))
}

func TestApplyAll_TodoONada(t *testing.T) {
	b := ledger.Balance{Guides: 1, Owed: dec("12")}
	got, err := ledger.ApplyAll(b,
		ledger.CreditGuides(10),
		ledger.DebitGuides(50), // falla: solo habría 11
	)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.True(t, got.Equal(b), "un lote fallido no debe aplicar la primera operación")
}

func TestReplay_PagoYReverso_SonIdentidad(t *testing.T) {
	b := ledger.Balance{Guides: 50, Owed: dec("600")}
	paid, err := b.Apply(ledger.ApplyPayment(dec("600")))
	require.NoError(t, err)
	assert.True(t, paid.Owed.IsZero())

	restored, err := paid.Apply(ledger.ReverseBalance(dec("600")))
	require.NoError(t, err)
	assert.True(t, restored.Equal(b), "eliminar el pago debe restaurar el saldo previo")
}

func TestReplay_PliegueDeMovimientos(t *testing.T) {
	movs := []*entity.LedgerMovement{
		{Type: entity.LedgerCreditGuides, GuidesDelta: 50},
		{Type: entity.LedgerChargeBalance, AmountDelta: dec("600")},
		{Type: entity.LedgerDebitGuides, GuidesDelta: -2},
		{Type: entity.LedgerApplyPayment, AmountDelta: dec("-600")},
		{Type: entity.LedgerReverseBalance, AmountDelta: dec("600")},
	}
	got := ledger.Replay(movs)
	assert.Equal(t, int64(48), got.Guides)
	assert.True(t, got.Owed.Equal(dec("600")))
}

func TestOp_DeltasCoincidenConApply(t *testing.T) {
	ops := []ledger.Op{
		ledger.CreditGuides(5),
		ledger.ChargeBalance(dec("60")),
		ledger.DebitGuides(2),
		ledger.ApplyPayment(dec("10")),
		ledger.ReverseBalance(dec("10")),
	}
	b := ledger.Balance{}
	var movs []*entity.LedgerMovement
	for _, op := range ops {
		var err error
		b, err = b.Apply(op)
		require.NoError(t, err)
		g, a := op.Deltas()
		movs = append(movs, &entity.LedgerMovement{Type: op.Type, GuidesDelta: g, AmountDelta: a})
	}
	assert.True(t, ledger.Replay(movs).Equal(b), "el replay debe reproducir el saldo incremental")
}
