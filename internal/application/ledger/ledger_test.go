package ledger_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/guias-api/internal/application/apptest"
	"github.com/jhoicas/guias-api/internal/application/ledger"
	"github.com/jhoicas/guias-api/internal/domain"
	"github.com/jhoicas/guias-api/internal/domain/entity"
	domledger "github.com/jhoicas/guias-api/internal/domain/ledger"
	"github.com/jhoicas/guias-api/internal/domain/repository"
	"github.com/jhoicas/guias-api/internal/infrastructure/lock"
	"github.com/jhoicas/guias-api/pkg/logger"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLedger_PostAplicaYRegistraMovimientos(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)
	c := env.Company(t, "Acme")

	err := env.Ledger.WithCompany(ctx, c.ID, func(tx repository.TxRepositories) error {
		_, err := env.Ledger.Post(ctx, tx, ledger.Entry{
			CompanyID:     c.ID,
			TransactionID: "req-1",
			RefType:       entity.LedgerRefPurchaseRequest,
			RefID:         "req-1",
			UserID:        "admin",
			Ops:           []domledger.Op{domledger.CreditGuides(50), domledger.ChargeBalance(dec("600"))},
		})
		return err
	})
	require.NoError(t, err)

	got := env.Reload(t, c.ID)
	assert.Equal(t, int64(50), got.GuiasDisponibles)
	assert.True(t, got.SaldoPendiente.Equal(dec("600")))

	movs, err := env.Ledger.Movements(ctx, c.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.LedgerCreditGuides, movs[0].Type)
	assert.Equal(t, entity.LedgerChargeBalance, movs[1].Type)
	assert.Equal(t, "req-1", movs[0].TransactionID)
	assert.Equal(t, movs[0].TransactionID, movs[1].TransactionID)
}

func TestLedger_DebitoSinSaldoNoCambiaNada(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)
	c := env.Company(t, "Acme")

	err := env.Ledger.WithCompany(ctx, c.ID, func(tx repository.TxRepositories) error {
		_, err := env.Ledger.DebitGuides(ctx, tx, c.ID, 1, ledger.Ref{Type: entity.LedgerRefGuide, ID: "g1"})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	got := env.Reload(t, c.ID)
	assert.Equal(t, int64(0), got.GuiasDisponibles)
	movs, _ := env.Ledger.Movements(ctx, c.ID, 0, 0)
	assert.Empty(t, movs)
}

func TestLedger_LoteTodoONada(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)
	c := env.Company(t, "Acme")

	err := env.Ledger.WithCompany(ctx, c.ID, func(tx repository.TxRepositories) error {
		_, err := env.Ledger.Post(ctx, tx, ledger.Entry{
			CompanyID: c.ID,
			Ops:       []domledger.Op{domledger.CreditGuides(5), domledger.ApplyPayment(dec("10"))},
		})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrPaymentExceedsBalance)
	assert.Equal(t, int64(0), env.Reload(t, c.ID).GuiasDisponibles)
}

func TestLedger_LogSoloTrasConfirmar(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)
	c := env.Company(t, "Acme")
	var buf bytes.Buffer
	l := ledger.New(env.Store, lock.NewKeyedMutex(), env.Store.Companies(), env.Store.Movements(),
		logger.New(logger.Config{Env: "test", Level: "info", Output: &buf}))

	errAbort := errors.New("paso posterior falló")
	err := l.WithCompany(ctx, c.ID, func(tx repository.TxRepositories) error {
		if _, err := l.CreditGuides(ctx, tx, c.ID, 5, ledger.Ref{Type: entity.LedgerRefPurchaseRequest, ID: "r1"}); err != nil {
			return err
		}
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)
	assert.Equal(t, int64(0), env.Reload(t, c.ID).GuiasDisponibles)
	assert.NotContains(t, buf.String(), "saldo actualizado", "un lote descartado no se registra")

	err = l.WithCompany(ctx, c.ID, func(tx repository.TxRepositories) error {
		_, err := l.CreditGuides(ctx, tx, c.ID, 5, ledger.Ref{Type: entity.LedgerRefPurchaseRequest, ID: "r2"})
		return err
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "saldo actualizado")
	assert.Contains(t, buf.String(), `"ref_id":"r2"`)
	assert.NotContains(t, buf.String(), `"ref_id":"r1"`)
}

func TestLedger_EmpresaInexistente(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)

	err := env.Ledger.WithCompany(ctx, "nope", func(tx repository.TxRepositories) error {
		_, err := env.Ledger.CreditGuides(ctx, tx, "nope", 1, ledger.Ref{})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.Ledger.Balance(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLedger_DebitosConcurrentesNoSobregiran(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)
	c := env.Company(t, "Acme")
	require.NoError(t, env.Ledger.WithCompany(ctx, c.ID, func(tx repository.TxRepositories) error {
		_, err := env.Ledger.CreditGuides(ctx, tx, c.ID, 10, ledger.Ref{})
		return err
	}))

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, insufficient := 0, 0
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := env.Ledger.WithCompany(ctx, c.ID, func(tx repository.TxRepositories) error {
				_, err := env.Ledger.DebitGuides(ctx, tx, c.ID, 1, ledger.Ref{Type: entity.LedgerRefGuide})
				return err
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case assert.ErrorIs(t, err, domain.ErrInsufficientBalance):
				insufficient++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, 15, insufficient)
	assert.Equal(t, int64(0), env.Reload(t, c.ID).GuiasDisponibles)
}

func TestLedger_ReconcileCorrigeDesalineacion(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)
	c := env.Company(t, "Acme")
	require.NoError(t, env.Ledger.WithCompany(ctx, c.ID, func(tx repository.TxRepositories) error {
		_, err := env.Ledger.Post(ctx, tx, ledger.Entry{
			CompanyID: c.ID,
			Ops:       []domledger.Op{domledger.CreditGuides(3), domledger.ChargeBalance(dec("36"))},
		})
		return err
	}))

	rec, err := env.Ledger.Reconcile(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, rec.Repaired)

	// alguien escribe el saldo por fuera del libro
	broken := env.Reload(t, c.ID)
	broken.GuiasDisponibles = 99
	require.NoError(t, env.Store.Companies().UpdateBalance(ctx, broken))

	rec, err = env.Ledger.Reconcile(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, rec.Repaired)
	assert.Equal(t, int64(99), rec.Stored.Guides)
	assert.Equal(t, int64(3), rec.Computed.Guides)

	got := env.Reload(t, c.ID)
	assert.Equal(t, int64(3), got.GuiasDisponibles)
	assert.True(t, got.SaldoPendiente.Equal(dec("36")))
}
