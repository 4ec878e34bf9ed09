package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/guias-api/internal/domain"
	"github.com/jhoicas/guias-api/internal/domain/entity"
	"github.com/jhoicas/guias-api/internal/domain/repository"
	"github.com/jhoicas/guias-api/internal/infrastructure/memory"
)

func seedCompany(t *testing.T, st *memory.Store, id string) {
	t.Helper()
	require.NoError(t, st.Companies().Create(context.Background(), &entity.Company{
		ID: id, Name: "Empresa " + id, NIT: "nit-" + id, Status: entity.CompanyStatusActive,
	}))
}

func TestStore_RunConfirmaAlTerminarSinError(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	seedCompany(t, st, "c1")

	err := st.Run(ctx, func(tx repository.TxRepositories) error {
		c, err := tx.Companies.GetForUpdate(ctx, "c1")
		require.NoError(t, err)
		c.GuiasDisponibles = 10
		c.SaldoPendiente = decimal.RequireFromString("120.00")
		require.NoError(t, tx.Companies.UpdateBalance(ctx, c))

		// dentro de la tx se ve lo escrito; fuera todavía no
		inTx, _ := tx.Companies.GetByID(ctx, "c1")
		assert.Equal(t, int64(10), inTx.GuiasDisponibles)
		outside, _ := st.Companies().GetByID(ctx, "c1")
		assert.Equal(t, int64(0), outside.GuiasDisponibles)

		return tx.Movements.Create(ctx, &entity.LedgerMovement{ID: "m1", CompanyID: "c1", GuidesDelta: 10})
	})
	require.NoError(t, err)

	c, _ := st.Companies().GetByID(ctx, "c1")
	assert.Equal(t, int64(10), c.GuiasDisponibles)
	assert.True(t, c.SaldoPendiente.Equal(decimal.RequireFromString("120")))
	movs, _ := st.Movements().ListByCompany(ctx, "c1", 0, 0)
	assert.Len(t, movs, 1)
}

func TestStore_RunDescartaAnteError(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	seedCompany(t, st, "c1")
	boom := errors.New("boom")

	err := st.Run(ctx, func(tx repository.TxRepositories) error {
		c, _ := tx.Companies.GetForUpdate(ctx, "c1")
		c.GuiasDisponibles = 99
		_ = tx.Companies.UpdateBalance(ctx, c)
		_ = tx.Movements.Create(ctx, &entity.LedgerMovement{ID: "m1", CompanyID: "c1"})
		return boom
	})
	assert.ErrorIs(t, err, boom)

	c, _ := st.Companies().GetByID(ctx, "c1")
	assert.Equal(t, int64(0), c.GuiasDisponibles)
	movs, _ := st.Movements().ListByCompany(ctx, "c1", 0, 0)
	assert.Empty(t, movs)
}

func TestStore_GetForUpdateBloqueaHastaElCommit(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	seedCompany(t, st, "c1")

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- st.Run(ctx, func(tx repository.TxRepositories) error {
			_, err := tx.Companies.GetForUpdate(ctx, "c1")
			close(locked)
			<-release
			return err
		})
	}()
	<-locked

	waitCtx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	err := st.Run(waitCtx, func(tx repository.TxRepositories) error {
		_, err := tx.Companies.GetForUpdate(waitCtx, "c1")
		return err
	})
	assert.ErrorIs(t, err, domain.ErrBusy)

	close(release)
	require.NoError(t, <-done)

	err = st.Run(ctx, func(tx repository.TxRepositories) error {
		_, err := tx.Companies.GetForUpdate(ctx, "c1")
		return err
	})
	assert.NoError(t, err)
}

func TestStore_NumeroDeGuiaUnico(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	g := &entity.Guide{ID: "g1", TrackingNumber: "GU-20260101-AAAAAAAA", CompanyID: "c1", Status: entity.GuideStatusGenerada}
	require.NoError(t, st.Guides().Create(ctx, g))

	dup := &entity.Guide{ID: "g2", TrackingNumber: g.TrackingNumber, CompanyID: "c1"}
	assert.ErrorIs(t, st.Guides().Create(ctx, dup), domain.ErrDuplicate)

	err := st.Run(ctx, func(tx repository.TxRepositories) error {
		return tx.Guides.Create(ctx, dup)
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestStore_HistorialNoSeComparte(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	g := &entity.Guide{
		ID: "g1", TrackingNumber: "GU-1", CompanyID: "c1", Status: entity.GuideStatusGenerada,
		History: []entity.GuideHistoryEntry{{Status: entity.GuideStatusGenerada}},
	}
	require.NoError(t, st.Guides().Create(ctx, g))
	g.History[0].Note = "mutado"

	got, err := st.Guides().GetByTrackingNumber(ctx, "GU-1")
	require.NoError(t, err)
	require.Len(t, got.History, 1)
	assert.Empty(t, got.History[0].Note)
}

func TestStore_UsuariosEmailUnico(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	require.NoError(t, st.Users().Create(ctx, &entity.User{ID: "u1", Email: "ana@example.com"}))
	err := st.Users().Create(ctx, &entity.User{ID: "u2", Email: "ANA@example.com"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	u, err := st.Users().GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	missing, err := st.Users().GetByID(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_ListaPagosOmiteEliminados(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	now := time.Now()
	require.NoError(t, st.Payments().Create(ctx, &entity.Payment{ID: "p1", CompanyID: "c1", Fecha: now}))
	require.NoError(t, st.Payments().Create(ctx, &entity.Payment{ID: "p2", CompanyID: "c1", Fecha: now.Add(time.Hour)}))
	require.NoError(t, st.Payments().MarkDeleted(ctx, &entity.Payment{ID: "p1", DeletedAt: &now, DeleteReason: "duplicado"}))

	visible, _ := st.Payments().List(ctx, repository.PaymentFilter{CompanyID: "c1"})
	require.Len(t, visible, 1)
	assert.Equal(t, "p2", visible[0].ID)

	all, _ := st.Payments().List(ctx, repository.PaymentFilter{CompanyID: "c1", IncludeDeleted: true})
	assert.Len(t, all, 2)
}
