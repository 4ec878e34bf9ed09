// Package apptest arma el libro de guías sobre el store en memoria para los tests de casos de uso.
package apptest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/guias-api/internal/application/ledger"
	"github.com/jhoicas/guias-api/internal/domain/entity"
	"github.com/jhoicas/guias-api/internal/infrastructure/lock"
	"github.com/jhoicas/guias-api/internal/infrastructure/memory"
)

// Env dependencias compartidas por los tests.
type Env struct {
	Store  *memory.Store
	Ledger *ledger.Ledger
	Clock  time.Time
}

// New construye un entorno con reloj fijo.
func New(t *testing.T) *Env {
	t.Helper()
	st := memory.New()
	l := ledger.New(st, lock.NewKeyedMutex(), st.Companies(), st.Movements(), nil)
	env := &Env{Store: st, Ledger: l, Clock: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)}
	l.SetClock(func() time.Time { return env.Clock })
	return env
}

// Company crea una empresa activa con saldo en cero.
func (e *Env) Company(t *testing.T, name string) *entity.Company {
	t.Helper()
	c := &entity.Company{
		ID:        uuid.New().String(),
		Name:      name,
		NIT:       uuid.New().String()[:10],
		Status:    entity.CompanyStatusActive,
		CreatedAt: e.Clock,
		UpdatedAt: e.Clock,
	}
	require.NoError(t, e.Store.Companies().Create(context.Background(), c))
	return c
}

// Reload lee la empresa confirmada.
func (e *Env) Reload(t *testing.T, id string) *entity.Company {
	t.Helper()
	c, err := e.Store.Companies().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, c)
	return c
}
