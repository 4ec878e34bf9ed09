package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/guias-api/internal/application/apptest"
	"github.com/jhoicas/guias-api/internal/application/dto"
	"github.com/jhoicas/guias-api/internal/application/requests"
	"github.com/jhoicas/guias-api/internal/application/usecase"
	"github.com/jhoicas/guias-api/internal/domain"
	"github.com/jhoicas/guias-api/internal/domain/entity"
)

func strPtr(s string) *string { return &s }

func TestCompany_CrearYDuplicado(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)
	uc := usecase.NewCompanyUseCase(env.Store.Companies(), env.Store.Guides(), env.Ledger, nil)

	out, err := uc.Create(ctx, dto.CreateCompanyRequest{Name: " Acme SAS ", NIT: "900123456", Email: "Ops@Acme.co"})
	require.NoError(t, err)
	assert.Equal(t, "Acme SAS", out.Name)
	assert.Equal(t, "ops@acme.co", out.Email)
	assert.Equal(t, entity.CompanyStatusActive, out.Status)
	assert.Equal(t, int64(0), out.GuiasDisponibles)
	assert.Equal(t, "0.00", out.SaldoPendiente)

	_, err = uc.Create(ctx, dto.CreateCompanyRequest{Name: "Otra", NIT: "900.123.456"})
	assert.ErrorIs(t, err, domain.ErrDuplicate, "el NIT se compara normalizado")

	_, err = uc.Create(ctx, dto.CreateCompanyRequest{Name: "Otra", NIT: "800197268-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "dígito de verificación errado")

	_, err = uc.GetByID(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := uc.List(ctx, 20, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}

func TestCompany_ActualizarNoTocaSaldo(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)
	uc := usecase.NewCompanyUseCase(env.Store.Companies(), env.Store.Guides(), env.Ledger, nil)
	reqs := requests.NewPurchaseRequestUseCase(env.Ledger, env.Store.Requests(), env.Store.Companies(), decimal.RequireFromString("12.00"), nil)
	c := env.Company(t, "Acme")

	r, err := reqs.Submit(ctx, requests.SubmitInput{CompanyID: c.ID, Cantidad: 5})
	require.NoError(t, err)
	_, err = reqs.Approve(ctx, r.ID, "admin", "")
	require.NoError(t, err)

	out, err := uc.Update(ctx, c.ID, dto.UpdateCompanyRequest{Phone: strPtr("3001234567"), Status: strPtr(entity.CompanyStatusSuspended)})
	require.NoError(t, err)
	assert.Equal(t, entity.CompanyStatusSuspended, out.Status)
	assert.Equal(t, int64(5), out.GuiasDisponibles)
	assert.Equal(t, "60.00", out.SaldoPendiente)

	_, err = uc.Update(ctx, c.ID, dto.UpdateCompanyRequest{Status: strPtr("borrada")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Update(ctx, c.ID, dto.UpdateCompanyRequest{Name: strPtr("  ")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCompany_SaldoDiarioYConciliacion(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)
	uc := usecase.NewCompanyUseCase(env.Store.Companies(), env.Store.Guides(), env.Ledger, nil)
	reqs := requests.NewPurchaseRequestUseCase(env.Ledger, env.Store.Requests(), env.Store.Companies(), decimal.RequireFromString("12.00"), nil)
	c := env.Company(t, "Acme")

	r, err := reqs.Submit(ctx, requests.SubmitInput{CompanyID: c.ID, Cantidad: 3})
	require.NoError(t, err)
	_, err = reqs.Approve(ctx, r.ID, "admin", "")
	require.NoError(t, err)

	bal, err := uc.Balance(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), bal.GuiasDisponibles)
	assert.Equal(t, "36.00", bal.SaldoPendiente)

	movs, err := uc.Movements(ctx, c.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, movs.Items, 2)
	assert.Equal(t, entity.LedgerCreditGuides, movs.Items[0].Type)
	assert.Equal(t, "36.00", movs.Items[1].AmountDelta)

	rec, err := uc.Reconcile(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, rec.Repaired, "saldo consistente con el diario")
	assert.Equal(t, rec.Stored, rec.Computed)

	_, err = uc.Balance(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUser_CrearPorRol(t *testing.T) {
	ctx := context.Background()
	env := apptest.New(t)
	uc := usecase.NewUserUseCase(env.Store.Users(), env.Store.Companies(), nil)
	c := env.Company(t, "Acme")

	admin, err := uc.Create(ctx, dto.CreateUserRequest{
		CompanyID: c.ID, Email: "Admin@Guias.co", Password: "secreto123", Name: "Admin", Role: entity.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Empty(t, admin.CompanyID, "el personal no pertenece a una empresa")
	assert.Equal(t, "admin@guias.co", admin.Email)

	emp, err := uc.Create(ctx, dto.CreateUserRequest{
		CompanyID: c.ID, Email: "ops@acme.co", Password: "secreto123", Name: "Ops", Role: entity.RoleEmpresa,
	})
	require.NoError(t, err)
	assert.Equal(t, c.ID, emp.CompanyID)

	tests := []struct {
		name string
		in   dto.CreateUserRequest
		want error
	}{
		{"empresa sin company", dto.CreateUserRequest{Email: "a@b.co", Password: "secreto123", Role: entity.RoleEmpresa}, domain.ErrInvalidInput},
		{"empresa inexistente", dto.CreateUserRequest{CompanyID: "nope", Email: "a@b.co", Password: "secreto123", Role: entity.RoleEmpresa}, domain.ErrNotFound},
		{"rol desconocido", dto.CreateUserRequest{Email: "a@b.co", Password: "secreto123", Role: "vendedor"}, domain.ErrInvalidInput},
		{"password corto", dto.CreateUserRequest{Email: "a@b.co", Password: "123", Role: entity.RoleAdmin}, domain.ErrInvalidInput},
		{"email repetido", dto.CreateUserRequest{Email: "ADMIN@guias.co", Password: "secreto123", Role: entity.RoleAdmin}, domain.ErrEmailAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Create(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	list, err := uc.List(ctx, 20, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
}
