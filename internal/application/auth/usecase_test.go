package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/guias-api/internal/application/auth"
	"github.com/jhoicas/guias-api/internal/application/dto"
	"github.com/jhoicas/guias-api/internal/domain"
	"github.com/jhoicas/guias-api/internal/domain/entity"
	"github.com/jhoicas/guias-api/internal/infrastructure/memory"
	pkgjwt "github.com/jhoicas/guias-api/pkg/jwt"
)

const testSecret = "test-secret-key-for-unit-tests"

func newAuth(t *testing.T) (*auth.AuthUseCase, *memory.Store) {
	t.Helper()
	st := memory.New()
	uc := auth.NewAuthUseCase(st.Users(), st.Companies(), auth.JWTConfig{
		Secret: testSecret, ExpMinutes: 30, Issuer: "guias-api-test",
	}, nil)
	return uc, st
}

func addUser(t *testing.T, st *memory.Store, email, role, companyID, status string) *entity.User {
	t.Helper()
	hash, err := auth.HashPassword("secreto123")
	require.NoError(t, err)
	u := &entity.User{
		ID: email, CompanyID: companyID, Email: email, PasswordHash: hash,
		Name: email, Role: role, Status: status, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, st.Users().Create(context.Background(), u))
	return u
}

func addCompany(t *testing.T, st *memory.Store, id, status string) {
	t.Helper()
	require.NoError(t, st.Companies().Create(context.Background(), &entity.Company{
		ID: id, Name: "Acme " + id, NIT: "nit-" + id, Status: status,
	}))
}

func TestLogin_TokenConRol(t *testing.T) {
	uc, st := newAuth(t)
	addCompany(t, st, "c1", entity.CompanyStatusActive)
	addUser(t, st, "empresa@acme.co", entity.RoleEmpresa, "c1", "active")

	out, err := uc.Login(context.Background(), dto.LoginRequest{Email: "  EMPRESA@acme.co ", Password: "secreto123"})
	require.NoError(t, err)
	assert.Equal(t, 1800, out.ExpiresIn)
	assert.Equal(t, entity.RoleEmpresa, out.User.Role)

	userID, companyID, role, err := pkgjwt.Parse(testSecret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, "empresa@acme.co", userID)
	assert.Equal(t, "c1", companyID)
	assert.Equal(t, entity.RoleEmpresa, role)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	uc, st := newAuth(t)
	addUser(t, st, "admin@guias.co", entity.RoleAdmin, "", "active")

	_, err := uc.Login(context.Background(), dto.LoginRequest{Email: "admin@guias.co", Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "nadie@guias.co", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "usuario inexistente responde igual que clave incorrecta")

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "", Password: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogin_CuentaBloqueada(t *testing.T) {
	uc, st := newAuth(t)
	addCompany(t, st, "c2", entity.CompanyStatusSuspended)
	addUser(t, st, "inactivo@guias.co", entity.RoleAdmin, "", "inactive")
	addUser(t, st, "suspendida@acme.co", entity.RoleEmpresa, "c2", "active")

	_, err := uc.Login(context.Background(), dto.LoginRequest{Email: "inactivo@guias.co", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "suspendida@acme.co", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrForbidden, "empresa suspendida no inicia sesión")
}
