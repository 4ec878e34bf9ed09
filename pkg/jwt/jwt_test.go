package jwt_test

import (
	"testing"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/guias-api/pkg/jwt"
)

const secret = "test-secret-key-for-unit-tests"

func TestGenerateAndParse_ConRol(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "u1", "c1", "empresa", "guias-api-test", 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, companyID, role, err := pkgjwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, "c1", companyID)
	assert.Equal(t, "empresa", role)
}

func TestParse_Rechazos(t *testing.T) {
	valid, err := pkgjwt.Generate(secret, "u1", "", "admin", "guias-api-test", 60)
	require.NoError(t, err)
	expired, err := pkgjwt.Generate(secret, "u1", "", "admin", "guias-api-test", -1)
	require.NoError(t, err)
	none, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, pkgjwt.Claims{UserID: "u1", Role: "superadmin"}).
		SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"expirado", secret, expired},
		{"secret incorrecto", "otro-secret-completamente-distinto", valid},
		{"sin firma", secret, none},
		{"malformado", secret, "token.invalido.aqui"},
		{"secret vacío", "", valid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := pkgjwt.Parse(tt.secret, tt.token)
			assert.Error(t, err)
		})
	}
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", "u1", "", "admin", "guias-api-test", 60)
	assert.Error(t, err)
}
