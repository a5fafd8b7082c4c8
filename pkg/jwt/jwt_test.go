package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/Fabrica-api/pkg/jwt"
)

const (
	secret = "unit-test-secret"
	userID = "00000000-0000-0000-0000-000000000001"
	issuer = "fabrica-api-test"
)

func TestGenerateYParse(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, userID, "manager", issuer, 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	gotUser, gotRole, err := pkgjwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, userID, gotUser)
	assert.Equal(t, "manager", gotRole)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, err := pkgjwt.Generate("otro-secreto", userID, "admin", issuer, 60)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse(secret, tok)
	assert.Error(t, err, "un token firmado con otro secreto debe rechazarse")
}

func TestParse_TokenExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, userID, "admin", issuer, -1)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse(secret, tok)
	assert.Error(t, err, "un token expirado debe rechazarse")
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", userID, "admin", issuer, 60)
	assert.Error(t, err)
	_, _, err = pkgjwt.Parse("", "lo-que-sea")
	assert.Error(t, err)
}
