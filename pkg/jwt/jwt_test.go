package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/gestion-escolar/pkg/jwt"
)

func TestGenerateParse_IdaYVuelta(t *testing.T) {
	id := pkgjwt.Identity{UserID: "u-1", SchoolID: "esc-1", Role: "gestor"}
	tok, err := pkgjwt.Generate("secreto", id, "test", 5)
	require.NoError(t, err)

	got, err := pkgjwt.Parse("secreto", "test", tok)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, err := pkgjwt.Generate("secreto", pkgjwt.Identity{UserID: "u-1"}, "test", 5)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secreto", "test", tok)
	assert.Error(t, err, "un token firmado con otro secreto debe rechazarse")
}

func TestParse_Expirado(t *testing.T) {
	tok, err := pkgjwt.Generate("secreto", pkgjwt.Identity{UserID: "u-1"}, "test", -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("secreto", "test", tok)
	assert.Error(t, err)
}

func TestParse_EmisorDistinto(t *testing.T) {
	tok, err := pkgjwt.Generate("secreto", pkgjwt.Identity{UserID: "u-1"}, "otro-emisor", 5)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("secreto", "gestion-escolar", tok)
	assert.Error(t, err, "un token de otro emisor debe rechazarse")

	_, err = pkgjwt.Parse("secreto", "", tok)
	assert.NoError(t, err, "sin emisor configurado no se valida iss")
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", pkgjwt.Identity{UserID: "u-1"}, "test", 5)
	assert.Error(t, err)
}
