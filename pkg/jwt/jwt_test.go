package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	token, err := Generate("secreto", 42, "seller", "agrimarket", 5)
	require.NoError(t, err)

	userID, role, err := Parse("secreto", token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, "seller", role)
}

func TestParse_WrongSecret(t *testing.T) {
	token, err := Generate("secreto", 1, "buyer", "agrimarket", 5)
	require.NoError(t, err)

	_, _, err = Parse("otro", token)
	assert.Error(t, err)
}

func TestParse_Expired(t *testing.T) {
	token, err := Generate("secreto", 1, "buyer", "agrimarket", -5)
	require.NoError(t, err)

	_, _, err = Parse("secreto", token)
	assert.Error(t, err)
}

func TestGenerate_EmptySecret(t *testing.T) {
	_, err := Generate("", 1, "buyer", "agrimarket", 5)
	assert.Error(t, err)
}
