package auth

import (
	"testing"

	"github.com/ariefcatur/go-marketplace/internal/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("rahasia-banget")
	require.NoError(t, err)
	assert.NotEqual(t, "rahasia-banget", hash)
	assert.True(t, CheckPassword(hash, "rahasia-banget"))
	assert.False(t, CheckPassword(hash, "salah"))
}

func TestValidateRegistration(t *testing.T) {
	assert.Nil(t, ValidateRegistration("a@b.com", "Arief", "password123"))

	cases := []struct {
		name               string
		email, uname, pass string
		wantDetail         string
	}{
		{"bad email", "not-an-email", "Arief", "password123", "invalid email"},
		{"empty name", "a@b.com", "  ", "password123", "name is required"},
		{"short password", "a@b.com", "Arief", "short", "password must be at least 8 characters"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			verr := ValidateRegistration(c.email, c.uname, c.pass)
			require.NotNil(t, verr)
			assert.Equal(t, market.CodeValidation, verr.Code)
			assert.Contains(t, verr.Details, c.wantDetail)
		})
	}
}
