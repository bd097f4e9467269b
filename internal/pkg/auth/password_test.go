// internal/pkg/auth/password_test.go
package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zodak/storefront-api/internal/config"
	"golang.org/x/crypto/bcrypt"
)

func newTestPasswordManager() *PasswordManager {
	cfg := &config.Config{}
	cfg.Security.BcryptCost = bcrypt.MinCost
	return NewPasswordManager(cfg)
}

func TestPasswordManager_HashAndVerify(t *testing.T) {
	pm := newTestPasswordManager()

	hash, err := pm.HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.NoError(t, pm.VerifyPassword("hunter22", hash))
	assert.Error(t, pm.VerifyPassword("hunter23", hash))
}

func TestPasswordManager_RejectsShortPassword(t *testing.T) {
	pm := newTestPasswordManager()

	_, err := pm.HashPassword("abc")
	assert.Error(t, err)
}
