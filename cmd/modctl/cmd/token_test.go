package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/kiekky-nearby/internal/common/utils"
)

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "modctl-test-secret")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"token", "--user", "7", "--username", "mod", "--admin", "--ttl", "5m"})
	require.NoError(t, rootCmd.Execute())

	claims, err := utils.ValidateJWT(strings.TrimSpace(out.String()), "modctl-test-secret")
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "mod", claims.Username)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, "access", claims.Type)
	assert.Equal(t, int64(300), claims.ExpiresAt-claims.IssuedAt)
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"0", "-1", "abc", ""} {
		_, err := parseID(raw)
		assert.Error(t, err, raw)
	}
}
