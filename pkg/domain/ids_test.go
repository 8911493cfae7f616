package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ParseFarmID guards the transport boundary: ids arrive as URL segments
// and must come back as the same positive integer the registry issued.
func TestParseFarmID(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseFarmID("")
		require.Error(t, err)
	})

	t.Run("rejects non-numeric input", func(t *testing.T) {
		_, err := ParseFarmID("not-a-number")
		require.Error(t, err)
	})

	t.Run("rejects zero", func(t *testing.T) {
		_, err := ParseFarmID("0")
		require.Error(t, err)
	})

	t.Run("rejects negative numbers", func(t *testing.T) {
		_, err := ParseFarmID("-1")
		require.Error(t, err)
	})

	t.Run("accepts issued ids", func(t *testing.T) {
		id, err := ParseFarmID("42")
		require.NoError(t, err)
		assert.Equal(t, FarmID(42), id)
		assert.False(t, id.IsZero())
		assert.Equal(t, "42", id.String())
	})
}

func TestParseActor(t *testing.T) {
	t.Run("rejects empty and whitespace", func(t *testing.T) {
		_, ok := ParseActor("")
		assert.False(t, ok)
		_, ok = ParseActor("   ")
		assert.False(t, ok)
	})

	t.Run("lowercases address-form handles", func(t *testing.T) {
		actor, ok := ParseActor("0xAABB00112233445566778899aabbccddeeff0011")
		require.True(t, ok)
		assert.Equal(t, Actor("0xaabb00112233445566778899aabbccddeeff0011"), actor)
	})

	t.Run("passes opaque handles through", func(t *testing.T) {
		actor, ok := ParseActor("certifier-agency-7")
		require.True(t, ok)
		assert.Equal(t, Actor("certifier-agency-7"), actor)
	})
}

func TestDeriveActor(t *testing.T) {
	actor := DeriveActor([]byte("test-public-key"))

	// 0x + 20 bytes hex.
	assert.Len(t, string(actor), 2+40)
	assert.Equal(t, "0x", string(actor)[:2])

	// Derivation is deterministic and key-sensitive.
	assert.Equal(t, actor, DeriveActor([]byte("test-public-key")))
	assert.NotEqual(t, actor, DeriveActor([]byte("other-public-key")))
}
