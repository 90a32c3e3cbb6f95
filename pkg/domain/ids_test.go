package domain

import (
	"crypto/ed25519"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "raffle/pkg/domain-errors"
)

func newKeyHex(t *testing.T) (string, ed25519.PublicKey) {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	id, err := IdentityFromPublicKey(pub)
	require.NoError(t, err)
	return id.String(), pub
}

// TestParseIdentity_Invariants validates the parsing invariant:
// "identities are 32-byte, non-zero, hex-encoded public keys"
func TestParseIdentity_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseIdentity("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects zero key", func(t *testing.T) {
		_, err := ParseIdentity(strings.Repeat("0", 64))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid key and round-trips", func(t *testing.T) {
		s, pub := newKeyHex(t)
		id, err := ParseIdentity(s)
		require.NoError(t, err)
		assert.Equal(t, s, id.String())
		assert.Equal(t, pub, id.PublicKey())
	})

	t.Run("accepts uppercase hex", func(t *testing.T) {
		s, _ := newKeyHex(t)
		id, err := ParseIdentity(strings.ToUpper(s))
		require.NoError(t, err)
		assert.Equal(t, s, id.String())
	})
}

func TestParseID_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"SQL injection attempt", "'; DROP TABLE raffles;--"},
		{"Path traversal", "../../../etc/passwd"},
		{"Null byte injection", strings.Repeat("a", 32) + "\x00" + strings.Repeat("a", 31)},
		{"Oversized input", strings.Repeat("a", 1000)},
		{"Short input", strings.Repeat("a", 63)},
		{"Non hex", strings.Repeat("z", 64)},
		{"Whitespace only", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errIdentity := ParseIdentity(tt.input)
			_, errAsset := ParseAssetID(tt.input)
			require.Error(t, errIdentity)
			require.Error(t, errAsset)
			assert.True(t, dErrors.HasCode(errIdentity, dErrors.CodeInvalidInput))
			assert.True(t, dErrors.HasCode(errAsset, dErrors.CodeInvalidInput))
		})
	}
}

func TestAssetID_DefaultAddress(t *testing.T) {
	zero := strings.Repeat("0", 64)

	t.Run("parse rejects default address", func(t *testing.T) {
		_, err := ParseAssetID(zero)
		require.Error(t, err)
	})

	t.Run("unmarshal defers default address to validation", func(t *testing.T) {
		var a AssetID
		require.NoError(t, a.UnmarshalText([]byte(zero)))
		assert.True(t, a.IsZero())
	})
}

func TestParseRaffleID(t *testing.T) {
	id, err := ParseRaffleID("42")
	require.NoError(t, err)
	assert.Equal(t, RaffleID(42), id)
	assert.Equal(t, "42", id.String())

	for _, bad := range []string{"", "0", "-1", "abc", "18446744073709551616"} {
		_, err := ParseRaffleID(bad)
		require.Error(t, err, bad)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), bad)
	}
}

// TestTypeDistinction documents that identities and assets are distinct types
// even though both are 32-byte keys.
func TestTypeDistinction(t *testing.T) {
	s, _ := newKeyHex(t)
	identity, err := ParseIdentity(s)
	require.NoError(t, err)
	asset, err := ParseAssetID(s)
	require.NoError(t, err)

	// var _ AssetID = identity // compile error
	assert.Equal(t, [KeySize]byte(identity), [KeySize]byte(asset))
}
