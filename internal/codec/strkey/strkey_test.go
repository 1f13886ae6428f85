package strkey

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		version Version
		prefix  string
	}{
		{"account", VersionAccount, "G"},
		{"contract", VersionContract, "C"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := bytes.Repeat([]byte{0xA5}, PayloadLen)

			s, err := Encode(tt.version, payload)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(s, tt.prefix), "got %q", s)

			version, back, err := DecodeAny(s)
			require.NoError(t, err)
			assert.Equal(t, tt.version, version)
			assert.Equal(t, payload, back)

			back2, err := Decode(tt.version, s)
			require.NoError(t, err)
			assert.Equal(t, payload, back2)
		})
	}
}

func TestEncodeRejectsBadPayload(t *testing.T) {
	_, err := Encode(VersionAccount, make([]byte, 31))
	require.ErrorIs(t, err, ErrLength)

	_, err = Encode(Version(0x99), make([]byte, PayloadLen))
	require.Error(t, err)
}

func TestDecodeRejectsCorruption(t *testing.T) {
	s, err := Encode(VersionAccount, make([]byte, PayloadLen))
	require.NoError(t, err)

	t.Run("flipped character", func(t *testing.T) {
		// Swap a character in the payload region so the checksum no
		// longer matches.
		mutated := []byte(s)
		if mutated[10] == 'A' {
			mutated[10] = 'B'
		} else {
			mutated[10] = 'A'
		}
		_, _, err := DecodeAny(string(mutated))
		require.Error(t, err)
	})

	t.Run("truncated", func(t *testing.T) {
		_, _, err := DecodeAny(s[:len(s)-4])
		require.Error(t, err)
	})

	t.Run("not base32", func(t *testing.T) {
		_, _, err := DecodeAny("not a strkey!")
		require.Error(t, err)
	})

	t.Run("wrong version requested", func(t *testing.T) {
		_, err := Decode(VersionContract, s)
		require.Error(t, err)
	})
}

func TestValidators(t *testing.T) {
	account, err := Encode(VersionAccount, make([]byte, PayloadLen))
	require.NoError(t, err)
	contract, err := Encode(VersionContract, make([]byte, PayloadLen))
	require.NoError(t, err)

	assert.True(t, IsValidAccount(account))
	assert.False(t, IsValidAccount(contract))
	assert.True(t, IsValidContract(contract))
	assert.False(t, IsValidContract(account))
	assert.False(t, IsValidAccount(""))
}
