package signer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeySigner(t *testing.T) {
	sg, err := NewKeySigner(bytes.Repeat([]byte{0x11}, 32))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sg.Address(), "G"))

	// Same seed, same identity.
	again, err := NewKeySigner(bytes.Repeat([]byte{0x11}, 32))
	require.NoError(t, err)
	assert.Equal(t, sg.Address(), again.Address())

	_, err = NewKeySigner(make([]byte, 16))
	require.ErrorIs(t, err, ErrSeedLength)
}

func TestSignAndVerify(t *testing.T) {
	sg, err := Generate()
	require.NoError(t, err)

	payload := []byte("digest-to-sign-0123456789abcdef")
	sig, err := sg.Sign(payload)
	require.NoError(t, err)
	require.Len(t, sig, 64)

	ok, err := Verify(sg.Address(), payload, sig)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify(sg.Address(), []byte("different payload"), sig)
	require.NoError(t, err)
	assert.False(t, ok)

	other, err := Generate()
	require.NoError(t, err)
	ok, err = Verify(other.Address(), payload, sig)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = Verify("not-an-address", payload, sig)
	require.Error(t, err)
}
