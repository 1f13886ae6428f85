// Package signer defines the signing capability the transaction
// lifecycle depends on. The lifecycle never touches key material; it
// hands a digest to a Signer and gets a signature back. Wallet
// integrations supply production implementations; KeySigner is the
// in-process implementation for development and tests.
package signer

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/codec/strkey"
)

// Signer produces a signature over a prepared transaction's signing
// payload.
type Signer interface {
	// Address returns the strkey account address the signature
	// authorizes.
	Address() string

	// Sign signs the payload digest.
	Sign(payload []byte) ([]byte, error)
}

// ErrSeedLength is returned when a raw seed is not 32 bytes.
var ErrSeedLength = errors.New("seed must be 32 bytes")

// KeySigner signs in-process with an ed25519 key derived from a raw
// seed. Not for production custody.
type KeySigner struct {
	priv    ed25519.PrivateKey
	address string
}

// NewKeySigner derives a keypair from the 32-byte seed.
func NewKeySigner(seed []byte) (*KeySigner, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: got %d", ErrSeedLength, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	address, err := strkey.Encode(strkey.VersionAccount, pub)
	if err != nil {
		return nil, fmt.Errorf("encode account address: %w", err)
	}
	return &KeySigner{priv: priv, address: address}, nil
}

// Generate creates a signer with a fresh random keypair.
func Generate() (*KeySigner, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("generate seed: %w", err)
	}
	return NewKeySigner(seed)
}

// Address returns the strkey account address of the public key.
func (s *KeySigner) Address() string { return s.address }

// Sign signs payload with the derived private key.
func (s *KeySigner) Sign(payload []byte) ([]byte, error) {
	return ed25519.Sign(s.priv, payload), nil
}

// Verify checks a signature produced by the account that owns address.
func Verify(address string, payload, sig []byte) (bool, error) {
	pub, err := strkey.Decode(strkey.VersionAccount, address)
	if err != nil {
		return false, fmt.Errorf("decode account address: %w", err)
	}
	return ed25519.Verify(ed25519.PublicKey(pub), payload, sig), nil
}
