// Package txflow drives the full lifecycle of a contract-call
// transaction: build, simulate, prepare, sign, submit and bounded
// confirmation polling. Retry, fallback-fee and fallback-identifier
// policy live here and nowhere else.
package txflow

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/codec/wire"
)

// ContractCall is one invocation of a contract method with its ordered,
// already-encoded parameters.
type ContractCall struct {
	Contract string
	Method   string
	Args     []wire.Value
}

// Transaction is a single-operation envelope against one account
// sequence number. TimeoutSeconds is the ledger-level expiration window,
// independent of the client's polling budget: a transaction that expires
// before inclusion is reported as FAILED by the network.
type Transaction struct {
	Source         string
	Sequence       uint64
	Fee            uint64
	ResourceFee    uint64
	TimeoutSeconds uint32
	Call           ContractCall
}

// wireForm encodes the transaction deterministically as a wire map.
func (tx *Transaction) wireForm() wire.Value {
	return wire.MapVal(
		wire.MapEntry{Key: wire.SymbolVal("source"), Val: wire.AddressVal(tx.Source)},
		wire.MapEntry{Key: wire.SymbolVal("sequence"), Val: wire.U64Val(tx.Sequence)},
		wire.MapEntry{Key: wire.SymbolVal("fee"), Val: wire.U64Val(tx.Fee)},
		wire.MapEntry{Key: wire.SymbolVal("resource_fee"), Val: wire.U64Val(tx.ResourceFee)},
		wire.MapEntry{Key: wire.SymbolVal("timeout"), Val: wire.U32Val(tx.TimeoutSeconds)},
		wire.MapEntry{Key: wire.SymbolVal("contract"), Val: wire.AddressVal(tx.Call.Contract)},
		wire.MapEntry{Key: wire.SymbolVal("method"), Val: wire.SymbolVal(tx.Call.Method)},
		wire.MapEntry{Key: wire.SymbolVal("args"), Val: wire.VecVal(tx.Call.Args...)},
	)
}

// SigningPayload is the digest the signer capability receives: the hash
// of the network identifier concatenated with the serialized body, so a
// signature is only valid on the network it was produced for.
func (tx *Transaction) SigningPayload(networkPassphrase string) ([]byte, error) {
	body, err := wire.Marshal(tx.wireForm())
	if err != nil {
		return nil, fmt.Errorf("serialize transaction: %w", err)
	}
	networkID := sha256.Sum256([]byte(networkPassphrase))
	digest := sha256.Sum256(append(networkID[:], body...))
	return digest[:], nil
}

// Hash returns the lowercase hex transaction hash for the network.
func (tx *Transaction) Hash(networkPassphrase string) (string, error) {
	payload, err := tx.SigningPayload(networkPassphrase)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(payload), nil
}

// Envelope pairs a transaction with its signature. Signature is empty
// for simulate-only envelopes.
type Envelope struct {
	Tx        *Transaction
	Signature []byte
}

// Base64 serializes the envelope into the form the RPC boundary carries.
func (e *Envelope) Base64() (string, error) {
	v := wire.MapVal(
		wire.MapEntry{Key: wire.SymbolVal("tx"), Val: e.Tx.wireForm()},
		wire.MapEntry{Key: wire.SymbolVal("signature"), Val: wire.StringVal(hex.EncodeToString(e.Signature))},
	)
	return wire.MarshalBase64(v)
}
