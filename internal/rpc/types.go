// Package rpc is the JSON-RPC 2.0 client for the ledger node boundary:
// simulateTransaction, sendTransaction, getTransaction and getAccount.
// It performs no retries; retry and fallback policy belongs to the
// transaction lifecycle manager.
package rpc

import (
	"encoding/json"
	"fmt"
)

// JSON-RPC 2.0 request envelope.
type jsonRPCRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
	ID      uint64      `json:"id"`
}

// JSON-RPC 2.0 response envelope.
type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
	ID      uint64          `json:"id"`
}

// RPCError is a node-reported JSON-RPC error.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Transaction poll statuses returned by getTransaction.
const (
	TxStatusNotFound = "NOT_FOUND"
	TxStatusSuccess  = "SUCCESS"
	TxStatusFailed   = "FAILED"
)

// Submission statuses returned by sendTransaction.
const (
	SendStatusPending = "PENDING"
	SendStatusError   = "ERROR"
)

// SimulateRequest carries a base64 transaction envelope for a dry run.
type SimulateRequest struct {
	Transaction string `json:"transaction"`
}

// SimulateResponse is the result of a no-fee dry run. A non-empty Error
// is a deterministic contract-side rejection. Results carries the
// would-be return value, base64-encoded in the wire encoding.
type SimulateResponse struct {
	Error          string           `json:"error,omitempty"`
	Results        []SimulateResult `json:"results,omitempty"`
	MinResourceFee string           `json:"minResourceFee,omitempty"`
	LatestLedger   uint64           `json:"latestLedger"`
}

// SimulateResult is one host-function result from a simulation.
type SimulateResult struct {
	XDR string `json:"xdr"`
}

// ReturnValue extracts the first result's encoded return value.
func (r *SimulateResponse) ReturnValue() (string, bool) {
	if len(r.Results) == 0 || r.Results[0].XDR == "" {
		return "", false
	}
	return r.Results[0].XDR, true
}

// SendRequest carries a signed base64 transaction envelope.
type SendRequest struct {
	Transaction string `json:"transaction"`
}

// SendResponse acknowledges a submission. Status ERROR means the
// network rejected the envelope outright and nothing was queued.
type SendResponse struct {
	Status      string `json:"status"`
	Hash        string `json:"hash"`
	ErrorResult string `json:"errorResultXdr,omitempty"`
}

// GetTransactionRequest looks up a submitted transaction by hash.
type GetTransactionRequest struct {
	Hash string `json:"hash"`
}

// GetTransactionResponse reports the fate of a submitted transaction.
// ReturnValue is only meaningful on SUCCESS; ResultXDR carries the raw
// diagnostic payload on FAILED.
type GetTransactionResponse struct {
	Status      string `json:"status"`
	ReturnValue string `json:"returnValue,omitempty"`
	ResultXDR   string `json:"resultXdr,omitempty"`
	Ledger      uint64 `json:"ledger,omitempty"`
}

// GetAccountRequest looks up account metadata by address.
type GetAccountRequest struct {
	Address string `json:"address"`
}

// Account is the subset of account state the client needs: the sequence
// number transactions must build against.
type Account struct {
	Address  string `json:"address"`
	Sequence uint64 `json:"sequence,string"`
}
