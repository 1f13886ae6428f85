package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// rpcHandler answers one JSON-RPC method with a canned result and
// records the last request seen.
type rpcHandler struct {
	t          *testing.T
	result     interface{}
	rpcErr     *RPCError
	httpStatus int

	lastMethod string
	lastParams json.RawMessage
}

func (h *rpcHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	require.Equal(h.t, http.MethodPost, r.Method)
	require.Equal(h.t, "application/json", r.Header.Get("Content-Type"))

	var req struct {
		JSONRPC string          `json:"jsonrpc"`
		Method  string          `json:"method"`
		Params  json.RawMessage `json:"params"`
		ID      uint64          `json:"id"`
	}
	require.NoError(h.t, json.NewDecoder(r.Body).Decode(&req))
	require.Equal(h.t, "2.0", req.JSONRPC)
	require.NotZero(h.t, req.ID)
	h.lastMethod = req.Method
	h.lastParams = req.Params

	if h.httpStatus != 0 {
		w.WriteHeader(h.httpStatus)
		return
	}

	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	if h.rpcErr != nil {
		resp["error"] = h.rpcErr
	} else {
		resp["result"] = h.result
	}
	require.NoError(h.t, json.NewEncoder(w).Encode(resp))
}

func newTestClient(t *testing.T, h *rpcHandler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, zap.NewNop())
}

func TestSimulateTransaction(t *testing.T) {
	h := &rpcHandler{t: t, result: SimulateResponse{
		Results:        []SimulateResult{{XDR: "AAAA"}},
		MinResourceFee: "5000",
	}}
	c := newTestClient(t, h)

	resp, err := c.SimulateTransaction(context.Background(), "ENVELOPE")
	require.NoError(t, err)
	assert.Equal(t, "simulateTransaction", h.lastMethod)
	assert.JSONEq(t, `{"transaction":"ENVELOPE"}`, string(h.lastParams))
	assert.Equal(t, "5000", resp.MinResourceFee)

	xdr, ok := resp.ReturnValue()
	require.True(t, ok)
	assert.Equal(t, "AAAA", xdr)
}

func TestSendTransaction(t *testing.T) {
	h := &rpcHandler{t: t, result: SendResponse{Status: SendStatusPending, Hash: "abc123"}}
	c := newTestClient(t, h)

	resp, err := c.SendTransaction(context.Background(), "SIGNED")
	require.NoError(t, err)
	assert.Equal(t, "sendTransaction", h.lastMethod)
	assert.Equal(t, SendStatusPending, resp.Status)
	assert.Equal(t, "abc123", resp.Hash)
}

func TestGetTransaction(t *testing.T) {
	h := &rpcHandler{t: t, result: GetTransactionResponse{Status: TxStatusSuccess, ReturnValue: "AAAA"}}
	c := newTestClient(t, h)

	resp, err := c.GetTransaction(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "getTransaction", h.lastMethod)
	assert.JSONEq(t, `{"hash":"abc123"}`, string(h.lastParams))
	assert.Equal(t, TxStatusSuccess, resp.Status)
}

func TestGetAccount(t *testing.T) {
	// Sequence travels as a JSON string.
	h := &rpcHandler{t: t, result: map[string]string{
		"address":  "GACCOUNT",
		"sequence": "12345",
	}}
	c := newTestClient(t, h)

	acct, err := c.GetAccount(context.Background(), "GACCOUNT")
	require.NoError(t, err)
	assert.Equal(t, "getAccount", h.lastMethod)
	assert.Equal(t, uint64(12345), acct.Sequence)
}

func TestCallErrors(t *testing.T) {
	t.Run("rpc error", func(t *testing.T) {
		h := &rpcHandler{t: t, rpcErr: &RPCError{Code: -32600, Message: "invalid request"}}
		c := newTestClient(t, h)

		_, err := c.GetTransaction(context.Background(), "abc123")
		var rpcErr *RPCError
		require.ErrorAs(t, err, &rpcErr)
		assert.Equal(t, -32600, rpcErr.Code)
		assert.Contains(t, err.Error(), "getTransaction")
	})

	t.Run("http error status", func(t *testing.T) {
		h := &rpcHandler{t: t, httpStatus: http.StatusBadGateway}
		c := newTestClient(t, h)

		_, err := c.GetTransaction(context.Background(), "abc123")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:1", zap.NewNop())
		_, err := c.GetAccount(context.Background(), "GACCOUNT")
		require.Error(t, err)
	})
}
