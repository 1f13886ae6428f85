package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const defaultHTTPTimeout = 15 * time.Second

// Client talks JSON-RPC 2.0 over HTTP POST to one ledger node.
// Safe for concurrent use.
type Client struct {
	endpoint string
	http     *http.Client
	log      *zap.Logger
	nextID   atomic.Uint64
}

// NewClient builds a client against the given endpoint URL.
func NewClient(endpoint string, log *zap.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: defaultHTTPTimeout},
		log:      log,
	}
}

// SimulateTransaction runs a no-fee dry run of a base64 envelope.
func (c *Client) SimulateTransaction(ctx context.Context, envelope string) (*SimulateResponse, error) {
	var out SimulateResponse
	if err := c.call(ctx, "simulateTransaction", SimulateRequest{Transaction: envelope}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendTransaction submits a signed base64 envelope.
func (c *Client) SendTransaction(ctx context.Context, envelope string) (*SendResponse, error) {
	var out SendResponse
	if err := c.call(ctx, "sendTransaction", SendRequest{Transaction: envelope}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTransaction fetches the status of a submitted transaction by hash.
func (c *Client) GetTransaction(ctx context.Context, hash string) (*GetTransactionResponse, error) {
	var out GetTransactionResponse
	if err := c.call(ctx, "getTransaction", GetTransactionRequest{Hash: hash}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAccount fetches account state, notably the current sequence number.
func (c *Client) GetAccount(ctx context.Context, address string) (*Account, error) {
	var out Account
	if err := c.call(ctx, "getAccount", GetAccountRequest{Address: address}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) call(ctx context.Context, method string, params, result interface{}) error {
	id := c.nextID.Add(1)
	body, err := json.Marshal(jsonRPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      id,
	})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s: read response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: http status %d", method, resp.StatusCode)
	}

	var rpcResp jsonRPCResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%s: %w", method, rpcResp.Error)
	}
	if result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
	}
	c.log.Debug("rpc call",
		zap.String("method", method),
		zap.Duration("took", time.Since(start)))
	return nil
}
