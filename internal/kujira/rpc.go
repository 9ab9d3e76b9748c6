package kujira

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
)

// RPCClient talks JSON-RPC 2.0 to a Tendermint/CometBFT node
type RPCClient struct {
	url        string
	httpClient *http.Client
	nextID     atomic.Int64
}

// NewRPCClient creates a JSON-RPC client for the node at url
func NewRPCClient(url string) *RPCClient {
	return &RPCClient{
		url:        strings.TrimRight(url, "/"),
		httpClient: &http.Client{},
	}
}

// RPCError is the error object of a JSON-RPC response
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

func (e *RPCError) Error() string {
	if e.Data != "" {
		return fmt.Sprintf("RPC error %d: %s: %s", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// call performs one JSON-RPC request and decodes result into out
func (c *RPCClient) call(ctx context.Context, method string, params interface{}, out interface{}) error {
	payload := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      c.nextID.Add(1),
		"method":  method,
		"params":  params,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("RPC request failed: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Result json.RawMessage `json:"result"`
		Error  *RPCError       `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode %s response (HTTP %d): %w", method, resp.StatusCode, err)
	}

	if result.Error != nil {
		return result.Error
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(result.Result, out)
}

// NodeStatus is the subset of /status used here
type NodeStatus struct {
	Network           string
	LatestBlockHeight string
}

// Status returns the node's network (chain id) and latest height
func (c *RPCClient) Status(ctx context.Context) (*NodeStatus, error) {
	var res struct {
		NodeInfo struct {
			Network string `json:"network"`
		} `json:"node_info"`
		SyncInfo struct {
			LatestBlockHeight string `json:"latest_block_height"`
		} `json:"sync_info"`
	}
	if err := c.call(ctx, "status", map[string]interface{}{}, &res); err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	return &NodeStatus{
		Network:           res.NodeInfo.Network,
		LatestBlockHeight: res.SyncInfo.LatestBlockHeight,
	}, nil
}

// BroadcastResult is the CheckTx outcome of broadcast_tx_sync
type BroadcastResult struct {
	Code      uint32 `json:"code"`
	Codespace string `json:"codespace"`
	Log       string `json:"log"`
	Hash      string `json:"hash"`
}

// BroadcastTxSync submits raw tx bytes and waits for CheckTx only. A
// non-zero code is returned as an error alongside the result.
func (c *RPCClient) BroadcastTxSync(ctx context.Context, tx []byte) (*BroadcastResult, error) {
	params := map[string]string{"tx": base64.StdEncoding.EncodeToString(tx)}

	var res BroadcastResult
	if err := c.call(ctx, "broadcast_tx_sync", params, &res); err != nil {
		return nil, fmt.Errorf("broadcast_tx_sync: %w", err)
	}
	if res.Code != 0 {
		return &res, fmt.Errorf("broadcast rejected (codespace=%s code=%d): %s", res.Codespace, res.Code, res.Log)
	}
	return &res, nil
}
