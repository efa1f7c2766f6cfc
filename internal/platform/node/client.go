// Package node is a minimal JSON-RPC-over-websocket client for a Substrate
// node, used at startup to cross-check that the configured network matches
// the endpoint we were pointed at.
package node

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// handshakeTimeout bounds the websocket dial.
const handshakeTimeout = 15 * time.Second

// Client issues one-shot JSON-RPC calls over a fresh websocket connection.
// Startup checks are infrequent enough that connection reuse is not worth
// the reconnect bookkeeping.
type Client struct {
	wsURL string
	reqID atomic.Int64
}

// New creates a node client.
//
// wsURL is the node's websocket endpoint, e.g. "wss://rpc.polkadot.io".
func New(wsURL string) *Client {
	return &Client{wsURL: wsURL}
}

// Properties is the subset of system_properties the sanity check needs.
type Properties struct {
	SS58Prefix    uint16
	TokenSymbol   string
	TokenDecimals int
}

// SystemProperties fetches the chain's address prefix and token metadata.
func (c *Client) SystemProperties(ctx context.Context) (Properties, error) {
	var result struct {
		SS58Format    uint16          `json:"ss58Format"`
		TokenSymbol   json.RawMessage `json:"tokenSymbol"`
		TokenDecimals json.RawMessage `json:"tokenDecimals"`
	}
	if err := c.call(ctx, "system_properties", &result); err != nil {
		return Properties{}, fmt.Errorf("node: system_properties: %w", err)
	}

	props := Properties{SS58Prefix: result.SS58Format}
	props.TokenSymbol = firstString(result.TokenSymbol)
	props.TokenDecimals = firstInt(result.TokenDecimals)
	return props, nil
}

// call dials, sends one request, reads the matching response, and closes.
func (c *Client) call(ctx context.Context, method string, result any) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return fmt.Errorf("connect %s: %w", c.wsURL, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
		_ = conn.SetWriteDeadline(deadline)
	}

	id := c.reqID.Add(1)
	req := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
		"params":  []any{},
	}
	if err := conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write request: %w", err)
	}

	for {
		var resp struct {
			ID     int64           `json:"id"`
			Result json.RawMessage `json:"result"`
			Error  *struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := conn.ReadJSON(&resp); err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		if resp.ID != id {
			// Subscription noise from a shared endpoint; skip it.
			continue
		}
		if resp.Error != nil {
			return fmt.Errorf("rpc error %d: %s", resp.Error.Code, resp.Error.Message)
		}
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
		return nil
	}
}

// firstString decodes a value that nodes emit either as a string or an array
// of strings.
func firstString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}

// firstInt decodes a value that nodes emit either as a number or an array of
// numbers.
func firstInt(raw json.RawMessage) int {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var list []int
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return 0
}
