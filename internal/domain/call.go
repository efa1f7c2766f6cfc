package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// Call is a single node of a decoded proposal call tree as returned by the
// explorer API: a hex call index ("0x" + pallet byte + method byte) and an
// ordered list of named arguments. Arguments may embed further calls (for
// wrapping operations) or lists of calls (for batches); argument values stay
// raw JSON and are decoded on demand, so a malformed argument only surfaces
// when an interpreter actually reads it.
type Call struct {
	CallIndex string `json:"callIndex"`
	Args      []Arg  `json:"args"`
}

// Arg is one named call argument.
type Arg struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// UnmarshalJSON decodes a call node, unwrapping the single-key {"call": ...}
// envelope some explorer payloads use around the actual call.
func (c *Call) UnmarshalJSON(data []byte) error {
	var raw struct {
		CallIndex string          `json:"callIndex"`
		Args      []Arg           `json:"args"`
		Call      json.RawMessage `json:"call"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.CallIndex == "" && len(raw.Call) > 0 && !bytes.Equal(raw.Call, []byte("null")) {
		return c.UnmarshalJSON(raw.Call)
	}
	c.CallIndex = raw.CallIndex
	c.Args = raw.Args
	return nil
}

// Empty reports whether the node carries no call at all. An empty call means
// no preimage was ever submitted for the proposal, which is not an error.
func (c *Call) Empty() bool {
	return c == nil || c.CallIndex == ""
}

// Arg returns the raw value of the named argument.
func (c *Call) Arg(name string) (json.RawMessage, bool) {
	for _, a := range c.Args {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

// ArgCall decodes the named argument as a nested call.
func (c *Call) ArgCall(name string) (*Call, error) {
	raw, ok := c.Arg(name)
	if !ok {
		return nil, fmt.Errorf("call %s: missing arg %q", c.CallIndex, name)
	}
	var inner Call
	if err := json.Unmarshal(raw, &inner); err != nil {
		return nil, fmt.Errorf("call %s: arg %q: decode inner call: %w", c.CallIndex, name, err)
	}
	return &inner, nil
}

// ArgCalls decodes the named argument as a list of calls (batch members).
func (c *Call) ArgCalls(name string) ([]*Call, error) {
	raw, ok := c.Arg(name)
	if !ok {
		return nil, fmt.Errorf("call %s: missing arg %q", c.CallIndex, name)
	}
	var inner []*Call
	if err := json.Unmarshal(raw, &inner); err != nil {
		return nil, fmt.Errorf("call %s: arg %q: decode call list: %w", c.CallIndex, name, err)
	}
	return inner, nil
}

// ArgAmount decodes the named argument as an unsigned on-chain integer
// amount. Explorers emit amounts as JSON numbers, decimal strings (sometimes
// with thousands separators), or hex strings depending on magnitude.
func (c *Call) ArgAmount(name string) (*big.Int, error) {
	raw, ok := c.Arg(name)
	if !ok {
		return nil, fmt.Errorf("call %s: missing arg %q", c.CallIndex, name)
	}
	n, err := ParseAmount(raw)
	if err != nil {
		return nil, fmt.Errorf("call %s: arg %q: %w", c.CallIndex, name, err)
	}
	return n, nil
}

// ArgAccount decodes the named argument as an account id. The explorer
// encodes accounts either as a bare address string or as a MultiAddress
// object like {"id": "13UVJ..."}.
func (c *Call) ArgAccount(name string) (string, error) {
	raw, ok := c.Arg(name)
	if !ok {
		return "", fmt.Errorf("call %s: missing arg %q", c.CallIndex, name)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s, nil
	}
	var multi struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &multi); err == nil && multi.ID != "" {
		return multi.ID, nil
	}
	return "", fmt.Errorf("call %s: arg %q: unrecognized account encoding %s", c.CallIndex, name, compact(raw))
}

// JSON renders the call as compact JSON for audit logging. It never fails;
// unencodable calls degrade to the call index alone.
func (c *Call) JSON() string {
	b, err := json.Marshal(struct {
		CallIndex string `json:"callIndex"`
		Args      []Arg  `json:"args"`
	}{c.CallIndex, c.Args})
	if err != nil {
		return fmt.Sprintf("{%q}", c.CallIndex)
	}
	return string(b)
}

// ParseAmount parses a raw JSON value as an unsigned big integer.
func ParseAmount(raw json.RawMessage) (*big.Int, error) {
	s := strings.TrimSpace(string(raw))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "null" {
		return nil, fmt.Errorf("empty amount")
	}

	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, ok := new(big.Int).SetString(s[2:], 16)
		if !ok {
			return nil, fmt.Errorf("malformed hex amount %q", s)
		}
		return n, nil
	}

	if n, ok := new(big.Int).SetString(s, 10); ok {
		return n, nil
	}

	// Very large JSON numbers may arrive in scientific notation.
	f, _, err := big.ParseFloat(s, 10, 256, big.ToNearestEven)
	if err != nil {
		return nil, fmt.Errorf("malformed amount %q", s)
	}
	n, _ := f.Int(nil)
	return n, nil
}

// compact renders a raw JSON fragment on a single line for log output.
func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
