// internal/infra/solana/rpc_client.go
package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// LocalnetEndpoint is the solana-test-validator default.
const LocalnetEndpoint = "http://localhost:8899"

// RPCClient covers the reads the blocto client cannot decode.
// token.MintAccountFromData rejects anything but the 82-byte base layout, so
// token-2022 mints with extensions are read via jsonParsed `getAccountInfo`.
type RPCClient interface {
	// GetMintAccount calls `getAccountInfo` with encoding=jsonParsed and decodes a mint.
	GetMintAccount(ctx context.Context, mint string) (*ParsedMintInfo, error)
}

// JSONRPCClient is a simple HTTP JSON-RPC client for Solana.
type JSONRPCClient struct {
	Endpoint   string
	HTTP       *http.Client
	Commitment string
}

// NewJSONRPCClient creates a Solana JSON-RPC client. An empty endpoint falls
// back to LocalnetEndpoint. No client-side timeout: blocking is bounded by ctx.
func NewJSONRPCClient(endpoint, commitment string) *JSONRPCClient {
	ep := strings.TrimSpace(endpoint)
	if ep == "" {
		ep = LocalnetEndpoint
	}
	if strings.TrimSpace(commitment) == "" {
		commitment = CommitmentConfirmed
	}
	return &JSONRPCClient{
		Endpoint:   ep,
		HTTP:       &http.Client{},
		Commitment: commitment,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("solana rpc: error code=%d message=%s", e.Code, e.Message)
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

func (c *JSONRPCClient) call(ctx context.Context, method string, params any, out any) error {
	if c == nil || c.Endpoint == "" || c.HTTP == nil {
		return fmt.Errorf("solana rpc: client not configured")
	}

	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("solana rpc: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("solana rpc: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("solana rpc: http do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("solana rpc: http status=%d", resp.StatusCode)
	}

	var rr rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return fmt.Errorf("solana rpc: decode response: %w", err)
	}
	if rr.Error != nil {
		return rr.Error
	}

	if out != nil {
		if err := json.Unmarshal(rr.Result, out); err != nil {
			return fmt.Errorf("solana rpc: unmarshal result: %w", err)
		}
	}
	return nil
}

// ============================================================
// getAccountInfo (jsonParsed mint)
// ============================================================

// ParsedMintInfo is the `parsed.info` object of a token-2022 mint.
type ParsedMintInfo struct {
	Decimals        uint8           `json:"decimals"`
	Extensions      []MintExtension `json:"extensions"`
	FreezeAuthority *string         `json:"freezeAuthority"`
	IsInitialized   bool            `json:"isInitialized"`
	MintAuthority   *string         `json:"mintAuthority"`
	Supply          string          `json:"supply"`
}

type MintExtension struct {
	Extension string             `json:"extension"`
	State     MintExtensionState `json:"state"`
}

type MintExtensionState struct {
	Delegate  *string `json:"delegate,omitempty"`
	Authority *string `json:"authority,omitempty"`
}

// PermanentDelegate returns the delegate recorded in the permanentDelegate extension.
func (m *ParsedMintInfo) PermanentDelegate() string {
	if m == nil {
		return ""
	}
	for _, ext := range m.Extensions {
		if ext.Extension == ExtensionPermanentDelegate.String() && ext.State.Delegate != nil {
			return *ext.State.Delegate
		}
	}
	return ""
}

type getAccountInfoResult struct {
	Context struct {
		Slot uint64 `json:"slot"`
	} `json:"context"`
	Value *struct {
		Owner string `json:"owner"`
		Data  struct {
			Program string `json:"program"`
			Parsed  struct {
				Info ParsedMintInfo `json:"info"`
				Type string         `json:"type"`
			} `json:"parsed"`
			Space uint64 `json:"space"`
		} `json:"data"`
	} `json:"value"`
}

// GetMintAccount returns nil, nil when the account does not exist.
func (c *JSONRPCClient) GetMintAccount(ctx context.Context, mint string) (*ParsedMintInfo, error) {
	addr := strings.TrimSpace(mint)
	if addr == "" {
		return nil, fmt.Errorf("solana rpc: mint is empty")
	}
	params := []any{
		addr,
		map[string]any{
			"commitment": c.Commitment,
			"encoding":   "jsonParsed",
		},
	}

	var out getAccountInfoResult
	if err := c.call(ctx, "getAccountInfo", params, &out); err != nil {
		return nil, err
	}
	if out.Value == nil {
		return nil, nil
	}
	if t := out.Value.Data.Parsed.Type; t != "mint" {
		return nil, fmt.Errorf("solana rpc: account %s is not a mint (type=%q)", maskShort(addr), t)
	}
	info := out.Value.Data.Parsed.Info
	return &info, nil
}
