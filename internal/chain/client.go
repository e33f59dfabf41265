package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenMetadata es la respuesta del indexador para un token. Attributes
// llega tal cual del upstream (formatos heterogeneos entre colecciones),
// por eso es json.RawMessage y se normaliza aguas arriba.
type TokenMetadata struct {
	Name       string          `json:"name"`
	Image      string          `json:"image"`
	Attributes json.RawMessage `json:"attributes"`
}

// Client define el contrato contra el indexador de blockchain. Se asume
// lento y poco confiable: los callers degradan a defaults ante fallas.
type Client interface {
	IsOwner(ctx context.Context, wallet, contractAddress, tokenID string) (bool, error)
	GetTokenMetadata(ctx context.Context, contractAddress, tokenID string) (TokenMetadata, error)
	VerifySignature(ctx context.Context, wallet, message, signature string) (bool, error)
}

// HTTPClient implementa Client contra la API HTTP del indexador.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *HTTPClient) IsOwner(ctx context.Context, wallet, contractAddress, tokenID string) (bool, error) {
	var out struct {
		IsOwner bool `json:"is_owner"`
	}
	params := url.Values{
		"wallet":   {strings.ToLower(wallet)},
		"contract": {strings.ToLower(contractAddress)},
		"token_id": {tokenID},
	}
	if err := c.getJSON(ctx, "/v1/ownership?"+params.Encode(), &out); err != nil {
		return false, err
	}
	return out.IsOwner, nil
}

func (c *HTTPClient) GetTokenMetadata(ctx context.Context, contractAddress, tokenID string) (TokenMetadata, error) {
	var out TokenMetadata
	params := url.Values{
		"contract": {strings.ToLower(contractAddress)},
		"token_id": {tokenID},
	}
	if err := c.getJSON(ctx, "/v1/metadata?"+params.Encode(), &out); err != nil {
		return TokenMetadata{}, err
	}
	return out, nil
}

// VerifySignature delega la verificacion de firma de wallet al indexador.
func (c *HTTPClient) VerifySignature(ctx context.Context, wallet, message, signature string) (bool, error) {
	var out struct {
		Valid bool `json:"valid"`
	}
	params := url.Values{
		"wallet":    {strings.ToLower(wallet)},
		"message":   {message},
		"signature": {signature},
	}
	if err := c.getJSON(ctx, "/v1/verify?"+params.Encode(), &out); err != nil {
		return false, err
	}
	return out.Valid, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("indexer http error: status=%d", resp.StatusCode)
	}
	if len(body) == 0 {
		return fmt.Errorf("indexer empty response")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
