package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rl1809/stock-pos/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

// HTTPClient talks to the inventory service JSON API. It implements both
// port.InventoryService and port.IdentityProvider.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPClient(baseURL, token string, client *http.Client) *HTTPClient {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  client,
	}
}

type envelope[T any] struct {
	Data T `json:"data"`
}

func (c *HTTPClient) ListItems(ctx context.Context) ([]domain.Item, error) {
	var resp envelope[[]domain.Item]
	if err := c.do(ctx, http.MethodGet, "/api/items", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return []domain.Item{}, nil
	}
	return resp.Data, nil
}

func (c *HTTPClient) GetBalance(ctx context.Context, itemID int64) (domain.StockBalance, error) {
	var resp domain.StockBalance
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/stock/%d", itemID), nil, &resp); err != nil {
		return domain.StockBalance{}, err
	}
	return resp, nil
}

func (c *HTTPClient) CreateSale(ctx context.Context, sale domain.Sale) error {
	return c.do(ctx, http.MethodPost, "/api/selling", sale, nil)
}

func (c *HTTPClient) ApplyStockMovement(ctx context.Context, movement domain.StockMovement) error {
	return c.do(ctx, http.MethodPost, "/api/stock", movement, nil)
}

// CreateItem accepts the created item either wrapped in "data", wrapped in
// "item", or bare.
func (c *HTTPClient) CreateItem(ctx context.Context, item domain.NewItem) (domain.Item, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/api/items", item, &raw); err != nil {
		return domain.Item{}, err
	}

	var wrapped struct {
		Data *domain.Item `json:"data"`
		Item *domain.Item `json:"item"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return domain.Item{}, fmt.Errorf("decode created item: %w", err)
	}
	switch {
	case wrapped.Data != nil:
		return *wrapped.Data, nil
	case wrapped.Item != nil:
		return *wrapped.Item, nil
	}

	var bare domain.Item
	if err := json.Unmarshal(raw, &bare); err != nil {
		return domain.Item{}, fmt.Errorf("decode created item: %w", err)
	}
	return bare, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*domain.Caller, error) {
	var resp envelope[*domain.Caller]
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, domain.NewRemoteError(http.StatusUnauthorized, "identity not available")
	}
	return resp.Data, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.NewTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return domain.NewRemoteError(resp.StatusCode, errorText(text))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// errorText extracts "message" from a JSON error body and otherwise returns
// the body as sent.
func errorText(body []byte) string {
	text := strings.TrimSpace(string(body))
	var parsed struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Message != "" {
		return parsed.Message
	}
	return text
}
