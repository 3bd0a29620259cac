// Package quote HTTP клиент поставщика котировок золота.
package quote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"bullion_market/pkg/httpx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

const maxBodySize = 1 << 20

var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrMalformedQuote   = errors.New("malformed quote")
)

type Client struct {
	url  string
	http *http.Client
}

// NewClient клиент с таймаутом и логированием исходящих запросов.
func NewClient(url string, timeout time.Duration, opts ...httpx.Option) *Client {
	return &Client{
		url: url,
		http: &http.Client{
			Timeout:   timeout,
			Transport: httpx.NewLoggingRoundTripper(http.DefaultTransport, opts...),
		},
	}
}

// quoteResponse поддерживает формат goldprice.org и плоский {"price": ...}.
type quoteResponse struct {
	Items []struct {
		XauPrice *decimal.Decimal `json:"xauPrice"`
	} `json:"items"`
	Price *decimal.Decimal `json:"price"`
}

// FetchOuncePrice цена тройской унции в валюте поставщика.
func (c *Client) FetchOuncePrice(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return decimal.Zero, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("http.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return decimal.Zero, fmt.Errorf("io.ReadAll: %w", err)
	}

	var payload quoteResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrMalformedQuote, err)
	}

	switch {
	case len(payload.Items) > 0 && payload.Items[0].XauPrice != nil:
		return *payload.Items[0].XauPrice, nil
	case payload.Price != nil:
		return *payload.Price, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: price is missing", ErrMalformedQuote)
	}
}
