// Package syndication клиент внешней платформы финансирования проектов.
package syndication

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"bullion_market/internal/domain/entity"
	"bullion_market/pkg/httpx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

const (
	projectsPath  = "/api/v1/projects"
	shipmentsPath = "/api/v1/shipments/"

	headerIdempotencyKey = "Idempotency-Key"

	maxBodySize = 1 << 20
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrEmptyProjectID   = errors.New("empty project id")
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration, opts ...httpx.Option) *Client {
	transport := httpx.NewAuthBearerRoundTripper(
		httpx.NewLoggingRoundTripper(http.DefaultTransport, opts...),
		httpx.StaticToken(token),
	)

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

type projectRequest struct {
	Name            string          `json:"name"`
	RiskTier        string          `json:"risk_tier"`
	TargetYield     decimal.Decimal `json:"target_yield"`
	DurationMonths  int             `json:"duration_months"`
	MinInvestment   decimal.Decimal `json:"min_investment"`
	AmountRequired  decimal.Decimal `json:"amount_required"`
	Description     string          `json:"description"`
	Origin          string          `json:"origin"`
	Destination     string          `json:"destination"`
	TransportMethod string          `json:"transport_method"`
	MaterialForm    string          `json:"material_form"`
	PurityPercent   decimal.Decimal `json:"purity_percent"`
}

type projectResponse struct {
	ID string `json:"id"`
}

type shipmentRequest struct {
	Status string `json:"status"`
}

// CreateProject публикует проект. Платформа возвращает один и тот же проект
// для повторных запросов с тем же ключом идемпотентности.
func (c *Client) CreateProject(ctx context.Context, idempotencyKey string, params entity.ExportParams) (string, error) {
	body := projectRequest{
		Name:            params.Name,
		RiskTier:        string(params.RiskTier),
		TargetYield:     params.TargetYield,
		DurationMonths:  params.DurationMonths,
		MinInvestment:   params.MinInvestment,
		AmountRequired:  params.AmountRequired,
		Description:     params.Description,
		Origin:          params.Origin,
		Destination:     params.Destination,
		TransportMethod: params.TransportMethod,
		MaterialForm:    params.MaterialForm,
		PurityPercent:   params.PurityPercent,
	}

	header := http.Header{}
	header.Set(headerIdempotencyKey, idempotencyKey)

	var resp projectResponse
	if err := c.do(ctx, http.MethodPost, c.baseURL+projectsPath, header, body, &resp); err != nil {
		return "", err
	}

	if resp.ID == "" {
		return "", ErrEmptyProjectID
	}

	return resp.ID, nil
}

func (c *Client) UpdateShipmentStatus(ctx context.Context, externalID, status string) error {
	endpoint := c.baseURL + shipmentsPath + url.PathEscape(externalID)

	return c.do(ctx, http.MethodPatch, endpoint, nil, shipmentRequest{Status: status}, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, header http.Header, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http.Do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("io.ReadAll: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: %s %s: %d", ErrUnexpectedStatus, method, endpoint, resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	return nil
}
