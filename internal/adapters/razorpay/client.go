// Package razorpay implements the OrderGateway and SignatureVerifier ports
// against the Razorpay REST API.
package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/csedclub/club-payments/internal/core/domain"
	"github.com/csedclub/club-payments/internal/platform/metrics"
)

// DefaultBaseURL is the production API host.
const DefaultBaseURL = "https://api.razorpay.com"

// Client implements ports.OrderGateway using HTTP Basic auth with the key pair.
type Client struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
}

// NewClient creates a new Razorpay client.
// timeout bounds the single order-creation call; there is no retry.
func NewClient(baseURL, keyID, keySecret string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		keyID:     keyID,
		keySecret: keySecret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// createOrderRequest is the JSON body of POST /v1/orders.
type createOrderRequest struct {
	Amount         int64             `json:"amount"`
	Currency       string            `json:"currency"`
	Receipt        string            `json:"receipt"`
	Notes          map[string]string `json:"notes"`
	PaymentCapture int               `json:"payment_capture"`
}

// orderResponse holds the order fields echoed back to the browsing client.
type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// CreateOrder creates an auto-captured order.
// POST /v1/orders
func (c *Client) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderDescriptor, error) {
	notes := req.Notes
	if notes == nil {
		notes = map[string]string{}
	}
	payload := createOrderRequest{
		Amount:         req.Amount,
		Currency:       req.Currency,
		Receipt:        req.Receipt,
		Notes:          notes,
		PaymentCapture: 1,
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.SetBasicAuth(c.keyID, c.keySecret)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.ObserveGateway("transport_error", time.Since(start))
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveGateway("transport_error", time.Since(start))
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.ObserveGateway("rejected", time.Since(start))
		return nil, &domain.UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	metrics.ObserveGateway("ok", time.Since(start))

	var order orderResponse
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("gateway response carries no order id: %s", string(body))
	}

	return &domain.OrderDescriptor{
		ID:       order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		Receipt:  order.Receipt,
		Status:   order.Status,
		KeyID:    c.keyID,
	}, nil
}
