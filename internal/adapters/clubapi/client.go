// Package clubapi hands issued tickets to the club backend, which owns ticket storage.
package clubapi

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
)

// Client implements ports.TicketSender.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new club backend client.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Name identifies the channel in logs and metrics.
func (c *Client) Name() string { return "club_api" }

// issuedTicketPayload is the JSON body posted for each issued ticket.
type issuedTicketPayload struct {
	TicketID       string `json:"ticket_id"`
	EventID        string `json:"event_id"`
	EventTitle     string `json:"event_title"`
	EventDate      string `json:"event_date"`
	Amount         int64  `json:"amount"`
	PurchaserName  string `json:"name"`
	PurchaserEmail string `json:"email"`
	PaymentID      string `json:"razorpay_payment_id"`
	OrderID        string `json:"razorpay_order_id"`
	IssuedAt       string `json:"issued_at"`
}

// Send posts the ticket to the club backend.
// POST /api/tickets/issued
func (c *Client) Send(ctx context.Context, ticket domain.Ticket) error {
	url := fmt.Sprintf("%s/api/tickets/issued", c.baseURL)

	payload := issuedTicketPayload{
		TicketID:       ticket.ID,
		EventID:        ticket.Event.ID,
		EventTitle:     ticket.Event.Title,
		EventDate:      ticket.Event.Date,
		Amount:         ticket.Event.Price,
		PurchaserName:  ticket.Purchaser.Name,
		PurchaserEmail: ticket.Purchaser.Email,
		PaymentID:      ticket.Payment.ID,
		OrderID:        ticket.Payment.OrderID,
		IssuedAt:       ticket.IssuedAt.Format(time.RFC3339),
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return domain.NewServiceError(domain.ErrNotification,
			"failed to marshal payload", "MARSHAL_ERROR")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return domain.NewServiceError(domain.ErrNotification,
			"failed to create request", "REQUEST_ERROR")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewServiceError(domain.ErrNotification,
			"request failed: "+err.Error(), "HTTP_ERROR")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return domain.NewServiceError(domain.ErrNotification,
			fmt.Sprintf("club API returned status %d: %s", resp.StatusCode, string(body)),
			"CLUB_API_ERROR")
	}

	return nil
}
