// Package handlers contains the HTTP handlers for the payment service.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/csedclub/club-payments/internal/core/domain"
	"github.com/csedclub/club-payments/internal/core/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	service *service.PaymentService
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(svc *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: svc}
}

// createOrderRequest is the JSON body of POST /create-order.
type createOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
}

// confirmRequest is the JSON body of POST /confirm, named after the checkout callback.
type confirmRequest struct {
	OrderID   string          `json:"razorpay_order_id"`
	PaymentID string          `json:"razorpay_payment_id"`
	Signature string          `json:"razorpay_signature"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	Event     domain.EventRef `json:"event"`
}

// CreateOrder handles POST /create-order
// Creates a gateway order and returns it with the public key id.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	order, err := h.service.CreateOrder(c.Request.Context(), domain.OrderRequest{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	})
	if err != nil {
		writeError(c, err, "Failed to create order")
		return
	}

	c.JSON(http.StatusOK, order)
}

// ConfirmPayment handles POST /confirm
// Verifies the checkout signature and returns the issued ticket.
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	result, err := h.service.ConfirmPayment(c.Request.Context(), domain.ConfirmationRequest{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
		Purchaser: domain.Purchaser{Name: req.Name, Email: req.Email},
		Event:     req.Event,
	})
	if err != nil {
		writeError(c, err, "Payment confirmation failed")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Health handles GET /health
func (h *PaymentHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "club-payments",
	})
}
