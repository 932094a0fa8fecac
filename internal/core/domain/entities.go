// Package domain contains the core business entities for the ticket payment flow.
// This is the innermost layer - no external dependencies.
package domain

import "time"

// OrderRequest is a purchase intent sent by the browsing client.
// Amount is in the currency's minor unit (paise for INR).
type OrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// OrderDescriptor is the gateway order returned to the browsing client.
// KeyID is the public key identifier the checkout widget is opened with.
type OrderDescriptor struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
	KeyID    string `json:"keyId"`
}

// EventRef identifies the event a ticket is bought for.
// Price is in minor units.
type EventRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
	Price int64  `json:"price"`
}

// Purchaser is the person the ticket is issued to.
type Purchaser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ConfirmationRequest carries the values returned by the gateway checkout callback.
// Signature is attacker-controlled until verified.
type ConfirmationRequest struct {
	OrderID   string
	PaymentID string
	Signature string
	Purchaser Purchaser
	Event     EventRef
}

// PaymentRef links a ticket to the gateway payment that paid for it.
type PaymentRef struct {
	ID      string `json:"id"`
	OrderID string `json:"orderId"`
}

// Ticket is the proof-of-purchase record issued after a verified payment.
type Ticket struct {
	ID        string     `json:"id"`
	Event     EventRef   `json:"event"`
	Purchaser Purchaser  `json:"purchaser"`
	Payment   PaymentRef `json:"payment"`
	IssuedAt  time.Time  `json:"issuedAt"`
}

// PurchaseState is the lifecycle position of a single purchase attempt.
type PurchaseState string

const (
	StateCreated          PurchaseState = "created"
	StateAwaitingCallback PurchaseState = "awaiting_callback"
	StateVerified         PurchaseState = "verified"
	StateRejected         PurchaseState = "rejected"
)

// Terminal reports whether no further transition is possible.
func (s PurchaseState) Terminal() bool {
	return s == StateVerified || s == StateRejected
}

// ConfirmationResult is the outcome of a successful confirmation.
type ConfirmationResult struct {
	OK     bool          `json:"ok"`
	Ticket *Ticket       `json:"ticket"`
	State  PurchaseState `json:"-"`
}
