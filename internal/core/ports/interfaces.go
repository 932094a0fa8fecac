// Package ports defines the interfaces (ports) for the payment service.
// These are contracts that adapters must implement.
package ports

import (
	"context"

	"github.com/csedclub/club-payments/internal/core/domain"
)

// OrderGateway creates orders at the external payment gateway.
type OrderGateway interface {
	// CreateOrder makes one order-creation call. A non-success gateway response
	// is returned as *domain.UpstreamError.
	CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderDescriptor, error)
}

// SignatureVerifier authenticates the checkout callback payload.
type SignatureVerifier interface {
	// Verify reports whether signature is the HMAC of orderID and paymentID under secret.
	Verify(orderID, paymentID, signature, secret string) bool
}

// TicketNotifier hands an issued ticket to the best-effort side channel.
// Implementations must not block the caller on delivery.
type TicketNotifier interface {
	Notify(ticket domain.Ticket)
}

// TicketSender delivers a ticket over one channel (mail, club API).
type TicketSender interface {
	Name() string
	Send(ctx context.Context, ticket domain.Ticket) error
}
