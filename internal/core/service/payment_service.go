// Package service implements the core business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/csedclub/club-payments/internal/core/domain"
	"github.com/csedclub/club-payments/internal/core/ports"
	"github.com/csedclub/club-payments/internal/platform/logging"
	"github.com/csedclub/club-payments/internal/platform/metrics"
)

// Credentials is the gateway key pair, read-only after startup.
type Credentials struct {
	KeyID     string
	KeySecret string
}

// PaymentService runs the two-step order/confirmation handshake.
// It holds no per-purchase state and is safe for concurrent use.
type PaymentService struct {
	gateway  ports.OrderGateway
	verifier ports.SignatureVerifier
	notifier ports.TicketNotifier
	creds    Credentials
	logger   *zerolog.Logger

	now        func() time.Time
	newReceipt func() string
}

// Option customises a PaymentService.
type Option func(*PaymentService)

// WithClock overrides the time source used for ticket issuance.
func WithClock(now func() time.Time) Option {
	return func(s *PaymentService) { s.now = now }
}

// WithReceiptGenerator overrides how receipts are generated when the caller sends none.
func WithReceiptGenerator(gen func() string) Option {
	return func(s *PaymentService) { s.newReceipt = gen }
}

// NewPaymentService creates a new payment service.
// notifier may be nil, in which case issued tickets are only returned to the caller.
func NewPaymentService(
	gateway ports.OrderGateway,
	verifier ports.SignatureVerifier,
	notifier ports.TicketNotifier,
	creds Credentials,
	logger *zerolog.Logger,
	opts ...Option,
) *PaymentService {
	s := &PaymentService{
		gateway:    gateway,
		verifier:   verifier,
		notifier:   notifier,
		creds:      creds,
		logger:     logger,
		now:        time.Now,
		newReceipt: defaultReceipt,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func defaultReceipt() string {
	return "rcpt_" + ulid.Make().String()
}

// CreateOrder validates the purchase intent and creates an order at the gateway.
// Validation and configuration failures are reported before any network call.
// A gateway failure is returned as is; the caller may resubmit.
func (s *PaymentService) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderDescriptor, error) {
	log := logging.FromContext(ctx, s.logger)

	req.Currency = strings.TrimSpace(req.Currency)
	if req.Amount <= 0 || req.Currency == "" {
		metrics.IncOrder("invalid")
		return nil, domain.NewServiceError(domain.ErrValidation,
			"amount and currency are required", domain.CodeValidation)
	}
	if s.creds.KeyID == "" || s.creds.KeySecret == "" {
		metrics.IncOrder("misconfigured")
		log.Error().Msg("gateway credentials missing, refusing to create order")
		return nil, domain.NewServiceError(domain.ErrConfiguration,
			"RAZORPAY_KEY_ID/RAZORPAY_KEY_SECRET environment variables are required",
			domain.CodeConfiguration)
	}

	if req.Receipt == "" {
		req.Receipt = s.newReceipt()
	}
	if req.Notes == nil {
		req.Notes = map[string]string{}
	}

	order, err := s.gateway.CreateOrder(ctx, req)
	if err != nil {
		metrics.IncOrder("upstream_error")
		log.Warn().Err(err).Str("receipt", req.Receipt).Msg("order creation failed")

		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) {
			return nil, domain.NewServiceError(upstream, upstream.Error(), domain.CodeUpstream)
		}
		return nil, domain.NewServiceError(domain.ErrUpstream,
			"failed to create order: "+err.Error(), domain.CodeUpstream)
	}

	order.KeyID = s.creds.KeyID
	metrics.IncOrder("created")
	log.Info().
		Str("order_id", order.ID).
		Int64("amount", order.Amount).
		Str("currency", order.Currency).
		Str("state", string(domain.StateCreated)).
		Msg("order created")

	return order, nil
}

// ConfirmPayment verifies the checkout callback signature and, on match, issues a ticket.
//
// The order id is not checked against previously created orders and an
// accepted confirmation can be replayed: each replay issues a new ticket with a
// new id. Closing that gap needs an order ledger, which this service does not keep.
func (s *PaymentService) ConfirmPayment(ctx context.Context, req domain.ConfirmationRequest) (*domain.ConfirmationResult, error) {
	log := logging.FromContext(ctx, s.logger)

	if s.creds.KeySecret == "" {
		metrics.IncConfirmation(string(domain.StateRejected))
		log.Error().Msg("gateway key secret missing, cannot verify payment")
		return nil, domain.NewServiceError(domain.ErrConfiguration,
			"Missing RAZORPAY_KEY_SECRET on server", domain.CodeConfiguration)
	}
	if err := validateConfirmation(req); err != nil {
		metrics.IncConfirmation(string(domain.StateRejected))
		return nil, err
	}

	if !s.verifier.Verify(req.OrderID, req.PaymentID, req.Signature, s.creds.KeySecret) {
		metrics.IncConfirmation(string(domain.StateRejected))
		log.Warn().
			Str("order_id", req.OrderID).
			Str("payment_id", req.PaymentID).
			Str("state", string(domain.StateRejected)).
			Msg("payment signature mismatch")
		return nil, domain.NewServiceError(domain.ErrInvalidSignature,
			"Invalid payment signature", domain.CodeInvalidSignature)
	}

	ticket := s.issueTicket(req)
	metrics.IncConfirmation(string(domain.StateVerified))
	log.Info().
		Str("ticket_id", ticket.ID).
		Str("order_id", req.OrderID).
		Str("event_id", req.Event.ID).
		Str("purchaser", logging.RedactEmail(req.Purchaser.Email)).
		Str("state", string(domain.StateVerified)).
		Msg("ticket issued")

	if s.notifier != nil {
		s.notifier.Notify(ticket)
	}

	return &domain.ConfirmationResult{OK: true, Ticket: &ticket, State: domain.StateVerified}, nil
}

func (s *PaymentService) issueTicket(req domain.ConfirmationRequest) domain.Ticket {
	issuedAt := s.now().UTC()
	return domain.Ticket{
		ID:        fmt.Sprintf("TICKET-%s-%d", req.OrderID, issuedAt.UnixMilli()),
		Event:     req.Event,
		Purchaser: req.Purchaser,
		Payment: domain.PaymentRef{
			ID:      req.PaymentID,
			OrderID: req.OrderID,
		},
		IssuedAt: issuedAt,
	}
}

// validateConfirmation performs basic validation on the callback payload.
func validateConfirmation(req domain.ConfirmationRequest) error {
	var missing []string
	if req.OrderID == "" {
		missing = append(missing, "razorpay_order_id")
	}
	if req.PaymentID == "" {
		missing = append(missing, "razorpay_payment_id")
	}
	if req.Signature == "" {
		missing = append(missing, "razorpay_signature")
	}
	if strings.TrimSpace(req.Purchaser.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(req.Purchaser.Email) == "" {
		missing = append(missing, "email")
	}
	if req.Event.ID == "" {
		missing = append(missing, "event.id")
	}
	if len(missing) > 0 {
		return domain.NewServiceError(domain.ErrValidation,
			strings.Join(missing, ", ")+" required", domain.CodeValidation)
	}
	return nil
}
