// Package notify delivers issued tickets off the request path.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/csedclub/club-payments/internal/core/domain"
	"github.com/csedclub/club-payments/internal/core/ports"
	"github.com/csedclub/club-payments/internal/platform/logging"
	"github.com/csedclub/club-payments/internal/platform/metrics"
)

// Dispatcher fans each ticket out to every sender on a small worker pool.
// Delivery failures are logged and counted, never returned.
type Dispatcher struct {
	senders []ports.TicketSender
	jobs    chan domain.Ticket
	timeout time.Duration
	workers int
	log     *zerolog.Logger

	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// NewDispatcher creates a dispatcher; call Start before use.
func NewDispatcher(log *zerolog.Logger, workers, queueSize int, timeout time.Duration, senders ...ports.TicketSender) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = workers * 4
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Dispatcher{
		senders: senders,
		jobs:    make(chan domain.Ticket, queueSize),
		timeout: timeout,
		workers: workers,
		log:     log,
	}
}

// Enabled reports whether any sender is configured.
func (d *Dispatcher) Enabled() bool { return len(d.senders) > 0 }

// Start launches the worker goroutines.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for ticket := range d.jobs {
				d.deliver(ticket)
			}
		}()
	}
}

// Notify queues the ticket and returns immediately.
// When the queue is full or the dispatcher is closed the ticket is dropped.
func (d *Dispatcher) Notify(ticket domain.Ticket) {
	if !d.Enabled() {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(ticket, "dispatcher closed")
		return
	}
	select {
	case d.jobs <- ticket:
	default:
		// drop when saturated; the ticket was already returned to the caller
		d.drop(ticket, "queue full")
	}
}

// Close stops accepting tickets and waits for queued ones to be delivered.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) deliver(ticket domain.Ticket) {
	for _, s := range d.senders {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := s.Send(ctx, ticket)
		cancel()

		if err != nil {
			metrics.IncNotification(s.Name(), "failed")
			d.log.Warn().Err(err).
				Str("channel", s.Name()).
				Str("ticket_id", ticket.ID).
				Msg("ticket notification failed")
			continue
		}
		metrics.IncNotification(s.Name(), "sent")
		d.log.Info().
			Str("channel", s.Name()).
			Str("ticket_id", ticket.ID).
			Str("to", logging.RedactEmail(ticket.Purchaser.Email)).
			Msg("ticket notification sent")
	}
}

func (d *Dispatcher) drop(ticket domain.Ticket, reason string) {
	for _, s := range d.senders {
		metrics.IncNotification(s.Name(), "dropped")
	}
	d.log.Warn().Str("ticket_id", ticket.ID).Str("reason", reason).Msg("ticket notification dropped")
}
