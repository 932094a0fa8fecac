// Package mailer sends ticket confirmation emails over SMTP.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/mail.v2"

	"github.com/csedclub/club-payments/internal/core/domain"
)

// dialer is the part of *mail.Dialer the mailer uses.
type dialer interface {
	DialAndSend(m ...*mail.Message) error
}

// Mailer implements ports.TicketSender.
type Mailer struct {
	dialer dialer
	from   string
}

// New creates a mailer for the given SMTP relay.
// Port 465 uses implicit TLS; any other port negotiates STARTTLS when offered.
func New(host string, port int, user, password, from string) *Mailer {
	d := mail.NewDialer(host, port, user, password)
	d.SSL = port == 465
	d.Timeout = 15 * time.Second
	return &Mailer{dialer: d, from: from}
}

// Name identifies the channel in logs and metrics.
func (m *Mailer) Name() string { return "mail" }

// Send emails the ticket to its purchaser.
// The SMTP client has no context support; ctx only bounds how long Send waits.
func (m *Mailer) Send(ctx context.Context, ticket domain.Ticket) error {
	msg, err := m.buildMessage(ticket)
	if err != nil {
		return domain.NewServiceError(domain.ErrNotification, err.Error(), domain.CodeNotification)
	}

	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()

	select {
	case err := <-done:
		if err != nil {
			return domain.NewServiceError(domain.ErrNotification,
				"smtp send: "+err.Error(), domain.CodeNotification)
		}
		return nil
	case <-ctx.Done():
		return domain.NewServiceError(domain.ErrNotification,
			"smtp send: "+ctx.Err().Error(), domain.CodeNotification)
	}
}

func (m *Mailer) buildMessage(ticket domain.Ticket) (*mail.Message, error) {
	body, err := RenderTicket(ticket)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", ticket.Purchaser.Email)
	msg.SetHeader("Subject", "Your ticket for "+ticket.Event.Title)
	msg.SetBody("text/html", body)
	return msg, nil
}

var ticketTemplate = template.Must(template.New("ticket").Parse(`<div style="font-family: system-ui, -apple-system, Segoe UI, Roboto, Helvetica, Arial;">
  <h2>Your CSED Club Ticket</h2>
  <p>Hi {{.Purchaser.Name}},</p>
  <p>Thanks for your purchase. Here are your ticket details:</p>
  <ul>
    <li><strong>Ticket ID:</strong> {{.ID}}</li>
    <li><strong>Event:</strong> {{.Event.Title}}</li>
    <li><strong>Date:</strong> {{.Event.Date}}</li>
    <li><strong>Amount:</strong> {{.Amount}}</li>
  </ul>
  <p>Payment ID: {{.Payment.ID}}</p>
</div>
`))

// RenderTicket renders the HTML body of the ticket email.
func RenderTicket(ticket domain.Ticket) (string, error) {
	data := struct {
		domain.Ticket
		Amount string
	}{ticket, FormatAmount(ticket.Event.Price)}

	var buf bytes.Buffer
	if err := ticketTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render ticket email: %w", err)
	}
	return buf.String(), nil
}

// FormatAmount renders a paise amount as rupees with two decimals.
func FormatAmount(paise int64) string {
	rupees := decimal.New(paise, -2)
	sign := ""
	if rupees.IsNegative() {
		sign = "-"
	}
	return sign + "₹" + rupees.Abs().StringFixed(2)
}
