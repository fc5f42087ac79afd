package notify

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/zulandar/helpline/internal/ivr"
	"github.com/zulandar/helpline/internal/models"
)

// Mailer sends one plain-text email and reports only after the delivery
// outcome is known.
type Mailer interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// TicketStore is the slice of the store the dispatcher records through.
type TicketStore interface {
	SaveTicket(callID string, t *ivr.Ticket) (*models.Ticket, error)
	SetTicketStatus(id uint, status string) error
	RecordNotification(ticketID uint, sink, status, detail string)
}

// Dispatcher delivers finalized tickets: persist, email the help desk, then
// announce on any configured side channels. It implements ivr.Dispatcher.
type Dispatcher struct {
	mailer    Mailer
	recipient string
	store     TicketStore
	sinks     []Sink
}

// DispatcherOpts holds parameters for creating a Dispatcher.
type DispatcherOpts struct {
	Mailer    Mailer
	Recipient string      // help desk inbox
	Store     TicketStore // optional; disables persistence when nil
	Sinks     []Sink      // optional side channels
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(opts DispatcherOpts) (*Dispatcher, error) {
	if opts.Mailer == nil {
		return nil, fmt.Errorf("notify: dispatcher: mailer is required")
	}
	if opts.Recipient == "" {
		return nil, fmt.Errorf("notify: dispatcher: recipient is required")
	}
	return &Dispatcher{
		mailer:    opts.Mailer,
		recipient: opts.Recipient,
		store:     opts.Store,
		sinks:     opts.Sinks,
	}, nil
}

// Dispatch delivers one ticket. The email is the delivery of record: its
// failure fails the dispatch. Side channel and persistence failures are
// logged and absorbed.
func (d *Dispatcher) Dispatch(ctx context.Context, t *ivr.Ticket) error {
	var row *models.Ticket
	if d.store != nil {
		var err error
		row, err = d.store.SaveTicket(t.CallID, t)
		if err != nil {
			log.Printf("notify: persist ticket for %s: %v", t.EmployeeID, err)
		}
	}

	subject := Subject(t)
	mailErr := d.mailer.Send(ctx, d.recipient, subject, t.Body())
	if row != nil {
		if mailErr != nil {
			d.store.RecordNotification(row.ID, "email", "failed", mailErr.Error())
			if err := d.store.SetTicketStatus(row.ID, models.TicketStatusFailed); err != nil {
				log.Printf("notify: %v", err)
			}
		} else {
			d.store.RecordNotification(row.ID, "email", "sent", d.recipient)
			if err := d.store.SetTicketStatus(row.ID, models.TicketStatusDispatched); err != nil {
				log.Printf("notify: %v", err)
			}
		}
	}
	if mailErr != nil {
		return fmt.Errorf("notify: dispatch ticket for %s: %w", t.EmployeeID, mailErr)
	}

	announcement := Announcement(t)
	for _, sink := range d.sinks {
		if err := sink.Post(announcement); err != nil {
			log.Printf("notify: %s announcement: %v", sink.Name(), err)
			if row != nil {
				d.store.RecordNotification(row.ID, sink.Name(), "failed", err.Error())
			}
			continue
		}
		if row != nil {
			d.store.RecordNotification(row.ID, sink.Name(), "sent", "")
		}
	}
	return nil
}

// Subject builds the ticket email subject line.
func Subject(t *ivr.Ticket) string {
	return fmt.Sprintf("Help Desk Ticket - %s - %s urgency",
		strings.ToUpper(t.EmployeeID), strings.ToLower(t.Urgency))
}

// Announcement builds the one-line side channel summary.
func Announcement(t *ivr.Ticket) string {
	return fmt.Sprintf("New %s urgency ticket from %s (%s): %s",
		strings.ToLower(t.Urgency), t.Name, strings.ToUpper(t.EmployeeID), t.Issue)
}
