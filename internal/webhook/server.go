// Package webhook is the HTTP front door: it receives Event Grid incoming
// call notifications and call automation callbacks, feeds them to the dialog
// engine, and exposes a small read API over the ticket store.
package webhook

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zulandar/helpline/internal/ivr"
)

// Answerer accepts a ringing call and returns its call connection ID.
type Answerer interface {
	Answer(ctx context.Context, incomingCallContext string) (string, error)
}

// Caller places outbound calls and returns their call connection IDs.
type Caller interface {
	CreateCall(ctx context.Context, target string) (string, error)
}

// EventHandler consumes dialog events. Implemented by ivr.Engine.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev ivr.Event) error
	ActiveCalls() int
}

// TicketReader lists persisted tickets for the read API.
type TicketReader interface {
	RecentTickets(limit int) ([]TicketView, error)
}

// TicketView is one row of the ticket read API.
type TicketView struct {
	ID         uint   `json:"id"`
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Urgency    string `json:"urgency"`
	Status     string `json:"status"`
	Issue      string `json:"issue"`
	FiledAt    string `json:"filed_at"`
}

// StartOpts holds configuration for the webhook server.
type StartOpts struct {
	Engine   EventHandler
	Answerer Answerer
	Caller   Caller       // optional; /api/calls 404s when nil
	Tickets  TicketReader // optional; /api/tickets 404s when nil
	Port     int
	Out      io.Writer
}

// Start launches the webhook HTTP server. It blocks until ctx is cancelled,
// then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Engine == nil {
		return fmt.Errorf("webhook: engine is required")
	}
	if opts.Answerer == nil {
		return fmt.Errorf("webhook: answerer is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	gin.SetMode(gin.ReleaseMode)
	router := NewRouter(opts)

	addr := fmt.Sprintf(":%d", opts.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Helpline webhook listening on %s\n", addr)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("webhook: %w", err)
	}
	return nil
}
