package notify

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/zulandar/helpline/internal/models"
)

// digestWindow is how far back each digest looks.
const digestWindow = 24 * time.Hour

// DigestStore is the slice of the store the digest reads from.
type DigestStore interface {
	TicketsSince(cutoff time.Time) ([]models.Ticket, error)
	CallsSince(cutoff time.Time) ([]models.CallLog, error)
}

// Digest periodically summarizes ticket and call traffic to the side
// channels on a cron schedule.
type Digest struct {
	store DigestStore
	sinks []Sink
	cron  *cron.Cron
}

// NewDigest creates a Digest. Schedule is a standard 5-field cron
// expression.
func NewDigest(store DigestStore, sinks []Sink, schedule string) (*Digest, error) {
	if store == nil {
		return nil, fmt.Errorf("notify: digest: store is required")
	}
	d := &Digest{store: store, sinks: sinks, cron: cron.New()}
	if _, err := d.cron.AddFunc(schedule, d.run); err != nil {
		return nil, fmt.Errorf("notify: digest: schedule %q: %w", schedule, err)
	}
	return d, nil
}

// Start begins the schedule.
func (d *Digest) Start() { d.cron.Start() }

// Stop halts the schedule, waiting for a running digest to finish.
func (d *Digest) Stop() {
	ctx := d.cron.Stop()
	<-ctx.Done()
}

func (d *Digest) run() {
	text, err := d.Build(time.Now())
	if err != nil {
		log.Printf("notify: build digest: %v", err)
		return
	}
	for _, sink := range d.sinks {
		if err := sink.Post(text); err != nil {
			log.Printf("notify: %s digest: %v", sink.Name(), err)
		}
	}
}

// Build renders the digest text for the window ending at now.
func (d *Digest) Build(now time.Time) (string, error) {
	cutoff := now.Add(-digestWindow)
	tickets, err := d.store.TicketsSince(cutoff)
	if err != nil {
		return "", err
	}
	calls, err := d.store.CallsSince(cutoff)
	if err != nil {
		return "", err
	}

	byUrgency := map[string]int{}
	for _, t := range tickets {
		byUrgency[strings.ToLower(t.Urgency)]++
	}
	byOutcome := map[string]int{}
	for _, c := range calls {
		byOutcome[c.Outcome]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Help desk digest for %s\n", now.Format("2006-01-02"))
	fmt.Fprintf(&b, "Tickets filed: %d (high %d, medium %d, low %d)\n",
		len(tickets), byUrgency["high"], byUrgency["medium"], byUrgency["low"])
	fmt.Fprintf(&b, "Calls handled: %d (completed %d, escalated %d, abandoned %d, failed %d)",
		len(calls), byOutcome["completed"], byOutcome["escalated"],
		byOutcome["abandoned"], byOutcome["failed"])
	return b.String(), nil
}
