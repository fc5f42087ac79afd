package ivr

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Ticket fields, in the order the dialog collects and the email renders them.
type Field string

const (
	FieldName          Field = "name"
	FieldID            Field = "id"
	FieldPhone         Field = "phone"
	FieldEmail         Field = "email"
	FieldWorkMode      Field = "work_mode"
	FieldContactMethod Field = "contact_method"
	FieldWorkAddress   Field = "work_address"
	FieldUrgency       Field = "urgency"
	FieldIssue         Field = "issue"
)

// fieldOrder is the fixed order the engine assigns fields in. A draft is
// complete once the final field (the issue description) is set.
var fieldOrder = []Field{
	FieldName, FieldID, FieldPhone, FieldEmail,
	FieldWorkMode, FieldContactMethod, FieldWorkAddress,
	FieldUrgency, FieldIssue,
}

// Draft errors.
var (
	ErrFieldAlreadySet  = errors.New("ivr: ticket field already set")
	ErrDraftIncomplete  = errors.New("ivr: ticket draft incomplete")
	ErrAlreadyFinalized = errors.New("ivr: ticket draft already finalized")
)

// TicketDraft accumulates ticket fields across dialog states. Each field is
// set exactly once per draft; reassignment is a dialog logic error, not a
// caller-facing failure.
type TicketDraft struct {
	values    map[Field]string
	finalized bool
}

// NewTicketDraft returns an empty draft.
func NewTicketDraft() *TicketDraft {
	return &TicketDraft{values: make(map[Field]string)}
}

// Set assigns a field. Returns ErrFieldAlreadySet on reassignment, leaving
// the original value in place.
func (d *TicketDraft) Set(f Field, value string) error {
	if _, dup := d.values[f]; dup {
		return fmt.Errorf("%w: %s", ErrFieldAlreadySet, f)
	}
	d.values[f] = value
	return nil
}

// Get returns the field's value, or "" if unset.
func (d *TicketDraft) Get(f Field) string {
	return d.values[f]
}

// Complete reports whether the closing field is set.
func (d *TicketDraft) Complete() bool {
	_, ok := d.values[FieldIssue]
	return ok
}

// Finalize freezes a complete draft into an immutable Ticket. It may be
// called once per draft; a second call is the double-dispatch bug guard.
func (d *TicketDraft) Finalize() (*Ticket, error) {
	if d.finalized {
		return nil, ErrAlreadyFinalized
	}
	if !d.Complete() {
		return nil, ErrDraftIncomplete
	}
	d.finalized = true
	return &Ticket{
		EmployeeID:    d.values[FieldID],
		Name:          d.values[FieldName],
		ContactMethod: d.values[FieldContactMethod],
		Phone:         d.values[FieldPhone],
		Email:         d.values[FieldEmail],
		WorkMode:      d.values[FieldWorkMode],
		WorkAddress:   d.values[FieldWorkAddress],
		Urgency:       d.values[FieldUrgency],
		Issue:         d.values[FieldIssue],
		FiledAt:       time.Now(),
	}, nil
}

// Ticket is a completed, immutable support ticket ready for dispatch.
type Ticket struct {
	CallID        string
	EmployeeID    string
	Name          string
	ContactMethod string
	Phone         string
	Email         string
	WorkMode      string
	WorkAddress   string
	Urgency       string
	Issue         string
	FiledAt       time.Time
}

// Body renders the ticket as the plain-text notification, one field per line
// in the fixed order the help desk expects.
func (t *Ticket) Body() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Employee #: %s\n", strings.ToUpper(t.EmployeeID))
	fmt.Fprintf(&b, "Name: %s\n", t.Name)
	fmt.Fprintf(&b, "Best method of contact: %s\n", strings.ToLower(t.ContactMethod))
	fmt.Fprintf(&b, "Phone Number: %s\n", t.Phone)
	fmt.Fprintf(&b, "Email: %s\n", strings.ToLower(t.Email))
	fmt.Fprintf(&b, "Work location: %s\n", strings.ToLower(t.WorkMode))
	fmt.Fprintf(&b, "Work Address: %s\n", strings.ToLower(t.WorkAddress))
	fmt.Fprintf(&b, "Urgency tier: %s\n", strings.ToLower(t.Urgency))
	fmt.Fprintf(&b, "Description of Issue: %s\n", t.Issue)
	return b.String()
}
