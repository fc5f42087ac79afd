package store

import (
	"testing"
	"time"

	"github.com/zulandar/helpline/internal/config"
	"github.com/zulandar/helpline/internal/ivr"
	"github.com/zulandar/helpline/internal/models"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	db, err := Connect(config.DBConfig{Driver: "sqlite", Path: ":memory:"})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db)
}

func sampleTicket() *ivr.Ticket {
	return &ivr.Ticket{
		EmployeeID:    "e672834",
		Name:          "Maria Santos",
		ContactMethod: "Phone",
		Phone:         "+12135550142",
		Email:         "maria.santos@example.gov",
		WorkMode:      "Office",
		WorkAddress:   "200 North Main Street",
		Urgency:       "High",
		Issue:         "Laptop will not power on.",
		FiledAt:       time.Now(),
	}
}

func TestSaveTicket(t *testing.T) {
	s := setupStore(t)

	row, err := s.SaveTicket("call-1", sampleTicket())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if row.ID == 0 {
		t.Fatal("row has no ID")
	}
	if row.Status != models.TicketStatusOpen {
		t.Errorf("status = %q", row.Status)
	}

	rows, err := s.RecentTickets(10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(rows) != 1 || rows[0].EmployeeID != "e672834" || rows[0].CallID != "call-1" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestSetTicketStatus(t *testing.T) {
	s := setupStore(t)
	row, err := s.SaveTicket("call-1", sampleTicket())
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := s.SetTicketStatus(row.ID, models.TicketStatusDispatched); err != nil {
		t.Fatalf("set status: %v", err)
	}
	rows, _ := s.RecentTickets(1)
	if rows[0].Status != models.TicketStatusDispatched {
		t.Errorf("status = %q", rows[0].Status)
	}

	if err := s.SetTicketStatus(9999, models.TicketStatusFailed); err == nil {
		t.Error("expected error for unknown ticket")
	}
}

func TestRecordCallAndQuery(t *testing.T) {
	s := setupStore(t)
	s.RecordCall("call-1", ivr.OutcomeCompleted, 2)
	s.RecordCall("call-2", ivr.OutcomeEscalated, 0)

	calls, err := s.CallsSince(time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("calls since: %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(calls))
	}
	if calls[0].CallID != "call-1" || calls[0].TicketsFiled != 2 {
		t.Errorf("first call = %+v", calls[0])
	}

	old, err := s.CallsSince(time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("calls since: %v", err)
	}
	if len(old) != 0 {
		t.Errorf("future cutoff returned %d calls", len(old))
	}
}

func TestTicketsSince(t *testing.T) {
	s := setupStore(t)

	early := sampleTicket()
	early.FiledAt = time.Now().Add(-2 * time.Hour)
	if _, err := s.SaveTicket("call-old", early); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := s.SaveTicket("call-new", sampleTicket()); err != nil {
		t.Fatalf("save: %v", err)
	}

	rows, err := s.TicketsSince(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("tickets since: %v", err)
	}
	if len(rows) != 1 || rows[0].CallID != "call-new" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestRecordNotification(t *testing.T) {
	s := setupStore(t)
	row, err := s.SaveTicket("call-1", sampleTicket())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	s.RecordNotification(row.ID, "email", "sent", "message id abc")
	s.RecordNotification(row.ID, "slack", "failed", "channel_not_found")

	var logs []models.NotificationLog
	if err := s.db.Where("ticket_id = ?", row.ID).Find(&logs).Error; err != nil {
		t.Fatalf("query logs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("logs = %d, want 2", len(logs))
	}
}
