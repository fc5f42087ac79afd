// Package store persists tickets, call outcomes, and notification attempts
// behind a GORM connection to sqlite or MySQL.
package store

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zulandar/helpline/internal/config"
	"github.com/zulandar/helpline/internal/ivr"
	"github.com/zulandar/helpline/internal/models"
)

// DSN builds a MySQL DSN from the configured backend settings.
func DSN(cfg config.DBConfig) string {
	return fmt.Sprintf("root@tcp(%s:%d)/%s?parseTime=true", cfg.Host, cfg.Port, cfg.Database)
}

// Connect opens a GORM connection for the configured driver.
func Connect(cfg config.DBConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	switch cfg.Driver {
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(cfg.Path), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("store: open sqlite %s: %w", cfg.Path, err)
		}
		return db, nil
	case "mysql":
		db, err := gorm.Open(mysql.Open(DSN(cfg)), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("store: connect to %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Database, err)
		}
		return db, nil
	}
	return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Ticket{}, &models.CallLog{}, &models.NotificationLog{}); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Store wraps the database with the queries the rest of the service needs.
// It implements ivr.CallRecorder.
type Store struct {
	db *gorm.DB
}

// New creates a Store.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// SaveTicket persists a finalized ticket in open status and returns the row.
func (s *Store) SaveTicket(callID string, t *ivr.Ticket) (*models.Ticket, error) {
	row := &models.Ticket{
		CallID:        callID,
		EmployeeID:    t.EmployeeID,
		Name:          t.Name,
		ContactMethod: t.ContactMethod,
		Phone:         t.Phone,
		Email:         t.Email,
		WorkMode:      t.WorkMode,
		WorkAddress:   t.WorkAddress,
		Urgency:       t.Urgency,
		Issue:         t.Issue,
		Status:        models.TicketStatusOpen,
		FiledAt:       t.FiledAt,
	}
	if err := s.db.Create(row).Error; err != nil {
		return nil, fmt.Errorf("store: save ticket for call %s: %w", callID, err)
	}
	return row, nil
}

// SetTicketStatus updates one ticket's status.
func (s *Store) SetTicketStatus(id uint, status string) error {
	res := s.db.Model(&models.Ticket{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("store: update ticket %d status: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("store: ticket %d not found", id)
	}
	return nil
}

// RecordCall logs a finished call. Persistence failures are logged, not
// surfaced: losing a call log must never affect call handling.
func (s *Store) RecordCall(callID string, outcome ivr.CallOutcome, tickets int) {
	row := &models.CallLog{
		CallID:       callID,
		Outcome:      string(outcome),
		TicketsFiled: tickets,
		EndedAt:      time.Now(),
	}
	if err := s.db.Create(row).Error; err != nil {
		log.Printf("store: record call %s: %v", callID, err)
	}
}

// RecordNotification logs one sink delivery attempt.
func (s *Store) RecordNotification(ticketID uint, sink, status, detail string) {
	row := &models.NotificationLog{
		TicketID: ticketID,
		Sink:     sink,
		Status:   status,
		Detail:   detail,
	}
	if err := s.db.Create(row).Error; err != nil {
		log.Printf("store: record %s notification for ticket %d: %v", sink, ticketID, err)
	}
}

// RecentTickets returns the newest tickets, up to limit.
func (s *Store) RecentTickets(limit int) ([]models.Ticket, error) {
	var rows []models.Ticket
	if err := s.db.Order("filed_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: recent tickets: %w", err)
	}
	return rows, nil
}

// TicketsSince returns tickets filed at or after the cutoff, oldest first.
func (s *Store) TicketsSince(cutoff time.Time) ([]models.Ticket, error) {
	var rows []models.Ticket
	if err := s.db.Where("filed_at >= ?", cutoff).Order("filed_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: tickets since %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return rows, nil
}

// CallsSince returns call logs ended at or after the cutoff, oldest first.
func (s *Store) CallsSince(cutoff time.Time) ([]models.CallLog, error) {
	var rows []models.CallLog
	if err := s.db.Where("ended_at >= ?", cutoff).Order("ended_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: calls since %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return rows, nil
}
