package models

import "time"

// Ticket statuses.
const (
	TicketStatusOpen       = "open"
	TicketStatusDispatched = "dispatched"
	TicketStatusFailed     = "failed"
)

// Ticket is a persisted help-desk ticket captured over the phone.
type Ticket struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	CallID        string    `gorm:"size:128;not null;index"`
	EmployeeID    string    `gorm:"size:16;not null;index"`
	Name          string    `gorm:"size:128;not null"`
	ContactMethod string    `gorm:"size:16;not null"`
	Phone         string    `gorm:"size:32"`
	Email         string    `gorm:"size:128"`
	WorkMode      string    `gorm:"size:16;not null"`
	WorkAddress   string    `gorm:"size:256"`
	Urgency       string    `gorm:"size:16;not null;index"`
	Issue         string    `gorm:"type:text;not null"`
	Status        string    `gorm:"size:16;default:open;index"`
	FiledAt       time.Time `gorm:"index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
