package models

import "time"

// CallLog records the outcome of one finished call.
type CallLog struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	CallID       string    `gorm:"size:128;not null;index"`
	Outcome      string    `gorm:"size:16;not null;index"` // completed, escalated, failed, abandoned
	TicketsFiled int       `gorm:"not null"`
	EndedAt      time.Time `gorm:"index"`
	CreatedAt    time.Time
}

// NotificationLog records one delivery attempt to a notification sink.
type NotificationLog struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	TicketID  uint   `gorm:"index"`
	Sink      string `gorm:"size:16;not null;index"` // email, slack, discord
	Status    string `gorm:"size:16;not null"`       // sent, failed
	Detail    string `gorm:"size:512"`
	CreatedAt time.Time
}
