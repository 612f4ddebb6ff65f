package models

import "time"

// ReminderLog is the append-only history of sent reminders. The unique index
// on (receivable_id, type) makes "at most one send per stage" a storage-level
// invariant instead of a check-then-insert race.
type ReminderLog struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	ReceivableID uint         `gorm:"not null;uniqueIndex:ux_reminder_logs_stage,priority:1" json:"receivable_id"`
	Type         ReminderType `gorm:"type:varchar(10);not null;uniqueIndex:ux_reminder_logs_stage,priority:2" json:"reminder_type"`
	SentAt       time.Time    `gorm:"not null" json:"reminder_date"`
	EmailSent    bool         `json:"email_sent"`
	Recipient    string       `json:"recipient"`
	Subject      string       `json:"subject"`
	EmailContent string       `gorm:"type:text" json:"email_content"`
	CreatedAt    time.Time    `json:"created_at"`
}
