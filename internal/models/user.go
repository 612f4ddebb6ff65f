package models

import "time"

// Plan labels mirror the subscription tiers of the billing side.
const (
	PlanFree    = "free"
	PlanBasic   = "basic"
	PlanPro     = "pro"
	PlanCompany = "company"
)

// User is an account owner. Authentication itself lives outside this core;
// the fields here are what the escalation engine needs: plan and usage.
type User struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Email  string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Nom    string `gorm:"index" json:"nom"`
	Prenom string `gorm:"index" json:"prenom"`

	Plan         string `gorm:"size:20;not null;default:'free'" json:"plan"`
	EmailCounter int    `gorm:"not null;default:0" json:"email_counter"` // relances envoyées sur la période

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EmailSettings holds the SMTP credentials and preferences of an owner.
// A missing row means the owner cannot send: the runner fails closed.
type EmailSettings struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	UserID       uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	SMTPHost     string `gorm:"not null" json:"smtp_host"`
	SMTPPort     int    `gorm:"not null;default:587" json:"smtp_port"`
	SMTPUsername string `json:"smtp_username"`
	SMTPPassword string `json:"-"`
	FromAddress  string `gorm:"not null" json:"from_address"`
	FromName     string `json:"from_name"`
	Signature    string `gorm:"type:text" json:"signature"`

	// NotifyOnReminder: envoyer un mail "relance effectuée" au propriétaire
	// après chaque relance automatique.
	NotifyOnReminder bool `json:"notify_on_reminder"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Notification is the out-of-band audit trail shown in the notification
// center. Fire-and-forget: losing one never blocks a reminder.
type Notification struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"not null;index" json:"user_id"` // destinataire
	Type    string `gorm:"size:50" json:"type"`           // ex: "relance", "configuration", "quota"
	Title   string `json:"title"`
	Message string `gorm:"type:text" json:"message"`
	Details string `gorm:"type:text" json:"details"`
	Read    bool   `json:"read"`

	// NeedMailNotification marque les notifications à relayer par mail.
	NeedMailNotification bool `json:"need_mail_notification"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
