package models

import "time"

// Receivable is an outstanding invoice owed by a client. Status is the
// persisted marker of the escalation state machine.
type Receivable struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"` // propriétaire du compte
	ClientID      uint      `gorm:"not null;index" json:"client_id"`
	Client        Client    `gorm:"foreignKey:ClientID" json:"client"`
	InvoiceNumber string    `gorm:"not null;index" json:"invoice_number"`
	Amount        float64   `gorm:"not null" json:"amount"`
	DueDate       time.Time `gorm:"not null" json:"due_date"`

	// Le défaut SQL 'pending' vit dans la migration; côté Go le zéro de
	// l'énumération est déjà pending.
	Status Status `gorm:"type:varchar(32);not null;index" json:"status"`

	// AutomaticReminder false suspend totalement l'escalade (pause manuelle).
	AutomaticReminder bool `gorm:"default:true" json:"automatic_reminder"`

	// Email override: adresse de destination prioritaire sur celle du client.
	Email         string `json:"email"`
	AttachmentURL string `json:"attachment_url"` // PDF de la facture joint aux relances

	Reminders []ReminderLog `gorm:"foreignKey:ReceivableID" json:"reminders,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Recipient resolves the address reminders are sent to: the receivable's own
// override when set, otherwise the first address configured on the client.
func (r *Receivable) Recipient() string {
	if r.Email != "" {
		return r.Email
	}
	return r.Client.FirstEmail()
}
