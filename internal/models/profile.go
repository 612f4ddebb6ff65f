package models

import (
	"time"

	"github.com/facturio/relance/internal/schedule"
)

// ReminderProfile is a named, reusable set of delays and templates a client
// can be attached to. Each owner gets three predefined profiles.
type ReminderProfile struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"not null;index:ux_reminder_profiles_nom,unique,priority:1" json:"user_id"`
	Nom    string `gorm:"not null;index:ux_reminder_profiles_nom,unique,priority:2" json:"nom"`

	Delay1     schedule.Delay `gorm:"embedded;embeddedPrefix:delay_1_" json:"delay_1"`
	Delay2     schedule.Delay `gorm:"embedded;embeddedPrefix:delay_2_" json:"delay_2"`
	Delay3     schedule.Delay `gorm:"embedded;embeddedPrefix:delay_3_" json:"delay_3"`
	DelayFinal schedule.Delay `gorm:"embedded;embeddedPrefix:delay_final_" json:"delay_final"`

	Template1     string `gorm:"column:template_1;type:text" json:"template_1"`
	Template2     string `gorm:"column:template_2;type:text" json:"template_2"`
	Template3     string `gorm:"column:template_3;type:text" json:"template_3"`
	TemplateFinal string `gorm:"type:text" json:"template_final"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
