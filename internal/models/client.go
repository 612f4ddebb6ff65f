package models

import (
	"strings"
	"time"

	"github.com/facturio/relance/internal/schedule"
)

// Client entity, carrying the per-client reminder configuration.
type Client struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    uint   `gorm:"not null;index" json:"user_id"` // FK vers User (propriétaire du compte)
	User      User   `gorm:"foreignKey:UserID" json:"-"`
	Nom       string `gorm:"not null;index" json:"nom"` // Raison sociale ou nom
	Contact   string `json:"contact"`                   // Nom du contact principal
	Email     string `json:"email"`                     // peut contenir plusieurs adresses séparées par des virgules
	Telephone string `json:"telephone"`
	SIREN     string `gorm:"index" json:"siren"`

	// Relance préventive (avant échéance)
	PreReminderEnable   bool           `json:"pre_reminder_enable"`
	PreReminderDate     *time.Time     `json:"pre_reminder_date"`
	PreReminderTemplate string         `gorm:"type:text" json:"pre_reminder_template"`
	PreReminderDelay    schedule.Delay `gorm:"embedded;embeddedPrefix:pre_reminder_delay_" json:"pre_reminder_delay"`

	// Relances 1/2/3/finale: chaque date est dérivée de la précédente via le
	// délai. Les tags column gardent le suffixe numérique séparé par un
	// underscore, comme dans les migrations SQL et les payloads JSON.
	ReminderEnable1   bool           `gorm:"column:reminder_enable_1;default:true" json:"reminder_enable_1"`
	ReminderDate1     *time.Time     `gorm:"column:reminder_date_1" json:"reminder_date_1"`
	ReminderDelay1    schedule.Delay `gorm:"embedded;embeddedPrefix:reminder_delay_1_" json:"reminder_delay_1"`
	ReminderTemplate1 string         `gorm:"column:reminder_template_1;type:text" json:"reminder_template_1"`

	ReminderEnable2   bool           `gorm:"column:reminder_enable_2;default:true" json:"reminder_enable_2"`
	ReminderDate2     *time.Time     `gorm:"column:reminder_date_2" json:"reminder_date_2"`
	ReminderDelay2    schedule.Delay `gorm:"embedded;embeddedPrefix:reminder_delay_2_" json:"reminder_delay_2"`
	ReminderTemplate2 string         `gorm:"column:reminder_template_2;type:text" json:"reminder_template_2"`

	ReminderEnable3   bool           `gorm:"column:reminder_enable_3;default:true" json:"reminder_enable_3"`
	ReminderDate3     *time.Time     `gorm:"column:reminder_date_3" json:"reminder_date_3"`
	ReminderDelay3    schedule.Delay `gorm:"embedded;embeddedPrefix:reminder_delay_3_" json:"reminder_delay_3"`
	ReminderTemplate3 string         `gorm:"column:reminder_template_3;type:text" json:"reminder_template_3"`

	ReminderEnableFinal   bool           `gorm:"default:true" json:"reminder_enable_final"`
	ReminderDateFinal     *time.Time     `json:"reminder_date_final"`
	ReminderDelayFinal    schedule.Delay `gorm:"embedded;embeddedPrefix:reminder_delay_final_" json:"reminder_delay_final"`
	ReminderTemplateFinal string         `gorm:"type:text" json:"reminder_template_final"`

	// Profil de relance partagé (optionnel)
	ReminderProfileID *uint            `json:"reminder_profile_id"`
	ReminderProfile   *ReminderProfile `gorm:"foreignKey:ReminderProfileID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FirstEmail returns the first address of the comma-separated Email field.
func (c *Client) FirstEmail() string {
	parts := strings.Split(c.Email, ",")
	return strings.TrimSpace(parts[0])
}

// RechainDates recomputes the dates of stages 2, 3 and finale from the
// first reminder date. A nil first date clears the whole chain.
func (c *Client) RechainDates() {
	if c.ReminderDate1 == nil {
		c.ReminderDate2, c.ReminderDate3, c.ReminderDateFinal = nil, nil, nil
		return
	}
	second, third, final := schedule.ChainDates(*c.ReminderDate1, c.ReminderDelay2, c.ReminderDelay3, c.ReminderDelayFinal)
	c.ReminderDate2, c.ReminderDate3, c.ReminderDateFinal = &second, &third, &final
}

// ApplyProfile copies the profile's delays and templates onto the client and
// force-enables stages 1 through finale, then recomputes the date chain.
func (c *Client) ApplyProfile(p *ReminderProfile) {
	c.ReminderProfileID = &p.ID
	c.ReminderDelay1 = p.Delay1
	c.ReminderDelay2 = p.Delay2
	c.ReminderDelay3 = p.Delay3
	c.ReminderDelayFinal = p.DelayFinal
	c.ReminderTemplate1 = p.Template1
	c.ReminderTemplate2 = p.Template2
	c.ReminderTemplate3 = p.Template3
	c.ReminderTemplateFinal = p.TemplateFinal
	c.ReminderEnable1 = true
	c.ReminderEnable2 = true
	c.ReminderEnable3 = true
	c.ReminderEnableFinal = true
	c.RechainDates()
}
