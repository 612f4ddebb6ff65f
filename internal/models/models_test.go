package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/facturio/relance/internal/schedule"
)

func TestStatusLabels(t *testing.T) {
	tests := []struct {
		status Status
		label  string
	}{
		{StatusPending, "pending"},
		{StatusPreReminder, "Relance préventive"},
		{StatusReminder1, "Relance 1"},
		{StatusReminder2, "Relance 2"},
		{StatusReminder3, "Relance 3"},
		{StatusFinal, "Relance finale"},
		{StatusPaid, "paid"},
		{StatusLate, "late"},
		{StatusLegal, "legal"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.label {
			t.Errorf("String(%d) = %q, want %q", tt.status, got, tt.label)
		}
		parsed, err := ParseStatus(tt.label)
		if err != nil || parsed != tt.status {
			t.Errorf("ParseStatus(%q) = %v, %v", tt.label, parsed, err)
		}
	}
	if _, err := ParseStatus("Relance 4"); err == nil {
		t.Error("ParseStatus accepted an unknown label")
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, s := range []Status{StatusFinal, StatusPaid, StatusLegal} {
		if !s.Terminal() {
			t.Errorf("%v should be terminal", s)
		}
	}
	for _, s := range []Status{StatusPending, StatusPreReminder, StatusReminder3, StatusLate} {
		if s.Terminal() {
			t.Errorf("%v should not be terminal", s)
		}
	}
}

func TestStatusStage(t *testing.T) {
	if !StatusReminder2.Stage() || !StatusFinal.Stage() {
		t.Error("escalation stages misclassified")
	}
	if StatusPaid.Stage() || StatusLate.Stage() || StatusLegal.Stage() {
		t.Error("annotations classified as stages")
	}
}

func TestStatusJSONRoundTrip(t *testing.T) {
	b, err := json.Marshal(StatusReminder1)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"Relance 1"` {
		t.Errorf("marshal = %s", b)
	}
	var s Status
	if err := json.Unmarshal([]byte(`"Relance finale"`), &s); err != nil || s != StatusFinal {
		t.Errorf("unmarshal = %v, %v", s, err)
	}
}

func TestStatusScan(t *testing.T) {
	var s Status
	if err := s.Scan("Relance 2"); err != nil || s != StatusReminder2 {
		t.Errorf("Scan(string) = %v, %v", s, err)
	}
	if err := s.Scan([]byte("paid")); err != nil || s != StatusPaid {
		t.Errorf("Scan([]byte) = %v, %v", s, err)
	}
	if err := s.Scan(nil); err != nil || s != StatusPending {
		t.Errorf("Scan(nil) = %v, %v", s, err)
	}
	if err := s.Scan(42); err == nil {
		t.Error("Scan accepted an int")
	}
}

func TestClientFirstEmail(t *testing.T) {
	c := &Client{Email: " compta@acme.fr , dg@acme.fr"}
	if got := c.FirstEmail(); got != "compta@acme.fr" {
		t.Errorf("FirstEmail() = %q", got)
	}
	c.Email = ""
	if got := c.FirstEmail(); got != "" {
		t.Errorf("FirstEmail() on empty = %q", got)
	}
}

func TestClientRechainDates(t *testing.T) {
	first := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	c := &Client{
		ReminderDate1:      &first,
		ReminderDelay2:     schedule.Delay{Days: 7},
		ReminderDelay3:     schedule.Delay{Days: 7, Hours: 12},
		ReminderDelayFinal: schedule.Delay{Days: 10},
	}
	c.RechainDates()
	if c.ReminderDate2 == nil || !c.ReminderDate2.Equal(first.AddDate(0, 0, 7)) {
		t.Errorf("date2 = %v", c.ReminderDate2)
	}
	if c.ReminderDate3 == nil || !c.ReminderDate3.Equal(first.AddDate(0, 0, 14).Add(12*time.Hour)) {
		t.Errorf("date3 = %v", c.ReminderDate3)
	}
	if c.ReminderDateFinal == nil || !c.ReminderDateFinal.Equal(first.AddDate(0, 0, 24).Add(12*time.Hour)) {
		t.Errorf("dateFinale = %v", c.ReminderDateFinal)
	}

	c.ReminderDate1 = nil
	c.RechainDates()
	if c.ReminderDate2 != nil || c.ReminderDate3 != nil || c.ReminderDateFinal != nil {
		t.Error("nil first date must clear the chain")
	}
}

func TestClientApplyProfile(t *testing.T) {
	first := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	p := &ReminderProfile{
		ID:            7,
		Delay1:        schedule.Delay{Days: 3},
		Delay2:        schedule.Delay{Days: 5},
		Delay3:        schedule.Delay{Days: 5},
		DelayFinal:    schedule.Delay{Days: 7},
		Template1:     "un",
		Template2:     "deux",
		Template3:     "trois",
		TemplateFinal: "finale",
	}
	c := &Client{ReminderDate1: &first, ReminderEnable2: false, ReminderEnableFinal: false}
	c.ApplyProfile(p)

	if c.ReminderProfileID == nil || *c.ReminderProfileID != 7 {
		t.Errorf("profile id = %v", c.ReminderProfileID)
	}
	if !c.ReminderEnable1 || !c.ReminderEnable2 || !c.ReminderEnable3 || !c.ReminderEnableFinal {
		t.Error("profile must enable stages 1 à finale")
	}
	if c.ReminderTemplate2 != "deux" || c.ReminderTemplateFinal != "finale" {
		t.Error("templates not copied")
	}
	if c.ReminderDate2 == nil || !c.ReminderDate2.Equal(first.AddDate(0, 0, 5)) {
		t.Errorf("date2 = %v", c.ReminderDate2)
	}
}

func TestReceivableRecipient(t *testing.T) {
	r := &Receivable{Client: Client{Email: "compta@acme.fr, dg@acme.fr"}}
	if got := r.Recipient(); got != "compta@acme.fr" {
		t.Errorf("Recipient() = %q", got)
	}
	r.Email = "direct@acme.fr"
	if got := r.Recipient(); got != "direct@acme.fr" {
		t.Errorf("Recipient() with override = %q", got)
	}
}
