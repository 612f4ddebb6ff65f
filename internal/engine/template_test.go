package engine

import (
	"testing"
	"time"
)

func TestFormatEuro(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{100, "100,00 €"},
		{0, "0,00 €"},
		{0.5, "0,50 €"},
		{1234.56, "1 234,56 €"},
		{1234567.8, "1 234 567,80 €"},
		{999.999, "1 000,00 €"}, // arrondi au centime
		{-42.1, "-42,10 €"},
	}
	for _, tt := range tests {
		if got := FormatEuro(tt.in); got != tt.want {
			t.Errorf("FormatEuro(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDaysLate(t *testing.T) {
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		now  time.Time
		want int
	}{
		{due.Add(25 * time.Hour), 1},
		{due.Add(23 * time.Hour), 0},
		{due, 0},
		{due.Add(-time.Hour), -1}, // avant échéance
		{due.Add(-49 * time.Hour), -3},
	}
	for _, tt := range tests {
		if got := DaysLate(tt.now, due); got != tt.want {
			t.Errorf("DaysLate(%v) = %d, want %d", tt.now, got, tt.want)
		}
	}
}

func TestFormatTemplate(t *testing.T) {
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	d := TemplateData{
		Company:       "ACME SARL",
		Amount:        1500.5,
		InvoiceNumber: "F-2026-042",
		DueDate:       due,
		Now:           due.Add(72 * time.Hour),
	}

	tmpl := "Bonjour {company}, la facture {invoice_number} de {amount} échue le {due_date} est en retard de {days_late} jours."
	got := FormatTemplate(tmpl, d)
	want := "Bonjour ACME SARL, la facture F-2026-042 de 1 500,50 € échue le 10/03/2026 est en retard de 3 jours."
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestFormatTemplateDaysLeftBeforeDueDate(t *testing.T) {
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	d := TemplateData{
		Company:       "ACME SARL",
		InvoiceNumber: "F-1",
		DueDate:       due,
		Now:           due.Add(-5 * 24 * time.Hour),
	}
	got := FormatTemplate("échéance dans {days_left} jours", d)
	if got != "échéance dans 5 jours" {
		t.Errorf("got %q", got)
	}
}

func TestFormatTemplateLeavesUnknownPlaceholders(t *testing.T) {
	d := TemplateData{InvoiceNumber: "F-1", Now: time.Now(), DueDate: time.Now()}
	got := FormatTemplate("{invoice_number} {unknown}", d)
	if got != "F-1 {unknown}" {
		t.Errorf("got %q", got)
	}
}

func TestDefaultSubject(t *testing.T) {
	if got := DefaultSubject("F-2026-042"); got != "Relance facture F-2026-042" {
		t.Errorf("got %q", got)
	}
}
