package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/facturio/relance/internal/models"
)

// TemplateData carries the values substituted into reminder templates.
type TemplateData struct {
	Company       string
	Amount        float64
	InvoiceNumber string
	DueDate       time.Time
	Now           time.Time
}

// DataFor builds the substitution values for a receivable.
func DataFor(r *models.Receivable, c *models.Client, now time.Time) TemplateData {
	return TemplateData{
		Company:       c.Nom,
		Amount:        r.Amount,
		InvoiceNumber: r.InvoiceNumber,
		DueDate:       r.DueDate,
		Now:           now,
	}
}

// DaysLate is the whole number of days elapsed since the due date, negative
// before the due date.
func DaysLate(now, due time.Time) int {
	return int(math.Floor(now.Sub(due).Hours() / 24))
}

// FormatTemplate substitutes the placeholders of a reminder template by
// straight string replacement. Unknown placeholders are left untouched.
func FormatTemplate(tmpl string, d TemplateData) string {
	daysLate := DaysLate(d.Now, d.DueDate)
	daysLeft := 0
	if daysLate < 0 {
		daysLeft = -daysLate
	}
	r := strings.NewReplacer(
		"{company}", d.Company,
		"{amount}", FormatEuro(d.Amount),
		"{invoice_number}", d.InvoiceNumber,
		"{due_date}", d.DueDate.Format("02/01/2006"),
		"{days_late}", strconv.Itoa(daysLate),
		"{days_left}", strconv.Itoa(daysLeft),
	)
	return r.Replace(tmpl)
}

// DefaultSubject is the subject used when the caller gives none.
func DefaultSubject(invoiceNumber string) string {
	return fmt.Sprintf("Relance facture %s", invoiceNumber)
}

// FormatEuro renders an amount the French way: comma decimal separator,
// non-breaking space as thousands separator, trailing € sign.
func FormatEuro(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	cents := int64(math.Round(v * 100))
	intPart := strconv.FormatInt(cents/100, 10)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(intPart) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(intPart[:lead])
	for i := lead; i < len(intPart); i += 3 {
		b.WriteString(" ")
		b.WriteString(intPart[i : i+3])
	}
	fmt.Fprintf(&b, ",%02d €", cents%100)
	return b.String()
}
