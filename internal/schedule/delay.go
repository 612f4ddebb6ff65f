package schedule

import "time"

// Delay is a relative gap between two reminder stages, expressed as the
// jours/heures/minutes triple the product exposes in its settings screens.
// Column names keep the historical j/h/m convention.
type Delay struct {
	Days    int `gorm:"column:j" json:"j"`
	Hours   int `gorm:"column:h" json:"h"`
	Minutes int `gorm:"column:m" json:"m"`
}

// MinGapMinutes is the floor some callers apply between two consecutive
// stages so that a zero-valued delay still leaves room between sends.
// The model itself treats a zero delay as exactly 0 minutes.
const MinGapMinutes = 60

// TotalMinutes converts the delay to a minute count.
func (d Delay) TotalMinutes() int {
	return d.Days*24*60 + d.Hours*60 + d.Minutes
}

// Duration converts the delay to a time.Duration.
func (d Delay) Duration() time.Duration {
	return time.Duration(d.TotalMinutes()) * time.Minute
}

// IsZero reports whether the delay carries no offset at all.
func (d Delay) IsZero() bool {
	return d.Days == 0 && d.Hours == 0 && d.Minutes == 0
}

// Apply returns the instant shifted by the delay. The input is never mutated.
func Apply(t time.Time, d Delay) time.Time {
	return t.Add(d.Duration())
}

// ChainDates derives the dates of stages 2, 3 and finale from the date of
// the first reminder. Each stage's delay is the gap from the previous stage,
// not from the due date, so the offsets accumulate.
func ChainDates(first time.Time, d2, d3, d4 Delay) (second, third, final time.Time) {
	second = Apply(first, d2)
	third = Apply(second, d3)
	final = Apply(third, d4)
	return second, third, final
}
