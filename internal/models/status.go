package models

import (
	"database/sql/driver"
	"fmt"
)

// Status is the escalation state of a receivable. It is a closed enum in
// code but is persisted under the historical French labels so existing data
// and exports stay readable.
type Status int

const (
	StatusPending Status = iota
	StatusPreReminder
	StatusReminder1
	StatusReminder2
	StatusReminder3
	StatusFinal
	StatusPaid
	StatusLate
	StatusLegal
)

var statusLabels = map[Status]string{
	StatusPending:     "pending",
	StatusPreReminder: "Relance préventive",
	StatusReminder1:   "Relance 1",
	StatusReminder2:   "Relance 2",
	StatusReminder3:   "Relance 3",
	StatusFinal:       "Relance finale",
	StatusPaid:        "paid",
	StatusLate:        "late",
	StatusLegal:       "legal",
}

var statusByLabel = func() map[string]Status {
	m := make(map[string]Status, len(statusLabels))
	for s, label := range statusLabels {
		m[label] = s
	}
	return m
}()

func (s Status) String() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return "pending"
}

// ParseStatus maps a stored label back to its Status.
func ParseStatus(label string) (Status, error) {
	if s, ok := statusByLabel[label]; ok {
		return s, nil
	}
	return StatusPending, fmt.Errorf("statut de relance inconnu: %q", label)
}

// Terminal reports whether the status freezes automatic escalation for good.
// "late" is an annotation, not a terminal marker.
func (s Status) Terminal() bool {
	return s == StatusFinal || s == StatusPaid || s == StatusLegal
}

// Stage reports whether the status is one of the ordered escalation stages
// (as opposed to paid/late/legal annotations).
func (s Status) Stage() bool {
	return s >= StatusPending && s <= StatusFinal
}

// Value implements driver.Valuer so gorm stores the French label.
func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

// Scan implements sql.Scanner.
func (s *Status) Scan(value any) error {
	switch v := value.(type) {
	case string:
		parsed, err := ParseStatus(v)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	case []byte:
		parsed, err := ParseStatus(string(v))
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	case nil:
		*s = StatusPending
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Status", value)
	}
}

// MarshalJSON keeps the API payloads on the label form.
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON accepts the label form.
func (s *Status) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("invalid status payload: %s", b)
	}
	parsed, err := ParseStatus(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ReminderType identifies which stage a reminder log row belongs to.
type ReminderType string

const (
	ReminderPre    ReminderType = "pre"
	ReminderFirst  ReminderType = "first"
	ReminderSecond ReminderType = "second"
	ReminderThird  ReminderType = "third"
	ReminderFinal  ReminderType = "final"
)
