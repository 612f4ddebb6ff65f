// Package engine implements the escalation decision logic: given a
// receivable, its client's reminder configuration and the current time, it
// decides whether the receivable advances a stage, fires a reminder, or
// stays put. All functions here are pure; side effects belong to the runner.
package engine

import (
	"strings"
	"time"

	"github.com/facturio/relance/internal/models"
)

// Action is what the runner should do with a receivable.
type Action int

const (
	// ActionNone leaves the receivable untouched.
	ActionNone Action = iota
	// ActionAdvanceOnly bumps the status past a disabled stage, no send.
	ActionAdvanceOnly
	// ActionSend fires the stage's reminder email then advances the status.
	ActionSend
)

// Reason documents why a decision did not produce a send. It surfaces in
// logs and in the per-receivable "configuration incomplete" flags.
type Reason string

const (
	ReasonPaused       Reason = "automatic_reminder_disabled"
	ReasonTerminal     Reason = "terminal_status"
	ReasonLastStage    Reason = "highest_enabled_stage_reached"
	ReasonNotScheduled Reason = "stage_date_not_set"
	ReasonNotDue       Reason = "stage_date_not_reached"
	ReasonNoTemplate   Reason = "template_missing"
	ReasonNoTransition Reason = "no_transition"
)

// Decision is the outcome of evaluating one receivable.
type Decision struct {
	Action     Action
	Type       models.ReminderType // stage fired when Action is ActionSend
	NextStatus models.Status
	Template   string
	Reason     Reason
}

// transition is one row of the escalation table. The guard closures read
// the stage's enable flag, scheduled date and template off the client.
type transition struct {
	from     models.Status
	to       models.Status
	typ      models.ReminderType
	enabled  func(*models.Client) bool
	date     func(*models.Client) *time.Time
	template func(*models.Client) string
}

var transitions = []transition{
	{
		from:     models.StatusPending,
		to:       models.StatusPreReminder,
		typ:      models.ReminderPre,
		enabled:  func(c *models.Client) bool { return c.PreReminderEnable },
		date:     func(c *models.Client) *time.Time { return c.PreReminderDate },
		template: func(c *models.Client) string { return c.PreReminderTemplate },
	},
	{
		from:     models.StatusPreReminder,
		to:       models.StatusReminder1,
		typ:      models.ReminderFirst,
		enabled:  func(c *models.Client) bool { return c.ReminderEnable1 },
		date:     func(c *models.Client) *time.Time { return c.ReminderDate1 },
		template: func(c *models.Client) string { return c.ReminderTemplate1 },
	},
	{
		from:     models.StatusReminder1,
		to:       models.StatusReminder2,
		typ:      models.ReminderSecond,
		enabled:  func(c *models.Client) bool { return c.ReminderEnable2 },
		date:     func(c *models.Client) *time.Time { return c.ReminderDate2 },
		template: func(c *models.Client) string { return c.ReminderTemplate2 },
	},
	{
		from:     models.StatusReminder2,
		to:       models.StatusReminder3,
		typ:      models.ReminderThird,
		enabled:  func(c *models.Client) bool { return c.ReminderEnable3 },
		date:     func(c *models.Client) *time.Time { return c.ReminderDate3 },
		template: func(c *models.Client) string { return c.ReminderTemplate3 },
	},
	{
		from:     models.StatusReminder3,
		to:       models.StatusFinal,
		typ:      models.ReminderFinal,
		enabled:  func(c *models.Client) bool { return c.ReminderEnableFinal },
		date:     func(c *models.Client) *time.Time { return c.ReminderDateFinal },
		template: func(c *models.Client) string { return c.ReminderTemplateFinal },
	},
}

func transitionFrom(s models.Status) (transition, bool) {
	for _, t := range transitions {
		if t.from == s {
			return t, true
		}
	}
	return transition{}, false
}

func none(r Reason) Decision {
	return Decision{Action: ActionNone, Reason: r}
}

// stageEnabled evaluates a transition's guard. The préventive stage is
// additionally gated on the due date: it only fires before the invoice is
// due, never inferred from the sign of the late-day count.
func stageEnabled(t transition, r *models.Receivable, c *models.Client, now time.Time) bool {
	if t.typ == models.ReminderPre {
		return c.PreReminderEnable && now.Before(r.DueDate)
	}
	return t.enabled(c)
}

// Decide evaluates the escalation table for one receivable at the given
// instant. Guards run in order: manual pause, terminal status, truncated
// ladder suppression, then the stage's own enable/date/template checks.
func Decide(r *models.Receivable, c *models.Client, now time.Time) Decision {
	if !r.AutomaticReminder {
		return none(ReasonPaused)
	}
	if r.Status.Terminal() {
		return none(ReasonTerminal)
	}
	if IsLastEnabled(r.Status, c) {
		return none(ReasonLastStage)
	}
	t, ok := transitionFrom(r.Status)
	if !ok {
		// "late" and other annotations have no automatic transition.
		return none(ReasonNoTransition)
	}
	if !stageEnabled(t, r, c, now) {
		return Decision{Action: ActionAdvanceOnly, Type: t.typ, NextStatus: t.to}
	}
	date := t.date(c)
	if date == nil {
		return none(ReasonNotScheduled)
	}
	if now.Before(*date) {
		return none(ReasonNotDue)
	}
	tmpl := t.template(c)
	if strings.TrimSpace(tmpl) == "" {
		return none(ReasonNoTemplate)
	}
	return Decision{Action: ActionSend, Type: t.typ, NextStatus: t.to, Template: tmpl}
}

// ManualDecision picks the stage a user-triggered send would fire: the next
// enabled stage after the current status, regardless of its scheduled date.
// Disabled stages are skipped, so the resulting NextStatus may jump several
// positions forward. A missing template is reported through Reason so the
// caller can accept an explicit body override instead.
func ManualDecision(r *models.Receivable, c *models.Client, now time.Time) Decision {
	if r.Status.Terminal() {
		return none(ReasonTerminal)
	}
	cur := r.Status
	skipped := false
	for {
		t, ok := transitionFrom(cur)
		if !ok {
			if skipped {
				return none(ReasonLastStage)
			}
			return none(ReasonNoTransition)
		}
		if !stageEnabled(t, r, c, now) {
			cur = t.to
			skipped = true
			continue
		}
		d := Decision{Action: ActionSend, Type: t.typ, NextStatus: t.to, Template: t.template(c)}
		if strings.TrimSpace(d.Template) == "" {
			d.Reason = ReasonNoTemplate
		}
		return d
	}
}

// HighestEnabledStatus returns the furthest status the client's enabled
// stages can reach. With every stage disabled the ladder stops at pending.
func HighestEnabledStatus(c *models.Client) models.Status {
	highest := models.StatusPending
	for _, t := range transitions {
		if t.enabled(c) && t.to > highest {
			highest = t.to
		}
	}
	return highest
}

// IsLastEnabled reports whether the status already sits at or beyond the
// highest stage the client has enabled. Advancement is then suppressed even
// when a later stage's date has passed, so an intentionally truncated
// escalation ladder is never skipped past.
func IsLastEnabled(s models.Status, c *models.Client) bool {
	if !s.Stage() {
		return false
	}
	return s >= HighestEnabledStatus(c)
}

// NextEnabledStatus resolves the effective next stage from a stored status:
// disabled stages are skipped. The boolean is false when no enabled stage
// remains. Re-derivable from {status, enable flags} alone.
func NextEnabledStatus(s models.Status, c *models.Client) (models.Status, bool) {
	cur := s
	for {
		t, ok := transitionFrom(cur)
		if !ok {
			return cur, false
		}
		if t.enabled(c) {
			return t.to, true
		}
		cur = t.to
	}
}
