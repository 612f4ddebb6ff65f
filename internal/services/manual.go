package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/facturio/relance/internal/engine"
	"github.com/facturio/relance/internal/models"
)

// SendManualReminder fires the next enabled stage for a receivable on
// explicit user demand. Unlike the scheduled path it may fire before the
// stage's scheduled date, and it works on paused receivables; the terminal,
// template, idempotency and quota guards still apply. An explicit subject
// or body overrides the configured template.
func (r *Runner) SendManualReminder(ctx context.Context, receivableID uint, subject, body string) (models.ReminderType, error) {
	var rec models.Receivable
	if err := r.db.WithContext(ctx).Preload("Client").First(&rec, receivableID).Error; err != nil {
		return "", fmt.Errorf("chargement de la créance %d: %w", receivableID, err)
	}

	d := engine.ManualDecision(&rec, &rec.Client, time.Now())
	if d.Action != engine.ActionSend {
		switch d.Reason {
		case engine.ReasonTerminal:
			return "", ErrTerminalStage
		default:
			return "", ErrNothingToSend
		}
	}
	if d.Reason == engine.ReasonNoTemplate && strings.TrimSpace(body) == "" {
		return "", ErrNoTemplate
	}

	if err := r.sendStage(ctx, &rec, d, time.Now(), subject, body); err != nil {
		return "", err
	}
	return d.Type, nil
}
