package services

import (
	"context"

	"github.com/facturio/relance/internal/models"
)

// saveNotification writes an audit row for the notification center.
// Fire-and-forget: a write failure is logged, never propagated.
func (r *Runner) saveNotification(ctx context.Context, userID uint, typ, title, message, details string, needMail bool) {
	n := models.Notification{
		UserID:               userID,
		Type:                 typ,
		Title:                title,
		Message:              message,
		Details:              details,
		NeedMailNotification: needMail,
	}
	if err := r.db.WithContext(ctx).Create(&n).Error; err != nil {
		r.log.WithError(err).WithField("user_id", userID).
			Warn("échec d'enregistrement de la notification")
	}
}

// notifyConfigIncomplete alerts the owner that a receivable is blocked by
// its configuration. Deduplicated on the unread rows so a receivable stuck
// across many ticks produces a single alert until the owner reads it.
func (r *Runner) notifyConfigIncomplete(ctx context.Context, rec *models.Receivable, detail string) {
	message := "Configuration incomplète pour la facture " + rec.InvoiceNumber + ": " + detail
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND type = ? AND message = ? AND read = ?", rec.UserID, "configuration", message, false).
		Count(&count).Error
	if err != nil || count > 0 {
		return
	}
	r.saveNotification(ctx, rec.UserID, "configuration", "Configuration incomplète", message, detail, true)
}
