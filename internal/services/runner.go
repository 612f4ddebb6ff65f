package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/facturio/relance/internal/engine"
	"github.com/facturio/relance/internal/mailer"
	"github.com/facturio/relance/internal/metrics"
	"github.com/facturio/relance/internal/models"
)

// Runner drives the escalation engine over the outstanding receivables on
// each scheduler tick, performs the sends, and records the outcomes.
type Runner struct {
	db     *gorm.DB
	mailer mailer.Sender
	log    *logrus.Logger
}

func NewRunner(db *gorm.DB, sender mailer.Sender, log *logrus.Logger) *Runner {
	return &Runner{db: db, mailer: sender, log: log}
}

// TickReport summarises one runner pass. Errors are collected per
// receivable; one failing send never aborts the batch.
type TickReport struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Processed int       `json:"processed"`
	Sent      int       `json:"sent"`
	Advanced  int       `json:"advanced"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	Errors    []string  `json:"errors,omitempty"`
}

var terminalStatuses = []models.Status{models.StatusFinal, models.StatusPaid, models.StatusLegal}

// RunTick evaluates every outstanding receivable once. Receivables are
// independent: each one's state is read, decided and mutated on its own, so
// an error is recorded and the loop moves on.
func (r *Runner) RunTick(ctx context.Context) (*TickReport, error) {
	start := time.Now()
	report := &TickReport{RunID: uuid.NewString(), StartedAt: start}
	defer func() {
		metrics.TickDuration.Observe(time.Since(start).Seconds())
	}()

	var receivables []models.Receivable
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("automatic_reminder = ?", true).
		Where("status NOT IN ?", terminalStatuses).
		Find(&receivables).Error
	if err != nil {
		return report, fmt.Errorf("chargement des créances en cours: %w", err)
	}
	metrics.TickReceivables.Observe(float64(len(receivables)))

	// Owners whose quota ran out during this tick: skip their remaining
	// sends instead of hammering the quota check with doomed attempts.
	exhausted := make(map[uint]bool)

	for i := range receivables {
		rec := &receivables[i]
		report.Processed++
		if exhausted[rec.UserID] {
			report.Skipped++
			continue
		}
		if err := r.processOne(ctx, rec, start, report); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("créance %d: %v", rec.ID, err))
			if errors.Is(err, ErrQuotaExceeded) {
				exhausted[rec.UserID] = true
			}
			r.log.WithError(err).WithFields(logrus.Fields{
				"run_id":        report.RunID,
				"receivable_id": rec.ID,
			}).Error("échec de traitement de la créance")
		}
	}

	r.log.WithFields(logrus.Fields{
		"run_id":    report.RunID,
		"processed": report.Processed,
		"sent":      report.Sent,
		"advanced":  report.Advanced,
		"skipped":   report.Skipped,
		"failed":    report.Failed,
	}).Info("tick de relance terminé")
	return report, nil
}

// processOne walks one receivable as far as a single pass allows: disabled
// stages are bumped through immediately, so the next enabled stage fires in
// the same tick instead of one tick per skip. Each bump moves the status
// strictly forward through the finite stage table, which bounds the loop.
func (r *Runner) processOne(ctx context.Context, rec *models.Receivable, now time.Time, report *TickReport) error {
	advanced := false
	for {
		d := engine.Decide(rec, &rec.Client, now)
		switch d.Action {
		case engine.ActionAdvanceOnly:
			if err := r.advanceStatus(ctx, rec, d.NextStatus, false); err != nil {
				return err
			}
			metrics.StatusAdvanced.Inc()
			report.Advanced++
			advanced = true
		case engine.ActionSend:
			if err := r.sendStage(ctx, rec, d, now, "", ""); err != nil {
				return err
			}
			report.Sent++
			return nil
		default:
			if d.Reason == engine.ReasonNoTemplate {
				r.notifyConfigIncomplete(ctx, rec, "modèle de relance manquant")
			}
			if !advanced {
				report.Skipped++
			}
			return nil
		}
	}
}

// advanceStatus persists a status bump with an optimistic check-and-set:
// the update only applies when the stored status still matches what the
// decision was taken on, so a concurrent manual send cannot be overwritten.
func (r *Runner) advanceStatus(ctx context.Context, rec *models.Receivable, next models.Status, clearAutomatic bool) error {
	updates := map[string]any{"status": next}
	if clearAutomatic {
		updates["automatic_reminder"] = false
	}
	res := r.db.WithContext(ctx).
		Model(&models.Receivable{}).
		Where("id = ? AND status = ?", rec.ID, rec.Status).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("avancement du statut: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("statut de la créance %d modifié concurremment", rec.ID)
	}
	rec.Status = next
	if clearAutomatic {
		rec.AutomaticReminder = false
	}
	return nil
}

// sendStage performs one reminder send end to end: idempotency check, quota
// check, settings and recipient resolution, SMTP send, then the log row and
// status transition in a single transaction. Any error before the
// transaction leaves the receivable untouched so the next tick retries.
func (r *Runner) sendStage(ctx context.Context, rec *models.Receivable, d engine.Decision, now time.Time, subjectOverride, bodyOverride string) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ReminderLog{}).
		Where("receivable_id = ? AND type = ?", rec.ID, d.Type).
		Count(&count).Error; err != nil {
		return fmt.Errorf("vérification d'idempotence: %w", err)
	}
	if count > 0 {
		return ErrStageAlreadySent
	}

	var owner models.User
	if err := r.db.WithContext(ctx).First(&owner, rec.UserID).Error; err != nil {
		return fmt.Errorf("chargement du propriétaire %d: %w", rec.UserID, err)
	}
	if err := checkQuota(&owner); err != nil {
		metrics.QuotaRejections.Inc()
		r.saveNotification(ctx, owner.ID, "quota",
			"Quota d'envoi atteint",
			fmt.Sprintf("La relance de la facture %s n'a pas été envoyée: quota du plan gratuit atteint.", rec.InvoiceNumber),
			fmt.Sprintf("plan %s, %d envois effectués", owner.Plan, owner.EmailCounter),
			true)
		return err
	}

	var settings models.EmailSettings
	if err := r.db.WithContext(ctx).Where("user_id = ?", rec.UserID).First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.notifyConfigIncomplete(ctx, rec, "paramètres SMTP manquants")
			return ErrNoEmailSettings
		}
		return fmt.Errorf("chargement des paramètres email: %w", err)
	}

	to := rec.Recipient()
	if to == "" {
		r.notifyConfigIncomplete(ctx, rec, "aucune adresse de destination")
		return ErrNoRecipient
	}

	html := strings.TrimSpace(bodyOverride)
	if html == "" {
		html = engine.FormatTemplate(d.Template, engine.DataFor(rec, &rec.Client, now))
	}
	if settings.Signature != "" {
		html += "<br><br>" + settings.Signature
	}
	subject := strings.TrimSpace(subjectOverride)
	if subject == "" {
		subject = engine.DefaultSubject(rec.InvoiceNumber)
	}

	if err := r.mailer.Send(ctx, settings, to, subject, html, rec.AttachmentURL); err != nil {
		metrics.RemindersFailed.WithLabelValues(string(d.Type)).Inc()
		return fmt.Errorf("envoi de la relance %s: %w", d.Type, err)
	}

	// L'email est parti: l'insertion du log est le point de sérialisation.
	// Son index unique (receivable_id, type) fait échouer le doublon d'une
	// exécution concurrente; dans ce cas le statut n'est pas retouché.
	clearAutomatic := d.NextStatus == models.StatusFinal
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		logRow := models.ReminderLog{
			ReceivableID: rec.ID,
			Type:         d.Type,
			SentAt:       now,
			EmailSent:    true,
			Recipient:    to,
			Subject:      subject,
			EmailContent: html,
		}
		if err := tx.Create(&logRow).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrStageAlreadySent
			}
			return fmt.Errorf("insertion du log de relance: %w", err)
		}
		updates := map[string]any{"status": d.NextStatus}
		if clearAutomatic {
			updates["automatic_reminder"] = false
		}
		if err := tx.Model(&models.Receivable{}).Where("id = ?", rec.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("transition de statut: %w", err)
		}
		if err := tx.Model(&models.User{}).Where("id = ?", owner.ID).
			UpdateColumn("email_counter", gorm.Expr("email_counter + 1")).Error; err != nil {
			return fmt.Errorf("incrément du compteur d'envoi: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	rec.Status = d.NextStatus
	if clearAutomatic {
		rec.AutomaticReminder = false
	}
	metrics.RemindersSent.WithLabelValues(string(d.Type)).Inc()
	r.log.WithFields(logrus.Fields{
		"receivable_id": rec.ID,
		"stage":         d.Type,
		"recipient":     to,
	}).Info("relance envoyée")

	r.saveNotification(ctx, owner.ID, "relance",
		"Relance effectuée",
		fmt.Sprintf("Relance %s envoyée pour la facture %s à %s.", d.Type, rec.InvoiceNumber, to),
		fmt.Sprintf("créance %d, étape %s", rec.ID, d.Type),
		false)
	if settings.NotifyOnReminder {
		r.notifyOwner(ctx, settings, &owner, rec, d)
	}
	return nil
}

// notifyOwner sends the secondary "relance effectuée" email to the account
// owner. Best effort: a failure here never rolls back the reminder itself
// and does not count toward the quota.
func (r *Runner) notifyOwner(ctx context.Context, settings models.EmailSettings, owner *models.User, rec *models.Receivable, d engine.Decision) {
	if owner.Email == "" {
		return
	}
	subject := fmt.Sprintf("Relance effectuée: facture %s", rec.InvoiceNumber)
	body := fmt.Sprintf("La relance %s de la facture %s (client %s) a été envoyée automatiquement.",
		d.Type, rec.InvoiceNumber, rec.Client.Nom)
	if err := r.mailer.Send(ctx, settings, owner.Email, subject, body, ""); err != nil {
		r.log.WithError(err).WithField("receivable_id", rec.ID).
			Warn("échec de la notification au propriétaire")
	}
}
