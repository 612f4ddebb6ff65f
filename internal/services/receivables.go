package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/facturio/relance/internal/models"
)

// ReceivableService covers the manual lifecycle actions on a receivable:
// marking it paid, resetting its escalation, reading its reminder history.
type ReceivableService struct {
	db *gorm.DB
}

func NewReceivableService(db *gorm.DB) *ReceivableService {
	return &ReceivableService{db: db}
}

// MarkPaid freezes escalation permanently for the receivable.
func (s *ReceivableService) MarkPaid(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).
		Model(&models.Receivable{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": models.StatusPaid, "automatic_reminder": false})
	if res.Error != nil {
		return fmt.Errorf("passage en payé: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Reset is the explicit "modifier" action: it clears the reminder history
// and puts the receivable back to pending so escalation restarts from the
// beginning. Automatic reminders are re-armed, including after a finale.
func (s *ReceivableService) Reset(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.Receivable
		if err := tx.First(&rec, id).Error; err != nil {
			return err
		}
		if err := tx.Where("receivable_id = ?", id).Delete(&models.ReminderLog{}).Error; err != nil {
			return fmt.Errorf("suppression de l'historique: %w", err)
		}
		return tx.Model(&rec).
			Updates(map[string]any{"status": models.StatusPending, "automatic_reminder": true}).Error
	})
}

// ReminderHistory is one receivable's sent stages, plus the per-stage flags
// the UI uses to display "déjà envoyée".
type ReminderHistory struct {
	ReceivableID uint                          `json:"receivable_id"`
	Status       models.Status                 `json:"status"`
	Logs         []models.ReminderLog          `json:"logs"`
	AlreadySent  map[models.ReminderType]bool  `json:"already_sent"`
}

// History returns the append-only reminder log of a receivable.
func (s *ReceivableService) History(ctx context.Context, id uint) (*ReminderHistory, error) {
	var rec models.Receivable
	if err := s.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, err
	}
	var logs []models.ReminderLog
	if err := s.db.WithContext(ctx).
		Where("receivable_id = ?", id).
		Order("sent_at ASC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("lecture de l'historique: %w", err)
	}
	h := &ReminderHistory{
		ReceivableID: id,
		Status:       rec.Status,
		Logs:         logs,
		AlreadySent:  make(map[models.ReminderType]bool, len(logs)),
	}
	for _, l := range logs {
		h.AlreadySent[l.Type] = true
	}
	return h, nil
}
