package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/facturio/relance/internal/models"
	"github.com/facturio/relance/internal/schedule"
)

// ProfileService manages the shared reminder profiles. Every owner gets the
// three predefined profiles below; they are created lazily on first access.
type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

const (
	templateStandard1 = "Bonjour {company},<br><br>Sauf erreur de notre part, la facture {invoice_number} d'un montant de {amount}, échue le {due_date}, reste impayée à ce jour ({days_late} jours de retard).<br>Nous vous remercions de bien vouloir procéder à son règlement."
	templateStandard2 = "Bonjour {company},<br><br>Malgré notre précédente relance, la facture {invoice_number} ({amount}) échue le {due_date} demeure impayée. Merci de régulariser la situation sous huitaine."
	templateStandard3 = "Bonjour {company},<br><br>La facture {invoice_number} ({amount}) présente désormais {days_late} jours de retard. Sans règlement rapide, nous serons contraints d'envisager d'autres démarches."
	templateFinale    = "Bonjour {company},<br><br>Dernière relance avant mise en demeure: la facture {invoice_number} ({amount}), échue le {due_date}, reste impayée après plusieurs rappels. Sans règlement sous 48 heures, le dossier sera transmis à notre service contentieux."
)

// defaultProfiles are the three predefined escalation cadences.
func defaultProfiles(userID uint) []models.ReminderProfile {
	souple := models.ReminderProfile{
		UserID: userID, Nom: "Souple",
		Delay1: schedule.Delay{Days: 10}, Delay2: schedule.Delay{Days: 10},
		Delay3: schedule.Delay{Days: 10}, DelayFinal: schedule.Delay{Days: 15},
	}
	standard := models.ReminderProfile{
		UserID: userID, Nom: "Standard",
		Delay1: schedule.Delay{Days: 7}, Delay2: schedule.Delay{Days: 7},
		Delay3: schedule.Delay{Days: 7}, DelayFinal: schedule.Delay{Days: 10},
	}
	ferme := models.ReminderProfile{
		UserID: userID, Nom: "Ferme",
		Delay1: schedule.Delay{Days: 3}, Delay2: schedule.Delay{Days: 5},
		Delay3: schedule.Delay{Days: 5}, DelayFinal: schedule.Delay{Days: 7},
	}
	profiles := []models.ReminderProfile{souple, standard, ferme}
	for i := range profiles {
		profiles[i].Template1 = templateStandard1
		profiles[i].Template2 = templateStandard2
		profiles[i].Template3 = templateStandard3
		profiles[i].TemplateFinal = templateFinale
	}
	return profiles
}

// EnsureDefaults creates the predefined profiles for an owner when absent.
func (s *ProfileService) EnsureDefaults(ctx context.Context, userID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.ReminderProfile{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("comptage des profils: %w", err)
	}
	if count > 0 {
		return nil
	}
	profiles := defaultProfiles(userID)
	if err := s.db.WithContext(ctx).Create(&profiles).Error; err != nil {
		return fmt.Errorf("création des profils par défaut: %w", err)
	}
	return nil
}

// List returns the owner's profiles, creating the defaults on first call.
func (s *ProfileService) List(ctx context.Context, userID uint) ([]models.ReminderProfile, error) {
	if err := s.EnsureDefaults(ctx, userID); err != nil {
		return nil, err
	}
	var profiles []models.ReminderProfile
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("lecture des profils: %w", err)
	}
	return profiles, nil
}

// Get loads one profile scoped to its owner.
func (s *ProfileService) Get(ctx context.Context, userID, profileID uint) (*models.ReminderProfile, error) {
	var p models.ReminderProfile
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", profileID, userID).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
