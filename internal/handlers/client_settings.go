package handlers

import (
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/facturio/relance/httpx"
	"github.com/facturio/relance/internal/auth"
	"github.com/facturio/relance/internal/models"
	"github.com/facturio/relance/internal/schedule"
	"github.com/facturio/relance/internal/services"
	"github.com/facturio/relance/validation"
)

// ClientReminderHandler updates the per-client reminder configuration.
type ClientReminderHandler struct {
	db       *gorm.DB
	profiles *services.ProfileService
}

func NewClientReminderHandler(db *gorm.DB, profiles *services.ProfileService) *ClientReminderHandler {
	return &ClientReminderHandler{db: db, profiles: profiles}
}

type reminderSettingsRequest struct {
	PreReminderEnable   bool           `json:"pre_reminder_enable"`
	PreReminderDate     *time.Time     `json:"pre_reminder_date"`
	PreReminderTemplate string         `json:"pre_reminder_template"`
	PreReminderDelay    schedule.Delay `json:"pre_reminder_delay"`

	ReminderEnable1   bool           `json:"reminder_enable_1"`
	ReminderDate1     *time.Time     `json:"reminder_date_1"`
	ReminderDelay1    schedule.Delay `json:"reminder_delay_1"`
	ReminderTemplate1 string         `json:"reminder_template_1"`

	ReminderEnable2   bool           `json:"reminder_enable_2"`
	ReminderDelay2    schedule.Delay `json:"reminder_delay_2"`
	ReminderTemplate2 string         `json:"reminder_template_2"`

	ReminderEnable3   bool           `json:"reminder_enable_3"`
	ReminderDelay3    schedule.Delay `json:"reminder_delay_3"`
	ReminderTemplate3 string         `json:"reminder_template_3"`

	ReminderEnableFinal   bool           `json:"reminder_enable_final"`
	ReminderDelayFinal    schedule.Delay `json:"reminder_delay_final"`
	ReminderTemplateFinal string         `json:"reminder_template_final"`

	ReminderProfileID *uint `json:"reminder_profile_id"`
}

// Update rewrites a client's reminder configuration. The dates of stages 2,
// 3 and finale are never accepted from the payload: they are recomputed
// from the first reminder date through the delay chain, so the preview the
// UI shows and what the runner executes always agree.
func (h *ClientReminderHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req reminderSettingsRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_payload", err.Error())
		return
	}

	var client models.Client
	if err := h.db.WithContext(r.Context()).
		Where("id = ? AND user_id = ?", id, userID).
		First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "client_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "load_failed", nil)
		return
	}

	v := make(validation.Violations)
	for field, d := range map[string]schedule.Delay{
		"pre_reminder_delay":   req.PreReminderDelay,
		"reminder_delay_1":     req.ReminderDelay1,
		"reminder_delay_2":     req.ReminderDelay2,
		"reminder_delay_3":     req.ReminderDelay3,
		"reminder_delay_final": req.ReminderDelayFinal,
	} {
		if d.TotalMinutes() < 0 {
			v[field] = "negative_delay"
		}
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	client.PreReminderEnable = req.PreReminderEnable
	client.PreReminderDate = req.PreReminderDate
	client.PreReminderTemplate = req.PreReminderTemplate
	client.PreReminderDelay = req.PreReminderDelay
	client.ReminderEnable1 = req.ReminderEnable1
	client.ReminderDate1 = req.ReminderDate1
	client.ReminderDelay1 = req.ReminderDelay1
	client.ReminderTemplate1 = req.ReminderTemplate1
	client.ReminderEnable2 = req.ReminderEnable2
	client.ReminderDelay2 = req.ReminderDelay2
	client.ReminderTemplate2 = req.ReminderTemplate2
	client.ReminderEnable3 = req.ReminderEnable3
	client.ReminderDelay3 = req.ReminderDelay3
	client.ReminderTemplate3 = req.ReminderTemplate3
	client.ReminderEnableFinal = req.ReminderEnableFinal
	client.ReminderDelayFinal = req.ReminderDelayFinal
	client.ReminderTemplateFinal = req.ReminderTemplateFinal

	if req.ReminderProfileID != nil {
		profile, err := h.profiles.Get(r.Context(), userID, *req.ReminderProfileID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				httpx.JSONError(w, http.StatusNotFound, "profile_not_found", nil)
				return
			}
			httpx.JSONError(w, http.StatusInternalServerError, "load_failed", nil)
			return
		}
		client.ApplyProfile(profile)
	} else {
		client.ReminderProfileID = nil
		client.RechainDates()
	}

	// Chronological ordering across stages. The chain keeps 1..finale
	// ordered as long as delays are non-negative, so the check mainly
	// catches a préventive date set after the first reminder.
	validation.ChronologicalDates(
		[]string{"pre_reminder_date", "reminder_date_1", "reminder_date_2", "reminder_date_3", "reminder_date_final"},
		[]*time.Time{client.PreReminderDate, client.ReminderDate1, client.ReminderDate2, client.ReminderDate3, client.ReminderDateFinal},
		v,
	)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	if err := h.db.WithContext(r.Context()).Save(&client).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "save_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}
