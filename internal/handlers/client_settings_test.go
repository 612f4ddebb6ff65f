package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/facturio/relance/internal/auth"
	"github.com/facturio/relance/internal/models"
	"github.com/facturio/relance/internal/services"
)

func newSettingsMux(dbi *gorm.DB) *http.ServeMux {
	h := NewClientReminderHandler(dbi, services.NewProfileService(dbi))
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/clients/{id}/reminders", h.Update)
	return mux
}

func seedSettingsClient(t *testing.T, dbi *gorm.DB) (models.User, models.Client) {
	t.Helper()
	user := models.User{Email: "owner@test", Plan: models.PlanFree}
	if err := dbi.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	client := models.Client{UserID: user.ID, Nom: "ACME SARL", Email: "compta@acme.fr"}
	if err := dbi.Create(&client).Error; err != nil {
		t.Fatalf("client: %v", err)
	}
	return user, client
}

func putSettings(t *testing.T, mux *http.ServeMux, userID uint, clientID uint, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/clients/%d/reminders", clientID), strings.NewReader(body))
	req = req.WithContext(auth.WithUserID(req.Context(), userID))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestClientSettingsUpdateChainsDates(t *testing.T) {
	dbi := setupHandlerTestDB(t)
	user, client := seedSettingsClient(t, dbi)
	mux := newSettingsMux(dbi)

	first := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	body := fmt.Sprintf(`{
		"reminder_enable_1": true,
		"reminder_date_1": %q,
		"reminder_template_1": "Relance {invoice_number}",
		"reminder_enable_2": true,
		"reminder_delay_2": {"j": 7, "h": 0, "m": 0},
		"reminder_template_2": "Relance 2",
		"reminder_enable_3": true,
		"reminder_delay_3": {"j": 7, "h": 0, "m": 0},
		"reminder_template_3": "Relance 3",
		"reminder_enable_final": true,
		"reminder_delay_final": {"j": 10, "h": 0, "m": 0},
		"reminder_template_final": "Finale"
	}`, first.Format(time.RFC3339))

	rr := putSettings(t, mux, user.ID, client.ID, body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var got models.Client
	if err := dbi.First(&got, client.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.ReminderDate2 == nil || !got.ReminderDate2.Equal(first.AddDate(0, 0, 7)) {
		t.Errorf("date2 = %v, want first+7j", got.ReminderDate2)
	}
	if got.ReminderDate3 == nil || !got.ReminderDate3.Equal(first.AddDate(0, 0, 14)) {
		t.Errorf("date3 = %v, want first+14j", got.ReminderDate3)
	}
	if got.ReminderDateFinal == nil || !got.ReminderDateFinal.Equal(first.AddDate(0, 0, 24)) {
		t.Errorf("dateFinale = %v, want first+24j", got.ReminderDateFinal)
	}
}

func TestClientSettingsRejectsNegativeDelay(t *testing.T) {
	dbi := setupHandlerTestDB(t)
	user, client := seedSettingsClient(t, dbi)
	mux := newSettingsMux(dbi)

	body := `{"reminder_enable_1": true, "reminder_delay_2": {"j": -1, "h": 0, "m": 0}}`
	rr := putSettings(t, mux, user.ID, client.ID, body)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "validation_failed" || resp.Details["reminder_delay_2"] != "negative_delay" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestClientSettingsRejectsMisorderedDates(t *testing.T) {
	// Préventive datée après la première relance: violation nommant les deux.
	dbi := setupHandlerTestDB(t)
	user, client := seedSettingsClient(t, dbi)
	mux := newSettingsMux(dbi)

	first := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	pre := first.AddDate(0, 0, 5)
	body := fmt.Sprintf(`{
		"pre_reminder_enable": true,
		"pre_reminder_date": %q,
		"pre_reminder_template": "Préventive",
		"reminder_enable_1": true,
		"reminder_date_1": %q,
		"reminder_template_1": "Relance"
	}`, pre.Format(time.RFC3339), first.Format(time.RFC3339))

	rr := putSettings(t, mux, user.ID, client.ID, body)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Details map[string]string `json:"details"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Details["reminder_date_1"] != "must_be_after_pre_reminder_date" {
		t.Errorf("details = %+v", resp.Details)
	}
}

func TestClientSettingsAppliesProfile(t *testing.T) {
	dbi := setupHandlerTestDB(t)
	user, client := seedSettingsClient(t, dbi)
	profiles := services.NewProfileService(dbi)
	list, err := profiles.List(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("profiles: %v", err)
	}
	standard := list[1] // Souple, Standard, Ferme
	if standard.Nom != "Standard" {
		t.Fatalf("unexpected profile order: %+v", list)
	}
	mux := newSettingsMux(dbi)

	first := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	body := fmt.Sprintf(`{
		"reminder_date_1": %q,
		"reminder_profile_id": %d
	}`, first.Format(time.RFC3339), standard.ID)

	rr := putSettings(t, mux, user.ID, client.ID, body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var got models.Client
	dbi.First(&got, client.ID)
	if !got.ReminderEnable1 || !got.ReminderEnable2 || !got.ReminderEnable3 || !got.ReminderEnableFinal {
		t.Error("profile must force-enable stages 1 à finale")
	}
	if got.ReminderTemplate2 == "" || got.ReminderTemplateFinal == "" {
		t.Error("profile templates not copied")
	}
	// Cadence Standard: 7/7/10 après la première relance.
	if got.ReminderDate2 == nil || !got.ReminderDate2.Equal(first.AddDate(0, 0, 7)) {
		t.Errorf("date2 = %v", got.ReminderDate2)
	}
	if got.ReminderDateFinal == nil || !got.ReminderDateFinal.Equal(first.AddDate(0, 0, 24)) {
		t.Errorf("dateFinale = %v", got.ReminderDateFinal)
	}
}

func TestClientSettingsScopedToOwner(t *testing.T) {
	dbi := setupHandlerTestDB(t)
	_, client := seedSettingsClient(t, dbi)
	other := models.User{Email: "other@test", Plan: models.PlanFree}
	if err := dbi.Create(&other).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	mux := newSettingsMux(dbi)

	rr := putSettings(t, mux, other.ID, client.ID, `{"reminder_enable_1": true}`)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestClientSettingsRejectsUnknownFields(t *testing.T) {
	dbi := setupHandlerTestDB(t)
	user, client := seedSettingsClient(t, dbi)
	mux := newSettingsMux(dbi)

	rr := putSettings(t, mux, user.ID, client.ID, `{"reminder_date_2": "2026-09-01T00:00:00Z"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("derived date accepted: status = %d, want 400", rr.Code)
	}
}

func TestProfileListEndpoint(t *testing.T) {
	dbi := setupHandlerTestDB(t)
	user, _ := seedSettingsClient(t, dbi)
	h := NewProfileHandler(services.NewProfileService(dbi))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/reminder-profiles", h.List)

	req := httptest.NewRequest(http.MethodGet, "/api/reminder-profiles", nil)
	req = req.WithContext(auth.WithUserID(req.Context(), user.ID))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var list []models.ReminderProfile
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected the 3 default profiles, got %d", len(list))
	}
	names := []string{list[0].Nom, list[1].Nom, list[2].Nom}
	if names[0] != "Souple" || names[1] != "Standard" || names[2] != "Ferme" {
		t.Errorf("names = %v", names)
	}
}
