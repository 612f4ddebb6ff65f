package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/facturio/relance/httpx"
	"github.com/facturio/relance/internal/services"
)

// ReminderHandler exposes the escalation runner: the scheduler trigger, the
// manual send path and the receivable lifecycle actions.
type ReminderHandler struct {
	runner      *services.Runner
	receivables *services.ReceivableService
	cronSecret  string
	log         *logrus.Logger
}

func NewReminderHandler(runner *services.Runner, receivables *services.ReceivableService, cronSecret string, log *logrus.Logger) *ReminderHandler {
	return &ReminderHandler{runner: runner, receivables: receivables, cronSecret: cronSecret, log: log}
}

// Run is the scheduler trigger: an external cron POSTs here with the shared
// secret. Authentication by session does not apply to this machine path.
func (h *ReminderHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.cronSecret == "" || r.Header.Get("X-Cron-Secret") != h.cronSecret {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_cron_secret", nil)
		return
	}
	report, err := h.runner.RunTick(r.Context())
	if err != nil {
		h.log.WithError(err).Error("tick de relance en échec")
		httpx.JSONError(w, http.StatusInternalServerError, "tick_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

type manualSendRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ManualSend fires the next reminder stage for one receivable on user
// demand, optionally overriding subject and body.
func (h *ReminderHandler) ManualSend(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req manualSendRequest
	if r.ContentLength > 0 {
		if err := httpx.Decode(r, &req); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_payload", err.Error())
			return
		}
	}

	stage, err := h.runner.SendManualReminder(r.Context(), id, req.Subject, req.Body)
	if err != nil {
		h.respondSendError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sent": true, "stage": stage})
}

func (h *ReminderHandler) respondSendError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		httpx.JSONError(w, http.StatusNotFound, "receivable_not_found", nil)
	case errors.Is(err, services.ErrQuotaExceeded):
		// 402 lets the UI show its upgrade prompt.
		httpx.JSONError(w, http.StatusPaymentRequired, "quota_exceeded", nil)
	case errors.Is(err, services.ErrStageAlreadySent):
		httpx.JSONError(w, http.StatusConflict, "deja_envoyee", nil)
	case errors.Is(err, services.ErrTerminalStage),
		errors.Is(err, services.ErrNothingToSend):
		httpx.JSONError(w, http.StatusConflict, "nothing_to_send", nil)
	case errors.Is(err, services.ErrNoTemplate),
		errors.Is(err, services.ErrNoEmailSettings),
		errors.Is(err, services.ErrNoRecipient):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "configuration_incomplete", err.Error())
	default:
		h.log.WithError(err).Error("échec de l'envoi manuel")
		httpx.JSONError(w, http.StatusInternalServerError, "send_failed", nil)
	}
}

// History returns the reminder log of a receivable with per-stage
// "déjà envoyée" flags.
func (h *ReminderHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	history, err := h.receivables.History(r.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "receivable_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "history_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, history)
}

// Reset clears the reminder history and restarts escalation from pending.
func (h *ReminderHandler) Reset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.receivables.Reset(r.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "receivable_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "reset_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "pending"})
}

// MarkPaid freezes escalation for good.
func (h *ReminderHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.receivables.MarkPaid(r.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "receivable_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "paid"})
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := r.PathValue("id")
	id64, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id64 == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return 0, false
	}
	return uint(id64), true
}
