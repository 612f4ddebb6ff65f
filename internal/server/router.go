package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/facturio/relance/httpx"
	"github.com/facturio/relance/internal/auth"
	"github.com/facturio/relance/internal/config"
	"github.com/facturio/relance/internal/handlers"
	"github.com/facturio/relance/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares.
func New(db *gorm.DB, runner *services.Runner, cfg config.Config, log *logrus.Logger) http.Handler {
	mux := http.NewServeMux()

	// --- Health & observability ---
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		// Lightweight DB check; details stay out of the body.
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	receivables := services.NewReceivableService(db)
	profiles := services.NewProfileService(db)

	rh := handlers.NewReminderHandler(runner, receivables, cfg.CronSecret, log)
	ch := handlers.NewClientReminderHandler(db, profiles)
	ph := handlers.NewProfileHandler(profiles)

	// Scheduler trigger: protected by the cron secret, not by a session.
	mux.HandleFunc("POST /api/reminders/run", rh.Run)

	authed := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireAuth(h))
	}
	mux.Handle("POST /api/receivables/{id}/remind", authed(rh.ManualSend))
	mux.Handle("POST /api/receivables/{id}/reset", authed(rh.Reset))
	mux.Handle("POST /api/receivables/{id}/paid", authed(rh.MarkPaid))
	mux.Handle("GET /api/receivables/{id}/reminders", authed(rh.History))
	mux.Handle("PUT /api/clients/{id}/reminders", authed(ch.Update))
	mux.Handle("GET /api/reminder-profiles", authed(ph.List))

	return withRecover(withLogging(mux, log))
}

func withLogging(next http.Handler, log *logrus.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Debug("requête traitée")
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
