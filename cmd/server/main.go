package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/facturio/relance/internal/config"
	"github.com/facturio/relance/internal/db"
	"github.com/facturio/relance/internal/mailer"
	"github.com/facturio/relance/internal/server"
	"github.com/facturio/relance/internal/services"
	"github.com/facturio/relance/pkg/logger"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()
	cfg := config.Load()
	appLog := logger.New(cfg.LogLevel)

	dbConn, err := db.ConnectAndMigrate(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Erreur connexion DB: %v", err)
	}
	if *migrateOnlyFlag {
		log.Println("migrations completed; exiting as requested")
		return
	}

	runner := services.NewRunner(dbConn, mailer.NewSMTPSender(), appLog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional in-process scheduler; most deployments trigger ticks through
	// POST /api/reminders/run from an external cron instead.
	if cfg.TickInterval > 0 {
		go services.StartScheduler(ctx, runner, cfg.TickInterval, appLog)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.New(dbConn, runner, cfg, appLog),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLog.WithField("port", cfg.Port).WithField("env", cfg.Env).Info("serveur démarré")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	appLog.Info("signal d'arrêt reçu")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Error("erreur pendant l'arrêt")
		os.Exit(1)
	}
	appLog.Info("serveur arrêté proprement")
}
