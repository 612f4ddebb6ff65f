package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// StartScheduler runs the runner on a fixed interval until the context is
// cancelled. Production deployments usually trigger ticks through the HTTP
// endpoint from an external cron; this loop is the self-contained
// alternative for single-instance setups. It blocks, so launch it in its
// own goroutine.
func StartScheduler(ctx context.Context, runner *Runner, interval time.Duration, log *logrus.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.WithField("interval", interval.String()).Info("planificateur de relances démarré")

	for {
		select {
		case <-ctx.Done():
			log.Info("planificateur de relances arrêté")
			return
		case <-ticker.C:
			if _, err := runner.RunTick(ctx); err != nil {
				log.WithError(err).Error("échec du tick de relance")
			}
		}
	}
}
