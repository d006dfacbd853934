// Package cron drives the periodic sweep. The schedule only decides when
// SweepOnce runs; all transition logic lives in the booking package so tests
// invoke it with an injected clock instead of waiting on timers.
package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/bookably/booking-app/booking"
)

// sweepSpec runs every 5 minutes; the sweep is idempotent, so overlap with
// an on-demand run is harmless.
const sweepSpec = "*/5 * * * *"

// StartSweepScheduler registers and starts the sweep cron job. Returns the
// scheduler so main can Stop() it on shutdown.
func StartSweepScheduler(svc *booking.Service, log zerolog.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(sweepSpec, func() {
		result := svc.SweepOnce(context.Background(), time.Now())
		if len(result.Errors) > 0 {
			log.Warn().
				Strs("errors", result.Errors).
				Int("completed", result.Completed).
				Int("cancelled", result.Cancelled).
				Msg("sweep finished with errors")
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	log.Info().Str("schedule", sweepSpec).Msg("sweep scheduler started")
	return c, nil
}
