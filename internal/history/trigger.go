package history

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Trigger runs the monthly snapshot on an interval inside the server process.
// The date gate and the month uniqueness make repeated runs harmless.
type Trigger struct {
	service  *Service
	interval time.Duration
}

func NewTrigger(service *Service, interval time.Duration) *Trigger {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Trigger{
		service:  service,
		interval: interval,
	}
}

// Start runs once immediately, then on every tick until ctx is cancelled
func (t *Trigger) Start(ctx context.Context) {
	logger := log.With().Str("component", "snapshot_trigger").Dur("interval", t.interval).Logger()
	logger.Info().Msg("starting snapshot trigger")

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.run(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down snapshot trigger")
			return
		case <-ticker.C:
			t.run(ctx)
		}
	}
}

func (t *Trigger) run(ctx context.Context) {
	result, err := t.service.RunMonthlySnapshot(ctx, t.service.journal.Now())
	if err != nil {
		log.Error().Err(err).Str("component", "snapshot_trigger").Msg("monthly snapshot failed")
		return
	}
	if result.Ran {
		log.Info().Str("component", "snapshot_trigger").Str("month", result.Month).Msg("monthly snapshot written by trigger")
	}
}
