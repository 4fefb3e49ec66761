package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"hospitalms/web/internal/session"
)

// Scheduler runs the session janitor: redis expires session records on its
// own, but the per-user index sets accumulate members pointing at expired
// sessions and need a periodic sweep.
type Scheduler struct {
	cron  *cron.Cron
	store session.Store
	log   zerolog.Logger
}

func NewScheduler(store session.Store, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:  c,
		store: store,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	if s.store == nil {
		return nil
	}

	if _, err := s.cron.AddFunc("0 0 */1 * * *", s.sweepSessions); err != nil { // hourly
		return err
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() context.CancelFunc {
	_, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	go func() {
		s.cron.Stop()
		cancel()
	}()
	return cancel
}

func (s *Scheduler) sweepSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := s.store.SweepIndexes(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("session index sweep failed")
		return
	}
	if removed > 0 {
		s.log.Info().Int("removed", removed).Msg("session index sweep")
	}
}
