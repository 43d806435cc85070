package moderation

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Scheduler keeps the per-status report gauges current
type Scheduler struct {
	repo  Repository
	every time.Duration
}

func NewScheduler(repo Repository, every time.Duration) *Scheduler {
	if every <= 0 {
		every = time.Minute
	}
	return &Scheduler{repo: repo, every: every}
}

// Start refreshes once immediately, then on every tick until ctx ends
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.every)
	defer ticker.Stop()

	s.refresh(ctx)
	for {
		select {
		case <-ticker.C:
			s.refresh(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) refresh(ctx context.Context) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Report gauge refresh failed")
		return
	}
	for status, n := range counts {
		reportsByStatus.WithLabelValues(string(status)).Set(float64(n))
	}
}
