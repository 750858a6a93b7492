package refresh

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"netops-backend/config"
	"netops-backend/internal/notification"
	"netops-backend/internal/probe"
	"netops-backend/internal/store"
)

// Notifier receives outage events discovered during a refresh pass.
type Notifier interface {
	Dispatch(outage notification.Outage)
}

// Service runs the periodic liveness refresh: probe every addressable
// device, persist status and last-seen, and raise outage events for
// devices that just went down. Listings stay pure reads; this service
// is the only writer of device status.
type Service struct {
	cfg    *config.Config
	store  store.Store
	pinger probe.Pinger
	alerts Notifier
	log    *zap.Logger
}

// NewService creates and initializes a new refresh service. alerts may
// be nil when push notifications are not configured.
func NewService(cfg *config.Config, st store.Store, pinger probe.Pinger, alerts Notifier, log *zap.Logger) *Service {
	return &Service{
		cfg:    cfg,
		store:  st,
		pinger: pinger,
		alerts: alerts,
		log:    log,
	}
}

// Run starts the refresh loop.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Refresh.Enabled {
		s.log.Info("liveness refresh is disabled, not starting")
		return
	}
	s.log.Info("starting liveness refresh service",
		zap.Duration("interval", s.cfg.Refresh.Interval),
		zap.Int("workers", s.cfg.Refresh.WorkerPoolSize))

	s.RefreshOnce(ctx)

	timer := time.NewTimer(s.cfg.Refresh.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("liveness refresh service shutting down")
			return
		case <-timer.C:
			s.RefreshOnce(ctx)
			timer.Reset(s.cfg.Refresh.Interval)
		}
	}
}

// RefreshOnce performs a single refresh pass. Probes run over a
// bounded worker pool; the pass returns once every probe for the pass
// has completed or failed.
func (s *Service) RefreshOnce(ctx context.Context) {
	start := time.Now()
	now := start.UTC()

	targets, err := s.store.ProbeTargets(ctx)
	if err != nil {
		s.log.Error("failed to collect probe targets", zap.Error(err))
		return
	}
	if len(targets) == 0 {
		return
	}

	workers := s.cfg.Refresh.WorkerPoolSize
	if workers < 1 {
		workers = 1
	}

	var probed, down atomic.Int64
	jobs := make(chan store.ProbeTarget)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for target := range jobs {
				alive := s.pinger.Probe(ctx, target.Address)
				wentDown, err := s.store.RecordProbeResult(ctx, target, alive, now)
				if err != nil {
					// ErrNotFound means the device was deleted
					// mid-pass; nothing to record.
					if !errors.Is(err, store.ErrNotFound) {
						s.log.Warn("failed to record probe result",
							zap.String("kind", target.Kind),
							zap.String("id", target.ID),
							zap.Error(err))
					}
					continue
				}
				probed.Add(1)
				if !alive {
					down.Add(1)
				}
				if wentDown && s.alerts != nil {
					s.alerts.Dispatch(notification.Outage{
						Kind: target.Kind,
						ID:   target.ID,
						Name: target.Name,
					})
				}
			}
		}()
	}

	for _, t := range targets {
		jobs <- t
	}
	close(jobs)
	wg.Wait()

	s.log.Info("refresh pass complete",
		zap.Int("targets", len(targets)),
		zap.Int64("probed", probed.Load()),
		zap.Int64("down", down.Load()),
		zap.Duration("elapsed", time.Since(start)))
}
