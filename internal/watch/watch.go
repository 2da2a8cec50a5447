// Package watch runs the check loop as a long-lived daemon: one poster
// pass per schedule trigger, with config hot reload in between.
//
// Checks stay strictly sequential; there is never more than one pass in
// flight, which is what makes the unlocked cursor and metrics files safe.
package watch

import (
	"context"
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/robfig/cron/v3"

	"blogbot/internal/config"
	"blogbot/pkg/logx"
)

// Runner performs one poll-and-notify pass with the given config snapshot.
type Runner func(ctx context.Context, cfg *config.Config)

type Service struct {
	cfgPath string
	logSvc  *logx.Service
	log     logx.Logger
	run     Runner

	parser cron.Parser

	mu  sync.Mutex
	cfg *config.Config
}

func New(cfgPath string, initial *config.Config, logSvc *logx.Service, log logx.Logger, run Runner) *Service {
	return &Service{
		cfgPath: cfgPath,
		logSvc:  logSvc,
		log:     log,
		run:     run,
		// SecondOptional allows both 5-field and 6-field (with seconds) specs.
		parser: cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		cfg:    initial,
	}
}

// Run blocks until ctx is done. It notifies systemd about readiness when
// running under a unit with Type=notify; outside systemd the call is a
// no-op.
func (s *Service) Run(ctx context.Context) error {
	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	defer func() { _, _ = daemon.SdNotify(false, daemon.SdNotifyStopping) }()

	go func() {
		if err := config.Watch(ctx, s.cfgPath, s.log, s.apply); err != nil {
			s.log.Warn("config watch unavailable; continuing without hot reload", logx.Err(err))
		}
	}()

	// First check right away; the schedule covers subsequent ones.
	s.runOnce(ctx)

	for {
		cfg := s.snapshot()

		sched, err := s.parser.Parse(cfg.Schedule)
		if err != nil {
			s.log.Error("invalid schedule; falling back to hourly",
				logx.String("schedule", cfg.Schedule), logx.Err(err))
			sched, _ = s.parser.Parse("@every 1h")
		}

		next := sched.Next(time.Now())
		s.log.Debug("next check scheduled", logx.Time("at", next))

		t := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}

		s.runOnce(ctx)
	}
}

func (s *Service) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.run(ctx, s.snapshot())
}

func (s *Service) snapshot() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *Service) apply(cfg *config.Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	if s.logSvc != nil {
		s.logSvc.Apply(cfg.Logging.Logx())
	}
}
