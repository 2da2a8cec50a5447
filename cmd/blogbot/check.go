package main

import (
	"context"
	"flag"

	"blogbot/internal/config"
	"blogbot/internal/poster"
	"blogbot/internal/render"
	"blogbot/internal/state"
	"blogbot/internal/watch"
	"blogbot/pkg/logx"
)

func runCheck(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	cfgPath := fs.String("config", "./config.json", "path to config file (json or yaml)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	boot := logx.NewConsole("info")
	cfg, err := loadConfig(*cfgPath, boot)
	if err != nil {
		return err
	}

	logSvc, log := logx.New(cfg.Logging.Logx())
	defer logSvc.Close()

	src, msg, err := newClients(config.LoadEnv(), log)
	if err != nil {
		return err
	}

	log.Info("starting check")
	newPoster(cfg, src, msg, log).Run(ctx)
	log.Info("check completed")
	return nil
}

func runWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	cfgPath := fs.String("config", "./config.json", "path to config file (json or yaml)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	boot := logx.NewConsole("info")
	cfg, err := loadConfig(*cfgPath, boot)
	if err != nil {
		return err
	}

	logSvc, log := logx.New(cfg.Logging.Logx())
	defer logSvc.Close()

	src, msg, err := newClients(config.LoadEnv(), log)
	if err != nil {
		return err
	}

	run := func(ctx context.Context, cfg *config.Config) {
		newPoster(cfg, src, msg, log).Run(ctx)
	}

	log.Info("starting watch daemon", logx.String("schedule", cfg.Schedule))
	return watch.New(*cfgPath, cfg, logSvc, log, run).Run(ctx)
}

// newPoster wires a poster from a config snapshot. Cursor, metrics and
// template paths all derive from the snapshot so a config reload in watch
// mode takes effect on the next pass.
func newPoster(cfg *config.Config, src poster.Source, msg poster.Messenger, log logx.Logger) *poster.Poster {
	return poster.New(poster.Deps{
		Config:  cfg,
		Source:  src,
		Msg:     msg,
		Engine:  render.NewEngine(cfg.TemplatesDir, log),
		Cursor:  state.NewCursor(cfg.CursorPath(), log),
		Metrics: state.NewMetricsStore(cfg.MetricsPath(), log),
		Log:     log,
	})
}
