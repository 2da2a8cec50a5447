// Package poster holds the per-invocation control flow: fetch the latest
// article, compare it to the cursor, render, deliver with bounded retry,
// and persist cursor and metrics.
//
// One Run is one pass; scheduling across passes is the caller's concern
// (cron in watch mode, or an external trigger for check mode).
package poster

import (
	"context"
	"time"

	"blogbot/internal/config"
	"blogbot/internal/devto"
	"blogbot/internal/render"
	"blogbot/internal/state"
	"blogbot/internal/telegram"
	"blogbot/pkg/logx"
)

// Source is the subset of the DEV.to client the poster needs.
type Source interface {
	Latest(ctx context.Context, status string) (*devto.Article, error)
}

// Messenger is the subset of the Telegram client the poster needs.
type Messenger interface {
	SendText(ctx context.Context, text, parseMode string) (telegram.Response, error)
}

// SleepFunc waits for d or until ctx is done. Injected so retry timing is
// testable without real delays.
type SleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type Deps struct {
	Config  *config.Config
	Source  Source
	Msg     Messenger
	Engine  *render.Engine
	Cursor  *state.Cursor
	Metrics *state.MetricsStore
	Log     logx.Logger

	Sleep SleepFunc // nil means real timer
	Now   func() time.Time
}

type Poster struct {
	d Deps
}

func New(d Deps) *Poster {
	if d.Sleep == nil {
		d.Sleep = defaultSleep
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log.IsZero() {
		d.Log = logx.Nop()
	}
	return &Poster{d: d}
}

// Run performs one poll-and-notify pass. Fetch and delivery failures are
// recoverable: they are logged and counted, and the unchanged cursor makes
// the next run retry the same article. Metrics are persisted on every path.
func (p *Poster) Run(ctx context.Context) {
	cfg := p.d.Config
	log := p.d.Log

	m := state.Metrics{LastCheck: p.d.Now().Format(time.RFC3339)}
	defer func() {
		if err := p.d.Metrics.Merge(m); err != nil {
			log.Warn("metrics persist failed", logx.Err(err))
		}
	}()

	latest, err := p.d.Source.Latest(ctx, devto.StatusPublished)
	if err != nil {
		log.Error("fetching latest article failed", logx.Err(err))
		m.Errors++
		return
	}
	if latest == nil {
		log.Info("no articles found")
		return
	}

	if last, ok := p.d.Cursor.Read(); ok && last == latest.ID {
		log.Info("no new articles", logx.Int64("last_posted_id", last))
		return
	}

	m.NewArticlesFound++
	log.Info("new article found", logx.String("title", latest.Title), logx.Int64("id", latest.ID))

	text := BuildMessage(cfg, p.d.Engine, latest)

	maxAttempts := cfg.ErrorNotification.MaxRetries
	if !cfg.ErrorNotification.RetryEnabled() {
		// Retry policy disabled: a single attempt, no sleeps.
		maxAttempts = 1
	}
	delay := time.Duration(cfg.ErrorNotification.RetryDelaySeconds) * time.Second

	posted := false
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := p.d.Msg.SendText(ctx, text, cfg.TelegramParseMode)
		if err == nil && resp.OK {
			log.Info("message sent", logx.String("title", latest.Title))
			if werr := p.d.Cursor.Write(latest.ID); werr != nil {
				// Stale cursor: the next run may post this article again.
				log.Error("cursor update failed", logx.Int64("id", latest.ID), logx.Err(werr))
			}
			m.ArticlesPosted++
			posted = true
			break
		}

		m.Errors++
		if err != nil {
			log.Error("sending message failed", logx.Err(err), logx.Int("attempt", attempt), logx.Int("max", maxAttempts))
		} else {
			log.Error("telegram rejected message", logx.String("description", resp.Description), logx.Int("attempt", attempt), logx.Int("max", maxAttempts))
		}

		if attempt < maxAttempts {
			log.Info("retrying send", logx.Duration("delay", delay), logx.Int("attempt", attempt), logx.Int("max", maxAttempts))
			if serr := p.d.Sleep(ctx, delay); serr != nil {
				log.Warn("retry wait aborted", logx.Err(serr))
				break
			}
		}
	}

	if !posted {
		log.Error("giving up on message delivery", logx.Int("attempts", maxAttempts), logx.Int64("id", latest.ID))
	}
}

// BuildMessage renders the notification text for an article: an inline
// config pattern when one is set, otherwise the named file-backed template.
func BuildMessage(cfg *config.Config, engine *render.Engine, a *devto.Article) string {
	if cfg.MessageTemplate != "" {
		return render.Inline(cfg.MessageTemplate, a, render.Options{
			IncludeTags:        cfg.FormatOptions.IncludeTags,
			IncludeReadingTime: cfg.FormatOptions.IncludeReadingTime,
		})
	}
	return engine.Render(a, cfg.DefaultTemplate)
}
