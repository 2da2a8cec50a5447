package main

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"blogbot/internal/config"
	"blogbot/internal/devto"
	"blogbot/internal/render"
	"blogbot/pkg/logx"
)

// runBatch posts several historical articles, useful for seeding a channel
// with an existing back catalog.
func runBatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	cfgPath := fs.String("config", "./config.json", "path to config file (json or yaml)")
	count := fs.Int("count", 5, "number of articles to post")
	delay := fs.Duration("delay", 3*time.Second, "pause between posts")
	templateName := fs.String("template", render.DefaultName, "template to render with")
	reverse := fs.Bool("reverse", false, "post oldest first")
	dryRun := fs.Bool("dry-run", false, "print the messages instead of sending them")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := logx.NewConsole("info")
	cfg, err := loadConfig(*cfgPath, log)
	if err != nil {
		return err
	}

	src, msg, err := newClients(config.LoadEnv(), log)
	if err != nil {
		return err
	}

	log.Info("fetching articles", logx.Int("count", *count))
	articles, err := src.Articles(ctx, devto.StatusPublished)
	if err != nil {
		return fmt.Errorf("fetch articles: %w", err)
	}
	if len(articles) == 0 {
		log.Warn("no articles to post")
		return nil
	}

	// Newest first by default; -reverse posts the back catalog in
	// chronological order.
	sort.SliceStable(articles, func(i, j int) bool {
		if *reverse {
			return articles[i].PublishedAt < articles[j].PublishedAt
		}
		return articles[i].PublishedAt > articles[j].PublishedAt
	})
	if len(articles) > *count {
		articles = articles[:*count]
	}

	engine := render.NewEngine(cfg.TemplatesDir, log)
	log.Info("posting articles", logx.Int("total", len(articles)), logx.String("template", *templateName))
	if *dryRun {
		log.Info("dry run; nothing will be sent")
	}

	// The limiter paces sends so the destination chat is not flooded.
	limiter := rate.NewLimiter(rate.Every(*delay), 1)

	var sent, failed int
	for i, a := range articles {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		message := engine.Render(&a, *templateName)
		log.Info("posting article",
			logx.Int("n", i+1), logx.Int("total", len(articles)), logx.String("title", a.Title))

		if *dryRun {
			fmt.Println(message)
			sent++
			continue
		}

		resp, err := msg.SendText(ctx, message, cfg.TelegramParseMode)
		switch {
		case err != nil:
			log.Error("send failed", logx.Int64("id", a.ID), logx.Err(err))
			failed++
		case !resp.OK:
			log.Error("telegram rejected message", logx.Int64("id", a.ID), logx.String("description", resp.Description))
			failed++
		default:
			sent++
		}
	}

	log.Info("batch posting complete", logx.Int("sent", sent), logx.Int("failed", failed))
	if failed > 0 {
		return fmt.Errorf("%d of %d posts failed", failed, len(articles))
	}
	return nil
}
