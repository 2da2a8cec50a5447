package main

import (
	"context"
	"flag"
	"fmt"

	"blogbot/internal/config"
	"blogbot/internal/devto"
	"blogbot/internal/poster"
	"blogbot/internal/render"
	"blogbot/internal/state"
	"blogbot/pkg/logx"
)

// runPost posts a single article on demand, outside the poll loop.
func runPost(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("post", flag.ExitOnError)
	cfgPath := fs.String("config", "./config.json", "path to config file (json or yaml)")
	articleID := fs.Int64("article-id", 0, "id of a specific article to post (default: latest)")
	force := fs.Bool("force", false, "post even if the article was already posted")
	dryRun := fs.Bool("dry-run", false, "print the message instead of sending it")
	apiKey := fs.String("devto-api-key", "", "DEV.to API key (overrides DEVTO_API_KEY)")
	botToken := fs.String("telegram-bot-token", "", "Telegram bot token (overrides TELEGRAM_BOT_TOKEN)")
	chatID := fs.String("telegram-chat-id", "", "Telegram chat id (overrides TELEGRAM_CHAT_ID)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := logx.NewConsole("info")
	cfg, err := loadConfig(*cfgPath, log)
	if err != nil {
		return err
	}

	creds := config.LoadEnv()
	if *apiKey != "" {
		creds.DevtoAPIKey = *apiKey
	}
	if *botToken != "" {
		creds.BotToken = *botToken
	}
	if *chatID != "" {
		creds.ChatID = *chatID
	}

	src, msg, err := newClients(creds, log)
	if err != nil {
		return err
	}

	var article *devto.Article
	if *articleID > 0 {
		article, err = src.Article(ctx, *articleID)
	} else {
		article, err = src.Latest(ctx, devto.StatusPublished)
	}
	if err != nil {
		return fmt.Errorf("fetch article: %w", err)
	}
	if article == nil {
		log.Info("no article found")
		return nil
	}

	cursor := state.NewCursor(cfg.CursorPath(), log)
	if last, ok := cursor.Read(); !*force && ok && last == article.ID {
		log.Info("article already posted; use -force to post anyway", logx.Int64("id", article.ID))
		return nil
	}

	message := poster.BuildMessage(cfg, render.NewEngine(cfg.TemplatesDir, log), article)

	if *dryRun {
		log.Info("dry run; message not sent")
		fmt.Println(message)
		return nil
	}

	resp, err := msg.SendText(ctx, message, cfg.TelegramParseMode)
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("telegram rejected message: %s", resp.Description)
	}
	log.Info("message sent", logx.String("title", article.Title))

	if err := cursor.Write(article.ID); err != nil {
		log.Error("cursor update failed", logx.Int64("id", article.ID), logx.Err(err))
	}

	// Cover image rides along best-effort; the text message already landed.
	if cfg.FormatOptions.IncludeCoverImage && article.CoverImage != "" {
		if resp, err := msg.SendPhoto(ctx, article.CoverImage, article.Title); err != nil {
			log.Warn("cover image send failed", logx.Err(err))
		} else if !resp.OK {
			log.Warn("cover image rejected", logx.String("description", resp.Description))
		}
	}
	return nil
}
