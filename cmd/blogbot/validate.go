package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"blogbot/internal/config"
	"blogbot/internal/devto"
	"blogbot/internal/render"
	"blogbot/internal/state"
	"blogbot/internal/telegram"
	"blogbot/pkg/logx"
)

// runValidate checks everything a deployment needs before its first
// scheduled run: credentials, config, templates, both APIs, and the
// cursor file.
func runValidate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", "./config.json", "path to config file (json or yaml)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := logx.NewConsole("warn")
	allOK := true
	report := func(ok bool, format string, a ...any) {
		marker := "ok  "
		if !ok {
			marker = "FAIL"
			allOK = false
		}
		fmt.Printf("%s  %s\n", marker, fmt.Sprintf(format, a...))
	}

	fmt.Println("-- environment --")
	creds := config.LoadEnv()
	report(creds.DevtoAPIKey != "", "DEVTO_API_KEY %s", maskSecret(creds.DevtoAPIKey))
	report(creds.BotToken != "", "TELEGRAM_BOT_TOKEN %s", maskSecret(creds.BotToken))
	report(creds.ChatID != "", "TELEGRAM_CHAT_ID %s", maskSecret(creds.ChatID))

	fmt.Println("-- config --")
	cfg, found, err := config.Load(*cfgPath)
	switch {
	case err != nil:
		report(false, "config %s: %v", *cfgPath, err)
		cfg = config.Default()
	case !found:
		report(true, "config %s absent; defaults apply", *cfgPath)
	default:
		report(true, "config %s parsed (schedule %s, template %s)", *cfgPath, cfg.Schedule, cfg.DefaultTemplate)
	}

	fmt.Println("-- templates --")
	templates, err := render.NewEngine(cfg.TemplatesDir, log).Load()
	if err != nil {
		report(false, "templates in %s: %v", cfg.TemplatesDir, err)
	} else {
		_, hasRequested := templates[cfg.DefaultTemplate]
		report(true, "%d valid template(s) in %s", len(templates), cfg.TemplatesDir)
		report(hasRequested, "configured template %q available", cfg.DefaultTemplate)
	}

	fmt.Println("-- dev.to --")
	if creds.DevtoAPIKey == "" {
		report(false, "skipped (no API key)")
	} else {
		src := devto.New(devto.Config{APIKey: creds.DevtoAPIKey}, log)
		articles, err := src.Articles(ctx, devto.StatusPublished)
		if err != nil {
			report(false, "listing articles: %v", err)
		} else {
			report(true, "%d published article(s) visible", len(articles))
		}
	}

	fmt.Println("-- telegram --")
	if creds.BotToken == "" || creds.ChatID == "" {
		report(false, "skipped (missing token or chat id)")
	} else {
		msg, err := telegram.New(telegram.Config{Token: creds.BotToken, ChatID: creds.ChatID}, log)
		if err != nil {
			report(false, "bot init: %v", err)
		} else {
			if username, ok := msg.Me(); ok {
				report(true, "bot token valid (@%s)", username)
			} else {
				report(false, "bot identity unavailable")
			}
			info, resp, err := msg.Chat(ctx)
			switch {
			case err != nil:
				report(false, "getChat: %v", err)
			case !resp.OK:
				report(false, "getChat rejected: %s", resp.Description)
			default:
				report(true, "chat reachable (%s %q)", info.Type, chatLabel(info))
			}
		}
	}

	fmt.Println("-- cursor --")
	if _, err := os.Stat(cfg.CursorPath()); os.IsNotExist(err) {
		report(true, "no cursor file yet (first run will post the latest article)")
	} else if id, ok := state.NewCursor(cfg.CursorPath(), log).Read(); ok {
		report(true, "last posted article id %d", id)
	} else {
		report(false, "cursor file %s exists but holds no valid id", cfg.CursorPath())
	}

	if !allOK {
		return errors.New("validation failed")
	}
	fmt.Println("all checks passed")
	return nil
}

func maskSecret(v string) string {
	if v == "" {
		return "(not set)"
	}
	if len(v) <= 6 {
		return "***"
	}
	return v[:3] + "***" + v[len(v)-3:]
}

func chatLabel(info telegram.ChatInfo) string {
	if info.Title != "" {
		return info.Title
	}
	if info.Username != "" {
		return "@" + info.Username
	}
	return fmt.Sprintf("id %d", info.ID)
}
