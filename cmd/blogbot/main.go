// blogbot posts newly published DEV.to articles to a Telegram chat.
//
// Subcommands:
//
//	check     run one poll-and-notify pass and exit
//	watch     run checks on a schedule until interrupted
//	post      manually post one article (latest or by id)
//	batch     post multiple historical articles
//	validate  verify credentials, config, templates and API reachability
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"blogbot/internal/config"
	"blogbot/internal/devto"
	"blogbot/internal/telegram"
	"blogbot/pkg/logx"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "check":
		err = runCheck(ctx, args)
	case "watch":
		err = runWatch(ctx, args)
	case "post":
		err = runPost(ctx, args)
	case "batch":
		err = runBatch(ctx, args)
	case "validate":
		err = runValidate(ctx, args)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: blogbot <command> [flags]

commands:
  check     run one poll-and-notify pass and exit
  watch     run checks on a schedule until interrupted
  post      manually post one article (latest or by id)
  batch     post multiple historical articles
  validate  verify credentials, config, templates and API reachability

run "blogbot <command> -h" for command flags
`)
}

// loadConfig loads the config file, falling back to defaults when absent.
func loadConfig(path string, log logx.Logger) (*config.Config, error) {
	cfg, found, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if !found {
		log.Warn("config file not found; using defaults", logx.String("path", path))
	}
	return cfg, nil
}

// newClients builds the two API clients from validated credentials.
func newClients(creds config.Credentials, log logx.Logger) (*devto.Client, *telegram.Messenger, error) {
	if err := creds.Validate(); err != nil {
		return nil, nil, err
	}
	src := devto.New(devto.Config{APIKey: creds.DevtoAPIKey}, log)
	msg, err := telegram.New(telegram.Config{Token: creds.BotToken, ChatID: creds.ChatID}, log)
	if err != nil {
		return nil, nil, err
	}
	return src, msg, nil
}
