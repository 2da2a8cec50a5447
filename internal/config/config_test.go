package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAbsentFileYieldsDefaults(t *testing.T) {
	cfg, found, err := Load(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if found {
		t.Fatalf("found = true for absent file")
	}
	if cfg.Schedule != "@every 1h" {
		t.Fatalf("Schedule = %q", cfg.Schedule)
	}
	if cfg.TelegramParseMode != "Markdown" {
		t.Fatalf("TelegramParseMode = %q", cfg.TelegramParseMode)
	}
	if cfg.DefaultTemplate != "default" || cfg.TemplatesDir != "./templates" {
		t.Fatalf("template defaults = %q %q", cfg.DefaultTemplate, cfg.TemplatesDir)
	}
	rp := cfg.ErrorNotification
	if !rp.RetryEnabled() || rp.MaxRetries != 3 || rp.RetryDelaySeconds != 60 {
		t.Fatalf("retry defaults = %+v", rp)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("log level = %q", cfg.Logging.Level)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
  "schedule": "0 */2 * * *",
  "telegram_parse_mode": "HTML",
  "default_template": "announce",
  "state_dir": "/var/lib/blogbot",
  "error_notification": {"enabled": true, "max_retries": 5, "retry_delay_seconds": 10}
}`)

	cfg, found, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !found {
		t.Fatalf("found = false for existing file")
	}
	if cfg.Schedule != "0 */2 * * *" || cfg.TelegramParseMode != "HTML" {
		t.Fatalf("parsed config = %+v", cfg)
	}
	if cfg.ErrorNotification.MaxRetries != 5 || cfg.ErrorNotification.RetryDelaySeconds != 10 {
		t.Fatalf("retry policy = %+v", cfg.ErrorNotification)
	}
	if got := cfg.CursorPath(); got != filepath.Join("/var/lib/blogbot", "last_posted_article_id.txt") {
		t.Fatalf("CursorPath = %q", got)
	}
	if got := cfg.MetricsPath(); got != filepath.Join("/var/lib/blogbot", "metrics.json") {
		t.Fatalf("MetricsPath = %q", got)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
schedule: "@every 30m"
message_template: "new post: {{title}}"
format_options:
  include_tags: true
logging:
  level: debug
  console: false
`)

	cfg, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Schedule != "@every 30m" {
		t.Fatalf("Schedule = %q", cfg.Schedule)
	}
	if cfg.MessageTemplate != "new post: {{title}}" {
		t.Fatalf("MessageTemplate = %q", cfg.MessageTemplate)
	}
	if !cfg.FormatOptions.IncludeTags || cfg.FormatOptions.IncludeCoverImage {
		t.Fatalf("format options = %+v", cfg.FormatOptions)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level = %q", cfg.Logging.Level)
	}
	if cfg.Logging.Console == nil || *cfg.Logging.Console {
		t.Fatalf("console sink should be disabled")
	}
}

func TestLegacyCheckIntervalMapsToSchedule(t *testing.T) {
	cfg, err := Parse("config.json", []byte(`{"check_interval_hours": 2}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Schedule != "@every 2h" {
		t.Fatalf("Schedule = %q", cfg.Schedule)
	}
}

func TestScheduleWinsOverLegacyInterval(t *testing.T) {
	cfg, err := Parse("config.json", []byte(`{"schedule": "@every 15m", "check_interval_hours": 2}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Schedule != "@every 15m" {
		t.Fatalf("Schedule = %q", cfg.Schedule)
	}
}

func TestExplicitRetryDisableSticks(t *testing.T) {
	cfg, err := Parse("config.json", []byte(`{"error_notification": {"enabled": false}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.ErrorNotification.RetryEnabled() {
		t.Fatalf("explicit enabled:false did not survive defaulting: %+v", cfg.ErrorNotification)
	}
	if cfg.ErrorNotification.MaxRetries != 3 || cfg.ErrorNotification.RetryDelaySeconds != 60 {
		t.Fatalf("retry bounds = %+v", cfg.ErrorNotification)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse("config.json", []byte(`{"schedle": "@every 1h"}`))
	if err == nil {
		t.Fatalf("expected unknown-field error")
	}
	if !strings.Contains(err.Error(), "schedle") {
		t.Fatalf("error should name the field: %v", err)
	}
}

func TestParseRejectsTrailingData(t *testing.T) {
	if _, err := Parse("config.json", []byte(`{} {}`)); err == nil {
		t.Fatalf("expected trailing-data error")
	}
}

func TestCredentialsMissing(t *testing.T) {
	c := Credentials{BotToken: "t"}
	missing := c.Missing()
	if len(missing) != 2 {
		t.Fatalf("Missing = %v", missing)
	}
	for _, name := range []string{"DEVTO_API_KEY", "TELEGRAM_CHAT_ID"} {
		found := false
		for _, m := range missing {
			if m == name {
				found = true
			}
		}
		if !found {
			t.Fatalf("Missing = %v, want %s listed", missing, name)
		}
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}

	full := Credentials{DevtoAPIKey: "a", BotToken: "b", ChatID: "c"}
	if err := full.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
