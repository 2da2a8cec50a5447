// Package config loads the blogbot configuration file and runtime credentials.
//
// The file may be JSON or YAML; YAML is coerced to JSON so both formats go
// through the same strict decoder. An absent file is not an error: built-in
// defaults apply, matching the behavior of a fresh checkout.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"blogbot/pkg/logx"
)

type Config struct {
	// Schedule is a cron spec or @every interval used by the watch daemon.
	Schedule string `json:"schedule,omitempty"`

	// CheckIntervalHours is the legacy way to express Schedule. Still
	// accepted so old config files keep working; mapped to "@every Nh".
	CheckIntervalHours int `json:"check_interval_hours,omitempty"`

	TelegramParseMode string `json:"telegram_parse_mode,omitempty"`

	// DefaultTemplate names a template file in TemplatesDir.
	// MessageTemplate, when set, is an inline template pattern that takes
	// precedence over the file-backed one.
	DefaultTemplate string `json:"default_template,omitempty"`
	MessageTemplate string `json:"message_template,omitempty"`

	TemplatesDir string `json:"templates_dir,omitempty"`
	StateDir     string `json:"state_dir,omitempty"`

	FormatOptions     FormatOptions `json:"format_options"`
	ErrorNotification RetryPolicy   `json:"error_notification"`

	Logging LoggingConfig `json:"logging"`
}

type FormatOptions struct {
	IncludeCoverImage  bool `json:"include_cover_image"`
	IncludeTags        bool `json:"include_tags"`
	IncludeReadingTime bool `json:"include_reading_time"`
}

// RetryPolicy bounds delivery retries. Delay is whole seconds to stay
// compatible with existing config files. Enabled is a pointer so an
// explicit false survives defaulting.
type RetryPolicy struct {
	Enabled           *bool `json:"enabled,omitempty"`
	MaxRetries        int   `json:"max_retries"`
	RetryDelaySeconds int   `json:"retry_delay_seconds"`
}

// RetryEnabled reports whether delivery retries are on. Unset means on.
func (r RetryPolicy) RetryEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

type LoggingConfig struct {
	Level   string      `json:"level,omitempty"`
	Console *bool       `json:"console,omitempty"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// Logx converts the logging section into the logx sink configuration.
func (l LoggingConfig) Logx() logx.Config {
	console := true
	if l.Console != nil {
		console = *l.Console
	}
	return logx.Config{
		Level:   l.Level,
		Console: console,
		File:    logx.FileConfig{Enabled: l.File.Enabled, Path: l.File.Path},
	}
}

// Default returns the built-in configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Schedule == "" {
		if c.CheckIntervalHours > 0 {
			c.Schedule = fmt.Sprintf("@every %dh", c.CheckIntervalHours)
		} else {
			c.Schedule = "@every 1h"
		}
	}
	if c.TelegramParseMode == "" {
		c.TelegramParseMode = "Markdown"
	}
	if c.DefaultTemplate == "" {
		c.DefaultTemplate = "default"
	}
	if c.TemplatesDir == "" {
		c.TemplatesDir = "./templates"
	}
	if c.StateDir == "" {
		c.StateDir = "."
	}
	if c.ErrorNotification.Enabled == nil {
		t := true
		c.ErrorNotification.Enabled = &t
	}
	if c.ErrorNotification.MaxRetries <= 0 {
		c.ErrorNotification.MaxRetries = 3
	}
	if c.ErrorNotification.RetryDelaySeconds <= 0 {
		c.ErrorNotification.RetryDelaySeconds = 60
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Console == nil {
		t := true
		c.Logging.Console = &t
	}
}

// CursorPath is the file holding the id of the last posted article.
func (c *Config) CursorPath() string {
	return filepath.Join(c.StateDir, "last_posted_article_id.txt")
}

// MetricsPath is the file metrics are merged into across runs.
func (c *Config) MetricsPath() string {
	return filepath.Join(c.StateDir, "metrics.json")
}

// Load reads and strictly decodes the config file at path. A missing file
// yields the defaults and found=false.
func Load(path string) (cfg *Config, found bool, err error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), false, nil
	}
	if err != nil {
		return nil, false, err
	}

	cfg, err = Parse(path, b)
	if err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}

// Parse decodes config bytes. The path is only used to sniff the format.
func Parse(path string, b []byte) (*Config, error) {
	jb, err := configToJSON(path, b)
	if err != nil {
		return nil, err
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("invalid config: trailing data")
		}
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}
