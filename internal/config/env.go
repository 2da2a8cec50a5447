package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Credentials are the secrets blogbot cannot run without.
type Credentials struct {
	DevtoAPIKey string
	BotToken    string
	ChatID      string
}

// LoadEnv reads credentials from the environment, first loading a .env file
// if one exists next to the working directory. Missing values are returned
// empty; use Validate to enforce presence.
func LoadEnv() Credentials {
	_ = godotenv.Load()

	return Credentials{
		DevtoAPIKey: os.Getenv("DEVTO_API_KEY"),
		BotToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		ChatID:      os.Getenv("TELEGRAM_CHAT_ID"),
	}
}

// Missing lists the environment variable names whose values are absent.
func (c Credentials) Missing() []string {
	var out []string
	if strings.TrimSpace(c.DevtoAPIKey) == "" {
		out = append(out, "DEVTO_API_KEY")
	}
	if strings.TrimSpace(c.BotToken) == "" {
		out = append(out, "TELEGRAM_BOT_TOKEN")
	}
	if strings.TrimSpace(c.ChatID) == "" {
		out = append(out, "TELEGRAM_CHAT_ID")
	}
	return out
}

// Validate fails when any required credential is absent.
func (c Credentials) Validate() error {
	if missing := c.Missing(); len(missing) > 0 {
		return errors.New("missing required environment variables: " + strings.Join(missing, ", "))
	}
	return nil
}
