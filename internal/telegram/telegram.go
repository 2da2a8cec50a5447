// Package telegram wraps the Telegram Bot API for one destination chat.
//
// The wrapper deliberately keeps the Bot API's failure model: a remote
// rejection ("ok": false) is a normal Response value, not a Go error. Only
// transport-level failures propagate as errors, because those are the only
// ones a caller can meaningfully retry differently.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"blogbot/pkg/logx"
)

// Response mirrors the Bot API envelope.
type Response struct {
	OK          bool
	Description string
}

// ChatInfo is the destination chat metadata, used by setup validation.
type ChatInfo struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title,omitempty"`
	Username string `json:"username,omitempty"`
}

type Config struct {
	Token  string
	ChatID string // numeric id or @channelname

	// Offline skips the getMe probe at construction. Used by tests.
	Offline bool
}

type Messenger struct {
	bot    *tele.Bot
	chat   chatRecipient
	chatID string
	log    logx.Logger
}

// chatRecipient lets both numeric ids and @usernames address the chat.
type chatRecipient string

func (c chatRecipient) Recipient() string { return string(c) }

func New(cfg Config, log logx.Logger) (*Messenger, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if strings.TrimSpace(cfg.ChatID) == "" {
		return nil, errors.New("telegram chat id is empty")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	b, err := tele.NewBot(tele.Settings{
		Token:   cfg.Token,
		Offline: cfg.Offline,
	})
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &Messenger{bot: b, chat: chatRecipient(cfg.ChatID), chatID: cfg.ChatID, log: log}, nil
}

// SendText posts a text message to the destination chat.
func (m *Messenger) SendText(ctx context.Context, text, parseMode string) (Response, error) {
	_ = ctx // telebot manages its own request timeouts
	_, err := m.bot.Send(m.chat, text, &tele.SendOptions{ParseMode: parseMode})
	return m.toResponse("sendMessage", err)
}

// SendPhoto posts a photo by URL with an optional caption.
func (m *Messenger) SendPhoto(ctx context.Context, url, caption string) (Response, error) {
	_ = ctx
	_, err := m.bot.Send(m.chat, &tele.Photo{File: tele.FromURL(url), Caption: caption})
	return m.toResponse("sendPhoto", err)
}

// SendDocument posts a document by URL with an optional caption.
func (m *Messenger) SendDocument(ctx context.Context, url, caption string) (Response, error) {
	_ = ctx
	_, err := m.bot.Send(m.chat, &tele.Document{File: tele.FromURL(url), Caption: caption})
	return m.toResponse("sendDocument", err)
}

// Chat fetches destination chat metadata (getChat). Setup validation only.
func (m *Messenger) Chat(ctx context.Context) (ChatInfo, Response, error) {
	_ = ctx
	data, err := m.bot.Raw("getChat", map[string]string{"chat_id": m.chatID})
	resp, rerr := m.toResponse("getChat", err)
	if rerr != nil || !resp.OK {
		return ChatInfo{}, resp, rerr
	}

	var envelope struct {
		Result ChatInfo `json:"result"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return ChatInfo{}, resp, fmt.Errorf("decode getChat: %w", err)
	}
	return envelope.Result, resp, nil
}

// toResponse splits telebot errors into the two classes of the contract:
// Bot API rejections become Response{OK:false}, everything else is a
// transport error for the caller.
func (m *Messenger) toResponse(method string, err error) (Response, error) {
	if err == nil {
		return Response{OK: true}, nil
	}

	var flood tele.FloodError
	if errors.As(err, &flood) {
		desc := fmt.Sprintf("Too Many Requests: retry after %ds", flood.RetryAfter)
		m.log.Warn("telegram api rejected request",
			logx.String("method", method), logx.String("description", desc))
		return Response{OK: false, Description: desc}, nil
	}

	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		m.log.Warn("telegram api rejected request",
			logx.String("method", method), logx.String("description", apiErr.Description))
		return Response{OK: false, Description: apiErr.Description}, nil
	}

	return Response{}, fmt.Errorf("telegram %s: %w", method, err)
}

// Me returns the bot's own identity, proving the token works.
// Setup validation only.
func (m *Messenger) Me() (username string, ok bool) {
	if m.bot.Me == nil || m.bot.Me.Username == "" {
		return "", false
	}
	return m.bot.Me.Username, true
}
