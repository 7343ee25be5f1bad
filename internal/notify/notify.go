// Package notify forwards consumption and state-transition events to the
// operator. Delivery is fire-and-forget: failures are logged and swallowed,
// never surfaced to the caller.
package notify

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

type Notifier interface {
	Send(ctx context.Context, text string)
}

// Telegram sends plain-text messages through the bot API.
type Telegram struct {
	Token  string
	ChatID string
	Client *http.Client
	Log    *zap.Logger
}

func NewTelegram(token, chatID string, log *zap.Logger) *Telegram {
	return &Telegram{
		Token:  token,
		ChatID: chatID,
		Client: &http.Client{Timeout: 5 * time.Second},
		Log:    log,
	}
}

func (t *Telegram) Send(ctx context.Context, text string) {
	endpoint := "https://api.telegram.org/bot" + t.Token + "/sendMessage"
	q := url.Values{}
	q.Set("chat_id", t.ChatID)
	q.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		t.Log.Debug("telegram request build failed", zap.Error(err))
		return
	}
	resp, err := t.Client.Do(req)
	if err != nil {
		t.Log.Debug("telegram send failed", zap.Error(err))
		return
	}
	_ = resp.Body.Close()
}

// Nop is used when no telegram credentials are configured.
type Nop struct{}

func (Nop) Send(context.Context, string) {}

// FromConfig returns a Telegram notifier when credentials are present,
// otherwise a Nop.
func FromConfig(token, chatID string, log *zap.Logger) Notifier {
	if token == "" || chatID == "" {
		return Nop{}
	}
	return NewTelegram(token, chatID, log)
}
