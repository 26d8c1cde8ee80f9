package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
	tele "gopkg.in/telebot.v3"
)

// TelegramAlerter sends operator alerts via a Telegram bot.
type TelegramAlerter struct {
	bot     *tele.Bot
	chatIDs []int64
}

// NewTelegramAlerter creates an alerter with optional proxy support.
// An empty apiURL uses the public Bot API.
func NewTelegramAlerter(botToken string, chatIDs []int64, apiURL, proxyURL string) (*TelegramAlerter, error) {
	if botToken == "" || len(chatIDs) == 0 {
		return nil, errors.New("telegram bot token and chat ids are required")
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	b, err := tele.NewBot(tele.Settings{
		URL:     apiURL,
		Token:   botToken,
		Offline: true,
		Client:  &http.Client{Timeout: 30 * time.Second, Transport: transport},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramAlerter{bot: b, chatIDs: chatIDs}, nil
}

// Alert sends text to every configured chat. It keeps going after a failed
// chat and returns the joined errors.
func (t *TelegramAlerter) Alert(ctx context.Context, text string) error {
	var errs []error
	for _, id := range t.chatIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := t.bot.Send(tele.ChatID(id), text); err != nil {
			log.WithField("chat_id", id).WithError(err).Warn("telegram alert failed")
			errs = append(errs, fmt.Errorf("chat %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// AlertWithRetry sends an alert with exponential backoff retry.
func AlertWithRetry(ctx context.Context, a Alerter, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := a.Alert(ctx, text); err != nil {
			lastErr = err
			backoff := time.Duration(1<<uint(i)) * time.Second
			log.WithError(err).Warnf("alert failed (attempt %d/%d), retrying in %v", i+1, maxRetries+1, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}

// RetryAlerter retries each alert on the wrapped Alerter.
type RetryAlerter struct {
	Alerter
	MaxRetries int
}

func (r RetryAlerter) Alert(ctx context.Context, text string) error {
	return AlertWithRetry(ctx, r.Alerter, text, r.MaxRetries)
}
