package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// maxMessagesPerRequest is the LINE limit for one reply or push.
const maxMessagesPerRequest = 5

// LINEMessenger sends messages through the LINE Messaging API.
type LINEMessenger struct {
	api *messaging_api.MessagingApiAPI
}

// NewLINEMessenger creates a messenger with optional proxy support. An empty
// endpoint uses the public API.
func NewLINEMessenger(accessToken, endpoint, proxyURL string) (*LINEMessenger, error) {
	if accessToken == "" {
		return nil, errors.New("line channel access token is empty")
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	opts := []messaging_api.MessagingApiAPIOption{
		messaging_api.WithHTTPClient(&http.Client{Timeout: 30 * time.Second, Transport: transport}),
	}
	if endpoint != "" {
		opts = append(opts, messaging_api.WithEndpoint(endpoint))
	}
	api, err := messaging_api.NewMessagingApiAPI(accessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("create line client: %w", err)
	}
	return &LINEMessenger{api: api}, nil
}

// Reply answers a webhook event. A reply token is single use.
func (m *LINEMessenger) Reply(ctx context.Context, replyToken string, msgs ...Message) error {
	out, err := toLINEMessages(msgs)
	if err != nil {
		return err
	}
	_, err = m.api.WithContext(ctx).ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   out,
	})
	if err != nil {
		return fmt.Errorf("reply message: %w", err)
	}
	return nil
}

// Push sends messages to a user without a reply token.
func (m *LINEMessenger) Push(ctx context.Context, to string, msgs ...Message) error {
	out, err := toLINEMessages(msgs)
	if err != nil {
		return err
	}
	_, err = m.api.WithContext(ctx).PushMessage(&messaging_api.PushMessageRequest{
		To:       to,
		Messages: out,
	}, "")
	if err != nil {
		return fmt.Errorf("push message to %s: %w", to, err)
	}
	return nil
}

func toLINEMessages(msgs []Message) ([]messaging_api.MessageInterface, error) {
	var out []messaging_api.MessageInterface
	for _, m := range msgs {
		if m.Text != "" {
			out = append(out, messaging_api.TextMessage{Text: m.Text})
		}
		if m.ImageURL != "" {
			out = append(out, messaging_api.ImageMessage{
				OriginalContentUrl: m.ImageURL,
				PreviewImageUrl:    m.ImageURL,
			})
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no message content")
	}
	if len(out) > maxMessagesPerRequest {
		return nil, fmt.Errorf("%d messages exceed the limit of %d", len(out), maxMessagesPerRequest)
	}
	return out, nil
}
