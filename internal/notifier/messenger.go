package notifier

import "context"

// Message is one outgoing chat message: text, an image, or both.
type Message struct {
	Text     string
	ImageURL string
}

// Messenger delivers messages to chat users.
type Messenger interface {
	Reply(ctx context.Context, replyToken string, msgs ...Message) error
	Push(ctx context.Context, to string, msgs ...Message) error
}

// Alerter notifies operators about problems the users will not report.
type Alerter interface {
	Alert(ctx context.Context, text string) error
}

// NoopAlerter drops every alert.
type NoopAlerter struct{}

func (NoopAlerter) Alert(context.Context, string) error { return nil }
