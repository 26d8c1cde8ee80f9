package server

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"FuelSentinel/internal/recorder"
)

const testSecret = "channel-secret"

type handled struct {
	userID, replyToken, text string
}

type fakeBot struct {
	messages  []handled
	pushes    []string
	handleErr error
	pushErr   error
}

func (f *fakeBot) HandleText(_ context.Context, userID, replyToken, text string) error {
	f.messages = append(f.messages, handled{userID, replyToken, text})
	return f.handleErr
}

func (f *fakeBot) PushAll(_ context.Context, trigger string) (*recorder.PushEvent, error) {
	f.pushes = append(f.pushes, trigger)
	return &recorder.PushEvent{Trigger: trigger}, f.pushErr
}

const textEventBody = `{
  "destination": "Ubot",
  "events": [
    {
      "type": "message",
      "mode": "active",
      "timestamp": 1717300000000,
      "webhookEventId": "01HZ000000000000000000000",
      "deliveryContext": {"isRedelivery": false},
      "replyToken": "reply-1",
      "source": {"type": "user", "userId": "U123"},
      "message": {"type": "text", "id": "1", "quoteToken": "q", "text": "查油價"}
    },
    {
      "type": "follow",
      "mode": "active",
      "timestamp": 1717300000001,
      "webhookEventId": "01HZ000000000000000000001",
      "deliveryContext": {"isRedelivery": false},
      "replyToken": "reply-2",
      "source": {"type": "user", "userId": "U456"},
      "follow": {"isUnblocked": false}
    }
  ]
}`

func sign(body string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func do(s *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestWebhook(t *testing.T) {
	for _, path := range []string{"/webhook", "/callback"} {
		t.Run(path, func(t *testing.T) {
			bot := &fakeBot{}
			s := New(bot, testSecret, "cron")

			rec := do(s, http.MethodPost, path, textEventBody, map[string]string{"X-Line-Signature": sign(textEventBody)})
			if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
				t.Fatalf("expected 200 OK, got %d %q", rec.Code, rec.Body.String())
			}
			if len(bot.messages) != 1 {
				t.Fatalf("expected 1 handled text message, got %d", len(bot.messages))
			}
			if got := bot.messages[0]; got != (handled{"U123", "reply-1", "查油價"}) {
				t.Errorf("unexpected message %+v", got)
			}
		})
	}
}

func TestWebhook_InvalidSignature(t *testing.T) {
	bot := &fakeBot{}
	s := New(bot, testSecret, "cron")

	rec := do(s, http.MethodPost, "/webhook", textEventBody, map[string]string{"X-Line-Signature": "bm90LWEtc2lnbmF0dXJl"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if len(bot.messages) != 0 {
		t.Error("expected no message to be handled")
	}
}

func TestWebhook_ProcessingFailure(t *testing.T) {
	bot := &fakeBot{handleErr: errors.New("reply failed")}
	s := New(bot, testSecret, "cron")

	rec := do(s, http.MethodPost, "/webhook", textEventBody, map[string]string{"X-Line-Signature": sign(textEventBody)})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestCronPush(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		header   string
		pushErr  error
		wantCode int
		wantPush bool
	}{
		{"authorized", "s3cret", "Bearer s3cret", nil, http.StatusOK, true},
		{"wrong token", "s3cret", "Bearer nope", nil, http.StatusUnauthorized, false},
		{"missing header", "s3cret", "", nil, http.StatusUnauthorized, false},
		{"no secret configured", "", "Bearer ", nil, http.StatusUnauthorized, false},
		{"push failed", "s3cret", "Bearer s3cret", errors.New("collect failed"), http.StatusInternalServerError, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bot := &fakeBot{pushErr: tt.pushErr}
			s := New(bot, testSecret, tt.secret)

			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			rec := do(s, http.MethodPost, "/cron/push", "", headers)
			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if (len(bot.pushes) > 0) != tt.wantPush {
				t.Errorf("expected push=%v, got %v", tt.wantPush, bot.pushes)
			}
			if tt.wantPush && bot.pushes[0] != recorder.TriggerHTTP {
				t.Errorf("expected HTTP trigger, got %s", bot.pushes[0])
			}
		})
	}
}

func TestHealthAndIndex(t *testing.T) {
	s := New(&fakeBot{}, testSecret, "")
	if rec := do(s, http.MethodGet, "/health", "", nil); rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
	if rec := do(s, http.MethodGet, "/", "", nil); rec.Body.String() != Banner {
		t.Errorf("unexpected banner %q", rec.Body.String())
	}
}
