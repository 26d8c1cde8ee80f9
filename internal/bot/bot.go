// Package bot answers chat commands and broadcasts price pushes.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"FuelSentinel/internal/chart"
	"FuelSentinel/internal/extractor"
	"FuelSentinel/internal/imagehost"
	"FuelSentinel/internal/notifier"
	"FuelSentinel/internal/recorder"
	"FuelSentinel/internal/subscriber"
)

// Chat commands.
const (
	CmdPrices      = "查油價"
	CmdPricesChart = "油價"
	CmdTrend       = "查趨勢"
	CmdHistory     = "查歷史"
	CmdHelp        = "查說明"
	CmdSubscribe   = "訂閱"
	CmdUnsubscribe = "取消訂閱"
	CmdCount       = "訂閱人數"
	CmdTestPush    = "測試推播"
)

// PriceSource produces a fresh price series.
type PriceSource interface {
	Collect(ctx context.Context) (*extractor.Result, error)
}

// Bot wires the price source to chat replies, pushes and records.
type Bot struct {
	Source      PriceSource
	Messenger   notifier.Messenger
	Uploader    imagehost.Uploader // nil disables chart replies
	Alerter     notifier.Alerter
	Subscribers subscriber.Store
	Recorder    recorder.Recorder
	HistoryRows int
	IsAdmin     func(userID string) bool
	Now         func() time.Time
}

// New creates a Bot with no-op alerting and recording. Callers replace the
// optional fields as configured.
func New(src PriceSource, m notifier.Messenger, subs subscriber.Store) *Bot {
	return &Bot{
		Source:      src,
		Messenger:   m,
		Alerter:     notifier.NoopAlerter{},
		Subscribers: subs,
		Recorder:    recorder.NewNoopRecorder(),
		HistoryRows: 5,
		IsAdmin:     func(string) bool { return true },
		Now:         time.Now,
	}
}

// HandleText answers one text message through the reply token.
func (b *Bot) HandleText(ctx context.Context, userID, replyToken, text string) error {
	msgs := b.Respond(ctx, userID, text)
	if err := b.Messenger.Reply(ctx, replyToken, msgs...); err != nil {
		return fmt.Errorf("reply to %s: %w", userID, err)
	}
	return nil
}

// Respond builds the reply to a command. Failures are logged and turned
// into a short apology.
func (b *Bot) Respond(ctx context.Context, userID, text string) []notifier.Message {
	cmd := strings.TrimSpace(text)
	logger := log.WithFields(log.Fields{"user": userID, "command": cmd})
	logger.Info("received message")

	switch cmd {
	case CmdPrices:
		res, err := b.collect(ctx)
		if err != nil {
			return text1(notifier.Apology)
		}
		return text1(notifier.FormatPrices(res.Series))

	case CmdPricesChart:
		res, err := b.collect(ctx)
		if err != nil {
			return text1(notifier.Apology)
		}
		msgs := text1(notifier.FormatPrices(res.Series))
		if url, err := b.chartURL(ctx, res); err != nil {
			logger.WithError(err).Warn("chart unavailable, replying with text only")
		} else {
			msgs = append(msgs, notifier.Message{ImageURL: url})
		}
		return msgs

	case CmdTrend:
		res, err := b.collect(ctx)
		if err != nil {
			return text1(notifier.Apology)
		}
		url, err := b.chartURL(ctx, res)
		if err != nil {
			logger.WithError(err).Error("chart failed")
			return text1(notifier.ChartFailedText)
		}
		return []notifier.Message{{ImageURL: url}}

	case CmdHistory:
		res, err := b.collect(ctx)
		if err != nil {
			return text1(notifier.Apology)
		}
		return text1(notifier.FormatHistory(res.Series, b.HistoryRows))

	case CmdHelp:
		return text1(notifier.HelpText)

	case CmdSubscribe:
		added, err := b.Subscribers.Add(userID)
		if err != nil {
			logger.WithError(err).Error("subscribe failed")
			return text1(notifier.Apology)
		}
		if !added {
			return text1(notifier.AlreadySubText)
		}
		return text1(notifier.SubscribedText)

	case CmdUnsubscribe:
		removed, err := b.Subscribers.Remove(userID)
		if err != nil {
			logger.WithError(err).Error("unsubscribe failed")
			return text1(notifier.Apology)
		}
		if !removed {
			return text1(notifier.NotSubText)
		}
		return text1(notifier.UnsubText)

	case CmdCount:
		n, err := b.Subscribers.Count()
		if err != nil {
			logger.WithError(err).Error("count subscribers failed")
			return text1(notifier.Apology)
		}
		return text1(notifier.FormatSubscriberCount(n))

	case CmdTestPush:
		if !b.IsAdmin(userID) {
			return text1(notifier.NotAllowedText)
		}
		if _, err := b.PushAll(ctx, recorder.TriggerManual); err != nil {
			logger.WithError(err).Error("test push failed")
			return text1(notifier.Apology)
		}
		return text1(notifier.TestPushDone)

	default:
		return text1(notifier.UsageHint)
	}
}

// PushAll sends the current prices to every subscriber. Individual delivery
// failures are counted, not returned.
func (b *Bot) PushAll(ctx context.Context, trigger string) (*recorder.PushEvent, error) {
	evt := &recorder.PushEvent{Trigger: trigger}
	defer func() {
		if err := b.Recorder.RecordPush(evt); err != nil {
			log.WithError(err).Error("record push event")
		}
	}()

	res, err := b.collect(ctx)
	if err != nil {
		evt.Note = "collect failed: " + err.Error()
		return evt, fmt.Errorf("collect prices: %w", err)
	}
	if latest, ok := res.Series.Latest(); ok {
		evt.LatestDate = latest.Date
	}

	ids, err := b.Subscribers.List()
	if err != nil {
		evt.Note = "list subscribers failed: " + err.Error()
		return evt, fmt.Errorf("list subscribers: %w", err)
	}
	evt.Recipients = len(ids)
	if len(ids) == 0 {
		log.Info("no subscribers, skipping push")
		return evt, nil
	}

	msgs := []notifier.Message{{Text: notifier.FormatPush(res.Series)}}
	if url, err := b.chartURL(ctx, res); err == nil {
		msgs[0].ImageURL = url
	} else if !errors.Is(err, errNoUploader) {
		log.WithError(err).Warn("push chart unavailable")
	}

	for _, id := range ids {
		if err := b.Messenger.Push(ctx, id, msgs...); err != nil {
			evt.Failed++
			log.WithField("user", id).WithError(err).Warn("push failed")
			continue
		}
		evt.Delivered++
	}
	if evt.Failed > 0 {
		evt.Note = fmt.Sprintf("%d push failed", evt.Failed)
	}
	log.WithFields(log.Fields{
		"trigger":   trigger,
		"delivered": evt.Delivered,
		"failed":    evt.Failed,
	}).Info("push finished")
	return evt, nil
}

// RecordPrices collects the current series and stores it.
func (b *Bot) RecordPrices(ctx context.Context) error {
	res, err := b.collect(ctx)
	if err != nil {
		return err
	}
	n, err := b.Recorder.RecordPrices(res.Source, res.Series)
	if err != nil {
		return fmt.Errorf("record prices: %w", err)
	}
	log.WithFields(log.Fields{"source": res.Source, "prices": n}).Info("recorded prices")
	return nil
}

// collect fetches a fresh series and alerts operators when the page could
// not be read or carried labels with no mapping.
func (b *Bot) collect(ctx context.Context) (*extractor.Result, error) {
	res, err := b.Source.Collect(ctx)
	if err != nil {
		log.WithError(err).Error("collect prices")
		b.alert(ctx, notifier.FormatExtractionAlert(err, nil))
		return nil, err
	}
	if len(res.Unmapped) > 0 {
		b.alert(ctx, notifier.FormatExtractionAlert(nil, res.Unmapped))
	}
	return res, nil
}

func (b *Bot) alert(ctx context.Context, text string) {
	if err := b.Alerter.Alert(ctx, text); err != nil {
		log.WithError(err).Warn("operator alert failed")
	}
}

var errNoUploader = errors.New("image upload not configured")

func (b *Bot) chartURL(ctx context.Context, res *extractor.Result) (string, error) {
	if b.Uploader == nil {
		return "", errNoUploader
	}
	img, err := chart.Render(res.Series)
	if err != nil {
		return "", fmt.Errorf("render chart: %w", err)
	}
	url, err := b.Uploader.Upload(ctx, imagehost.ChartFileName(b.Now()), img)
	if err != nil {
		return "", fmt.Errorf("upload chart: %w", err)
	}
	return url, nil
}

func text1(s string) []notifier.Message {
	return []notifier.Message{{Text: s}}
}
