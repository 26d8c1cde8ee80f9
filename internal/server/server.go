// Package server exposes the LINE webhook and the cron trigger over HTTP.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	log "github.com/sirupsen/logrus"

	"FuelSentinel/internal/recorder"
)

// Banner is the body of GET /.
const Banner = "油價查詢機器人服務正常運作中"

// Bot handles the work behind each endpoint.
type Bot interface {
	HandleText(ctx context.Context, userID, replyToken, text string) error
	PushAll(ctx context.Context, trigger string) (*recorder.PushEvent, error)
}

// Server routes webhook and cron requests to the bot.
type Server struct {
	echo          *echo.Echo
	bot           Bot
	channelSecret string
	cronSecret    string
}

// New creates a Server with all routes registered.
func New(bot Bot, channelSecret, cronSecret string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			log.WithFields(log.Fields{"method": v.Method, "uri": v.URI, "status": v.Status}).Debug("request")
			return nil
		},
	}))

	s := &Server{echo: e, bot: bot, channelSecret: channelSecret, cronSecret: cronSecret}
	e.GET("/", s.index)
	e.GET("/health", s.health)
	e.POST("/webhook", s.webhook)
	e.POST("/callback", s.webhook)
	e.POST("/cron/push", s.cronPush)
	return s
}

// Handler returns the HTTP handler, for tests and custom listeners.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	log.WithField("addr", addr).Info("http server listening")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) index(c echo.Context) error {
	return c.String(http.StatusOK, Banner)
}

func (s *Server) health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) webhook(c echo.Context) error {
	cb, err := webhook.ParseRequest(s.channelSecret, c.Request())
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			log.Warn("invalid webhook signature")
		} else {
			log.WithError(err).Warn("unreadable webhook request")
		}
		return c.String(http.StatusBadRequest, "Bad Request")
	}

	ctx := c.Request().Context()
	for _, event := range cb.Events {
		e, ok := event.(webhook.MessageEvent)
		if !ok {
			continue
		}
		msg, ok := e.Message.(webhook.TextMessageContent)
		if !ok {
			continue
		}
		if err := s.bot.HandleText(ctx, sourceUserID(e.Source), e.ReplyToken, msg.Text); err != nil {
			log.WithError(err).Error("handle message")
			return c.String(http.StatusInternalServerError, "Internal Server Error")
		}
	}
	return c.String(http.StatusOK, "OK")
}

func (s *Server) cronPush(c echo.Context) error {
	if !s.authorizedCron(c.Request().Header.Get(echo.HeaderAuthorization)) {
		log.Warn("unauthorized cron request")
		return c.String(http.StatusUnauthorized, "Unauthorized")
	}
	log.Info("cron request received, pushing")
	if _, err := s.bot.PushAll(c.Request().Context(), recorder.TriggerHTTP); err != nil {
		log.WithError(err).Error("cron push")
		return c.String(http.StatusInternalServerError, "Internal Server Error")
	}
	return c.String(http.StatusOK, "OK")
}

// authorizedCron rejects everything when no cron secret is configured.
func (s *Server) authorizedCron(header string) bool {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || s.cronSecret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.cronSecret)) == 1
}

func sourceUserID(src webhook.SourceInterface) string {
	switch s := src.(type) {
	case webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.UserId
	case webhook.RoomSource:
		return s.UserId
	default:
		return ""
	}
}
