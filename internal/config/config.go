package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"FuelSentinel/internal/collector"
	"FuelSentinel/internal/extractor"
	"FuelSentinel/internal/model"
	"FuelSentinel/internal/scheduler"
)

// Subscriber backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Config holds all application configuration.
type Config struct {
	LINE struct {
		ChannelSecret      string   `yaml:"channel_secret"`
		ChannelAccessToken string   `yaml:"channel_access_token"`
		AdminUserIDs       []string `yaml:"admin_user_ids"`
	} `yaml:"line"`
	Source struct {
		HistoryURL    string                `yaml:"history_url"`
		UserAgent     string                `yaml:"user_agent"`
		Candidates    []extractor.Candidate `yaml:"candidates"`
		TableSelector string                `yaml:"table_selector"`
	} `yaml:"source"`
	Extractor struct {
		Labels map[string]string `yaml:"labels"`
	} `yaml:"extractor"`
	ImageKit struct {
		PublicKey   string `yaml:"public_key"`
		PrivateKey  string `yaml:"private_key"`
		URLEndpoint string `yaml:"url_endpoint"`
		Folder      string `yaml:"folder"`
	} `yaml:"imagekit"`
	Telegram struct {
		BotToken string  `yaml:"bot_token"`
		ChatIDs  []int64 `yaml:"chat_ids"`
	} `yaml:"telegram"`
	Schedule struct {
		PushCron   string `yaml:"push_cron"`
		RecordCron string `yaml:"record_cron"`
		Timezone   string `yaml:"timezone"`
	} `yaml:"schedule"`
	Subscribers struct {
		Backend    string `yaml:"backend"`
		File       string `yaml:"file"`
		LegacyFile string `yaml:"legacy_file"`
	} `yaml:"subscribers"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Server struct {
		Addr       string `yaml:"addr"`
		CronSecret string `yaml:"cron_secret"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	HistoryRows int    `yaml:"history_rows"`
	Proxy       string `yaml:"proxy"`
}

// Load reads config from a YAML file, then a .env file, then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env never overrides variables that are already set
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("LINE_CHANNEL_SECRET", &c.LINE.ChannelSecret)
	setString("LINE_CHANNEL_ACCESS_TOKEN", &c.LINE.ChannelAccessToken)
	setString("IMAGEKIT_PUBLIC_KEY", &c.ImageKit.PublicKey)
	setString("IMAGEKIT_PRIVATE_KEY", &c.ImageKit.PrivateKey)
	setString("IMAGEKIT_URL_ENDPOINT", &c.ImageKit.URLEndpoint)
	setString("TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken)
	setString("CRON_SECRET", &c.Server.CronSecret)
	setString("SQLITE_PATH", &c.Database.SQLitePath)
	setString("HTTPS_PROXY", &c.Proxy)
	setString("CRON_PUSH", &c.Schedule.PushCron)
	setString("LOG_LEVEL", &c.Log.Level)
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Addr = ":" + v
	}
	if v := os.Getenv("LINE_ADMIN_USER_IDS"); v != "" {
		c.LINE.AdminUserIDs = splitList(v)
	}
	if v := os.Getenv("TELEGRAM_CHAT_IDS"); v != "" {
		var ids []int64
		for _, s := range splitList(v) {
			if id, err := strconv.ParseInt(s, 10, 64); err == nil {
				ids = append(ids, id)
			}
		}
		c.Telegram.ChatIDs = ids
	}
}

func (c *Config) applyDefaults() {
	if c.Source.HistoryURL == "" {
		c.Source.HistoryURL = collector.DefaultHistoryURL
	}
	if c.Source.UserAgent == "" {
		c.Source.UserAgent = collector.DefaultUserAgent
	}
	if len(c.Source.Candidates) == 0 {
		c.Source.Candidates = append([]extractor.Candidate(nil), extractor.DefaultCandidates...)
		if c.Source.TableSelector != "" {
			c.Source.Candidates[len(c.Source.Candidates)-1].Selector = c.Source.TableSelector
		}
	}
	if c.ImageKit.Folder == "" {
		c.ImageKit.Folder = "/oil-price"
	}
	// every Sunday at noon
	if c.Schedule.PushCron == "" {
		c.Schedule.PushCron = "0 0 12 * * 0"
	}
	if c.Schedule.RecordCron == "" {
		c.Schedule.RecordCron = "0 0 9 * * *"
	}
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = "Asia/Taipei"
	}
	if c.Subscribers.Backend == "" {
		c.Subscribers.Backend = BackendSQLite
	}
	if c.Subscribers.File == "" {
		c.Subscribers.File = "data/subscribed_users.txt"
	}
	if c.Subscribers.LegacyFile == "" {
		c.Subscribers.LegacyFile = "subscribed_users.txt"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/fuel_sentinel.db"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":5000"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.HistoryRows <= 0 {
		c.HistoryRows = 5
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.LINE.ChannelSecret == "" {
		return errors.New("line.channel_secret is required")
	}
	if c.LINE.ChannelAccessToken == "" {
		return errors.New("line.channel_access_token is required")
	}
	for i, cand := range c.Source.Candidates {
		if err := cand.Validate(); err != nil {
			return fmt.Errorf("source.candidates[%d]: %w", i, err)
		}
	}
	if _, err := c.ExtraLabels(); err != nil {
		return err
	}
	if _, err := scheduler.SpecParser.Parse(c.Schedule.PushCron); err != nil {
		return fmt.Errorf("schedule.push_cron: %w", err)
	}
	if _, err := scheduler.SpecParser.Parse(c.Schedule.RecordCron); err != nil {
		return fmt.Errorf("schedule.record_cron: %w", err)
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	switch c.Subscribers.Backend {
	case BackendSQLite, BackendFile:
	default:
		return fmt.Errorf("subscribers.backend must be %q or %q", BackendSQLite, BackendFile)
	}
	return nil
}

// ExtraLabels converts the configured label overrides to fuel types.
func (c *Config) ExtraLabels() (map[string]model.FuelType, error) {
	out := make(map[string]model.FuelType, len(c.Extractor.Labels))
	for raw, key := range c.Extractor.Labels {
		f, ok := model.ParseFuelType(key)
		if !ok {
			return nil, fmt.Errorf("extractor.labels[%q]: unknown fuel %q", raw, key)
		}
		out[raw] = f
	}
	return out, nil
}

// IsAdmin reports whether userID may run admin commands. With no admins
// configured every user may.
func (c *Config) IsAdmin(userID string) bool {
	if len(c.LINE.AdminUserIDs) == 0 {
		return true
	}
	for _, id := range c.LINE.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ConfigureLogging applies the log level and format to the standard logger.
func (c *Config) ConfigureLogging() error {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	log.SetLevel(level)
	if c.Log.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
