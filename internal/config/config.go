package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "INCIDENT_INGEST_CONFIG"
	storageAccountEnv = "AZURE_STORAGE_ACCOUNT"
	storageKeyEnv     = "AZURE_STORAGE_KEY"
	databaseDSNEnv    = "DATABASE_DSN"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	metricsAddrEnv    = "METRICS_ADDR"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Data          DataConfig         `yaml:"data"`
	Blob          BlobConfig         `yaml:"blob"`
	Upload        UploadConfig       `yaml:"upload"`
	Journal       JournalConfig      `yaml:"journal"`
	Notifications NotificationConfig `yaml:"notifications"`
	Enrich        EnrichConfig       `yaml:"enrich"`
	Watch         WatchConfig        `yaml:"watch"`
}

// LoggingConfig selects console log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DataConfig describes where the JSON collections live.
type DataConfig struct {
	// Dir holds the four local artifacts (events, sources, associations,
	// aggregate).
	Dir string `yaml:"dir"`
	// RemoteBaseURL is the public read endpoint of the blob store; the
	// aggregate snapshot is fetched from it before falling back to Dir.
	RemoteBaseURL string `yaml:"remoteBaseUrl"`
}

// BlobConfig wires the Azure Blob Storage write path.
type BlobConfig struct {
	Account   string `yaml:"account"`
	Key       string `yaml:"key"`
	Container string `yaml:"container"`
}

// UploadConfig bounds the batch retry policy for blob uploads.
type UploadConfig struct {
	MaxAttempts int           `yaml:"maxAttempts"`
	BackoffBase time.Duration `yaml:"backoffBase"`
}

// JournalConfig describes the optional Postgres submission journal.
type JournalConfig struct {
	DSN string `yaml:"dsn"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// EnrichConfig controls fetching of source-page titles.
type EnrichConfig struct {
	Enabled bool          `yaml:"enabled"`
	Timeout time.Duration `yaml:"timeout"`
}

// WatchConfig defines the periodic revalidation job.
type WatchConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	MetricsAddr    string         `yaml:"metricsAddr"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the watch timezone string to a time.Location.
func (w WatchConfig) Location() *time.Location {
	if w.location != nil {
		return w.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(storageAccountEnv); v != "" {
		c.Blob.Account = v
	}

	if v := os.Getenv(storageKeyEnv); v != "" {
		c.Blob.Key = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Journal.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(metricsAddrEnv); v != "" {
		c.Watch.MetricsAddr = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Watch.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Watch.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Data.Dir != "" {
		base.Data.Dir = override.Data.Dir
	}
	if override.Data.RemoteBaseURL != "" {
		base.Data.RemoteBaseURL = override.Data.RemoteBaseURL
	}

	if override.Blob.Account != "" {
		base.Blob.Account = override.Blob.Account
	}
	if override.Blob.Key != "" {
		base.Blob.Key = override.Blob.Key
	}
	if override.Blob.Container != "" {
		base.Blob.Container = override.Blob.Container
	}

	if override.Upload.MaxAttempts > 0 {
		base.Upload.MaxAttempts = override.Upload.MaxAttempts
	}
	if override.Upload.BackoffBase > 0 {
		base.Upload.BackoffBase = override.Upload.BackoffBase
	}

	if override.Journal.DSN != "" {
		base.Journal.DSN = override.Journal.DSN
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Enrich.Enabled {
		base.Enrich.Enabled = true
	}
	if override.Enrich.Timeout > 0 {
		base.Enrich.Timeout = override.Enrich.Timeout
	}

	if override.Watch.CronExpression != "" {
		base.Watch.CronExpression = override.Watch.CronExpression
	}
	if override.Watch.Timezone != "" {
		base.Watch.Timezone = override.Watch.Timezone
	}
	if override.Watch.MetricsAddr != "" {
		base.Watch.MetricsAddr = override.Watch.MetricsAddr
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Data: DataConfig{
			Dir:           "public/data",
			RemoteBaseURL: "https://stgsuhn5s3.blob.core.windows.net",
		},
		Blob:    BlobConfig{Container: "data"},
		Upload:  UploadConfig{MaxAttempts: 3, BackoffBase: 2 * time.Second},
		Enrich:  EnrichConfig{Enabled: false, Timeout: 10 * time.Second},
		Watch:   WatchConfig{CronExpression: "0 * * * *", Timezone: defaultTimezone, MetricsAddr: ":9105", location: tz},
		Journal: JournalConfig{DSN: ""},
	}
}
