package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/apodervinskas/Veteran-TestBot/pkg/filesystem"
	"github.com/apodervinskas/Veteran-TestBot/pkg/urlutils"
)

// DefaultConfigFile is looked up when no config path is given
const DefaultConfigFile = "config.yaml"

// DefaultEnvFile is loaded into the environment when present
const DefaultEnvFile = ".env"

// webhookSecretPattern is the character set Telegram accepts for secret_token
var webhookSecretPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,256}$`)

// ErrMissingBotToken is returned when the Telegram bot token is not set
var ErrMissingBotToken = errors.New("TELEGRAM_TOKEN is not set")

// Config holds the central application configuration. It is built once at
// startup and not modified afterwards.
type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	RSS      RSSConfig      `mapstructure:"rss"`
	NewsPage NewsPageConfig `mapstructure:"news_page"`
	Facebook FacebookConfig `mapstructure:"facebook"`
	HTTP     HTTPConfig     `mapstructure:"http"`
}

// TelegramConfig configures the bot transport
type TelegramConfig struct {
	Token          string        `mapstructure:"token"`
	WebhookURL     string        `mapstructure:"webhook_url"` // empty means long polling
	WebhookSecret  string        `mapstructure:"webhook_secret"`
	Debug          bool          `mapstructure:"debug"`
	PollTimeout    int           `mapstructure:"poll_timeout"` // seconds
	HandlerTimeout time.Duration `mapstructure:"handler_timeout"`
}

// RSSConfig configures the syndication feeds
type RSSConfig struct {
	CityDnipro  string        `mapstructure:"city_dnipro"`
	MinVeterans string        `mapstructure:"minveterans"`
	Limit       int           `mapstructure:"limit"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// NewsPageConfig configures the scraped news page
type NewsPageConfig struct {
	URL     string        `mapstructure:"url"`
	Limit   int           `mapstructure:"limit"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// FacebookConfig configures the Graph API page source
type FacebookConfig struct {
	PageID     string        `mapstructure:"page_id"`
	Token      string        `mapstructure:"token"`
	PostLimit  int           `mapstructure:"post_limit"`
	GraphURL   string        `mapstructure:"graph_url"`
	APIVersion string        `mapstructure:"api_version"`
	Timeout    time.Duration `mapstructure:"timeout"`

	MinInterval time.Duration `mapstructure:"min_interval"` // between Graph API calls
}

// HTTPConfig configures the HTTP server and outgoing requests
type HTTPConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	UserAgent  string `mapstructure:"user_agent"`
	APIToken   string `mapstructure:"api_token"` // bearer token for /api/v1, empty leaves it open
}

// envBindings maps config keys to the environment variables that set them
var envBindings = map[string]string{
	"telegram.token":           "TELEGRAM_TOKEN",
	"telegram.webhook_url":     "TELEGRAM_WEBHOOK_URL",
	"telegram.webhook_secret":  "TELEGRAM_WEBHOOK_SECRET",
	"telegram.debug":           "TELEGRAM_DEBUG",
	"telegram.poll_timeout":    "TELEGRAM_POLL_TIMEOUT",
	"telegram.handler_timeout": "TELEGRAM_HANDLER_TIMEOUT",
	"rss.city_dnipro":          "RSS_CITY_DNIPRO",
	"rss.minveterans":          "RSS_MINVETERANS",
	"rss.limit":                "RSS_LIMIT",
	"rss.timeout":              "RSS_TIMEOUT",
	"news_page.url":            "MVA_NEWS_URL",
	"news_page.limit":          "NEWS_PAGE_LIMIT",
	"news_page.timeout":        "NEWS_PAGE_TIMEOUT",
	"facebook.page_id":         "FACEBOOK_PAGE_ID",
	"facebook.token":           "FACEBOOK_TOKEN",
	"facebook.post_limit":      "FACEBOOK_POST_LIMIT",
	"facebook.graph_url":       "FACEBOOK_GRAPH_URL",
	"facebook.api_version":     "FACEBOOK_API_VERSION",
	"facebook.timeout":         "FACEBOOK_TIMEOUT",
	"facebook.min_interval":    "FACEBOOK_MIN_INTERVAL",
	"http.listen_addr":         "HTTP_LISTEN_ADDR",
	"http.user_agent":          "HTTP_USER_AGENT",
	"http.api_token":           "HTTP_API_TOKEN",
}

// Options selects the files Load reads
type Options struct {
	ConfigPath string // YAML file; empty means DefaultConfigFile if it exists
	EnvFile    string // dotenv file; empty means DefaultEnvFile if it exists
}

// Load reads the dotenv file, the optional YAML file and the environment.
// Environment variables win over the file, the file wins over defaults.
func Load(opts Options) (*Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", env, err)
		}
	}

	path, required := opts.ConfigPath, opts.ConfigPath != ""
	if !required {
		path = DefaultConfigFile
	}
	path = filesystem.ResolvePath(path)

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		slog.Debug("Loaded config file", "path", path)
	} else if required {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	config.normalize()
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.poll_timeout", 60)
	v.SetDefault("telegram.handler_timeout", 60*time.Second)

	v.SetDefault("rss.limit", 5)
	v.SetDefault("rss.timeout", 20*time.Second)

	v.SetDefault("news_page.limit", 6)
	v.SetDefault("news_page.timeout", 20*time.Second)

	v.SetDefault("facebook.post_limit", 5)
	v.SetDefault("facebook.graph_url", "https://graph.facebook.com")
	v.SetDefault("facebook.api_version", "v19.0")
	v.SetDefault("facebook.timeout", 15*time.Second)
	v.SetDefault("facebook.min_interval", 0)

	v.SetDefault("http.listen_addr", ":8080")
	v.SetDefault("http.user_agent", "veteran-bot/1.0")
}

// loadEnvFile loads a dotenv file without overriding variables already set
func loadEnvFile(path string) error {
	required := path != ""
	if !required {
		path = DefaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error loading env file %s: %w", path, err)
	}

	slog.Debug("Loaded env file", "path", path)
	return nil
}

func (c *Config) normalize() {
	c.Telegram.Token = strings.TrimSpace(c.Telegram.Token)
	c.Telegram.WebhookURL = strings.TrimSpace(c.Telegram.WebhookURL)
	c.Telegram.WebhookSecret = strings.TrimSpace(c.Telegram.WebhookSecret)
	c.HTTP.APIToken = strings.TrimSpace(c.HTTP.APIToken)
	c.RSS.CityDnipro = strings.TrimSpace(c.RSS.CityDnipro)
	c.RSS.MinVeterans = strings.TrimSpace(c.RSS.MinVeterans)
	c.NewsPage.URL = strings.TrimSpace(c.NewsPage.URL)
	c.Facebook.PageID = strings.TrimSpace(c.Facebook.PageID)
	c.Facebook.Token = strings.TrimSpace(c.Facebook.Token)
}

// Validate checks limits and timeouts. The bot token is only checked when
// requireToken is set, since preview commands never talk to Telegram.
func (c *Config) Validate(requireToken bool) error {
	if requireToken && c.Telegram.Token == "" {
		return ErrMissingBotToken
	}

	limits := map[string]int{
		"RSS_LIMIT":           c.RSS.Limit,
		"NEWS_PAGE_LIMIT":     c.NewsPage.Limit,
		"FACEBOOK_POST_LIMIT": c.Facebook.PostLimit,
	}
	for name, value := range limits {
		if value < 1 {
			return fmt.Errorf("%s must be positive, got %d", name, value)
		}
	}

	timeouts := map[string]time.Duration{
		"RSS_TIMEOUT":       c.RSS.Timeout,
		"NEWS_PAGE_TIMEOUT": c.NewsPage.Timeout,
		"FACEBOOK_TIMEOUT":  c.Facebook.Timeout,
	}
	for name, value := range timeouts {
		if value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, value)
		}
	}

	if c.Facebook.MinInterval < 0 {
		return fmt.Errorf("FACEBOOK_MIN_INTERVAL must not be negative, got %s", c.Facebook.MinInterval)
	}

	if c.WebhookMode() && !urlutils.IsValidURL(c.Telegram.WebhookURL) {
		return fmt.Errorf("TELEGRAM_WEBHOOK_URL must be an absolute URL, got %q", c.Telegram.WebhookURL)
	}

	if c.Telegram.WebhookSecret != "" && !webhookSecretPattern.MatchString(c.Telegram.WebhookSecret) {
		return errors.New("TELEGRAM_WEBHOOK_SECRET must be 1-256 characters of A-Z, a-z, 0-9, _ and -")
	}

	if c.Telegram.PollTimeout < 0 {
		return fmt.Errorf("TELEGRAM_POLL_TIMEOUT must not be negative, got %d", c.Telegram.PollTimeout)
	}

	return nil
}

// WebhookMode reports whether updates arrive through a webhook
func (c *Config) WebhookMode() bool {
	return c.Telegram.WebhookURL != ""
}
