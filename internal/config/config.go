// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Site     SiteConfig     `mapstructure:"site"`
	CMS      CMSConfig      `mapstructure:"cms"`
	DB       DBConfig       `mapstructure:"db"`
	Email    EmailConfig    `mapstructure:"email"`
	TextGen  TextGenConfig  `mapstructure:"textgen"`
	ImageGen ImageGenConfig `mapstructure:"imagegen"`
	Social   SocialConfig   `mapstructure:"social"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Events   EventsConfig   `mapstructure:"events"`
	Assets   AssetsConfig   `mapstructure:"assets"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	// Webhook-triggered generation runs synchronously inside the request,
	// so those routes get a longer budget than the rest of the API.
	PipelineTimeoutSeconds int `mapstructure:"pipeline_timeout_seconds"`
}

// SiteConfig describes the canonical public site the service fronts.
type SiteConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	SiteName      string `mapstructure:"site_name"`
	AuthorName    string `mapstructure:"author_name"`
	TwitterHandle string `mapstructure:"twitter_handle"`
}

// CMSConfig holds credentials for the headless content store.
type CMSConfig struct {
	Provider       string `mapstructure:"provider"` // "sanity" or "noop"
	ProjectID      string `mapstructure:"project_id"`
	Dataset        string `mapstructure:"dataset"`
	APIVersion     string `mapstructure:"api_version"`
	Token          string `mapstructure:"token"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// DBConfig controls access to the intake database (subscribers, contacts).
type DBConfig struct {
	DSN             string `mapstructure:"dsn"`
	SubscriberTable string `mapstructure:"subscriber_table"`
	ContactTable    string `mapstructure:"contact_table"`
	MaxConns        int32  `mapstructure:"max_conns"`
}

// EmailConfig configures the transactional email provider.
type EmailConfig struct {
	APIKey         string `mapstructure:"api_key"`
	NewsletterFrom string `mapstructure:"newsletter_from"`
	ContactFrom    string `mapstructure:"contact_from"`
	OwnerAddress   string `mapstructure:"owner_address"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// TextGenConfig configures the generative text provider.
type TextGenConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// ImageGenConfig configures the image providers tried in priority order.
type ImageGenConfig struct {
	OpenAIKey      string `mapstructure:"openai_key"`
	OpenAIModel    string `mapstructure:"openai_model"`
	GeminiKey      string `mapstructure:"gemini_key"`
	GeminiModel    string `mapstructure:"gemini_model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// SocialConfig holds OAuth 1.0a credentials for direct status posting.
type SocialConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	APIKey         string `mapstructure:"api_key"`
	APISecret      string `mapstructure:"api_secret"`
	AccessToken    string `mapstructure:"access_token"`
	AccessSecret   string `mapstructure:"access_secret"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// WebhookConfig points at the generic outbound announce webhook (e.g. Zapier).
type WebhookConfig struct {
	URL            string `mapstructure:"url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// EventsConfig configures the optional Pub/Sub announce target.
type EventsConfig struct {
	Provider  string `mapstructure:"provider"` // "pubsub" or "noop"
	ProjectID string `mapstructure:"project_id"`
	TopicID   string `mapstructure:"topic_id"`
}

// AssetsConfig selects where generated images are uploaded.
type AssetsConfig struct {
	Provider  string `mapstructure:"provider"` // "cms", "gcs" or "noop"
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PRESSKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout_seconds", 30)
	v.SetDefault("server.pipeline_timeout_seconds", 300)
	v.SetDefault("site.base_url", "https://www.avablackwood.com")
	v.SetDefault("site.site_name", "Ava Blackwood")
	v.SetDefault("site.author_name", "Ava Blackwood")
	v.SetDefault("site.twitter_handle", "@avablackwood")
	v.SetDefault("cms.provider", "sanity")
	v.SetDefault("cms.dataset", "production")
	v.SetDefault("cms.api_version", "2025-07-17")
	v.SetDefault("cms.timeout_seconds", 15)
	v.SetDefault("db.subscriber_table", "subscribers")
	v.SetDefault("db.contact_table", "contacts")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("email.timeout_seconds", 10)
	v.SetDefault("textgen.model", "gemini-2.0-flash")
	v.SetDefault("textgen.timeout_seconds", 90)
	v.SetDefault("imagegen.openai_model", "dall-e-3")
	v.SetDefault("imagegen.gemini_model", "imagen-3.0-generate-002")
	v.SetDefault("imagegen.timeout_seconds", 120)
	v.SetDefault("social.timeout_seconds", 15)
	v.SetDefault("webhook.timeout_seconds", 15)
	v.SetDefault("events.provider", "noop")
	v.SetDefault("assets.provider", "cms")
	v.SetDefault("assets.prefix", "posts")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.TimeoutSeconds <= 0 {
		return fmt.Errorf("server.timeout_seconds must be > 0")
	}
	if c.Site.BaseURL == "" {
		return fmt.Errorf("site.base_url must be set")
	}
	if strings.HasSuffix(c.Site.BaseURL, "/") {
		return fmt.Errorf("site.base_url must not end with a slash")
	}
	if c.CMS.Provider == "sanity" && c.CMS.ProjectID == "" {
		return fmt.Errorf("cms.project_id must be set when cms.provider is sanity")
	}
	if c.Assets.Provider == "gcs" && c.Assets.GCSBucket == "" {
		return fmt.Errorf("assets.gcs_bucket must be set when assets.provider is gcs")
	}
	if c.Events.Provider == "pubsub" && (c.Events.ProjectID == "" || c.Events.TopicID == "") {
		return fmt.Errorf("events.project_id and events.topic_id must be set when events.provider is pubsub")
	}
	if c.Social.Enabled {
		if c.Social.APIKey == "" || c.Social.APISecret == "" ||
			c.Social.AccessToken == "" || c.Social.AccessSecret == "" {
			return fmt.Errorf("social credentials must all be set when social.enabled is true")
		}
	}
	return nil
}

// RequestTimeout returns the general per-request budget.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}

// PipelineTimeout returns the budget for generation-triggering routes.
func (c Config) PipelineTimeout() time.Duration {
	return time.Duration(c.Server.PipelineTimeoutSeconds) * time.Second
}
