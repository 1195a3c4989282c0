package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/lukman83/promobot/internal/models"
)

// Config holds all application configuration.
type Config struct {
	// Storage
	DatabaseURL string
	RedisAddr   string

	// Affiliate partner API
	AffiliateBaseURL  string
	AffiliateToken    string
	AffiliateSourceID string

	// Public marketplace API
	MarketplaceBaseURL string
	MarketplaceSite    string
	MarketplaceToken   string

	// Copy generation
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	// Channels
	TelegramBotToken      string
	TelegramChatID        string
	WhatsAppToken         string
	WhatsAppPhoneNumberID string
	WhatsAppTo            string
	TwitterAPIKey         string
	TwitterAPISecret      string
	TwitterAccessToken    string
	TwitterAccessSecret   string

	// Pipeline
	Keywords       []string
	KeywordsFile   string
	Schedule       string
	Channels       []models.Channel
	SendDelay      time.Duration
	GenConcurrency int
	SearchLimit    int
	Locale         string
	CurrencySymbol string

	// Rate limiting
	RatePerSecond float64
	RateBurst     int
	ProxyURL      string

	// HTTP server
	HTTPPort string
	APIKey   string
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MarketplaceSite: "MLB",
		OpenAIModel:     "gpt-4o-mini",
		Schedule:        "@every 2h",
		Channels:        append([]models.Channel(nil), models.Channels...),
		SendDelay:       5 * time.Second,
		GenConcurrency:  3,
		SearchLimit:     10,
		Locale:          "pt-BR",
		CurrencySymbol:  "R$",
		RatePerSecond:   2.0,
		RateBurst:       3,
		HTTPPort:        "8080",
	}
}

// LoadFromEnv loads .env file (if present) then overrides config from environment variables.
func (c *Config) LoadFromEnv() error {
	// Auto-load .env file; silently ignored if missing
	_ = godotenv.Load()

	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	str("DATABASE_URL", &c.DatabaseURL)
	str("REDIS_ADDR", &c.RedisAddr)
	str("AFFILIATE_BASE_URL", &c.AffiliateBaseURL)
	str("AFFILIATE_APP_TOKEN", &c.AffiliateToken)
	str("AFFILIATE_SOURCE_ID", &c.AffiliateSourceID)
	str("MARKETPLACE_BASE_URL", &c.MarketplaceBaseURL)
	str("MARKETPLACE_SITE", &c.MarketplaceSite)
	str("MARKETPLACE_ACCESS_TOKEN", &c.MarketplaceToken)
	str("OPENAI_API_KEY", &c.OpenAIKey)
	str("OPENAI_MODEL", &c.OpenAIModel)
	str("OPENAI_BASE_URL", &c.OpenAIBaseURL)
	str("TELEGRAM_BOT_TOKEN", &c.TelegramBotToken)
	str("TELEGRAM_CHAT_ID", &c.TelegramChatID)
	str("WHATSAPP_TOKEN", &c.WhatsAppToken)
	str("WHATSAPP_PHONE_NUMBER_ID", &c.WhatsAppPhoneNumberID)
	str("WHATSAPP_TO", &c.WhatsAppTo)
	str("TWITTER_API_KEY", &c.TwitterAPIKey)
	str("TWITTER_API_SECRET", &c.TwitterAPISecret)
	str("TWITTER_ACCESS_TOKEN", &c.TwitterAccessToken)
	str("TWITTER_ACCESS_SECRET", &c.TwitterAccessSecret)
	str("PROMO_KEYWORDS_FILE", &c.KeywordsFile)
	str("PROMO_SCHEDULE", &c.Schedule)
	str("PROMO_LOCALE", &c.Locale)
	str("PROMO_CURRENCY_SYMBOL", &c.CurrencySymbol)
	str("PROXY_URL", &c.ProxyURL)
	str("PORT", &c.HTTPPort)
	str("PROMO_API_KEY", &c.APIKey)

	var errs []error
	if v := os.Getenv("PROMO_KEYWORDS"); v != "" {
		c.Keywords = SplitList(v)
	}
	if v := os.Getenv("PROMO_CHANNELS"); v != "" {
		chs, err := ParseChannels(v)
		if err != nil {
			errs = append(errs, err)
		} else {
			c.Channels = chs
		}
	}
	if v := os.Getenv("PROMO_SEND_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("PROMO_SEND_DELAY: %w", err))
		} else {
			c.SendDelay = d
		}
	}
	if v := os.Getenv("PROMO_GEN_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.GenConcurrency = n
		}
	}
	if v := os.Getenv("PROMO_SEARCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SearchLimit = n
		}
	}
	if v := os.Getenv("RATE_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RatePerSecond = f
		}
	}
	if v := os.Getenv("RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateBurst = n
		}
	}
	return errors.Join(errs...)
}

// ResolveKeywords merges inline keywords with the keyword file, if any.
func (c *Config) ResolveKeywords() error {
	if c.KeywordsFile == "" {
		return nil
	}
	kws, err := LoadKeywordsFile(c.KeywordsFile)
	if err != nil {
		return err
	}
	c.Keywords = mergeKeywords(c.Keywords, kws)
	return nil
}

// Validate reports settings that make a pipeline run impossible. Missing
// channel or partner credentials are not errors: those units are skipped.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Keywords) == 0 {
		errs = append(errs, errors.New("no keywords: set PROMO_KEYWORDS or PROMO_KEYWORDS_FILE"))
	}
	if c.SendDelay < 0 {
		errs = append(errs, errors.New("PROMO_SEND_DELAY must not be negative"))
	}
	if c.RatePerSecond <= 0 {
		errs = append(errs, errors.New("RATE_PER_SECOND must be positive"))
	}
	return errors.Join(errs...)
}

// ChannelEnabled reports whether ch is in the enabled channel list.
func (c *Config) ChannelEnabled(ch models.Channel) bool {
	for _, e := range c.Channels {
		if e == ch {
			return true
		}
	}
	return false
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func ParseChannels(s string) ([]models.Channel, error) {
	var out []models.Channel
	for _, name := range SplitList(s) {
		ch, ok := models.ParseChannel(strings.ToLower(name))
		if !ok {
			return nil, fmt.Errorf("PROMO_CHANNELS: unknown channel %q", name)
		}
		out = append(out, ch)
	}
	return out, nil
}
