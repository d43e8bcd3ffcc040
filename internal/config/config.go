package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

const (
	// DefaultFeedURL searches Google News (India edition) for NBFC and banking deal coverage
	DefaultFeedURL = "https://news.google.com/rss/search?q=(NBFC+OR+Banking)+AND+(investment+OR+deal+OR+funding+OR+acquisition+OR+merger+OR+stake)&hl=en-IN&gl=IN&ceid=IN:en"

	// DefaultAPIBaseURL is the Generative Language REST endpoint used by the "rest" API style
	DefaultAPIBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	APIStyleSDK  = "sdk"
	APIStyleREST = "rest"
)

// DefaultModels is the hand-maintained priority list of candidate models
var DefaultModels = []string{
	"gemini-2.5-flash",
	"gemini-2.0-flash",
	"gemini-1.5-flash",
	"gemini-1.5-flash-8b",
	"gemini-pro",
}

// APIKeyEnvNames lists the accepted API key variables; the first one present wins
var APIKeyEnvNames = []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"}

var (
	// ErrMissingAPIKey is returned when none of APIKeyEnvNames is set
	ErrMissingAPIKey = errors.New("API key is missing")
	// ErrHelp is returned when the user asked for --help
	ErrHelp = errors.New("help requested")
)

// Config holds everything a digest run needs. It is built once at startup
// and passed explicitly to the components that use it.
type Config struct {
	FeedURL        string
	HeadlineLimit  int
	FeedTimeout    time.Duration
	UserAgent      string
	Models         []string
	DiscoverModels bool

	APIKey     string
	APIKeyEnv  string
	APIStyle   string
	APIBaseURL string

	RetryPause     time.Duration
	RequestTimeout time.Duration

	Temperature     float32
	MaxOutputTokens int32

	ReportTitle       string
	DiscordWebhookURL string
}

type rawConfig struct {
	FeedURL       string        `long:"feed-url" env:"DIGEST_FEED_URL" description:"RSS/Atom feed to summarize (defaults to the NBFC & Banking deals search)"`
	HeadlineLimit int           `long:"limit" env:"DIGEST_HEADLINE_LIMIT" default:"10" description:"Maximum number of headlines sent to the model"`
	FeedTimeout   time.Duration `long:"feed-timeout" env:"DIGEST_FEED_TIMEOUT" default:"30s" description:"Timeout for fetching the feed"`
	UserAgent     string        `long:"user-agent" env:"DIGEST_USER_AGENT" default:"market-digest/1.0" description:"User agent for feed requests"`

	Models         []string `long:"model" short:"m" env:"DIGEST_MODELS" env-delim:"," description:"Candidate model, in priority order (repeatable)"`
	DiscoverModels bool     `long:"discover" env:"DIGEST_DISCOVER_MODELS" description:"List available models and reorder candidates against them"`

	APIStyle   string `long:"api-style" env:"DIGEST_API_STYLE" default:"sdk" choice:"sdk" choice:"rest" description:"How to call the model API"`
	APIBaseURL string `long:"api-base-url" env:"DIGEST_API_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta" description:"REST endpoint base URL (rest style only)"`

	RetryPause     time.Duration `long:"retry-pause" env:"DIGEST_RETRY_PAUSE" default:"2s" description:"Fixed pause between failed model attempts"`
	RequestTimeout time.Duration `long:"request-timeout" env:"DIGEST_REQUEST_TIMEOUT" default:"60s" description:"Timeout for a single model attempt"`

	Temperature     float32 `long:"temperature" env:"DIGEST_TEMPERATURE" default:"0.7" description:"Sampling temperature sent with every model request"`
	MaxOutputTokens int32   `long:"max-output-tokens" env:"DIGEST_MAX_OUTPUT_TOKENS" default:"1500" description:"Output token cap sent with every model request"`

	ReportTitle       string `long:"title" env:"DIGEST_TITLE" default:"NBFC & BANKING INTELLIGENCE" description:"Banner title for the printed report"`
	DiscordWebhookURL string `long:"discord-webhook" env:"DISCORD_WEBHOOK_URL" description:"Optional Discord webhook that also receives the digest"`
}

// Load parses command line arguments and the environment into a Config.
// Call godotenv.Load before this so .env values are visible.
func Load(args []string) (*Config, error) {
	var raw rawConfig

	parser := flags.NewParser(&raw, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, ErrHelp
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Config{
		FeedURL:           raw.FeedURL,
		HeadlineLimit:     raw.HeadlineLimit,
		FeedTimeout:       raw.FeedTimeout,
		UserAgent:         raw.UserAgent,
		Models:            normalizeModels(raw.Models),
		DiscoverModels:    raw.DiscoverModels,
		APIStyle:          strings.ToLower(raw.APIStyle),
		APIBaseURL:        strings.TrimRight(raw.APIBaseURL, "/"),
		RetryPause:        raw.RetryPause,
		RequestTimeout:    raw.RequestTimeout,
		Temperature:       raw.Temperature,
		MaxOutputTokens:   raw.MaxOutputTokens,
		ReportTitle:       raw.ReportTitle,
		DiscordWebhookURL: raw.DiscordWebhookURL,
	}

	if cfg.FeedURL == "" {
		cfg.FeedURL = DefaultFeedURL
	}
	if len(cfg.Models) == 0 {
		cfg.Models = append([]string(nil), DefaultModels...)
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.APIKey, cfg.APIKeyEnv = LookupAPIKey(os.LookupEnv)
	if cfg.APIKey == "" {
		return cfg, ErrMissingAPIKey
	}

	return cfg, nil
}

// LookupAPIKey returns the value and name of the first non-empty API key variable
func LookupAPIKey(lookup func(string) (string, bool)) (string, string) {
	for _, name := range APIKeyEnvNames {
		if val, ok := lookup(name); ok && strings.TrimSpace(val) != "" {
			return strings.TrimSpace(val), name
		}
	}
	return "", ""
}

// Validate checks the values that flags and env cannot constrain by themselves
func (c *Config) Validate() error {
	if c.HeadlineLimit <= 0 {
		return fmt.Errorf("headline limit must be positive, got %d", c.HeadlineLimit)
	}
	if len(c.Models) == 0 {
		return fmt.Errorf("at least one candidate model is required")
	}
	if c.APIStyle != APIStyleSDK && c.APIStyle != APIStyleREST {
		return fmt.Errorf("unknown API style %q (expected %q or %q)", c.APIStyle, APIStyleSDK, APIStyleREST)
	}
	if c.RetryPause < 0 {
		return fmt.Errorf("retry pause cannot be negative")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %v", c.Temperature)
	}
	if c.MaxOutputTokens <= 0 {
		return fmt.Errorf("max output tokens must be positive, got %d", c.MaxOutputTokens)
	}
	return nil
}

// MissingAPIKeyMessage is the line printed when no key is configured
func MissingAPIKeyMessage() string {
	return fmt.Sprintf("Error: %s is missing.", strings.Join(APIKeyEnvNames, " or "))
}

func normalizeModels(models []string) []string {
	var out []string
	for _, m := range models {
		m = strings.TrimSpace(m)
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}
