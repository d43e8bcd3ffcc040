package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads so the host environment cannot leak in.
// go-flags treats a present-but-empty variable as a value, so they must be unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"GOOGLE_API_KEY", "GEMINI_API_KEY",
		"DIGEST_FEED_URL", "DIGEST_HEADLINE_LIMIT", "DIGEST_FEED_TIMEOUT", "DIGEST_USER_AGENT",
		"DIGEST_MODELS", "DIGEST_DISCOVER_MODELS", "DIGEST_API_STYLE", "DIGEST_API_BASE_URL",
		"DIGEST_RETRY_PAUSE", "DIGEST_REQUEST_TIMEOUT", "DIGEST_TITLE", "DISCORD_WEBHOOK_URL",
		"DIGEST_TEMPERATURE", "DIGEST_MAX_OUTPUT_TOKENS",
	} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "google-key")

	cfg, err := Load([]string{})
	require.NoError(t, err)

	assert.Equal(t, DefaultFeedURL, cfg.FeedURL)
	assert.Equal(t, 10, cfg.HeadlineLimit)
	assert.Equal(t, 30*time.Second, cfg.FeedTimeout)
	assert.Equal(t, DefaultModels, cfg.Models)
	assert.Equal(t, APIStyleSDK, cfg.APIStyle)
	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, 2*time.Second, cfg.RetryPause)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.Equal(t, float32(0.7), cfg.Temperature)
	assert.Equal(t, int32(1500), cfg.MaxOutputTokens)
	assert.Equal(t, "NBFC & BANKING INTELLIGENCE", cfg.ReportTitle)
	assert.False(t, cfg.DiscoverModels)
	assert.Empty(t, cfg.DiscordWebhookURL)
	assert.Equal(t, "google-key", cfg.APIKey)
	assert.Equal(t, "GOOGLE_API_KEY", cfg.APIKeyEnv)
}

func TestLoad_DefaultModelsAreCopied(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "key")

	cfg, err := Load([]string{})
	require.NoError(t, err)

	cfg.Models[0] = "changed"
	assert.Equal(t, "gemini-2.5-flash", DefaultModels[0])
}

func TestLoad_APIKeyPrecedence(t *testing.T) {
	tests := []struct {
		name        string
		googleKey   string
		geminiKey   string
		expectKey   string
		expectEnv   string
		expectError error
	}{
		{
			name:      "google key wins when both are set",
			googleKey: "g-key",
			geminiKey: "m-key",
			expectKey: "g-key",
			expectEnv: "GOOGLE_API_KEY",
		},
		{
			name:      "gemini key used when google key is absent",
			geminiKey: "m-key",
			expectKey: "m-key",
			expectEnv: "GEMINI_API_KEY",
		},
		{
			name:      "blank google key is skipped",
			googleKey: "   ",
			geminiKey: "m-key",
			expectKey: "m-key",
			expectEnv: "GEMINI_API_KEY",
		},
		{
			name:        "no key at all",
			expectError: ErrMissingAPIKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if tt.googleKey != "" {
				t.Setenv("GOOGLE_API_KEY", tt.googleKey)
			}
			if tt.geminiKey != "" {
				t.Setenv("GEMINI_API_KEY", tt.geminiKey)
			}

			cfg, err := Load([]string{})
			if tt.expectError != nil {
				require.ErrorIs(t, err, tt.expectError)
				require.NotNil(t, cfg)
				assert.Empty(t, cfg.APIKey)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectKey, cfg.APIKey)
			assert.Equal(t, tt.expectEnv, cfg.APIKeyEnv)
		})
	}
}

func TestLoad_FlagsAndEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("DIGEST_MODELS", "model-a, model-b,,model-c")
	t.Setenv("DIGEST_RETRY_PAUSE", "500ms")
	t.Setenv("DIGEST_TEMPERATURE", "0.2")

	cfg, err := Load([]string{"--limit", "5", "--api-style", "rest", "--api-base-url", "http://localhost:9999/v1beta/", "--discover", "--max-output-tokens", "900"})
	require.NoError(t, err)

	assert.Equal(t, []string{"model-a", "model-b", "model-c"}, cfg.Models)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryPause)
	assert.Equal(t, 5, cfg.HeadlineLimit)
	assert.Equal(t, APIStyleREST, cfg.APIStyle)
	assert.Equal(t, "http://localhost:9999/v1beta", cfg.APIBaseURL)
	assert.True(t, cfg.DiscoverModels)
	assert.Equal(t, float32(0.2), cfg.Temperature)
	assert.Equal(t, int32(900), cfg.MaxOutputTokens)
}

func TestLoad_ModelFlagsKeepOrder(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "key")

	cfg, err := Load([]string{"-m", "first", "-m", "second"})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, cfg.Models)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name          string
		args          []string
		errorContains string
	}{
		{
			name:          "zero headline limit",
			args:          []string{"--limit", "0"},
			errorContains: "headline limit",
		},
		{
			name:          "unknown api style",
			args:          []string{"--api-style", "grpc"},
			errorContains: "failed to parse configuration",
		},
		{
			name:          "negative pause",
			args:          []string{"--retry-pause=-1s"},
			errorContains: "retry pause",
		},
		{
			name:          "temperature out of range",
			args:          []string{"--temperature", "3.5"},
			errorContains: "temperature",
		},
		{
			name:          "zero output tokens",
			args:          []string{"--max-output-tokens", "0"},
			errorContains: "max output tokens",
		},
		{
			name:          "unknown flag",
			args:          []string{"--nope"},
			errorContains: "failed to parse configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("GOOGLE_API_KEY", "key")

			_, err := Load(tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestLoad_Help(t *testing.T) {
	clearEnv(t)

	cfg, err := Load([]string{"--help"})
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrHelp)
}

func TestLookupAPIKey(t *testing.T) {
	env := map[string]string{"GEMINI_API_KEY": " padded "}
	lookup := func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}

	key, name := LookupAPIKey(lookup)
	assert.Equal(t, "padded", key)
	assert.Equal(t, "GEMINI_API_KEY", name)
}

func TestMissingAPIKeyMessage(t *testing.T) {
	assert.Equal(t, "Error: GOOGLE_API_KEY or GEMINI_API_KEY is missing.", MissingAPIKeyMessage())
}
