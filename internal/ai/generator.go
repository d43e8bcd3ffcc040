package ai

import (
	"context"
	"fmt"
	"slices"

	"github.com/GustavoLR548/market-digest/internal/config"
)

// ContentGenerator performs one generation attempt against a named model
type ContentGenerator interface {
	// Generate sends prompt to model and classifies the result
	Generate(ctx context.Context, model string, prompt string) Outcome
}

// ModelLister enumerates the models visible to the API key
type ModelLister interface {
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

// Client is a configured backend that can both generate and list models
type Client interface {
	ContentGenerator
	ModelLister
	Close() error
}

// ModelInfo describes one available model
type ModelInfo struct {
	Name             string // without the "models/" prefix
	DisplayName      string
	SupportedMethods []string
}

// SupportsGenerateContent reports whether the model can serve generateContent calls
func (m ModelInfo) SupportsGenerateContent() bool {
	return slices.Contains(m.SupportedMethods, "generateContent")
}

// GenerationSettings is the generation config applied to every model request
type GenerationSettings struct {
	Temperature     float32
	MaxOutputTokens int32
}

// DefaultGenerationSettings returns the settings used when none are configured
func DefaultGenerationSettings() GenerationSettings {
	return GenerationSettings{
		Temperature:     0.7,
		MaxOutputTokens: 1500,
	}
}

// NewClient builds the backend selected by cfg.APIStyle
func NewClient(ctx context.Context, cfg *config.Config) (Client, error) {
	settings := GenerationSettings{
		Temperature:     cfg.Temperature,
		MaxOutputTokens: cfg.MaxOutputTokens,
	}

	switch cfg.APIStyle {
	case config.APIStyleSDK:
		generator, err := NewGeminiGenerator(ctx, cfg.APIKey, cfg.RequestTimeout)
		if err != nil {
			return nil, err
		}
		generator.SetGenerationSettings(settings)
		return generator, nil
	case config.APIStyleREST:
		generator := NewRESTGenerator(cfg.APIKey, cfg.APIBaseURL, cfg.RequestTimeout)
		generator.SetGenerationSettings(settings)
		return generator, nil
	default:
		return nil, fmt.Errorf("unsupported API style: %q", cfg.APIStyle)
	}
}
