package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiGenerator implements Client using the Gemini Go SDK
type GeminiGenerator struct {
	client   *genai.Client
	timeout  time.Duration
	settings GenerationSettings
}

// NewGeminiGenerator creates a new SDK-backed generator; call Close when done
func NewGeminiGenerator(ctx context.Context, apiKey string, timeout time.Duration) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("empty API key provided")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiGenerator{
		client:   client,
		timeout:  timeout,
		settings: DefaultGenerationSettings(),
	}, nil
}

// SetGenerationSettings changes the generation config used for later requests
func (g *GeminiGenerator) SetGenerationSettings(settings GenerationSettings) {
	g.settings = settings
}

// generativeModel returns a handle for model with the generation config applied
func (g *GeminiGenerator) generativeModel(model string) *genai.GenerativeModel {
	m := g.client.GenerativeModel(NormalizeModelName(model))
	m.SetTemperature(g.settings.Temperature)
	m.SetMaxOutputTokens(g.settings.MaxOutputTokens)
	return m
}

// Generate performs a single generateContent call against model
func (g *GeminiGenerator) Generate(ctx context.Context, model string, prompt string) Outcome {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	log.Printf("Sending request to Gemini API (model: %s)", model)

	startTime := time.Now()
	resp, err := g.generativeModel(model).GenerateContent(ctx, genai.Text(prompt))
	duration := time.Since(startTime)

	if err != nil {
		log.Printf("Gemini API error after %v: %v", duration, err)
		return Failure(fmt.Errorf("API request failed: %w", err))
	}

	log.Printf("Gemini API responded in %v", duration)

	text, err := sdkResponseText(resp)
	if err != nil {
		return Failure(err)
	}

	log.Printf("Summary generated successfully (output length: %d chars)", len(text))
	return Success(text)
}

// ListModels returns the models visible to the API key
func (g *GeminiGenerator) ListModels(ctx context.Context) ([]ModelInfo, error) {
	var models []ModelInfo

	iter := g.client.ListModels(ctx)
	for {
		m, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list models: %w", err)
		}
		models = append(models, ModelInfo{
			Name:             NormalizeModelName(m.Name),
			DisplayName:      m.DisplayName,
			SupportedMethods: m.SupportedGenerationMethods,
		})
	}

	return models, nil
}

// Close releases the underlying client
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

// sdkResponseText concatenates the text parts of the first candidate
func sdkResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		log.Printf("WARNING: No candidates in response")
		return "", ErrEmptyResponse
	}

	candidate := resp.Candidates[0]
	log.Printf("Response finish reason: %v", candidate.FinishReason)

	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		log.Printf("WARNING: Empty content in response")
		return "", ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	summary := strings.TrimSpace(b.String())
	if summary == "" {
		log.Printf("WARNING: No text content extracted")
		return "", ErrEmptyResponse
	}

	return summary, nil
}
