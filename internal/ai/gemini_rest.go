package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 4 << 20

// RESTGenerator implements Client with direct HTTP calls to the Generative Language API
type RESTGenerator struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	settings   GenerationSettings
}

// NewRESTGenerator creates a generator that talks to baseURL (e.g. .../v1beta)
func NewRESTGenerator(apiKey string, baseURL string, timeout time.Duration) *RESTGenerator {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &RESTGenerator{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		settings: DefaultGenerationSettings(),
	}
}

// SetGenerationSettings changes the generation config used for later requests
func (g *RESTGenerator) SetGenerationSettings(settings GenerationSettings) {
	g.settings = settings
}

type restPart struct {
	Text string `json:"text"`
}

type restContent struct {
	Parts []restPart `json:"parts"`
}

type restGenerationConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int32   `json:"maxOutputTokens"`
}

type restGenerateRequest struct {
	Contents         []restContent        `json:"contents"`
	GenerationConfig restGenerationConfig `json:"generationConfig"`
}

type restModel struct {
	Name                       string   `json:"name"`
	DisplayName                string   `json:"displayName"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

type restListModelsResponse struct {
	Models        []restModel `json:"models"`
	NextPageToken string      `json:"nextPageToken"`
}

// Generate performs a single POST to {base}/models/{model}:generateContent
func (g *RESTGenerator) Generate(ctx context.Context, model string, prompt string) Outcome {
	payload, err := json.Marshal(restGenerateRequest{
		Contents: []restContent{{Parts: []restPart{{Text: prompt}}}},
		GenerationConfig: restGenerationConfig{
			Temperature:     g.settings.Temperature,
			MaxOutputTokens: g.settings.MaxOutputTokens,
		},
	})
	if err != nil {
		return Failure(fmt.Errorf("failed to encode request: %w", err))
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(NormalizeModelName(model)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Failure(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	log.Printf("Sending request to Gemini REST API (model: %s)", model)

	startTime := time.Now()
	body, statusCode, err := g.do(req)
	duration := time.Since(startTime)
	if err != nil {
		log.Printf("Gemini REST error after %v: %v", duration, err)
		return Failure(fmt.Errorf("API request failed: %w", err))
	}
	if statusCode < 200 || statusCode > 299 {
		log.Printf("Gemini REST returned status %d after %v", statusCode, duration)
		return Failure(&APIStatusError{StatusCode: statusCode, Body: string(body)})
	}

	log.Printf("Gemini REST API responded in %v", duration)

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		log.Printf("ERROR: Failed to decode response: %v", err)
		log.Printf("Raw response (first 200 chars): %s", TruncateString(string(body), 200))
		return Failure(fmt.Errorf("malformed response: %w", err))
	}

	text := ExtractTextFromJSON(data)
	if text == "" {
		log.Printf("WARNING: No text content extracted")
		return Failure(ErrEmptyResponse)
	}

	log.Printf("Summary generated successfully (output length: %d chars)", len(text))
	return Success(text)
}

// ListModels pages through {base}/models
func (g *RESTGenerator) ListModels(ctx context.Context) ([]ModelInfo, error) {
	var models []ModelInfo
	pageToken := ""

	for {
		query := url.Values{}
		query.Set("pageSize", "100")
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/models?"+query.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("x-goog-api-key", g.apiKey)

		body, statusCode, err := g.do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to list models: %w", err)
		}
		if statusCode != http.StatusOK {
			return nil, fmt.Errorf("failed to list models: %w", &APIStatusError{StatusCode: statusCode, Body: string(body)})
		}

		var page restListModelsResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("failed to decode model list: %w", err)
		}

		for _, m := range page.Models {
			models = append(models, ModelInfo{
				Name:             NormalizeModelName(m.Name),
				DisplayName:      m.DisplayName,
				SupportedMethods: m.SupportedGenerationMethods,
			})
		}

		if page.NextPageToken == "" {
			return models, nil
		}
		pageToken = page.NextPageToken
	}
}

// Close is a no-op; the HTTP client holds no dedicated resources
func (g *RESTGenerator) Close() error {
	return nil
}

func (g *RESTGenerator) do(req *http.Request) ([]byte, int, error) {
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
