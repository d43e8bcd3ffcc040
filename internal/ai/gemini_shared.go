package ai

import (
	"errors"
	"log"
	"strings"
)

// ErrEmptyResponse is returned when a model answered without any text
var ErrEmptyResponse = errors.New("empty response from model")

// TruncateString truncates a string to maxLength characters
func TruncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength] + "..."
}

// ExtractTextFromJSON pulls candidates[0].content.parts[*].text out of a
// decoded generateContent response. Missing or mistyped keys yield "".
func ExtractTextFromJSON(data map[string]any) string {
	candidates, ok := data["candidates"].([]any)
	if !ok || len(candidates) == 0 {
		return ""
	}

	first, ok := candidates[0].(map[string]any)
	if !ok {
		return ""
	}

	if reason, ok := first["finishReason"].(string); ok {
		log.Printf("Response finish reason: %s", reason)
	}

	content, ok := first["content"].(map[string]any)
	if !ok {
		return ""
	}

	parts, ok := content["parts"].([]any)
	if !ok {
		return ""
	}

	var b strings.Builder
	for _, p := range parts {
		part, ok := p.(map[string]any)
		if !ok {
			continue
		}
		if text, ok := part["text"].(string); ok {
			b.WriteString(text)
		}
	}

	return strings.TrimSpace(b.String())
}
