package ai

import (
	"strings"

	"github.com/samber/lo"
)

// NormalizeModelName strips the "models/" resource prefix the API uses in listings
func NormalizeModelName(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), "models/")
}

// ResolveCandidates orders the candidate list against what the key can actually use.
//
// Preferred models that are available and support generateContent keep their
// priority order. When none of them are available, the available gemini
// models that support generateContent are used in listing order. If that is
// empty too, or the listing itself was empty, the preferred list is returned.
func ResolveCandidates(preferred []string, available []ModelInfo) []string {
	if len(available) == 0 {
		return preferred
	}

	usable := lo.Filter(available, func(m ModelInfo, _ int) bool {
		return m.SupportsGenerateContent()
	})
	byName := lo.KeyBy(usable, func(m ModelInfo) string {
		return NormalizeModelName(m.Name)
	})

	resolved := lo.Uniq(lo.Filter(lo.Map(preferred, func(name string, _ int) string {
		return NormalizeModelName(name)
	}), func(name string, _ int) bool {
		_, ok := byName[name]
		return ok
	}))
	if len(resolved) > 0 {
		return resolved
	}

	discovered := lo.Uniq(lo.FilterMap(usable, func(m ModelInfo, _ int) (string, bool) {
		name := NormalizeModelName(m.Name)
		return name, strings.HasPrefix(name, "gemini")
	}))
	if len(discovered) == 0 {
		return preferred
	}
	return discovered
}
