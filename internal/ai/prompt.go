package ai

import "strings"

const (
	analysisPromptPrefix = "You are a financial analyst. Review these news headlines about NBFCs and Banking.\n" +
		"Identify and summarize ONLY:\n" +
		"1. New Investments (Who invested in whom?)\n" +
		"2. Mergers & Acquisitions (Deals)\n" +
		"3. Major Regulatory Updates affecting the sector\n\n" +
		"Headlines:\n"

	analysisPromptSuffix = "\n\n" +
		"Output Format:\n" +
		"- **Deals & Investments:** [List details]\n" +
		"- **Top Sector News:** [Major non-deal updates]\n" +
		"If nothing relevant is found in a category, write 'None'."
)

// BuildPrompt places the headlines, joined by newlines and in the given order,
// into the fixed analysis template.
func BuildPrompt(headlines []string) string {
	return analysisPromptPrefix + strings.Join(headlines, "\n") + analysisPromptSuffix
}
