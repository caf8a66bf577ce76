package llm

import (
	"regexp"
	"strings"
)

// Price is a model's list price in USD per million tokens.
type Price struct {
	Input  float64
	Output float64
}

// Cost is the USD cost of the given token counts.
func (p Price) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*p.Input + float64(outputTokens)*p.Output) / 1e6
}

var dateSuffix = regexp.MustCompile(`-\d{8}$|-\d{4}-\d{2}-\d{2}$`)

// PriceOf looks a model up in the price list. OpenRouter vendor prefixes
// ("anthropic/…") and dated snapshot suffixes are ignored.
func PriceOf(model string) (Price, bool) {
	if p, ok := prices[model]; ok {
		return p, true
	}
	if i := strings.LastIndexByte(model, '/'); i >= 0 {
		model = model[i+1:]
	}
	model = strings.TrimSuffix(model, ":free")
	if p, ok := prices[model]; ok {
		return p, true
	}
	p, ok := prices[dateSuffix.ReplaceAllString(model, "")]
	return p, ok
}

// prices as published by the vendors in February 2026.
var prices = map[string]Price{
	"claude-haiku-4-5":  {1, 5},
	"claude-sonnet-4-5": {3, 15},
	"claude-sonnet-4":   {3, 15},
	"claude-opus-4-5":   {5, 25},
	"claude-3-5-haiku":  {0.8, 4},

	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-4.1-nano": {0.1, 0.4},
	"gpt-5":        {1.25, 10},
	"gpt-5-mini":   {0.25, 2},
	"gpt-5-nano":   {0.05, 0.4},

	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-flash-lite": {0.1, 0.4},
	"gemini-2.5-pro":        {1.25, 10},
	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.0-flash-exp":  {0, 0},
}
