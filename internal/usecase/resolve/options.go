package resolve

import (
	"github.com/JIG555ERA/llm-api/internal/usecase/compose"
	"github.com/JIG555ERA/llm-api/internal/usecase/ranking"
)

// Option bounds and defaults.
const (
	MinMaxTokens       = 10
	MaxMaxTokens       = 1024
	DefaultMaxTokens   = 256
	DefaultTemperature = 0.7
	MaxLimit           = 50
)

// Validation messages.
const (
	MsgPromptRequired   = "prompt is required and must be a non-empty string."
	MsgMaxTokensRange   = "max_tokens must be an integer between 10 and 1024."
	MsgTemperatureRange = "temperature must be a number between 0.0 and 1.0."
	MsgLimitRange       = "limit must be an integer between 1 and 50."
	MsgTitleRequired    = "title is required and must be a non-empty string."
	MsgQueryRequired    = "query is required and must be a non-empty string."
)

// Options tune a single Resolve call. Nil pointers take the defaults.
type Options struct {
	MaxTokens        *int
	Temperature      *float64
	Limit            *int
	IncludeQuotes    bool
	IncludeTakeaways bool
	IncludeSimilar   bool
}

// Validate returns one message per invalid option.
func (o *Options) Validate() []string {
	var errs []string
	if o.MaxTokens != nil && (*o.MaxTokens < MinMaxTokens || *o.MaxTokens > MaxMaxTokens) {
		errs = append(errs, MsgMaxTokensRange)
	}
	if o.Temperature != nil && (*o.Temperature < 0 || *o.Temperature > 1) {
		errs = append(errs, MsgTemperatureRange)
	}
	if o.Limit != nil && !validLimit(*o.Limit) {
		errs = append(errs, MsgLimitRange)
	}
	return errs
}

func (o *Options) maxTokens() int {
	if o.MaxTokens == nil {
		return DefaultMaxTokens
	}
	return *o.MaxTokens
}

func (o *Options) temperature() float64 {
	if o.Temperature == nil {
		return DefaultTemperature
	}
	return *o.Temperature
}

func (o *Options) limit(fallback int) int {
	if o.Limit == nil {
		return fallback
	}
	return *o.Limit
}

func (o *Options) compose() compose.Options {
	return compose.Options{
		MaxTokens:        o.maxTokens(),
		Temperature:      o.temperature(),
		IncludeQuotes:    o.IncludeQuotes,
		IncludeTakeaways: o.IncludeTakeaways,
		IncludeSimilar:   o.IncludeSimilar,
	}
}

func validLimit(n int) bool {
	return n >= 1 && n <= MaxLimit
}

// Config holds service-level settings.
type Config struct {
	DefaultLimit int
	// SimilarCount is how many extra ranked items feed the "similar" section.
	SimilarCount int
}

func (c *Config) applyDefaults() {
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = ranking.DefaultLimit
	}
	if c.SimilarCount <= 0 {
		c.SimilarCount = 3
	}
}
