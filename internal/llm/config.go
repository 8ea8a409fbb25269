// Package llm wraps the generative-text backends behind a single call contract:
// (system instructions, user prompt, generation parameters) -> raw text.
package llm

import "time"

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is any OpenAI-compatible chat/completions endpoint
	ProviderOpenAI Provider = "openai"
)

// DefaultTimeout bounds every generation call
const DefaultTimeout = 30 * time.Second

// Config holds the backend configuration
type Config struct {
	Provider Provider
	Model    string
	APIKey   string
	BaseURL  string // only used by ProviderOpenAI
	Timeout  time.Duration
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Model:    "gemini-2.5-flash",
		Timeout:  DefaultTimeout,
	}
}

// DefaultOpenAIConfig returns the default OpenAI-compatible configuration
func DefaultOpenAIConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		Model:    "gpt-4o-mini",
		BaseURL:  "https://api.openai.com/v1",
		Timeout:  DefaultTimeout,
	}
}

// WithModel returns a copy of the config using a different model
func (c *Config) WithModel(model string) *Config {
	newConfig := *c
	newConfig.Model = model
	return &newConfig
}

// EffectiveTimeout returns the configured timeout, falling back to DefaultTimeout
func (c *Config) EffectiveTimeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}
