package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Params are the per-call generation parameters
type Params struct {
	Temperature float32
	MaxTokens   int32
}

// Client is an abstraction over LLM providers.
// Implementations hold no state besides the SDK client and never retry.
type Client interface {
	// Generate sends the system and user text and returns the raw model output
	Generate(ctx context.Context, system, user string, params Params) (string, error)
	// Model returns the configured model name
	Model() string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration.
// The returned client is already wrapped with the configured timeout.
func NewClient(ctx context.Context, config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	var (
		client Client
		err    error
	)
	switch config.Provider {
	case ProviderOpenAI:
		client, err = NewOpenAIClient(config)
	case ProviderGemini, "":
		client, err = NewGeminiClient(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
	if err != nil {
		return nil, err
	}
	return WithTimeout(client, config.EffectiveTimeout()), nil
}

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  config.Model,
	}, nil
}

// Generate calls GenerateContent with the system text as system instruction
// and asks for a JSON response
func (c *GeminiClient) Generate(ctx context.Context, system, user string, params Params) (string, error) {
	model := c.client.GenerativeModel(c.model)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	model.SetTemperature(params.Temperature)
	if params.MaxTokens > 0 {
		model.SetMaxOutputTokens(params.MaxTokens)
	}
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		genErr := &GenerationError{Op: "gemini " + c.model, Cause: err}
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			genErr.StatusCode = apiErr.Code
		}
		return "", genErr
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", &GenerationError{Op: "gemini " + c.model, Cause: err}
	}
	return text, nil
}

// Model returns the model name
func (c *GeminiClient) Model() string {
	return c.model
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
