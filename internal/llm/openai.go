package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OpenAIClient implements Client for OpenAI-compatible chat/completions endpoints
type OpenAIClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float32       `json:"temperature"`
	MaxTokens      int32         `json:"max_tokens,omitempty"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewOpenAIClient creates a client for an OpenAI-compatible endpoint
func NewOpenAIClient(config *Config) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenAIConfig().BaseURL
	}
	return &OpenAIClient{
		httpClient: http.DefaultClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     config.APIKey,
		model:      config.Model,
	}, nil
}

// Generate posts a two-message chat with json_object response format
func (c *OpenAIClient) Generate(ctx context.Context, system, user string, params Params) (string, error) {
	op := "openai " + c.model

	messages := make([]chatMessage, 0, 2)
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: user})

	body, err := json.Marshal(chatRequest{
		Model:          c.model,
		Messages:       messages,
		Temperature:    params.Temperature,
		MaxTokens:      params.MaxTokens,
		ResponseFormat: &respFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &GenerationError{Op: op, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &GenerationError{Op: op, Cause: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &GenerationError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Cause:      fmt.Errorf("API error: %s", truncate(string(respBody), 300)),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &GenerationError{Op: op, StatusCode: resp.StatusCode, Cause: fmt.Errorf("unmarshal response: %w", err)}
	}
	if parsed.Error != nil {
		return "", &GenerationError{Op: op, StatusCode: resp.StatusCode, Cause: fmt.Errorf("API error: %s", parsed.Error.Message)}
	}
	if len(parsed.Choices) == 0 {
		return "", &GenerationError{Op: op, StatusCode: resp.StatusCode, Cause: fmt.Errorf("empty choices in response")}
	}

	return parsed.Choices[0].Message.Content, nil
}

// Model returns the model name
func (c *OpenAIClient) Model() string {
	return c.model
}

// Close is a no-op; the HTTP client is shared
func (c *OpenAIClient) Close() error {
	return nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
