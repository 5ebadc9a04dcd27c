package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ToolCall is a function invocation emitted by the model, with its argument
// payload as raw JSON.
type ToolCall struct {
	Name string
	Args json.RawMessage
}

// Client is an abstraction over the generative model endpoint. Errors from
// its methods are distinguishable via errors.As against AuthError,
// RateLimitError, TransportError, and EmptyResponseError.
type Client interface {
	// GenerateContent generates free text from a system prompt and user text.
	GenerateContent(ctx context.Context, systemPrompt, userText string, tier ModelTier) (string, error)
	// GenerateJSON generates a single JSON object, with markdown fences stripped.
	GenerateJSON(ctx context.Context, systemPrompt, userText string, tier ModelTier) (string, error)
	// GenerateWithTool offers the model a function declaration and returns the
	// invocation, or nil when the model produced no tool call. A nil call with
	// a nil error is a valid outcome, not a failure.
	GenerateWithTool(ctx context.Context, systemPrompt, userText string, tool *genai.Tool, tier ModelTier) (*ToolCall, error)
	// Close releases any resources held by the client.
	Close() error
}

// GeminiClient implements Client on Google Gemini. Construct one per process
// and inject it; there is no package-level shared instance.
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini-backed client.
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config == nil {
		config = DefaultConfig()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, config: config}, nil
}

// GenerateContent generates free text using the specified model tier.
func (c *GeminiClient) GenerateContent(ctx context.Context, systemPrompt, userText string, tier ModelTier) (string, error) {
	model, err := c.model(tier, systemPrompt)
	if err != nil {
		return "", err
	}

	resp, err := model.GenerateContent(ctx, genai.Text(userText))
	if err != nil {
		return "", classifyAPIError(err)
	}

	return textFromResponse(resp)
}

// GenerateJSON generates JSON content using the specified model tier.
func (c *GeminiClient) GenerateJSON(ctx context.Context, systemPrompt, userText string, tier ModelTier) (string, error) {
	model, err := c.model(tier, systemPrompt)
	if err != nil {
		return "", err
	}
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(userText))
	if err != nil {
		return "", classifyAPIError(err)
	}

	text, err := textFromResponse(resp)
	if err != nil {
		return "", err
	}

	return CleanJSONBlock(text), nil
}

// GenerateWithTool generates content with a function declaration available
// and extracts the model's tool invocation, if any.
func (c *GeminiClient) GenerateWithTool(ctx context.Context, systemPrompt, userText string, tool *genai.Tool, tier ModelTier) (*ToolCall, error) {
	model, err := c.model(tier, systemPrompt)
	if err != nil {
		return nil, err
	}
	model.Tools = []*genai.Tool{tool}

	resp, err := model.GenerateContent(ctx, genai.Text(userText))
	if err != nil {
		return nil, classifyAPIError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, &EmptyResponseError{Message: "no candidates in response"}
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		fc, ok := part.(genai.FunctionCall)
		if !ok {
			continue
		}
		args, err := json.Marshal(fc.Args)
		if err != nil {
			return nil, &TransportError{Cause: fmt.Errorf("unmarshalable tool arguments: %w", err)}
		}
		return &ToolCall{Name: fc.Name, Args: args}, nil
	}

	// The model answered without invoking the tool; the caller decides
	// whether that is acceptable.
	return nil, nil
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func (c *GeminiClient) model(tier ModelTier, systemPrompt string) (*genai.GenerativeModel, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return nil, fmt.Errorf("no model configured for tier %s", tier)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(0.1) // Low temperature for consistent output
	if systemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}
	return model, nil
}

// textFromResponse extracts the concatenated text parts from a response.
func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", &EmptyResponseError{Message: "no candidates in response"}
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", &EmptyResponseError{Message: "no content in response"}
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", &EmptyResponseError{Message: "no text parts in response"}
	}

	return strings.Join(parts, ""), nil
}
