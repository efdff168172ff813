package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultModel = "gpt-4o"

// OpenAIConfig controls how the OpenAI chat client behaves.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// OpenAIClient implements Client against an OpenAI-compatible chat completions API.
type OpenAIClient struct {
	client openaigo.Client
	model  string
}

// NewOpenAIClient creates a configured OpenAI chat client.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("llm: openai api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithHTTPClient(httpClient),
		option.WithRequestTimeout(timeout),
	}
	if baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAIClient{
		client: openaigo.NewClient(opts...),
		model:  model,
	}, nil
}

// Complete sends a chat completion request and returns the assistant text.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (Response, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	messages := make([]openaigo.ChatCompletionMessageParamUnion, 0, len(req.System)+len(req.Messages))
	for _, sys := range req.System {
		if strings.TrimSpace(sys) == "" {
			continue
		}
		messages = append(messages, openaigo.SystemMessage(sys))
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case ChatRoleSystem:
			messages = append(messages, openaigo.SystemMessage(msg.Content))
		case ChatRoleAssistant:
			messages = append(messages, openaigo.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openaigo.UserMessage(msg.Content))
		}
	}
	if len(messages) == 0 {
		return Response{}, errors.New("llm: at least one message is required")
	}

	params := openaigo.ChatCompletionNewParams{
		Model:    openaigo.ChatModel(model),
		Messages: messages,
	}
	if req.Temperature > 0 {
		params.Temperature = openaigo.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openaigo.Int(req.MaxTokens)
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("llm: chat completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return Response{}, errors.New("llm: chat completion returned no choices")
	}

	choice := completion.Choices[0]
	return Response{
		Text:       strings.TrimSpace(choice.Message.Content),
		StopReason: string(choice.FinishReason),
	}, nil
}
