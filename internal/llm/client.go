package llm

import "context"

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is an internal message representation that can include system prompts.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Model       string
	System      []string
	Messages    []ChatMessage
	MaxTokens   int64
	Temperature float64
}

type Response struct {
	Text       string
	StopReason string
}

type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
