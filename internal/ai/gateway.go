package ai

import (
	"context"
)

// Role is the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

const (
	DefaultModel          = "llama3.2:3b"
	DefaultReasoningModel = "deepseek-r1:8b"

	DefaultGenerateTemperature = 0.7
	DefaultGenerateMaxTokens   = 500
	// Lower temperature keeps extraction and scoring answers stable.
	DefaultChatTemperature = 0.3
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Options tune a single inference request. An empty Model means the gateway default.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// GenerateOptions returns the defaults used for single-shot generation.
func GenerateOptions(model string) Options {
	return Options{
		Model:       model,
		Temperature: DefaultGenerateTemperature,
		MaxTokens:   DefaultGenerateMaxTokens,
	}
}

// ChatOptions returns the defaults used for multi-turn chat and analysis.
func ChatOptions(model string) Options {
	return Options{
		Model:       model,
		Temperature: DefaultChatTemperature,
	}
}

// Gateway issues requests against an inference service. Implementations are stateless:
// conversation continuity is carried entirely by the messages passed to Chat.
type Gateway interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
	Chat(ctx context.Context, messages []Message, opts Options) (string, error)
	// Models lists the model names advertised by the service.
	Models(ctx context.Context) ([]string, error)
	// Available reports whether the service answers the lightweight probe with success.
	Available(ctx context.Context) bool
	Provider() string
	Model() string
}

// FitResult is the normalized outcome of a job fit analysis.
type FitResult struct {
	Score  int    `json:"score"`
	Reason string `json:"reason"`
	Model  string `json:"model,omitempty"`
	Raw    string `json:"-"`
}
