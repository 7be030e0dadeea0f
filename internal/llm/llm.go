package llm

import (
	"context"
	"errors"

	"github.com/google/generative-ai-go/genai"
)

// ErrEmptyResponse is returned when the provider answers without any text.
var ErrEmptyResponse = errors.New("llm: empty response")

// StructuredRequest asks the provider for JSON output constrained by Schema.
type StructuredRequest struct {
	Prompt      string
	Schema      *genai.Schema
	Temperature float32
}

type Generator interface {
	GenerateJSON(ctx context.Context, req StructuredRequest) (string, error)
}

// Channel is a stateful conversation. Each Send submits only the new text;
// the channel keeps earlier turns.
type Channel interface {
	Send(ctx context.Context, text string) (string, error)
}

type ChatOpener interface {
	OpenChat(ctx context.Context, systemInstruction string) (Channel, error)
}

// Service is everything the application needs from a model provider.
type Service interface {
	Generator
	ChatOpener
}
