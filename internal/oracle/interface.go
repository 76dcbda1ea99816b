package oracle

import (
	"context"
	"errors"

	"github.com/athenalobo/muditha-platform/internal/domain"
)

// ErrUnavailable is returned when the generative backend cannot be
// reached or produced no usable output.
var ErrUnavailable = errors.New("oracle unavailable")

// Turn is one prior exchange in a conversation, oldest first.
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Client is the generative-language oracle. It has no guaranteed latency
// bound or availability; callers own the fallback strategy.
type Client interface {
	// Generate produces a conversational reply given the user message
	// and prior turns.
	Generate(ctx context.Context, userMessage string, history []Turn) (string, error)
	// AnalyzeEmotion infers the emotional state of a message.
	AnalyzeEmotion(ctx context.Context, message string) (*domain.EmotionReading, error)
	// Model identifies the underlying model.
	Model() string
}
