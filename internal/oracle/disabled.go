package oracle

import (
	"context"

	"github.com/athenalobo/muditha-platform/internal/domain"
)

// DisabledClient is used when no oracle is configured. Every call fails
// with ErrUnavailable, so the pipeline's fallbacks carry the whole
// conversation.
type DisabledClient struct{}

func NewDisabledClient() *DisabledClient {
	return &DisabledClient{}
}

func (DisabledClient) Model() string {
	return "disabled"
}

func (DisabledClient) Generate(ctx context.Context, userMessage string, history []Turn) (string, error) {
	return "", ErrUnavailable
}

func (DisabledClient) AnalyzeEmotion(ctx context.Context, message string) (*domain.EmotionReading, error) {
	return nil, ErrUnavailable
}
