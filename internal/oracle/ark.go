package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/athenalobo/muditha-platform/internal/config"
	"github.com/athenalobo/muditha-platform/internal/domain"
	"github.com/athenalobo/muditha-platform/pkg/log"
)

const systemPrompt = `You are Muditha, an AI companion for mental health support.
You are empathetic, non-judgmental, and supportive.
Your responses should be:
- Warm and understanding
- 2-3 sentences max unless user needs detailed guidance
- Focus on active listening and validation
- Suggest healthy coping strategies when appropriate
- NEVER provide medical diagnoses or replace professional therapy
- If crisis detected, gently encourage professional help

Remember: You're here to support, not diagnose or treat.`

const emotionPromptFormat = `Analyze the emotional state of this message and return ONLY a JSON object:
%q

Return format: {"emotion": "primary emotion", "intensity": 1-10, "concernLevel": "low/medium/high"}
Emotions: happy, sad, anxious, angry, frustrated, hopeful, confused, lonely, excited, overwhelmed`

// ArkClient implements Client on an Ark-hosted chat model.
type ArkClient struct {
	chat    model.ChatModel
	model   string
	timeout time.Duration
}

// NewArkClient creates an oracle client from configuration.
func NewArkClient(ctx context.Context, cfg *config.OracleConfig) (*ArkClient, error) {
	if cfg.Model == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("oracle requires model and api key")
	}

	maxTokens := cfg.MaxTokens
	temperature := cfg.Temperature
	topP := cfg.TopP

	chat, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:     cfg.BaseURL,
		Region:      cfg.Region,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		TopP:        &topP,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	return &ArkClient{chat: chat, model: cfg.Model, timeout: cfg.Timeout}, nil
}

// Model identifies the underlying model.
func (c *ArkClient) Model() string {
	return c.model
}

// Generate produces a supportive reply given the conversation so far.
func (c *ArkClient) Generate(ctx context.Context, userMessage string, history []Turn) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	messages := make([]*schema.Message, 0, len(history)+2)
	messages = append(messages, schema.SystemMessage(systemPrompt))
	for _, turn := range history {
		switch turn.Role {
		case RoleAssistant:
			messages = append(messages, schema.AssistantMessage(turn.Content, nil))
		default:
			messages = append(messages, schema.UserMessage(turn.Content))
		}
	}
	messages = append(messages, schema.UserMessage(userMessage))

	resp, err := c.chat.Generate(ctx, messages)
	if err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("oracle generation failed")
		return "", ErrUnavailable
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", ErrUnavailable
	}
	return strings.TrimSpace(resp.Content), nil
}

// AnalyzeEmotion asks the model to classify the emotional state of a
// message as a small JSON object.
func (c *ArkClient) AnalyzeEmotion(ctx context.Context, message string) (*domain.EmotionReading, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	l := log.Ctx(ctx)

	prompt := fmt.Sprintf(emotionPromptFormat, message)
	resp, err := c.chat.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		l.Warn().Err(err).Msg("oracle emotion analysis failed")
		return nil, ErrUnavailable
	}
	if resp == nil {
		return nil, ErrUnavailable
	}

	reading, err := parseEmotionOutput(resp.Content)
	if err != nil {
		l.Warn().Err(err).Msg("oracle emotion output unparseable")
		return nil, ErrUnavailable
	}
	return reading, nil
}

func (c *ArkClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// parseEmotionOutput tolerates markdown code fences around the JSON.
func parseEmotionOutput(raw string) (*domain.EmotionReading, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var payload struct {
		Emotion      string `json:"emotion"`
		Intensity    int    `json:"intensity"`
		ConcernLevel string `json:"concernLevel"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, err
	}
	if payload.Emotion == "" {
		return nil, fmt.Errorf("missing emotion label")
	}
	return &domain.EmotionReading{
		Emotion:      payload.Emotion,
		Intensity:    payload.Intensity,
		ConcernLevel: payload.ConcernLevel,
	}, nil
}
