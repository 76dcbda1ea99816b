package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athenalobo/muditha-platform/internal/domain"
	"github.com/athenalobo/muditha-platform/internal/oracle"
)

// stubOracle records what it was asked and answers from canned fields.
type stubOracle struct {
	reply       string
	generateErr error
	emotion     *domain.EmotionReading
	emotionErr  error

	generateCalls int
	gotMessage    string
	gotHistory    []oracle.Turn
}

func (s *stubOracle) Generate(ctx context.Context, userMessage string, history []oracle.Turn) (string, error) {
	s.generateCalls++
	s.gotMessage = userMessage
	s.gotHistory = history
	if s.generateErr != nil {
		return "", s.generateErr
	}
	return s.reply, nil
}

func (s *stubOracle) AnalyzeEmotion(ctx context.Context, message string) (*domain.EmotionReading, error) {
	if s.emotionErr != nil {
		return nil, s.emotionErr
	}
	return s.emotion, nil
}

func (s *stubOracle) Model() string {
	return "stub-model"
}

func newTestPipeline(client oracle.Client, window int) *Pipeline {
	cfg := testAnalysisConfig()
	return NewPipeline(NewLexiconScorer(), NewCrisisMatcher(cfg), client, cfg, window)
}

func TestEvaluateGeneratesReplyForLowRisk(t *testing.T) {
	stub := &stubOracle{
		reply:   "that sounds hard, tell me more",
		emotion: &domain.EmotionReading{Emotion: "sadness", Intensity: 6, ConcernLevel: "medium"},
	}
	p := newTestPipeline(stub, 10)

	result := p.Evaluate(context.Background(), "I feel sad today", nil)

	assert.Equal(t, "that sounds hard, tell me more", result.Reply)
	assert.Equal(t, "stub-model", result.Metadata.Model)
	assert.Equal(t, "I feel sad today", stub.gotMessage)
	require.NotNil(t, result.Metadata.Sentiment)
	assert.Equal(t, domain.SentimentNegative, result.Metadata.Sentiment.Classification)
	require.NotNil(t, result.Metadata.Crisis)
	assert.Equal(t, domain.RiskLow, result.Metadata.Crisis.RiskLevel)
	require.NotNil(t, result.Metadata.Emotion)
	assert.Equal(t, "sadness", result.Metadata.Emotion.Emotion)
}

func TestEvaluateMediumRiskUsesTemplate(t *testing.T) {
	stub := &stubOracle{reply: "should not be used", emotion: &domain.EmotionReading{Emotion: "distress", Intensity: 8, ConcernLevel: "high"}}
	p := newTestPipeline(stub, 10)

	result := p.Evaluate(context.Background(), "sometimes I want to kill myself", nil)

	assert.Equal(t, "medium risk response", result.Reply)
	assert.Equal(t, ModelCrisisTemplate, result.Metadata.Model)
	assert.Equal(t, domain.RiskMedium, result.Metadata.Crisis.RiskLevel)
	assert.Zero(t, stub.generateCalls, "oracle must not be consulted for elevated risk")
}

func TestEvaluateHighRiskUsesTemplate(t *testing.T) {
	stub := &stubOracle{emotion: &domain.EmotionReading{Emotion: "distress", Intensity: 9, ConcernLevel: "critical"}}
	p := newTestPipeline(stub, 10)

	result := p.Evaluate(context.Background(), "I want to kill myself tonight", nil)

	assert.Equal(t, "high risk response", result.Reply)
	assert.Equal(t, ModelCrisisTemplate, result.Metadata.Model)
	assert.True(t, result.Metadata.Crisis.RequiresIntervention)
	assert.Zero(t, stub.generateCalls)
}

func TestEvaluateFallsBackWhenOracleFails(t *testing.T) {
	stub := &stubOracle{
		generateErr: oracle.ErrUnavailable,
		emotion:     &domain.EmotionReading{Emotion: "neutral", Intensity: 4, ConcernLevel: "low"},
	}
	p := newTestPipeline(stub, 10)

	result := p.Evaluate(context.Background(), "I feel okay today", nil)

	assert.Equal(t, "stock reply", result.Reply)
	assert.Equal(t, ModelFallback, result.Metadata.Model)
}

func TestEvaluateNeutralEmotionWhenInferenceFails(t *testing.T) {
	stub := &stubOracle{reply: "hello", emotionErr: errors.New("timeout")}
	p := newTestPipeline(stub, 10)

	result := p.Evaluate(context.Background(), "hello there", nil)

	require.NotNil(t, result.Metadata.Emotion)
	assert.Equal(t, "neutral", result.Metadata.Emotion.Emotion)
	assert.Equal(t, 5, result.Metadata.Emotion.Intensity)
	assert.Equal(t, "low", result.Metadata.Emotion.ConcernLevel)
}

func TestEvaluateTruncatesHistoryToWindow(t *testing.T) {
	stub := &stubOracle{reply: "ok", emotion: &domain.EmotionReading{Emotion: "neutral", Intensity: 5, ConcernLevel: "low"}}
	p := newTestPipeline(stub, 3)

	history := []oracle.Turn{
		{Role: oracle.RoleUser, Content: "one"},
		{Role: oracle.RoleAssistant, Content: "two"},
		{Role: oracle.RoleUser, Content: "three"},
		{Role: oracle.RoleAssistant, Content: "four"},
		{Role: oracle.RoleUser, Content: "five"},
	}
	p.Evaluate(context.Background(), "and now this", history)

	require.Len(t, stub.gotHistory, 3)
	assert.Equal(t, "three", stub.gotHistory[0].Content)
	assert.Equal(t, "five", stub.gotHistory[2].Content)
}

func TestEvaluateWithDisabledOracle(t *testing.T) {
	p := newTestPipeline(oracle.NewDisabledClient(), 10)

	result := p.Evaluate(context.Background(), "I feel okay today", nil)

	assert.Equal(t, "stock reply", result.Reply)
	assert.Equal(t, ModelFallback, result.Metadata.Model)
	assert.Equal(t, "neutral", result.Metadata.Emotion.Emotion)
}
