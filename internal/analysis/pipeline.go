package analysis

import (
	"context"

	"github.com/athenalobo/muditha-platform/internal/config"
	"github.com/athenalobo/muditha-platform/internal/domain"
	"github.com/athenalobo/muditha-platform/internal/oracle"
	"github.com/athenalobo/muditha-platform/pkg/log"
)

// ModelFallback marks replies produced without the oracle.
const (
	ModelFallback       = "fallback"
	ModelCrisisTemplate = "crisis-template"
)

// Result combines the analysis of a user message with the reply the
// assistant should send.
type Result struct {
	Metadata domain.MessageMetadata
	Reply    string
}

// Pipeline evaluates inbound messages: sentiment, crisis risk, emotion,
// then a generated (or canned) reply. It never fails; every oracle error
// degrades to a fixed fallback so a send can't be broken by analysis.
type Pipeline struct {
	scorer  Scorer
	matcher *CrisisMatcher
	oracle  oracle.Client
	cfg     *config.AnalysisConfig
	window  int
}

// NewPipeline creates an analysis pipeline.
func NewPipeline(scorer Scorer, matcher *CrisisMatcher, client oracle.Client, cfg *config.AnalysisConfig, historyWindow int) *Pipeline {
	if historyWindow <= 0 {
		historyWindow = 10
	}
	return &Pipeline{
		scorer:  scorer,
		matcher: matcher,
		oracle:  client,
		cfg:     cfg,
		window:  historyWindow,
	}
}

// Evaluate runs the full pipeline over a message. history holds prior
// room turns, oldest first; only the newest window is passed to the
// oracle.
func (p *Pipeline) Evaluate(ctx context.Context, content string, history []oracle.Turn) Result {
	l := log.Ctx(ctx)

	sentiment := p.scorer.Score(content)
	crisis := p.matcher.Assess(content)

	emotion, err := p.oracle.AnalyzeEmotion(ctx, content)
	if err != nil {
		l.Warn().Err(err).Msg("emotion inference unavailable, using neutral default")
		emotion = &domain.EmotionReading{Emotion: "neutral", Intensity: 5, ConcernLevel: "low"}
	}

	reply, model := p.generateReply(ctx, content, history, crisis)

	return Result{
		Metadata: domain.MessageMetadata{
			Sentiment: &sentiment,
			Crisis:    &crisis,
			Emotion:   emotion,
			Model:     model,
		},
		Reply: reply,
	}
}

// generateReply picks the canned crisis response for elevated risk and
// otherwise asks the oracle, with a stock reply when it fails.
func (p *Pipeline) generateReply(ctx context.Context, content string, history []oracle.Turn, crisis domain.CrisisAssessment) (string, string) {
	l := log.Ctx(ctx)

	if crisis.RiskLevel != domain.RiskLow {
		return p.crisisResponse(crisis.RiskLevel), ModelCrisisTemplate
	}

	if len(history) > p.window {
		history = history[len(history)-p.window:]
	}

	reply, err := p.oracle.Generate(ctx, content, history)
	if err != nil {
		l.Warn().Err(err).Msg("reply generation unavailable, using stock reply")
		return p.cfg.FallbackReply, ModelFallback
	}
	return reply, p.oracle.Model()
}

func (p *Pipeline) crisisResponse(level domain.RiskLevel) string {
	switch level {
	case domain.RiskHigh:
		return p.cfg.CrisisResponseHigh
	case domain.RiskMedium:
		return p.cfg.CrisisResponseMedium
	default:
		return p.cfg.CrisisResponseLow
	}
}
