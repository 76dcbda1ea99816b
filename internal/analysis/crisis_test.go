package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/athenalobo/muditha-platform/internal/config"
	"github.com/athenalobo/muditha-platform/internal/domain"
)

func testAnalysisConfig() *config.AnalysisConfig {
	return &config.AnalysisConfig{
		CrisisKeywords: []string{
			"suicide", "kill myself", "end it all", "not worth living",
			"hurt myself", "self harm", "cutting", "overdose",
			"nobody cares", "better off dead", "cant go on",
		},
		UrgencyKeywords:      []string{"tonight", "today", "right now", "about to", "going to"},
		CrisisWeight:         3,
		UrgencyWeight:        2,
		HighRiskThreshold:    5,
		MediumRiskThreshold:  3,
		CrisisResponseHigh:   "high risk response",
		CrisisResponseMedium: "medium risk response",
		CrisisResponseLow:    "low risk response",
		FallbackReply:        "stock reply",
	}
}

func TestAssessNoRisk(t *testing.T) {
	m := NewCrisisMatcher(testAnalysisConfig())

	result := m.Assess("I had a nice walk this morning")
	assert.Equal(t, domain.RiskLow, result.RiskLevel)
	assert.Equal(t, 0, result.Score)
	assert.Empty(t, result.MatchedKeywords)
	assert.False(t, result.RequiresIntervention)
}

func TestAssessSingleCrisisKeywordIsMedium(t *testing.T) {
	m := NewCrisisMatcher(testAnalysisConfig())

	result := m.Assess("sometimes I want to kill myself")
	assert.Equal(t, domain.RiskMedium, result.RiskLevel)
	assert.Equal(t, 3, result.Score)
	assert.Contains(t, result.MatchedKeywords, "kill myself")
	assert.False(t, result.RequiresIntervention)
}

func TestAssessCrisisWithUrgencyIsHigh(t *testing.T) {
	m := NewCrisisMatcher(testAnalysisConfig())

	result := m.Assess("I want to kill myself tonight")
	assert.Equal(t, domain.RiskHigh, result.RiskLevel)
	assert.Equal(t, 5, result.Score)
	assert.True(t, result.RequiresIntervention)
}

func TestAssessMultipleCrisisKeywords(t *testing.T) {
	m := NewCrisisMatcher(testAnalysisConfig())

	result := m.Assess("life is not worth living, everyone would be better off dead without me")
	assert.Equal(t, domain.RiskHigh, result.RiskLevel)
	assert.Equal(t, 6, result.Score)
	assert.Len(t, result.MatchedKeywords, 2)
	assert.True(t, result.RequiresIntervention)
}

func TestAssessIsCaseInsensitive(t *testing.T) {
	m := NewCrisisMatcher(testAnalysisConfig())

	result := m.Assess("I WANT TO KILL MYSELF")
	assert.Equal(t, domain.RiskMedium, result.RiskLevel)
	assert.Contains(t, result.MatchedKeywords, "kill myself")
}

func TestAssessUrgencyAloneStaysLow(t *testing.T) {
	m := NewCrisisMatcher(testAnalysisConfig())

	result := m.Assess("I have a big exam tonight")
	assert.Equal(t, domain.RiskLow, result.RiskLevel)
	assert.Equal(t, 2, result.Score)
	assert.Empty(t, result.MatchedKeywords)
}
