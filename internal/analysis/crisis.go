package analysis

import (
	"strings"

	"github.com/athenalobo/muditha-platform/internal/config"
	"github.com/athenalobo/muditha-platform/internal/domain"
)

// CrisisMatcher scores messages against weighted keyword tables. Crisis
// terms and urgency terms are matched as case-insensitive substrings of
// the lowercased message.
type CrisisMatcher struct {
	crisisKeywords  []string
	urgencyKeywords []string
	crisisWeight    int
	urgencyWeight   int
	highThreshold   int
	mediumThreshold int
}

// NewCrisisMatcher creates a matcher from the configured tables.
func NewCrisisMatcher(cfg *config.AnalysisConfig) *CrisisMatcher {
	return &CrisisMatcher{
		crisisKeywords:  cfg.CrisisKeywords,
		urgencyKeywords: cfg.UrgencyKeywords,
		crisisWeight:    cfg.CrisisWeight,
		urgencyWeight:   cfg.UrgencyWeight,
		highThreshold:   cfg.HighRiskThreshold,
		mediumThreshold: cfg.MediumRiskThreshold,
	}
}

// Assess computes the crisis risk of a message.
func (m *CrisisMatcher) Assess(text string) domain.CrisisAssessment {
	lowered := strings.ToLower(text)

	score := 0
	var matched []string
	for _, keyword := range m.crisisKeywords {
		if strings.Contains(lowered, keyword) {
			score += m.crisisWeight
			matched = append(matched, keyword)
		}
	}
	for _, keyword := range m.urgencyKeywords {
		if strings.Contains(lowered, keyword) {
			score += m.urgencyWeight
		}
	}

	level := domain.RiskLow
	switch {
	case score >= m.highThreshold:
		level = domain.RiskHigh
	case score >= m.mediumThreshold:
		level = domain.RiskMedium
	}

	return domain.CrisisAssessment{
		RiskLevel:            level,
		Score:                score,
		MatchedKeywords:      matched,
		RequiresIntervention: level == domain.RiskHigh,
	}
}
