package domain

// SentimentClass is the five-level sentiment classification.
type SentimentClass string

const (
	SentimentVeryPositive SentimentClass = "very_positive"
	SentimentPositive     SentimentClass = "positive"
	SentimentNeutral      SentimentClass = "neutral"
	SentimentNegative     SentimentClass = "negative"
	SentimentVeryNegative SentimentClass = "very_negative"
)

// RiskLevel classifies crisis risk for a message.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// SentimentResult is the output of sentiment scoring.
type SentimentResult struct {
	Score          int            `json:"score"`
	Comparative    float64        `json:"comparative"`
	Classification SentimentClass `json:"classification"`
}

// CrisisAssessment is the output of crisis keyword scoring.
type CrisisAssessment struct {
	RiskLevel            RiskLevel `json:"risk_level"`
	Score                int       `json:"score"`
	MatchedKeywords      []string  `json:"matched_keywords,omitempty"`
	RequiresIntervention bool      `json:"requires_intervention"`
}

// EmotionReading is the oracle-inferred emotional state of a message.
type EmotionReading struct {
	Emotion      string `json:"emotion"`
	Intensity    int    `json:"intensity"`
	ConcernLevel string `json:"concern_level"`
}

// MessageMetadata is the analysis record attached to an AI reply.
// User messages never carry one.
type MessageMetadata struct {
	Sentiment *SentimentResult  `json:"sentiment,omitempty"`
	Crisis    *CrisisAssessment `json:"crisis,omitempty"`
	Emotion   *EmotionReading   `json:"emotion,omitempty"`
	Model     string            `json:"model,omitempty"`
}
