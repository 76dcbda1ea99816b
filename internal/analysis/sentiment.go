package analysis

import (
	"strings"
	"unicode"

	"github.com/athenalobo/muditha-platform/internal/domain"
)

// Scorer scores the sentiment of a piece of text.
type Scorer interface {
	Score(text string) domain.SentimentResult
}

// LexiconScorer is a valence-lexicon sentiment scorer: every known word
// contributes its valence to the total score, and the score maps onto a
// five-level classification with fixed boundaries.
type LexiconScorer struct {
	lexicon map[string]int
}

// NewLexiconScorer creates a scorer with the built-in lexicon.
func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{lexicon: defaultLexicon}
}

// Score computes the sentiment of text.
func (s *LexiconScorer) Score(text string) domain.SentimentResult {
	tokens := tokenize(text)

	score := 0
	for _, token := range tokens {
		score += s.lexicon[token]
	}

	comparative := 0.0
	if len(tokens) > 0 {
		comparative = float64(score) / float64(len(tokens))
	}

	return domain.SentimentResult{
		Score:          score,
		Comparative:    comparative,
		Classification: classify(score),
	}
}

func classify(score int) domain.SentimentClass {
	switch {
	case score >= 3:
		return domain.SentimentVeryPositive
	case score >= 1:
		return domain.SentimentPositive
	case score >= -1:
		return domain.SentimentNeutral
	case score >= -3:
		return domain.SentimentNegative
	default:
		return domain.SentimentVeryNegative
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// defaultLexicon is an AFINN-style valence table trimmed to vocabulary
// common in support conversations.
var defaultLexicon = map[string]int{
	// positive
	"happy":     3,
	"joy":       3,
	"love":      3,
	"wonderful": 4,
	"amazing":   4,
	"great":     3,
	"good":      3,
	"better":    2,
	"hopeful":   2,
	"hope":      2,
	"grateful":  3,
	"thankful":  2,
	"excited":   3,
	"calm":      2,
	"peaceful":  2,
	"proud":     2,
	"relieved":  2,
	"safe":      1,
	"supported": 2,
	"okay":      1,
	"fine":      1,
	"improving": 2,
	"progress":  2,

	// negative
	"sad":        -2,
	"unhappy":    -2,
	"depressed":  -3,
	"depressing": -2,
	"anxious":    -2,
	"anxiety":    -2,
	"worried":    -2,
	"panic":      -3,
	"scared":     -2,
	"afraid":     -2,
	"nervous":    -1,
	"lonely":     -2,
	"alone":      -1,
	"hopeless":   -3,
	"worthless":  -3,
	"empty":      -2,
	"numb":       -2,
	"tired":      -1,
	"exhausted":  -2,
	"angry":      -3,
	"hate":       -3,
	"hurt":       -2,
	"pain":       -2,
	"crying":     -2,
	"cry":        -1,
	"awful":      -3,
	"terrible":   -3,
	"horrible":   -3,
	"miserable":  -3,
	"struggling": -2,
	"struggle":   -2,
	"overwhelmed": -2,
	"stressed":   -2,
	"stress":     -1,
	"broken":     -2,
	"lost":       -1,
	"guilty":     -2,
	"ashamed":    -2,
	"die":        -3,
	"dead":       -3,
	"suicide":    -4,
}
