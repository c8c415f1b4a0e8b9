package services

import "strings"

var (
	positiveWords = []string{"good", "great", "excellent", "amazing", "fast", "helpful", "friendly", "recommend", "satisfied", "happy"}
	negativeWords = []string{"bad", "poor", "terrible", "slow", "rude", "disappoint", "issue", "problem", "unhappy"}
)

// Sentiment scores text in [-1, 1] by keyword containment. Each keyword
// counts once; text without keywords scores 0.
func Sentiment(text string) float64 {
	lower := strings.ToLower(text)

	pos := countContained(lower, positiveWords)
	neg := countContained(lower, negativeWords)
	if pos+neg == 0 {
		return 0
	}
	return float64(pos-neg) / float64(pos+neg)
}

func countContained(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}
