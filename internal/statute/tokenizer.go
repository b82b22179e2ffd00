package statute

import (
	"regexp"
	"strings"
)

// tokenRegex matches word runs, keeping underscores inside a token.
var tokenRegex = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// DefaultStopWords are dropped at index build and query time.
var DefaultStopWords = []string{
	"a", "an", "and", "any", "are", "as", "at", "be", "been", "being", "by",
	"for", "from", "had", "has", "have", "he", "her", "his", "if", "in", "into",
	"is", "it", "its", "may", "of", "on", "or", "shall", "she", "so", "such",
	"than", "that", "the", "their", "them", "then", "there", "these", "they",
	"this", "those", "to", "upon", "was", "were", "which", "who", "whom",
	"will", "with",
}

// BuildStopWordMap converts a slice of stop words to a set.
func BuildStopWordMap(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[strings.ToLower(w)] = struct{}{}
	}
	return m
}

// Tokenize lower-cases text, splits it on punctuation and whitespace and drops stop words.
func Tokenize(text string, stopWords map[string]struct{}) []string {
	words := tokenRegex.FindAllString(text, -1)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		lower := strings.ToLower(w)
		if _, stop := stopWords[lower]; stop {
			continue
		}
		tokens = append(tokens, lower)
	}
	return tokens
}

// normalizeTerm produces a definition lookup key.
func normalizeTerm(term string) string {
	term = strings.Trim(strings.TrimSpace(term), `"“”'‘’`)
	return strings.ToLower(strings.Join(strings.Fields(term), " "))
}
