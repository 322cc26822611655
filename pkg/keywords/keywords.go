// Package keywords reduces free text to a short, ordered set of keywords
// suitable for sending to a classifier.
package keywords

import (
	"regexp"
	"strings"
)

const (
	// MaxKeywords caps the size of an extracted keyword set.
	MaxKeywords = 15
	// minLength is the shortest token kept; shorter tokens carry no signal.
	minLength = 3
)

// nonWord matches anything that is neither an ASCII word character nor whitespace.
var nonWord = regexp.MustCompile(`[^\w\s]`)

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "from": {}, "is": {},
	"are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {}, "have": {},
	"has": {}, "had": {}, "do": {}, "does": {}, "did": {}, "will": {}, "would": {},
	"could": {}, "should": {}, "may": {}, "might": {}, "can": {}, "about": {}, "it": {},
	"this": {}, "that": {}, "these": {}, "those": {},
}

// Extract lowercases text, strips punctuation, and returns the unique tokens
// longer than two characters that are not stopwords, in first-occurrence
// order and capped at MaxKeywords. It never fails; the result may be empty.
func Extract(text string) []string {
	cleaned := nonWord.ReplaceAllString(strings.ToLower(text), " ")

	result := make([]string, 0, MaxKeywords)
	seen := make(map[string]struct{})
	for _, token := range strings.Fields(cleaned) {
		if len(token) < minLength || IsStopword(token) {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		result = append(result, token)
		if len(result) == MaxKeywords {
			break
		}
	}
	return result
}

// IsStopword reports whether word is in the fixed stopword set.
func IsStopword(word string) bool {
	_, ok := stopwords[word]
	return ok
}

// Stopwords returns a copy of the stopword set as a slice.
func Stopwords() []string {
	out := make([]string, 0, len(stopwords))
	for w := range stopwords {
		out = append(out, w)
	}
	return out
}
