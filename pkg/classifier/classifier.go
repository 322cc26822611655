package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrRequestFailed covers every way a classification exchange can fail:
	// transport errors, non-success statuses and malformed bodies.
	ErrRequestFailed = errors.New("classification request failed")
	// ErrNoKeywords is returned when Classify is called with an empty keyword set.
	ErrNoKeywords = errors.New("no keywords to classify")
)

// Request is the wire body sent to the classification endpoint.
type Request struct {
	Keywords []string `json:"keywords"`
}

// Result is the verdict returned by a classifier.
type Result struct {
	Keywords  []string `json:"keywords"`
	IsForKids bool     `json:"is_for_kids"`
}

// Classifier turns a keyword set into a kid-friendly verdict.
// Implementations are stateless and safe for concurrent use.
type Classifier interface {
	Classify(ctx context.Context, keywords []string) (Result, error)
	Name() string
}

// DecodeResult parses body into a Result, rejecting anything that does not
// match {"keywords": [string...], "is_for_kids": bool}.
func DecodeResult(body []byte) (Result, error) {
	if !gjson.ValidBytes(body) {
		return Result{}, fmt.Errorf("%w: response is not valid JSON", ErrRequestFailed)
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return Result{}, fmt.Errorf("%w: response is not a JSON object", ErrRequestFailed)
	}

	kids := doc.Get("is_for_kids")
	if kids.Type != gjson.True && kids.Type != gjson.False {
		return Result{}, fmt.Errorf("%w: is_for_kids missing or not a boolean", ErrRequestFailed)
	}

	list := doc.Get("keywords")
	if !list.IsArray() {
		return Result{}, fmt.Errorf("%w: keywords missing or not an array", ErrRequestFailed)
	}
	items := list.Array()
	res := Result{Keywords: make([]string, 0, len(items)), IsForKids: kids.Bool()}
	for i, item := range items {
		if item.Type != gjson.String {
			return Result{}, fmt.Errorf("%w: keywords[%d] is not a string", ErrRequestFailed, i)
		}
		res.Keywords = append(res.Keywords, item.String())
	}
	return res, nil
}

// DefaultPrompt is used by the LLM-backed classifiers when no template is configured.
const DefaultPrompt = `You decide whether a podcast is suitable for children.
You are given keywords extracted from the podcast description: {{KEYWORDS}}
Reply with a single JSON object and nothing else, of the form
{"keywords": [<the keywords you considered>], "is_for_kids": <true or false>}`

// RenderPrompt substitutes the keyword list into template.
func RenderPrompt(template string, keywords []string) string {
	if strings.TrimSpace(template) == "" {
		template = DefaultPrompt
	}
	return strings.ReplaceAll(template, "{{KEYWORDS}}", strings.Join(keywords, ", "))
}

// trimFences removes a surrounding markdown code fence some models add to JSON replies.
func trimFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
