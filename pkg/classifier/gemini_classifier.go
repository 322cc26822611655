package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// ContentGenerator is the subset of *genai.GenerativeModel used by GeminiClassifier.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiClassifier implements Classifier using the Google Gemini API.
type GeminiClassifier struct {
	client         *genai.Client // nil when constructed around a custom generator
	model          ContentGenerator
	promptTemplate string
}

// NewGeminiClassifier connects to Gemini with apiKey and prepares modelName for JSON replies.
func NewGeminiClassifier(ctx context.Context, apiKey, modelName, prompt string) (*GeminiClassifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"

	log.Infof("Gemini classifier initialized with model %s", modelName)
	return &GeminiClassifier{client: client, model: model, promptTemplate: prompt}, nil
}

// NewGeminiClassifierWithGenerator wraps an existing generator.
func NewGeminiClassifierWithGenerator(model ContentGenerator, prompt string) *GeminiClassifier {
	return &GeminiClassifier{model: model, promptTemplate: prompt}
}

func (g *GeminiClassifier) Name() string { return "gemini" }

func (g *GeminiClassifier) Classify(ctx context.Context, keywords []string) (Result, error) {
	if len(keywords) == 0 {
		return Result{}, ErrNoKeywords
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(RenderPrompt(g.promptTemplate, keywords)))
	if err != nil {
		return Result{}, fmt.Errorf("%w: gemini generate content failed: %w", ErrRequestFailed, err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Result{}, fmt.Errorf("%w: no candidates returned from Gemini", ErrRequestFailed)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return DecodeResult([]byte(trimFences(sb.String())))
}

// Close releases the underlying Gemini client.
func (g *GeminiClassifier) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

var _ Classifier = (*GeminiClassifier)(nil)
