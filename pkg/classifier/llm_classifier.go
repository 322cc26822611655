package classifier

import (
	"context"
	"fmt"
	"time"

	"podsafe/internal/config"
	"podsafe/internal/costtracker"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

// ChatCompleter is the subset of the OpenAI client used by LLMClassifier.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// LLMClassifier implements Classifier on top of an OpenAI-compatible chat completion API.
type LLMClassifier struct {
	client         ChatCompleter
	model          string
	promptTemplate string

	costTracker costtracker.CostTracker
	pricing     map[string]config.PricingInfo
}

// NewLLMClassifier creates a classifier. costTracker and pricing may be nil.
func NewLLMClassifier(client ChatCompleter, model, prompt string, costTracker costtracker.CostTracker, pricing map[string]config.PricingInfo) *LLMClassifier {
	return &LLMClassifier{
		client:         client,
		model:          model,
		promptTemplate: prompt,
		costTracker:    costTracker,
		pricing:        pricing,
	}
}

func (c *LLMClassifier) Name() string { return "openai" }

func (c *LLMClassifier) Classify(ctx context.Context, keywords []string) (Result, error) {
	if len(keywords) == 0 {
		return Result{}, ErrNoKeywords
	}
	if c.client == nil {
		return Result{}, fmt.Errorf("%w: LLM classifier is not initialized with an OpenAI client", ErrRequestFailed)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: RenderPrompt(c.promptTemplate, keywords),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: openai chat completion failed: %w", ErrRequestFailed, err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("%w: no choices returned from OpenAI", ErrRequestFailed)
	}

	c.recordCost(ctx, resp.Usage, len(keywords))

	content := trimFences(resp.Choices[0].Message.Content)
	result, err := DecodeResult([]byte(content))
	if err != nil {
		return Result{}, fmt.Errorf("%w\nResponse content: %s", err, content)
	}
	return result, nil
}

func (c *LLMClassifier) recordCost(ctx context.Context, usage openai.Usage, keywordCount int) {
	if c.costTracker == nil || usage.TotalTokens == 0 {
		return
	}
	priceInfo, ok := c.pricing[c.model]
	if !ok {
		log.Warnf("Pricing info not found for model '%s'. Cannot record cost for classification.", c.model)
		return
	}

	cost := float64(usage.PromptTokens)*priceInfo.InputPerToken +
		float64(usage.CompletionTokens)*priceInfo.OutputPerToken
	event := costtracker.CostEvent{
		Operation: "classification",
		AmountUSD: cost,
		Details: map[string]interface{}{
			"provider_name": "openai",
			"model_name":    c.model,
			"input_tokens":  usage.PromptTokens,
			"output_tokens": usage.CompletionTokens,
			"keywords":      keywordCount,
			"timestamp":     time.Now().UTC().Format(time.RFC3339),
		},
	}
	if err := c.costTracker.RecordCost(ctx, event); err != nil {
		log.Errorf("Failed to record AI usage for classification: %v", err)
	}
}

var _ Classifier = (*LLMClassifier)(nil)
