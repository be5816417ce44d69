package service

import (
	"context"
	"fmt"

	"github.com/ChathuraAt1/kpi-platform-sub001/internal/model"
	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to any OpenAI-compatible chat completion API. groq,
// deepseek and local (ollama) reuse it with their own base URL.
type OpenAIProvider struct {
	defaultBaseURL string
	defaultModel   string
}

func NewOpenAIProvider(baseURL, model string) *OpenAIProvider {
	return &OpenAIProvider{defaultBaseURL: baseURL, defaultModel: model}
}

func (p *OpenAIProvider) client(key model.ApiKey) *openai.Client {
	cfg := openai.DefaultConfig(key.Secret)
	if key.BaseURL != "" {
		cfg.BaseURL = key.BaseURL
	} else if p.defaultBaseURL != "" {
		cfg.BaseURL = p.defaultBaseURL
	}
	return openai.NewClientWithConfig(cfg)
}

func (p *OpenAIProvider) model(key model.ApiKey) string {
	if key.Model != "" {
		return key.Model
	}
	return p.defaultModel
}

func (p *OpenAIProvider) HealthCheck(ctx context.Context, key model.ApiKey) error {
	_, err := p.client(key).ListModels(ctx)
	return err
}

func (p *OpenAIProvider) complete(ctx context.Context, key model.ApiKey, prompt string) (string, error) {
	resp, err := p.client(key).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model(key),
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a KPI scoring assistant. Answer with JSON only."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) Classify(ctx context.Context, key model.ApiKey, logs []LogInput, categories []model.KpiCategory, examples []FewShot) ([]Suggestion, error) {
	text, err := p.complete(ctx, key, buildClassifyPrompt(logs, categories, examples))
	if err != nil {
		return nil, err
	}
	return parseSuggestions(text, len(logs))
}

func (p *OpenAIProvider) ScoreEvaluation(ctx context.Context, key model.ApiKey, userID uuid.UUID, year, month int, breakdown model.Breakdown) (map[uint]float64, error) {
	text, err := p.complete(ctx, key, buildScorePrompt(year, month, breakdown))
	if err != nil {
		return nil, err
	}
	return parseScores(text)
}
