package service

import (
	"context"
	"fmt"

	"github.com/ChathuraAt1/kpi-platform-sub001/internal/model"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

const (
	hfChatURL      = "https://router.huggingface.co/v1/chat/completions"
	hfWhoAmIURL    = "https://huggingface.co/api/whoami-v2"
	hfDefaultModel = "meta-llama/Llama-3.1-8B-Instruct"
)

// HuggingFaceProvider calls the Hugging Face inference router, which speaks
// the chat completion dialect over plain HTTP.
type HuggingFaceProvider struct {
	client *resty.Client
}

func NewHuggingFaceProvider() *HuggingFaceProvider {
	return &HuggingFaceProvider{client: resty.New()}
}

func (p *HuggingFaceProvider) model(key model.ApiKey) string {
	if key.Model != "" {
		return key.Model
	}
	return hfDefaultModel
}

func (p *HuggingFaceProvider) HealthCheck(ctx context.Context, key model.ApiKey) error {
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+key.Secret).
		Get(hfWhoAmIURL)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("whoami returned status %d", resp.StatusCode())
	}
	return nil
}

func (p *HuggingFaceProvider) complete(ctx context.Context, key model.ApiKey, prompt string) (string, error) {
	url := hfChatURL
	if key.BaseURL != "" {
		url = key.BaseURL
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+key.Secret).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"model": p.model(key),
			"messages": []map[string]string{
				{"role": "system", "content": "You are a KPI scoring assistant. Answer with JSON only."},
				{"role": "user", "content": prompt},
			},
			"temperature": 0.1,
		}).
		Post(url)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("chat completion returned status %d: %s", resp.StatusCode(), resp.String())
	}

	text := gjson.Get(resp.String(), "choices.0.message.content").String()
	if text == "" {
		return "", fmt.Errorf("no content in completion response")
	}
	return text, nil
}

func (p *HuggingFaceProvider) Classify(ctx context.Context, key model.ApiKey, logs []LogInput, categories []model.KpiCategory, examples []FewShot) ([]Suggestion, error) {
	text, err := p.complete(ctx, key, buildClassifyPrompt(logs, categories, examples))
	if err != nil {
		return nil, err
	}
	return parseSuggestions(text, len(logs))
}

func (p *HuggingFaceProvider) ScoreEvaluation(ctx context.Context, key model.ApiKey, userID uuid.UUID, year, month int, breakdown model.Breakdown) (map[uint]float64, error) {
	text, err := p.complete(ctx, key, buildScorePrompt(year, month, breakdown))
	if err != nil {
		return nil, err
	}
	return parseScores(text)
}
