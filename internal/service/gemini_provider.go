package service

import (
	"context"
	"fmt"

	"github.com/ChathuraAt1/kpi-platform-sub001/internal/model"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

const geminiDefaultModel = "gemini-2.5-flash"

// GeminiProvider calls the Gemini API. The client is built per call because
// the credential comes from the key row, not process config.
type GeminiProvider struct{}

func NewGeminiProvider() *GeminiProvider {
	return &GeminiProvider{}
}

func (p *GeminiProvider) model(key model.ApiKey) string {
	if key.Model != "" {
		return key.Model
	}
	return geminiDefaultModel
}

func (p *GeminiProvider) newClient(ctx context.Context, key model.ApiKey) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key.Secret,
		Backend: genai.BackendGeminiAPI,
	})
}

func (p *GeminiProvider) HealthCheck(ctx context.Context, key model.ApiKey) error {
	client, err := p.newClient(ctx, key)
	if err != nil {
		return err
	}
	_, err = client.Models.CountTokens(ctx, p.model(key), genai.Text("ping"), nil)
	return err
}

func (p *GeminiProvider) generate(ctx context.Context, key model.ApiKey, prompt string) (string, error) {
	client, err := p.newClient(ctx, key)
	if err != nil {
		return "", err
	}
	result, err := client.Models.GenerateContent(
		ctx,
		p.model(key),
		genai.Text(prompt),
		&genai.GenerateContentConfig{Temperature: genai.Ptr(float32(0.1))},
	)
	if err != nil {
		return "", err
	}
	if result == nil || len(result.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	if result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no parts in content")
	}
	return result.Text(), nil
}

func (p *GeminiProvider) Classify(ctx context.Context, key model.ApiKey, logs []LogInput, categories []model.KpiCategory, examples []FewShot) ([]Suggestion, error) {
	text, err := p.generate(ctx, key, buildClassifyPrompt(logs, categories, examples))
	if err != nil {
		return nil, err
	}
	return parseSuggestions(text, len(logs))
}

func (p *GeminiProvider) ScoreEvaluation(ctx context.Context, key model.ApiKey, userID uuid.UUID, year, month int, breakdown model.Breakdown) (map[uint]float64, error) {
	text, err := p.generate(ctx, key, buildScorePrompt(year, month, breakdown))
	if err != nil {
		return nil, err
	}
	return parseScores(text)
}
