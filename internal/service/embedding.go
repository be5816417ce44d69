package service

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const embeddingModel = "text-embedding-004"

// EmbeddingService produces description embeddings for the similar-logs
// lookup that feeds few-shot context into classification prompts. It rides
// on the first active gemini credential; callers treat failure as
// "no embedding", never as a hard error.
type EmbeddingService struct {
	keys KeyStore
}

func NewEmbeddingService(keys KeyStore) *EmbeddingService {
	return &EmbeddingService{keys: keys}
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("text for embedding cannot be empty")
	}
	if len(text) > 10000 {
		text = text[:10000]
	}

	keys, err := s.keys.ActiveKeys()
	if err != nil {
		return nil, err
	}
	var secret string
	for _, k := range keys {
		switch strings.ToLower(k.Provider) {
		case "gemini", "google", "googleai":
			secret = k.Secret
		}
		if secret != "" {
			break
		}
	}
	if secret == "" {
		return nil, fmt.Errorf("no active gemini key for embeddings")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  secret,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	content := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	result, err := client.Models.EmbedContent(ctx, embeddingModel, content, nil)
	if err != nil {
		return nil, err
	}
	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}
	return result.Embeddings[0].Values, nil
}
