package service

import (
	"context"
	"strings"

	"github.com/ChathuraAt1/kpi-platform-sub001/internal/model"
	"github.com/google/uuid"
)

// LogInput is the slice of a task log a provider needs for classification.
type LogInput struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
}

// Suggestion is a provider's categorical answer for one log.
type Suggestion struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// FewShot is one already-categorized log used as prompt context.
type FewShot struct {
	Description string
	Category    string
}

// Provider is the two-operation contract every LLM backend adapter
// implements. The key row carries the credential, optional model override
// and optional base URL.
type Provider interface {
	HealthCheck(ctx context.Context, key model.ApiKey) error
	Classify(ctx context.Context, key model.ApiKey, logs []LogInput, categories []model.KpiCategory, examples []FewShot) ([]Suggestion, error)
	ScoreEvaluation(ctx context.Context, key model.ApiKey, userID uuid.UUID, year, month int, breakdown model.Breakdown) (map[uint]float64, error)
}

// Registry maps case-insensitive provider names (and their aliases) to
// adapter implementations. Populated once at startup.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: map[string]Provider{}}
}

func (r *Registry) Register(p Provider, names ...string) {
	for _, name := range names {
		r.providers[strings.ToLower(name)] = p
	}
}

func (r *Registry) Lookup(name string) (Provider, bool) {
	p, ok := r.providers[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// DefaultRegistry wires the supported provider set. groq, deepseek and
// local all speak the OpenAI chat completion dialect, so they share the
// adapter with their own default base URL and model.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewOpenAIProvider("", "gpt-4o-mini"), "openai", "gpt")
	r.Register(NewOpenAIProvider("https://api.groq.com/openai/v1", "llama-3.3-70b-versatile"), "groq")
	r.Register(NewOpenAIProvider("https://api.deepseek.com/v1", "deepseek-chat"), "deepseek")
	r.Register(NewOpenAIProvider("http://localhost:11434/v1", "llama3"), "local", "ollama")
	r.Register(NewGeminiProvider(), "gemini", "google", "googleai")
	r.Register(NewHuggingFaceProvider(), "huggingface", "hf")
	return r
}
