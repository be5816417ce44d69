package service

import (
	"context"
	"testing"
	"time"

	"github.com/ChathuraAt1/kpi-platform-sub001/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classifyInput(n int) []LogInput {
	logs := make([]LogInput, n)
	for i := range logs {
		logs[i] = LogInput{ID: uuid.New(), Description: "some work"}
	}
	return logs
}

func TestClassifyFailover(t *testing.T) {
	store := newFakeKeyStore(
		model.ApiKey{ID: 1, Provider: "broken-a", Priority: 1, Status: model.KeyStatusActive},
		model.ApiKey{ID: 2, Provider: "broken-b", Priority: 2, Status: model.KeyStatusActive},
		model.ApiKey{ID: 3, Provider: "healthy", Priority: 3, Status: model.KeyStatusActive},
	)
	winner := &fakeProvider{suggestions: []Suggestion{{Category: "Deep Work", Confidence: 0.9}}}
	registry := NewRegistry()
	registry.Register(&fakeProvider{fail: true}, "broken-a")
	registry.Register(&fakeProvider{fail: true}, "broken-b")
	registry.Register(winner, "healthy")

	client := NewLLMClient(store, registry, quietLogger())
	result := client.Classify(context.Background(), classifyInput(1), testCategories(), nil)

	require.Len(t, result, 1)
	assert.Equal(t, "Deep Work", result[0].Category)
	assert.Equal(t, 1, winner.calls)

	assert.Equal(t, model.KeyStatusDegraded, store.keys[1].Status)
	assert.Equal(t, model.KeyStatusDegraded, store.keys[2].Status)
	assert.Equal(t, model.KeyStatusActive, store.keys[3].Status)
	require.NotNil(t, store.keys[1].CooldownUntil)
	assert.Equal(t, 1, store.keys[1].FailureCount)
}

func TestClassifyExhaustionReturnsNeutralFallback(t *testing.T) {
	store := newFakeKeyStore()
	client := NewLLMClient(store, NewRegistry(), quietLogger())

	result := client.Classify(context.Background(), classifyInput(2), testCategories(), nil)

	require.Len(t, result, 2)
	for _, s := range result {
		assert.Equal(t, "Uncategorized", s.Category)
		assert.Equal(t, 0.0, s.Confidence)
	}
}

func TestClassifyAllKeysFailing(t *testing.T) {
	store := newFakeKeyStore(
		model.ApiKey{ID: 1, Provider: "broken", Priority: 1, Status: model.KeyStatusActive},
	)
	registry := NewRegistry()
	registry.Register(&fakeProvider{fail: true}, "broken")

	client := NewLLMClient(store, registry, quietLogger())
	result := client.Classify(context.Background(), classifyInput(3), testCategories(), nil)

	require.Len(t, result, 3)
	assert.Equal(t, "Uncategorized", result[0].Category)
	assert.Equal(t, model.KeyStatusDegraded, store.keys[1].Status)
}

func TestClassifyUnknownProviderSkippedWithoutDegrading(t *testing.T) {
	store := newFakeKeyStore(
		model.ApiKey{ID: 1, Provider: "does-not-exist", Priority: 1, Status: model.KeyStatusActive},
		model.ApiKey{ID: 2, Provider: "healthy", Priority: 2, Status: model.KeyStatusActive},
	)
	winner := &fakeProvider{suggestions: []Suggestion{{Category: "Meetings", Confidence: 0.8}}}
	registry := NewRegistry()
	registry.Register(winner, "healthy")

	client := NewLLMClient(store, registry, quietLogger())
	result := client.Classify(context.Background(), classifyInput(1), testCategories(), nil)

	require.Len(t, result, 1)
	assert.Equal(t, "Meetings", result[0].Category)
	// Skipped, not punished.
	assert.Equal(t, model.KeyStatusActive, store.keys[1].Status)
	assert.Zero(t, store.keys[1].FailureCount)
}

func TestClassifyProviderLookupIsCaseInsensitive(t *testing.T) {
	store := newFakeKeyStore(
		model.ApiKey{ID: 1, Provider: "HeAlThY", Priority: 1, Status: model.KeyStatusActive},
	)
	winner := &fakeProvider{suggestions: []Suggestion{{Category: "Deep Work", Confidence: 0.9}}}
	registry := NewRegistry()
	registry.Register(winner, "healthy")

	client := NewLLMClient(store, registry, quietLogger())
	result := client.Classify(context.Background(), classifyInput(1), testCategories(), nil)

	require.Len(t, result, 1)
	assert.Equal(t, 1, winner.calls)
}

func TestClassifySkipsQuotaExhaustedKey(t *testing.T) {
	today := time.Now().Truncate(24 * time.Hour)
	store := newFakeKeyStore(
		model.ApiKey{ID: 1, Provider: "healthy", Priority: 1, Status: model.KeyStatusActive,
			DailyQuota: 10, UsedToday: 10, UsageDate: &today},
		model.ApiKey{ID: 2, Provider: "backup", Priority: 2, Status: model.KeyStatusActive},
	)
	first := &fakeProvider{suggestions: []Suggestion{{Category: "Deep Work", Confidence: 0.9}}}
	second := &fakeProvider{suggestions: []Suggestion{{Category: "Meetings", Confidence: 0.5}}}
	registry := NewRegistry()
	registry.Register(first, "healthy")
	registry.Register(second, "backup")

	client := NewLLMClient(store, registry, quietLogger())
	result := client.Classify(context.Background(), classifyInput(1), testCategories(), nil)

	require.Len(t, result, 1)
	assert.Zero(t, first.calls)
	assert.Equal(t, "Meetings", result[0].Category)
}

func TestClassifyRecordsUsageOnSuccess(t *testing.T) {
	store := newFakeKeyStore(
		model.ApiKey{ID: 1, Provider: "healthy", Priority: 1, Status: model.KeyStatusActive, DailyQuota: 100},
	)
	registry := NewRegistry()
	registry.Register(&fakeProvider{suggestions: []Suggestion{{Category: "Deep Work", Confidence: 0.9}}}, "healthy")

	client := NewLLMClient(store, registry, quietLogger())
	client.Classify(context.Background(), classifyInput(1), testCategories(), nil)

	assert.Equal(t, 1, store.keys[1].UsedToday)
	require.NotNil(t, store.keys[1].UsageDate)
}

func TestScoreEvaluationFailover(t *testing.T) {
	store := newFakeKeyStore(
		model.ApiKey{ID: 1, Provider: "broken", Priority: 1, Status: model.KeyStatusActive},
		model.ApiKey{ID: 2, Provider: "healthy", Priority: 2, Status: model.KeyStatusActive},
	)
	winner := &fakeProvider{scores: map[uint]float64{1: 8.5, 2: 6.0}}
	registry := NewRegistry()
	registry.Register(&fakeProvider{fail: true}, "broken")
	registry.Register(winner, "healthy")

	breakdown := model.Breakdown{
		1: {CategoryName: "Deep Work", RuleScore: 7},
		2: {CategoryName: "Meetings", RuleScore: 5},
	}
	client := NewLLMClient(store, registry, quietLogger())
	scores := client.ScoreEvaluation(context.Background(), uuid.New(), 2026, 3, breakdown)

	assert.Equal(t, map[uint]float64{1: 8.5, 2: 6.0}, scores)
	assert.Equal(t, model.KeyStatusDegraded, store.keys[1].Status)
}

func TestScoreEvaluationExhaustionReturnsEmptyMap(t *testing.T) {
	store := newFakeKeyStore()
	client := NewLLMClient(store, NewRegistry(), quietLogger())

	scores := client.ScoreEvaluation(context.Background(), uuid.New(), 2026, 3, model.Breakdown{
		1: {CategoryName: "Deep Work", RuleScore: 7},
	})

	assert.Empty(t, scores)
	assert.NotNil(t, scores)
}
