package service

import (
	"context"
	"time"

	"github.com/ChathuraAt1/kpi-platform-sub001/internal/model"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const providerTimeout = 30 * time.Second

// KeyStore is the credential pool the failover loop iterates over.
// ActiveKeys must return status=active keys ordered by ascending priority.
type KeyStore interface {
	ActiveKeys() ([]model.ApiKey, error)
	Save(key *model.ApiKey) error
}

// LLMClient fans a request out across redundant provider credentials:
// one attempt per key, first success wins, failing keys get degraded.
// Both entry points are best-effort and never return an error; when every
// candidate fails the caller gets a neutral result instead.
type LLMClient struct {
	keys     KeyStore
	registry *Registry
	timeout  time.Duration
	log      *logrus.Logger
}

func NewLLMClient(keys KeyStore, registry *Registry, log *logrus.Logger) *LLMClient {
	return &LLMClient{keys: keys, registry: registry, timeout: providerTimeout, log: log}
}

// Classify assigns a category suggestion to every input log. Exhaustion of
// the key pool yields one Uncategorized/0.0 suggestion per input.
func (c *LLMClient) Classify(ctx context.Context, logs []LogInput, categories []model.KpiCategory, examples []FewShot) []Suggestion {
	if len(logs) == 0 {
		return nil
	}

	var result []Suggestion
	ok := c.attempt(ctx, func(callCtx context.Context, p Provider, key model.ApiKey) error {
		var err error
		result, err = p.Classify(callCtx, key, logs, categories, examples)
		return err
	})
	if !ok {
		return neutralSuggestions(len(logs))
	}
	return result
}

// ScoreEvaluation asks a provider to score every breakdown entry. On
// exhaustion it returns an empty map so no category gets an llm_score.
func (c *LLMClient) ScoreEvaluation(ctx context.Context, userID uuid.UUID, year, month int, breakdown model.Breakdown) map[uint]float64 {
	if len(breakdown) == 0 {
		return map[uint]float64{}
	}

	var result map[uint]float64
	ok := c.attempt(ctx, func(callCtx context.Context, p Provider, key model.ApiKey) error {
		var err error
		result, err = p.ScoreEvaluation(callCtx, key, userID, year, month, breakdown)
		return err
	})
	if !ok {
		return map[uint]float64{}
	}
	return result
}

// attempt runs call against active keys in priority order and reports
// whether any key succeeded. Unknown providers are skipped without
// touching the key; provider errors degrade the key and move on.
func (c *LLMClient) attempt(ctx context.Context, call func(ctx context.Context, p Provider, key model.ApiKey) error) bool {
	keys, err := c.keys.ActiveKeys()
	if err != nil {
		c.log.Errorf("loading API keys failed: %v", err)
		return false
	}

	now := time.Now()
	for i := range keys {
		key := &keys[i]
		if key.QuotaExhausted(now) {
			c.log.Debugf("key %d (%s) daily quota exhausted, skipping", key.ID, key.Provider)
			continue
		}
		provider, found := c.registry.Lookup(key.Provider)
		if !found {
			c.log.Warnf("unknown LLM provider %q on key %d, skipping", key.Provider, key.ID)
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := call(callCtx, provider, *key)
		cancel()
		if err != nil {
			c.log.Warnf("provider %s (key %d) failed: %v", key.Provider, key.ID, err)
			c.degrade(key, now)
			continue
		}

		c.recordUsage(key, now)
		return true
	}
	return false
}

func (c *LLMClient) degrade(key *model.ApiKey, now time.Time) {
	key.Status = model.KeyStatusDegraded
	key.FailureCount++
	until := now.Add(Cooldown(key.FailureCount))
	key.CooldownUntil = &until
	key.LastCheckedAt = &now
	if err := c.keys.Save(key); err != nil {
		c.log.Errorf("saving degraded key %d failed: %v", key.ID, err)
	}
}

func (c *LLMClient) recordUsage(key *model.ApiKey, now time.Time) {
	if key.UsageDate == nil || key.UsageDate.Format("2006-01-02") != now.Format("2006-01-02") {
		key.UsedToday = 0
	}
	key.UsedToday++
	day := now.Truncate(24 * time.Hour)
	key.UsageDate = &day
	if err := c.keys.Save(key); err != nil {
		c.log.Errorf("recording usage on key %d failed: %v", key.ID, err)
	}
}

func neutralSuggestions(n int) []Suggestion {
	out := make([]Suggestion, n)
	for i := range out {
		out[i] = Suggestion{Category: "Uncategorized", Confidence: 0.0}
	}
	return out
}
