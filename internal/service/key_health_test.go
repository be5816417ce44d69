package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ChathuraAt1/kpi-platform-sub001/internal/model"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKeyStore struct {
	keys  map[uint]*model.ApiKey
	order []uint
}

func newFakeKeyStore(keys ...model.ApiKey) *fakeKeyStore {
	s := &fakeKeyStore{keys: map[uint]*model.ApiKey{}}
	for i := range keys {
		k := keys[i]
		s.keys[k.ID] = &k
		s.order = append(s.order, k.ID)
	}
	return s
}

func (s *fakeKeyStore) ActiveKeys() ([]model.ApiKey, error) {
	var out []model.ApiKey
	for _, id := range s.order {
		if s.keys[id].Status == model.KeyStatusActive {
			out = append(out, *s.keys[id])
		}
	}
	return out, nil
}

func (s *fakeKeyStore) CheckableKeys(degradedOnly bool) ([]model.ApiKey, error) {
	var out []model.ApiKey
	for _, id := range s.order {
		k := s.keys[id]
		if k.Status == model.KeyStatusRevoked {
			continue
		}
		if degradedOnly && k.Status != model.KeyStatusDegraded {
			continue
		}
		out = append(out, *k)
	}
	return out, nil
}

func (s *fakeKeyStore) Save(key *model.ApiKey) error {
	copied := *key
	s.keys[key.ID] = &copied
	return nil
}

// fakeProvider counts calls and fails on demand.
type fakeProvider struct {
	fail        bool
	calls       int
	suggestions []Suggestion
	scores      map[uint]float64
}

func (p *fakeProvider) HealthCheck(ctx context.Context, key model.ApiKey) error {
	p.calls++
	if p.fail {
		return errors.New("provider down")
	}
	return nil
}

func (p *fakeProvider) Classify(ctx context.Context, key model.ApiKey, logs []LogInput, categories []model.KpiCategory, examples []FewShot) ([]Suggestion, error) {
	p.calls++
	if p.fail {
		return nil, errors.New("provider down")
	}
	return p.suggestions, nil
}

func (p *fakeProvider) ScoreEvaluation(ctx context.Context, key model.ApiKey, userID uuid.UUID, year, month int, breakdown model.Breakdown) (map[uint]float64, error) {
	p.calls++
	if p.fail {
		return nil, errors.New("provider down")
	}
	return p.scores, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestCooldownMonotonicity(t *testing.T) {
	assert.Equal(t, 3600*time.Second, Cooldown(1))
	assert.Equal(t, 7200*time.Second, Cooldown(2))
	assert.Equal(t, 14400*time.Second, Cooldown(3))
	assert.Equal(t, 28800*time.Second, Cooldown(4))
}

func TestCooldownCapped(t *testing.T) {
	assert.Equal(t, 24*time.Hour, Cooldown(6))
	assert.Equal(t, 24*time.Hour, Cooldown(10))
	assert.Equal(t, 24*time.Hour, Cooldown(100))
}

func TestCooldownFloor(t *testing.T) {
	assert.Equal(t, 3600*time.Second, Cooldown(0))
	assert.Equal(t, 3600*time.Second, Cooldown(-3))
}

func TestSweepDegradesFailingKey(t *testing.T) {
	store := newFakeKeyStore(model.ApiKey{ID: 1, Provider: "fake", Status: model.KeyStatusActive})
	provider := &fakeProvider{fail: true}
	registry := NewRegistry()
	registry.Register(provider, "fake")

	svc := NewKeyHealthService(store, registry, quietLogger())
	svc.Sweep(context.Background(), false)

	key := store.keys[1]
	assert.Equal(t, model.KeyStatusDegraded, key.Status)
	assert.Equal(t, 1, key.FailureCount)
	require.NotNil(t, key.CooldownUntil)
	assert.NotNil(t, key.LastCheckedAt)
}

func TestSweepSkipsKeyInsideCooldown(t *testing.T) {
	until := time.Now().Add(time.Hour)
	store := newFakeKeyStore(model.ApiKey{
		ID:            1,
		Provider:      "fake",
		Status:        model.KeyStatusDegraded,
		FailureCount:  2,
		CooldownUntil: &until,
	})
	provider := &fakeProvider{}
	registry := NewRegistry()
	registry.Register(provider, "fake")

	svc := NewKeyHealthService(store, registry, quietLogger())
	svc.Sweep(context.Background(), false)

	assert.Zero(t, provider.calls, "no network call may happen inside the cooldown window")
	assert.Equal(t, model.KeyStatusDegraded, store.keys[1].Status)
}

func TestSweepRecoversKeyAfterCooldown(t *testing.T) {
	until := time.Now().Add(-time.Minute)
	store := newFakeKeyStore(model.ApiKey{
		ID:            1,
		Provider:      "fake",
		Status:        model.KeyStatusDegraded,
		FailureCount:  3,
		CooldownUntil: &until,
	})
	provider := &fakeProvider{}
	registry := NewRegistry()
	registry.Register(provider, "fake")

	svc := NewKeyHealthService(store, registry, quietLogger())
	svc.Sweep(context.Background(), false)

	key := store.keys[1]
	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, model.KeyStatusActive, key.Status)
	assert.Zero(t, key.FailureCount)
	assert.Nil(t, key.CooldownUntil)
}

func TestSweepRepeatedFailureGrowsCooldown(t *testing.T) {
	until := time.Now().Add(-time.Minute)
	store := newFakeKeyStore(model.ApiKey{
		ID:            1,
		Provider:      "fake",
		Status:        model.KeyStatusDegraded,
		FailureCount:  1,
		CooldownUntil: &until,
	})
	provider := &fakeProvider{fail: true}
	registry := NewRegistry()
	registry.Register(provider, "fake")

	svc := NewKeyHealthService(store, registry, quietLogger())
	svc.Sweep(context.Background(), false)

	key := store.keys[1]
	assert.Equal(t, 2, key.FailureCount)
	require.NotNil(t, key.CooldownUntil)
	remaining := time.Until(*key.CooldownUntil)
	assert.Greater(t, remaining, 7100*time.Second)
	assert.LessOrEqual(t, remaining, 7200*time.Second)
}

func TestSweepExcludesRevokedKeys(t *testing.T) {
	store := newFakeKeyStore(model.ApiKey{ID: 1, Provider: "fake", Status: model.KeyStatusRevoked})
	provider := &fakeProvider{}
	registry := NewRegistry()
	registry.Register(provider, "fake")

	svc := NewKeyHealthService(store, registry, quietLogger())
	svc.Sweep(context.Background(), false)

	assert.Zero(t, provider.calls)
	assert.Equal(t, model.KeyStatusRevoked, store.keys[1].Status)
}

func TestSweepDegradedOnly(t *testing.T) {
	until := time.Now().Add(-time.Minute)
	store := newFakeKeyStore(
		model.ApiKey{ID: 1, Provider: "fake", Status: model.KeyStatusActive},
		model.ApiKey{ID: 2, Provider: "fake", Status: model.KeyStatusDegraded, FailureCount: 1, CooldownUntil: &until},
	)
	provider := &fakeProvider{}
	registry := NewRegistry()
	registry.Register(provider, "fake")

	svc := NewKeyHealthService(store, registry, quietLogger())
	svc.Sweep(context.Background(), true)

	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, model.KeyStatusActive, store.keys[2].Status)
}
