package service

import (
	"context"
	"time"

	"github.com/ChathuraAt1/kpi-platform-sub001/internal/model"
	"github.com/sirupsen/logrus"
)

const maxCooldown = 24 * time.Hour

// Cooldown returns the backoff window for a key that has failed
// failureCount times in a row: 1h, 2h, 4h, ... capped at 24h.
func Cooldown(failureCount int) time.Duration {
	if failureCount < 1 {
		failureCount = 1
	}
	if failureCount > 6 {
		return maxCooldown
	}
	d := time.Duration(3600*(1<<(failureCount-1))) * time.Second
	if d > maxCooldown {
		d = maxCooldown
	}
	return d
}

// HealthStore lists the keys eligible for health checking. Revoked keys
// must never be returned.
type HealthStore interface {
	CheckableKeys(degradedOnly bool) ([]model.ApiKey, error)
	Save(key *model.ApiKey) error
}

// KeyHealthService runs the periodic provider health sweep and drives the
// active <-> degraded state machine.
type KeyHealthService struct {
	keys     HealthStore
	registry *Registry
	timeout  time.Duration
	log      *logrus.Logger
}

func NewKeyHealthService(keys HealthStore, registry *Registry, log *logrus.Logger) *KeyHealthService {
	return &KeyHealthService{keys: keys, registry: registry, timeout: providerTimeout, log: log}
}

// Sweep health-checks every eligible key. A degraded key inside its
// cooldown window is skipped before any network call is made.
func (s *KeyHealthService) Sweep(ctx context.Context, degradedOnly bool) {
	keys, err := s.keys.CheckableKeys(degradedOnly)
	if err != nil {
		s.log.Errorf("loading checkable keys failed: %v", err)
		return
	}

	for i := range keys {
		key := &keys[i]
		now := time.Now()
		if key.Status == model.KeyStatusDegraded && key.CooldownUntil != nil && now.Before(*key.CooldownUntil) {
			continue
		}
		provider, found := s.registry.Lookup(key.Provider)
		if !found {
			s.log.Warnf("unknown LLM provider %q on key %d, skipping health check", key.Provider, key.ID)
			continue
		}

		checkCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := provider.HealthCheck(checkCtx, *key)
		cancel()

		key.LastCheckedAt = &now
		if err != nil {
			key.Status = model.KeyStatusDegraded
			key.FailureCount++
			until := now.Add(Cooldown(key.FailureCount))
			key.CooldownUntil = &until
			s.log.Warnf("health check failed for %s key %d (failure %d, cooldown until %s): %v",
				key.Provider, key.ID, key.FailureCount, until.Format(time.RFC3339), err)
		} else {
			if key.Status != model.KeyStatusActive {
				s.log.Infof("%s key %d recovered, marking active", key.Provider, key.ID)
			}
			key.Status = model.KeyStatusActive
			key.FailureCount = 0
			key.CooldownUntil = nil
		}

		if err := s.keys.Save(key); err != nil {
			s.log.Errorf("saving key %d after health check failed: %v", key.ID, err)
		}
	}
}
