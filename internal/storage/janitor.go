package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Janitor periodically evicts idle chats from a SessionStore.
type Janitor struct {
	store    *SessionStore
	idleTTL  time.Duration
	interval time.Duration
	logger   *zap.Logger
}

// NewJanitor creates a new janitor.
func NewJanitor(store *SessionStore, idleTTL, interval time.Duration, logger *zap.Logger) *Janitor {
	return &Janitor{
		store:    store,
		idleTTL:  idleTTL,
		interval: interval,
		logger:   logger,
	}
}

// Start runs the sweep schedule until ctx is done.
func (j *Janitor) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(fmt.Sprintf("@every %s", j.interval), j.Sweep)
	if err != nil {
		return fmt.Errorf("add sweep job: %w", err)
	}

	c.Start()
	j.logger.Info("session janitor started",
		zap.Duration("idle_ttl", j.idleTTL),
		zap.Duration("interval", j.interval),
	)

	<-ctx.Done()

	<-c.Stop().Done()
	j.logger.Info("session janitor stopped")
	return nil
}

// Sweep evicts chats idle for longer than the TTL.
func (j *Janitor) Sweep() {
	evicted := j.store.EvictIdle(j.idleTTL)
	if len(evicted) == 0 {
		return
	}

	j.logger.Info("evicted idle chats",
		zap.Int("count", len(evicted)),
		zap.Int("remaining", j.store.Len()),
	)
}
