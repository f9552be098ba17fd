// Package idempotency guards write endpoints against duplicate submission
// caused by network retries: a retried request is re-answered from a cached
// response, never re-executed.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/clinovo/medsync/internal/models"
	"github.com/clinovo/medsync/internal/server/storage"
)

const (
	// DefaultTTL is how long a cached response stays answerable
	DefaultTTL = 24 * time.Hour

	// sweepBatchSize bounds how many expired records one sweep pass deletes
	sweepBatchSize = 256
)

// Cache maps a client-supplied idempotency key to the response the server
// produced the first time it saw that key. Caching is best-effort: a store
// failure degrades dedup protection, never availability.
type Cache struct {
	logger *slog.Logger
	store  storage.IdempotencyStorage
	clock  func() time.Time
	stopC  chan struct{}
	ttl    time.Duration
}

// NewCache creates a new idempotency cache. A zero ttl defaults to
// DefaultTTL; a nil clock defaults to time.Now.
func NewCache(logger *slog.Logger, store storage.IdempotencyStorage, ttl time.Duration, clock func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = time.Now
	}
	return &Cache{
		logger: logger,
		store:  store,
		clock:  clock,
		stopC:  make(chan struct{}),
		ttl:    ttl,
	}
}

// Begin looks up the key and returns the cached response if one exists and
// has not expired; the caller must then answer from it without running its
// own logic. A nil return means fresh: either the key is unseen, or its
// record expired (the stale record is deleted first). Store failures are
// logged and treated as fresh.
func (c *Cache) Begin(ctx context.Context, key string) *models.IdempotencyRecord {
	rec, err := c.store.GetIdempotencyRecord(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			c.logger.WarnContext(ctx, "idempotency lookup failed",
				slog.String("key", key),
				slog.Any("error", err))
		}
		return nil
	}

	if rec.Expired(c.clock()) {
		if err := c.store.DeleteIdempotencyRecord(ctx, key); err != nil && !errors.Is(err, storage.ErrKeyNotFound) {
			c.logger.WarnContext(ctx, "failed to delete expired idempotency record",
				slog.String("key", key),
				slog.Any("error", err))
		}
		return nil
	}

	return rec
}

// Commit stores the produced response under the key. Failure is logged and
// swallowed: the response still goes out, just without replay protection.
func (c *Cache) Commit(ctx context.Context, key, method, path string, statusCode int, body []byte) {
	now := c.clock()
	rec := &models.IdempotencyRecord{
		Key:          key,
		Method:       method,
		Path:         path,
		StatusCode:   statusCode,
		ResponseBody: body,
		CreatedAt:    now,
		ExpiresAt:    now.Add(c.ttl),
	}

	if err := c.store.PutIdempotencyRecord(ctx, rec); err != nil {
		c.logger.WarnContext(ctx, "failed to store idempotency record",
			slog.String("key", key),
			slog.Any("error", err))
	}
}

// Sweep deletes expired records in one bounded batch and returns how many
// were removed.
func (c *Cache) Sweep(ctx context.Context) (int, error) {
	deleted, err := c.store.DeleteExpiredIdempotencyRecords(ctx, c.clock(), sweepBatchSize)
	if err != nil {
		return deleted, fmt.Errorf("idempotency sweep: %w", err)
	}

	return deleted, nil
}

// StartSweeper launches the periodic expiry sweep. Stop terminates it.
func (c *Cache) StartSweeper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				deleted, err := c.Sweep(context.Background())
				if err != nil {
					c.logger.Warn("idempotency sweep failed", slog.Any("error", err))
					continue
				}
				if deleted > 0 {
					c.logger.Debug("idempotency sweep completed", slog.Int("deleted", deleted))
				}
			case <-c.stopC:
				return
			}
		}
	}()
}

// Stop terminates the sweeper goroutine
func (c *Cache) Stop() {
	close(c.stopC)
}
