// Package dedup suppresses duplicate webhook deliveries. Providers like
// GitHub retry deliveries with the same delivery ID, so the gateway
// claims each ID once within a retention window.
package dedup

import (
	"context"
	"sync"
	"time"
)

// DefaultRetention is how long a claimed delivery ID blocks duplicates.
const DefaultRetention = 24 * time.Hour

// Deduper claims delivery IDs. Claim returns true when the ID was not
// seen before and the caller should process the delivery. StoreResult
// attaches the intake response to a claimed ID so later retries can be
// answered with the original ids; Result returns nil when no response
// was stored. Release frees a claim whose delivery was never accepted,
// so the provider's retry is processed fresh instead of being answered
// as a duplicate.
type Deduper interface {
	Claim(ctx context.Context, deliveryID string) (bool, error)
	StoreResult(ctx context.Context, deliveryID string, result []byte) error
	Result(ctx context.Context, deliveryID string) ([]byte, error)
	Release(ctx context.Context, deliveryID string) error
	Close() error
}

type memoryClaim struct {
	expiry time.Time
	result []byte
}

// MemoryDeduper keeps claims in process memory. Suitable for a single
// gateway instance and for tests.
type MemoryDeduper struct {
	retention time.Duration
	mu        sync.Mutex
	seen      map[string]memoryClaim
}

func NewMemoryDeduper(retention time.Duration) *MemoryDeduper {
	if retention <= 0 {
		retention = DefaultRetention
	}

	return &MemoryDeduper{
		retention: retention,
		seen:      make(map[string]memoryClaim),
	}
}

func (d *MemoryDeduper) Claim(_ context.Context, deliveryID string) (bool, error) {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	claim, exists := d.seen[deliveryID]
	if exists && now.Before(claim.expiry) {
		return false, nil
	}

	d.seen[deliveryID] = memoryClaim{expiry: now.Add(d.retention)}

	return true, nil
}

func (d *MemoryDeduper) StoreResult(_ context.Context, deliveryID string, result []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	claim, exists := d.seen[deliveryID]
	if !exists {
		return nil
	}

	claim.result = result
	d.seen[deliveryID] = claim

	return nil
}

func (d *MemoryDeduper) Result(_ context.Context, deliveryID string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	claim, exists := d.seen[deliveryID]
	if !exists || time.Now().After(claim.expiry) {
		return nil, nil
	}

	return claim.result, nil
}

func (d *MemoryDeduper) Release(_ context.Context, deliveryID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.seen, deliveryID)

	return nil
}

func (d *MemoryDeduper) Close() error {
	return nil
}
