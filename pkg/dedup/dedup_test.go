package dedup_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookflow/hookflow/pkg/dedup"
)

func TestMemoryDeduperClaimsOnce(t *testing.T) {
	d := dedup.NewMemoryDeduper(time.Minute)
	ctx := context.Background()

	first, err := d.Claim(ctx, "delivery-1")
	require.NoError(t, err)
	assert.True(t, first)

	second, err := d.Claim(ctx, "delivery-1")
	require.NoError(t, err)
	assert.False(t, second)

	other, err := d.Claim(ctx, "delivery-2")
	require.NoError(t, err)
	assert.True(t, other)
}

func TestMemoryDeduperExpiry(t *testing.T) {
	d := dedup.NewMemoryDeduper(10 * time.Millisecond)
	ctx := context.Background()

	first, err := d.Claim(ctx, "delivery-1")
	require.NoError(t, err)
	assert.True(t, first)

	time.Sleep(20 * time.Millisecond)

	again, err := d.Claim(ctx, "delivery-1")
	require.NoError(t, err)
	assert.True(t, again, "expired claims can be taken again")
}

func TestMemoryDeduperStoresResult(t *testing.T) {
	d := dedup.NewMemoryDeduper(time.Minute)
	ctx := context.Background()

	_, err := d.Claim(ctx, "delivery-1")
	require.NoError(t, err)

	require.NoError(t, d.StoreResult(ctx, "delivery-1", []byte(`{"event_id":"evt-1"}`)))

	result, err := d.Result(ctx, "delivery-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"event_id":"evt-1"}`, string(result))

	missing, err := d.Result(ctx, "delivery-2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryDeduperReleaseFreesClaim(t *testing.T) {
	d := dedup.NewMemoryDeduper(time.Minute)
	ctx := context.Background()

	first, err := d.Claim(ctx, "delivery-1")
	require.NoError(t, err)
	assert.True(t, first)

	require.NoError(t, d.Release(ctx, "delivery-1"))

	again, err := d.Claim(ctx, "delivery-1")
	require.NoError(t, err)
	assert.True(t, again, "a released delivery is claimable again")
}
