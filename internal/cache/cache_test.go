package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := New("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestNew_BadURL(t *testing.T) {
	_, err := New("://nope")
	assert.Error(t, err)
}

func TestActionIndex(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	idx, err := c.GetActionIndex(ctx)
	require.NoError(t, err)
	assert.Zero(t, idx)

	require.NoError(t, c.SetActionIndex(ctx, 987))
	idx, err = c.GetActionIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(987), idx)
}

func TestRegionStates(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	since := time.Date(2026, 10, 18, 7, 0, 0, 0, time.UTC)

	require.NoError(t, c.SetRegionState(ctx, RegionState{RegionID: "14", RegionName: "Київська область", Active: true, Types: []string{"AIR"}, Since: since}))
	require.NoError(t, c.SetRegionState(ctx, RegionState{RegionID: "31", RegionName: "м. Київ", Active: false, Since: since}))
	// Foreign and corrupt keys are skipped.
	require.NoError(t, mr.Set("unrelated", "x"))
	require.NoError(t, mr.Set(alarmPrefix+"99", "{broken"))

	states, err := c.GetAllRegionStates(ctx)
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.True(t, states["14"].Active)
	assert.Equal(t, []string{"AIR"}, states["14"].Types)
	assert.True(t, since.Equal(states["14"].Since))
	assert.False(t, states["31"].Active)
}
