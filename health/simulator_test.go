package health

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSimulator(t *testing.T, seed uint64) *Simulator {
	t.Helper()
	sim, err := NewSimulator(WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))))
	require.NoError(t, err)
	return sim
}

func TestDefaultSnapshot(t *testing.T) {
	sim := newTestSimulator(t, 1)
	snap := sim.Snapshot()

	assert.Equal(t, 99.999, snap.Consistency)
	assert.Equal(t, 24, snap.LatencyMs)
	assert.Equal(t, 3, snap.ReplicationFactor)
	assert.Equal(t, 1.24, snap.StorageMB)
	assert.Equal(t, 12, snap.BufferPercent)
	assert.False(t, sim.Busy())
}

func TestNewSimulator_InvalidOptions(t *testing.T) {
	_, err := NewSimulator(WithInterval(0))
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = NewSimulator(WithRand(nil))
	assert.Error(t, err)
}

func TestTick_Idle(t *testing.T) {
	sim := newTestSimulator(t, 2)

	for range 200 {
		sim.Tick()
		snap := sim.Snapshot()
		assert.GreaterOrEqual(t, snap.LatencyMs, 19)
		assert.LessOrEqual(t, snap.LatencyMs, 33)
		assert.GreaterOrEqual(t, snap.BufferPercent, 8)
		assert.LessOrEqual(t, snap.BufferPercent, 12)
		assert.GreaterOrEqual(t, snap.Consistency, 99.995)
		assert.LessOrEqual(t, snap.Consistency, 100.0)
	}
	// idle decay settles on the floor
	assert.Equal(t, 8, sim.Snapshot().BufferPercent)
}

func TestTick_Busy(t *testing.T) {
	sim := newTestSimulator(t, 3)
	sim.IngestStarted()

	for range 200 {
		sim.Tick()
		snap := sim.Snapshot()
		assert.GreaterOrEqual(t, snap.LatencyMs, 60)
		assert.LessOrEqual(t, snap.LatencyMs, 74)
		assert.LessOrEqual(t, snap.BufferPercent, 98)
	}
	assert.Equal(t, 98, sim.Snapshot().BufferPercent)
}

func TestIngestTriggers(t *testing.T) {
	sim := newTestSimulator(t, 4)

	sim.IngestStarted()
	assert.True(t, sim.Busy())
	assert.Equal(t, 37, sim.Snapshot().BufferPercent)

	for range 5 {
		sim.IngestStarted()
	}
	assert.Equal(t, 100, sim.Snapshot().BufferPercent)

	for range 6 {
		sim.IngestFinished(nil)
	}
	assert.False(t, sim.Busy())

	// extra finishes never drive the counter negative
	sim.IngestFinished(nil)
	sim.IngestStarted()
	assert.True(t, sim.Busy())
}

func TestBufferStaysInRange(t *testing.T) {
	sim := newTestSimulator(t, 5)
	r := rand.New(rand.NewPCG(9, 9))

	for range 2000 {
		switch r.IntN(4) {
		case 0:
			sim.IngestStarted()
		case 1:
			sim.IngestFinished(nil)
		default:
			sim.Tick()
		}
		buffer := sim.Snapshot().BufferPercent
		require.GreaterOrEqual(t, buffer, 8)
		require.LessOrEqual(t, buffer, 100)
	}
}

func TestStoreChanged(t *testing.T) {
	sim := newTestSimulator(t, 6)

	sim.StoreChanged(10, 4)
	assert.Equal(t, 1.41, sim.Snapshot().StorageMB)

	// idempotent
	sim.StoreChanged(10, 4)
	assert.Equal(t, 1.41, sim.Snapshot().StorageMB)

	prev := sim.Snapshot().StorageMB
	for n := 10; n < 60; n += 7 {
		sim.StoreChanged(n, n/2)
		cur := sim.Snapshot().StorageMB
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestLevel(t *testing.T) {
	assert.Equal(t, LevelLow, Level(12))
	assert.Equal(t, LevelLow, Level(50))
	assert.Equal(t, LevelElevated, Level(51))
	assert.Equal(t, LevelElevated, Level(80))
	assert.Equal(t, LevelCritical, Level(81))
}

func TestStartStop(t *testing.T) {
	sim, err := NewSimulator(WithInterval(10 * time.Millisecond))
	require.NoError(t, err)

	require.NoError(t, sim.Start())
	assert.ErrorIs(t, sim.Start(), ErrAlreadyStarted)

	// the heartbeat moves consistency off its default
	assert.Eventually(t, func() bool {
		return sim.Snapshot().Consistency != 99.999
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, sim.Stop())
	require.NoError(t, sim.Stop())
}
