package badger

import (
	"context"
	"fmt"
	"testing"

	"github.com/poiesic/shadowsync/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorRepository(t *testing.T) {
	_, vectors, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() { vectors.Close(); backend.Close() }()

	ctx := context.Background()

	t.Run("assigns IDs and keeps append order", func(t *testing.T) {
		for i := range 7 {
			point := &core.VectorPoint{X: float64(i), Y: -float64(i), Content: fmt.Sprintf("memory %d", i), Category: "General"}
			require.NoError(t, vectors.AppendPoint(ctx, point))
			assert.NotEmpty(t, point.ID)
		}

		points, err := vectors.Points(ctx)
		require.NoError(t, err)
		require.Len(t, points, 7)
		for i, p := range points {
			assert.Equal(t, fmt.Sprintf("memory %d", i), p.Content)
		}

		count, err := vectors.PointCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 7, count)
	})

	t.Run("recent points are the tail in append order", func(t *testing.T) {
		recent, err := vectors.RecentPoints(ctx, 5)
		require.NoError(t, err)
		require.Len(t, recent, 5)
		assert.Equal(t, "memory 2", recent[0].Content)
		assert.Equal(t, "memory 6", recent[4].Content)
	})

	t.Run("recent points bounded by store size", func(t *testing.T) {
		recent, err := vectors.RecentPoints(ctx, 100)
		require.NoError(t, err)
		assert.Len(t, recent, 7)

		recent, err = vectors.RecentPoints(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, recent)
	})

	t.Run("keeps caller-provided IDs", func(t *testing.T) {
		point := &core.VectorPoint{ID: "fixed", X: 40, Y: -20}
		require.NoError(t, vectors.AppendPoint(ctx, point))

		recent, err := vectors.RecentPoints(ctx, 1)
		require.NoError(t, err)
		require.Len(t, recent, 1)
		assert.Equal(t, "fixed", recent[0].ID)
		assert.Equal(t, 40.0, recent[0].X)
		assert.Equal(t, -20.0, recent[0].Y)
	})
}
