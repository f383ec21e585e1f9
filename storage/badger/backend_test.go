package badger

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/shadowsync/core"
	"github.com/poiesic/shadowsync/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := t.TempDir()
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	assert.False(t, backend.IsClosed())
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())

	err = backend.WithTx(context.Background(), func(tx *badger.Txn) error { return nil }, false)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestWithTransaction(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	graph, err := NewGraphRepository(backend)
	require.NoError(t, err)
	defer graph.Close()
	vectors, err := NewVectorRepository(backend)
	require.NoError(t, err)
	defer vectors.Close()

	ctx := context.Background()
	now := time.Now()

	t.Run("successful transaction", func(t *testing.T) {
		err := backend.WithTransaction(ctx, func(ctx context.Context) error {
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("failed transaction", func(t *testing.T) {
		testErr := assert.AnError
		err := backend.WithTransaction(ctx, func(ctx context.Context) error {
			return testErr
		})
		assert.Equal(t, testErr, err)
	})

	t.Run("writes across repositories commit together", func(t *testing.T) {
		err := graph.WithTransaction(ctx, func(txCtx context.Context) error {
			if _, err := graph.UpsertNodes(txCtx, core.NewNode("Bob", core.NodeTypePerson, now)); err != nil {
				return err
			}
			if err := vectors.AppendPoint(txCtx, &core.VectorPoint{Content: "Bob"}); err != nil {
				return err
			}

			// visible inside, not outside
			count, err := graph.NodeCount(txCtx)
			require.NoError(t, err)
			assert.Equal(t, 1, count)
			return nil
		})
		require.NoError(t, err)

		nodes, err := graph.NodeCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, nodes)
		points, err := vectors.PointCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, points)
	})

	t.Run("failure discards every repository's writes", func(t *testing.T) {
		err := vectors.WithTransaction(ctx, func(txCtx context.Context) error {
			if _, err := graph.UpsertNodes(txCtx, core.NewNode("Carol", core.NodeTypePerson, now)); err != nil {
				return err
			}
			if err := graph.AppendEdges(txCtx, &core.Edge{Source: "Carol", Target: "Bob", Relation: "knows"}); err != nil {
				return err
			}
			if err := vectors.AppendPoint(txCtx, &core.VectorPoint{Content: "Carol"}); err != nil {
				return err
			}
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)

		_, err = graph.GetNode(ctx, "Carol")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		edges, err := graph.EdgeCount(ctx)
		require.NoError(t, err)
		assert.Zero(t, edges)
		points, err := vectors.PointCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, points)
	})

	t.Run("nested transaction joins the outer one", func(t *testing.T) {
		err := backend.WithTransaction(ctx, func(outer context.Context) error {
			err := backend.WithTransaction(outer, func(inner context.Context) error {
				_, err := graph.UpsertNodes(inner, core.NewNode("Dave", core.NodeTypePerson, now))
				return err
			})
			require.NoError(t, err)
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)

		_, err = graph.GetNode(ctx, "Dave")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestMakeGraphLabelKey_FixedWidth(t *testing.T) {
	short := makeGraphLabelKey("Bob")
	long := makeGraphLabelKey(strings.Repeat("x", 70000))

	assert.Len(t, long, len(short))
	assert.NotEqual(t, short, makeGraphLabelKey("bob"))
	assert.Equal(t, short, makeGraphLabelKey("Bob"))
}

func TestGetSequence(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	seq, err := backend.GetSequence("test_sequence")
	require.NoError(t, err)
	require.NotNil(t, seq)
	defer seq.Release()

	id1, err := nextSeq(seq)
	require.NoError(t, err)
	id2, err := nextSeq(seq)
	require.NoError(t, err)

	assert.NotZero(t, id1)
	assert.Greater(t, id2, id1)
}

func TestMakeSeqKey_SortsNumerically(t *testing.T) {
	a := makeSeqKey(eventPrefix, 9)
	b := makeSeqKey(eventPrefix, 10)
	c := makeSeqKey(eventPrefix, 256)

	assert.Equal(t, -1, bytes.Compare(a, b))
	assert.Equal(t, -1, bytes.Compare(b, c))
	assert.Equal(t, -1, bytes.Compare(c, makeSeqUpperBound(eventPrefix)))
	assert.True(t, bytes.HasPrefix(a, seqPrefix(eventPrefix)))
	assert.False(t, bytes.HasPrefix([]byte(eventSeq), seqPrefix(eventPrefix)))
}
