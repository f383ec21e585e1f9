package badger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/shadowsync/core"
	"github.com/poiesic/shadowsync/storage"
)

// GraphRepository implements storage.GraphRepository for BadgerDB.
//
// Nodes live under their insertion sequence with a label index pointing at
// the sequence, so replacing a node rewrites it in place and Nodes keeps
// returning insertion order.
type GraphRepository struct {
	backend *Backend
	nodeSeq *badger.Sequence
	edgeSeq *badger.Sequence
}

var _ storage.GraphRepository = (*GraphRepository)(nil)

// NewGraphRepository creates a new GraphRepository.
func NewGraphRepository(backend *Backend) (*GraphRepository, error) {
	nodeSeq, err := backend.GetSequence(graphNodeSeq)
	if err != nil {
		return nil, err
	}
	edgeSeq, err := backend.GetSequence(graphEdgeSeq)
	if err != nil {
		nodeSeq.Release()
		return nil, err
	}

	return &GraphRepository{
		backend: backend,
		nodeSeq: nodeSeq,
		edgeSeq: edgeSeq,
	}, nil
}

// Close releases the ID sequences.
func (r *GraphRepository) Close() error {
	return errors.Join(r.nodeSeq.Release(), r.edgeSeq.Release())
}

// WithTransaction delegates to the backend.
func (r *GraphRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// UpsertNodes merges nodes by label and reports how many labels were new.
func (r *GraphRepository) UpsertNodes(ctx context.Context, nodes ...*core.Node) (int, error) {
	introduced := 0
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		for _, node := range nodes {
			if err := core.ValidateNode(node); err != nil {
				return err
			}
			if node.ID == 0 {
				node.ID = core.IDFromContent(node.Label)
			}

			labelKey := makeGraphLabelKey(node.Label)
			seq, found, err := readLabelSeq(tx, labelKey)
			if err != nil {
				return err
			}
			if found {
				if err := checkLabel(tx, seq, node.Label); err != nil {
					return err
				}
			} else {
				seq, err = nextSeq(r.nodeSeq)
				if err != nil {
					return err
				}
				if err := tx.Set(labelKey, encodeSeq(seq)); err != nil {
					return err
				}
				introduced++
			}

			if err := tx.Set(makeGraphNodeKey(seq), storage.MarshalNode(node)); err != nil {
				return err
			}
		}
		return nil
	}, true)
	if err != nil {
		return 0, err
	}

	return introduced, nil
}

// AppendEdges appends relationships unconditionally.
func (r *GraphRepository) AppendEdges(ctx context.Context, edges ...*core.Edge) error {
	return r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		for _, edge := range edges {
			if err := core.ValidateEdge(edge); err != nil {
				return err
			}
			seq, err := nextSeq(r.edgeSeq)
			if err != nil {
				return err
			}
			if err := tx.Set(makeSeqKey(graphEdgePrefix, seq), storage.MarshalEdge(edge)); err != nil {
				return err
			}
		}
		return nil
	}, true)
}

// NodeCount returns the number of distinct labels.
func (r *GraphRepository) NodeCount(ctx context.Context) (int, error) {
	var count int
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		count = countPrefix(tx, seqPrefix(graphNodePrefix))
		return nil
	}, false)
	return count, err
}

// EdgeCount returns the number of stored relationships.
func (r *GraphRepository) EdgeCount(ctx context.Context) (int, error) {
	var count int
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		count = countPrefix(tx, seqPrefix(graphEdgePrefix))
		return nil
	}, false)
	return count, err
}

// Nodes returns every node in insertion order.
func (r *GraphRepository) Nodes(ctx context.Context) ([]*core.Node, error) {
	results := []*core.Node{}
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		return scanPrefix(tx, seqPrefix(graphNodePrefix), func(val []byte) error {
			node, err := storage.UnmarshalNode(val)
			if err != nil {
				return err
			}
			results = append(results, node)
			return nil
		})
	}, false)
	return results, err
}

// Edges returns every relationship in append order.
func (r *GraphRepository) Edges(ctx context.Context) ([]*core.Edge, error) {
	results := []*core.Edge{}
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		return scanPrefix(tx, seqPrefix(graphEdgePrefix), func(val []byte) error {
			edge, err := storage.UnmarshalEdge(val)
			if err != nil {
				return err
			}
			results = append(results, edge)
			return nil
		})
	}, false)
	return results, err
}

// GetNode retrieves a node by label.
func (r *GraphRepository) GetNode(ctx context.Context, label string) (*core.Node, error) {
	var result *core.Node
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		seq, found, err := readLabelSeq(tx, makeGraphLabelKey(label))
		if err != nil {
			return err
		}
		if !found {
			return storage.ErrNotFound
		}

		item, err := tx.Get(makeGraphNodeKey(seq))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		if err := item.Value(func(val []byte) error {
			result, err = storage.UnmarshalNode(val)
			return err
		}); err != nil {
			return err
		}
		if result.Label != label {
			result = nil
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// Labels returns every node label in insertion order.
func (r *GraphRepository) Labels(ctx context.Context) ([]string, error) {
	nodes, err := r.Nodes(ctx)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(nodes))
	for _, node := range nodes {
		labels = append(labels, node.Label)
	}
	return labels, nil
}

// Helper methods

// readLabelSeq resolves a label index key to its node sequence.
func readLabelSeq(tx *badger.Txn, key []byte) (uint64, bool, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}

	var seq uint64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return storage.ErrSerializationFailed
		}
		seq = binary.BigEndian.Uint64(val)
		return nil
	})
	return seq, err == nil, err
}

// checkLabel verifies that the node stored at seq carries label, guarding
// against two labels hashing to the same index key.
func checkLabel(tx *badger.Txn, seq uint64, label string) error {
	item, err := tx.Get(makeGraphNodeKey(seq))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		stored, err := storage.UnmarshalNode(val)
		if err != nil {
			return err
		}
		if stored.Label != label {
			return fmt.Errorf("%w: %q and %q", storage.ErrLabelCollision, stored.Label, label)
		}
		return nil
	})
}

func encodeSeq(seq uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq)
	return buf
}
