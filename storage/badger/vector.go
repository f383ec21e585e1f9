package badger

import (
	"context"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/poiesic/shadowsync/core"
	"github.com/poiesic/shadowsync/storage"
)

// VectorRepository implements storage.VectorRepository for BadgerDB.
type VectorRepository struct {
	backend *Backend
	seq     *badger.Sequence
}

var _ storage.VectorRepository = (*VectorRepository)(nil)

// NewVectorRepository creates a new VectorRepository.
func NewVectorRepository(backend *Backend) (*VectorRepository, error) {
	seq, err := backend.GetSequence(vectorSeq)
	if err != nil {
		return nil, err
	}

	return &VectorRepository{
		backend: backend,
		seq:     seq,
	}, nil
}

// Close releases the ID sequence.
func (r *VectorRepository) Close() error {
	return r.seq.Release()
}

// WithTransaction delegates to the backend.
func (r *VectorRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AppendPoint appends a point, assigning a UUID when ID is empty.
func (r *VectorRepository) AppendPoint(ctx context.Context, point *core.VectorPoint) error {
	if point == nil {
		return storage.ErrInvalidQuery
	}

	return r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		if point.ID == "" {
			point.ID = uuid.NewString()
		}
		seq, err := nextSeq(r.seq)
		if err != nil {
			return err
		}
		return tx.Set(makeSeqKey(vectorPrefix, seq), storage.MarshalVectorPoint(point))
	}, true)
}

// PointCount returns the number of stored points.
func (r *VectorRepository) PointCount(ctx context.Context) (int, error) {
	var count int
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		count = countPrefix(tx, seqPrefix(vectorPrefix))
		return nil
	}, false)
	return count, err
}

// Points returns every point in append order.
func (r *VectorRepository) Points(ctx context.Context) ([]*core.VectorPoint, error) {
	results := []*core.VectorPoint{}
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		return scanPrefix(tx, seqPrefix(vectorPrefix), func(val []byte) error {
			point, err := storage.UnmarshalVectorPoint(val)
			if err != nil {
				return err
			}
			results = append(results, point)
			return nil
		})
	}, false)
	return results, err
}

// RecentPoints returns up to n of the latest points, oldest of the window first.
func (r *VectorRepository) RecentPoints(ctx context.Context, n int) ([]*core.VectorPoint, error) {
	if n <= 0 {
		return nil, nil
	}

	results := []*core.VectorPoint{}
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		return scanPrefixReverse(tx, vectorPrefix, n, func(val []byte) error {
			point, err := storage.UnmarshalVectorPoint(val)
			if err != nil {
				return err
			}
			results = append(results, point)
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}

	slices.Reverse(results)
	return results, nil
}
