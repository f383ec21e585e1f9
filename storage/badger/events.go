package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/poiesic/shadowsync/core"
	"github.com/poiesic/shadowsync/storage"
)

// EventRepository implements storage.EventRepository for BadgerDB.
// Events are keyed by sequence; Record trims the oldest keys once the log
// holds more than its capacity.
type EventRepository struct {
	backend  *Backend
	seq      *badger.Sequence
	capacity int
	now      func() time.Time
}

var _ storage.EventRepository = (*EventRepository)(nil)

// NewEventRepository creates a new EventRepository holding at most
// core.EventLogCapacity events.
func NewEventRepository(backend *Backend) (*EventRepository, error) {
	seq, err := backend.GetSequence(eventSeq)
	if err != nil {
		return nil, err
	}

	return &EventRepository{
		backend:  backend,
		seq:      seq,
		capacity: core.EventLogCapacity,
		now:      time.Now,
	}, nil
}

// Close releases the ID sequence.
func (r *EventRepository) Close() error {
	return r.seq.Release()
}

// WithTransaction delegates to the backend.
func (r *EventRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// Record stores a new event and evicts anything beyond capacity.
func (r *EventRepository) Record(ctx context.Context, eventType core.EventType, message string) (*core.Event, error) {
	if err := core.ValidateEventType(eventType); err != nil {
		return nil, err
	}

	event := &core.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Message:   message,
		Timestamp: r.now().UTC(),
		Status:    core.EventStatusSuccess,
	}

	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		seq, err := nextSeq(r.seq)
		if err != nil {
			return err
		}
		if err := tx.Set(makeSeqKey(eventPrefix, seq), storage.MarshalEvent(event)); err != nil {
			return err
		}
		return r.evict(tx)
	}, true)
	if err != nil {
		return nil, err
	}

	return event, nil
}

// evict deletes the oldest events so that at most capacity remain.
func (r *EventRepository) evict(tx *badger.Txn) error {
	excess := countPrefix(tx, seqPrefix(eventPrefix)) - r.capacity
	if excess <= 0 {
		return nil
	}

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = seqPrefix(eventPrefix)
	iter := tx.NewIterator(opts)

	var stale [][]byte
	for iter.Rewind(); iter.Valid() && len(stale) < excess; iter.Next() {
		stale = append(stale, iter.Item().KeyCopy(nil))
	}
	iter.Close()

	for _, key := range stale {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// List returns the retained events, newest first.
func (r *EventRepository) List(ctx context.Context) ([]*core.Event, error) {
	results := []*core.Event{}
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		return scanPrefixReverse(tx, eventPrefix, r.capacity, func(val []byte) error {
			event, err := storage.UnmarshalEvent(val)
			if err != nil {
				return err
			}
			results = append(results, event)
			return nil
		})
	}, false)
	return results, err
}

// Count returns the number of retained events.
func (r *EventRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.backend.WithTx(ctx, func(tx *badger.Txn) error {
		count = countPrefix(tx, seqPrefix(eventPrefix))
		return nil
	}, false)
	return count, err
}
