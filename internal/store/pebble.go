package store

import (
	"context"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ovote/ovote/pkg/deferred"
)

const (
	cacheSize = 1 << 20 * 8

	tableSep           byte = ':'
	tableSepUpperBound      = tableSep + 1
)

type keyPrefix byte

const (
	voteTPrefix keyPrefix = iota + 1
	coinbaseTPrefix
)

// PebbleStore is the durable deferred-vote queue. Records live under a vote
// prefix keyed by id; a coinbase index prefix supports the per-address scan.
type PebbleStore struct {
	db *pebble.DB
}

var _ deferred.Store = (*PebbleStore)(nil)

func Open(path string) (*PebbleStore, error) {
	c := pebble.NewCache(cacheSize)
	tc := pebble.NewTableCache(c, 16, 100)
	defer tc.Unref()
	defer c.Unref()

	db, err := pebble.Open(path, &pebble.Options{Cache: c, TableCache: tc})
	if err != nil {
		return nil, errors.Wrap(err, "opening vote store")
	}

	return &PebbleStore{db: db}, nil
}

func (s *PebbleStore) Close() error {
	return s.db.Close()
}

func voteKey(id string) []byte {
	k := []byte{byte(voteTPrefix), tableSep}
	return append(k, id...)
}

func coinbaseKey(coinbase, id string) []byte {
	k := []byte{byte(coinbaseTPrefix), tableSep}
	k = append(k, coinbase...)
	k = append(k, tableSep)
	return append(k, id...)
}

func (s *PebbleStore) Put(ctx context.Context, v *deferred.Vote) error {
	d, err := msgpack.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshaling vote")
	}

	b := s.db.NewBatch()
	defer b.Close()

	if err := b.Set(voteKey(v.ID), d, nil); err != nil {
		return err
	}
	if err := b.Set(coinbaseKey(v.Coinbase, v.ID), []byte(v.ID), nil); err != nil {
		return err
	}

	return b.Commit(&pebble.WriteOptions{Sync: true})
}

func (s *PebbleStore) Get(ctx context.Context, id string) (*deferred.Vote, error) {
	d, closer, err := s.db.Get(voteKey(id))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, deferred.ErrNotFound
		}
		return nil, errors.Wrap(err, "reading vote")
	}
	defer closer.Close()

	v := &deferred.Vote{}
	if err := msgpack.Unmarshal(d, v); err != nil {
		return nil, errors.Wrap(err, "unmarshaling vote")
	}

	return v, nil
}

func (s *PebbleStore) Update(ctx context.Context, v *deferred.Vote) error {
	if _, err := s.Get(ctx, v.ID); err != nil {
		return err
	}

	return s.Put(ctx, v)
}

// Delete is idempotent; removing an already-removed vote is not an error.
func (s *PebbleStore) Delete(ctx context.Context, id string) error {
	v, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, deferred.ErrNotFound) {
			return nil
		}
		return err
	}

	b := s.db.NewBatch()
	defer b.Close()

	if err := b.Delete(voteKey(id), nil); err != nil {
		return err
	}
	if err := b.Delete(coinbaseKey(v.Coinbase, id), nil); err != nil {
		return err
	}

	return b.Commit(&pebble.WriteOptions{Sync: true})
}

func (s *PebbleStore) ByCoinbase(ctx context.Context, coinbase string) ([]*deferred.Vote, error) {
	lower := []byte{byte(coinbaseTPrefix), tableSep}
	lower = append(lower, coinbase...)
	upper := append(append([]byte{}, lower...), tableSepUpperBound)
	lower = append(lower, tableSep)

	iter := s.db.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: upper,
	})
	defer iter.Close()

	var votes []*deferred.Vote

	for iter.First(); iter.Valid(); iter.Next() {
		v, err := s.Get(ctx, string(iter.Value()))
		if err != nil {
			if errors.Is(err, deferred.ErrNotFound) {
				continue
			}
			return nil, err
		}

		votes = append(votes, v)
	}

	return votes, nil
}
