package store

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ovote/ovote/pkg/deferred"
)

// MemStore is an in-memory deferred-vote queue for tests and dry runs.
// Records are held serialized so callers never alias stored state.
type MemStore struct {
	mu sync.RWMutex

	votes    map[string][]byte
	coinbase map[string]map[string]struct{}
}

var _ deferred.Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		votes:    make(map[string][]byte),
		coinbase: make(map[string]map[string]struct{}),
	}
}

func (m *MemStore) Put(ctx context.Context, v *deferred.Vote) error {
	d, err := msgpack.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshaling vote")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.votes[v.ID] = d

	if m.coinbase[v.Coinbase] == nil {
		m.coinbase[v.Coinbase] = make(map[string]struct{})
	}
	m.coinbase[v.Coinbase][v.ID] = struct{}{}

	return nil
}

func (m *MemStore) Get(ctx context.Context, id string) (*deferred.Vote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.get(id)
}

func (m *MemStore) get(id string) (*deferred.Vote, error) {
	d, ok := m.votes[id]
	if !ok {
		return nil, deferred.ErrNotFound
	}

	v := &deferred.Vote{}
	if err := msgpack.Unmarshal(d, v); err != nil {
		return nil, errors.Wrap(err, "unmarshaling vote")
	}

	return v, nil
}

func (m *MemStore) Update(ctx context.Context, v *deferred.Vote) error {
	m.mu.RLock()
	_, ok := m.votes[v.ID]
	m.mu.RUnlock()

	if !ok {
		return deferred.ErrNotFound
	}

	return m.Put(ctx, v)
}

func (m *MemStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, err := m.get(id)
	if err != nil {
		if errors.Is(err, deferred.ErrNotFound) {
			return nil
		}
		return err
	}

	delete(m.votes, id)
	delete(m.coinbase[v.Coinbase], id)

	return nil
}

func (m *MemStore) ByCoinbase(ctx context.Context, coinbase string) ([]*deferred.Vote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.coinbase[coinbase]))
	for id := range m.coinbase[coinbase] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	votes := make([]*deferred.Vote, 0, len(ids))
	for _, id := range ids {
		v, err := m.get(id)
		if err != nil {
			return nil, err
		}

		votes = append(votes, v)
	}

	return votes, nil
}
