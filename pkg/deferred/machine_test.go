package deferred

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type fakeStore struct {
	votes   map[string]*Vote
	updates int
}

func newFakeStore(votes ...*Vote) *fakeStore {
	s := &fakeStore{votes: make(map[string]*Vote)}
	for _, v := range votes {
		s.votes[v.ID] = v
	}
	return s
}

func (s *fakeStore) Put(_ context.Context, v *Vote) error {
	s.votes[v.ID] = v
	return nil
}

func (s *fakeStore) Get(_ context.Context, id string) (*Vote, error) {
	v, ok := s.votes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (s *fakeStore) Update(_ context.Context, v *Vote) error {
	if _, ok := s.votes[v.ID]; !ok {
		return ErrNotFound
	}
	s.votes[v.ID] = v
	s.updates++
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	delete(s.votes, id)
	return nil
}

func (s *fakeStore) ByCoinbase(_ context.Context, coinbase string) ([]*Vote, error) {
	var out []*Vote
	for _, v := range s.votes {
		if v.Coinbase == coinbase {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeReader struct {
	data map[string]uint64
	err  error
	head uint64
}

func (r *fakeReader) ReadContractData(_ context.Context, _, key, _ string) (json.RawMessage, error) {
	if r.err != nil {
		return nil, r.err
	}

	v, ok := r.data[key]
	if !ok {
		return nil, errors.Errorf("no data for %s", key)
	}

	return json.RawMessage(fmt.Sprintf("%d", v)), nil
}

func (r *fakeReader) LastBlock(_ context.Context) (uint64, error) {
	return r.head, nil
}

type fakeProber struct {
	can bool
}

func (p *fakeProber) CanProlong(_ context.Context, _, _ string) bool {
	return p.can
}

func testVote(block uint64) *Vote {
	return &Vote{
		ID:           "v1",
		Coinbase:     "0xcoinbase",
		ContractHash: "0xcontract",
		Block:        block,
	}
}

func TestTooEarlyReschedules(t *testing.T) {
	v := testVote(120)
	s := newFakeStore(v)
	r := &fakeReader{data: map[string]uint64{"startBlock": 100, "votingDuration": 50}}

	invalidated := false
	m := NewMachine(s, r, &fakeProber{}, WithInvalidate(func() { invalidated = true }))

	d, err := m.HandleFailure(context.Background(), v, "too early to accept open vote")
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, StateRescheduled, d.State)
	assert.Equal(t, uint64(150), d.NextBlock)
	assert.Equal(t, uint64(150), s.votes["v1"].Block)
	assert.True(t, invalidated)
}

func TestTooEarlyAlreadyLaterScheduled(t *testing.T) {
	v := testVote(200)
	s := newFakeStore(v)
	r := &fakeReader{data: map[string]uint64{"startBlock": 100, "votingDuration": 50}}

	m := NewMachine(s, r, &fakeProber{})

	d, err := m.HandleFailure(context.Background(), v, "too early to accept open vote")
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, StateEligible, d.State)
	assert.Equal(t, uint64(200), s.votes["v1"].Block)
	assert.Zero(t, s.updates)
}

func TestTooEarlyReadFailureReportsOriginal(t *testing.T) {
	v := testVote(120)
	s := newFakeStore(v)
	r := &fakeReader{err: errors.New("node unavailable")}

	m := NewMachine(s, r, &fakeProber{})

	d, err := m.HandleFailure(context.Background(), v, "too early to accept open vote")
	if err != nil {
		t.Fatal(err)
	}

	// the secondary failure is swallowed, the user sees the original error
	assert.Equal(t, StateEligible, d.State)
	assert.Equal(t, "Voting has not started yet", d.Message)
	assert.Contains(t, s.votes, "v1")
}

func TestTooLateProlongable(t *testing.T) {
	v := testVote(120)
	s := newFakeStore(v)

	m := NewMachine(s, &fakeReader{}, &fakeProber{can: true})

	d, err := m.HandleFailure(context.Background(), v, "too late to accept open vote")
	if err != nil {
		t.Fatal(err)
	}

	assert.True(t, d.PromptProlong)
	assert.Equal(t, StateEligible, d.State)
	assert.Contains(t, s.votes, "v1")
}

func TestQuorumNotReachableNotProlongable(t *testing.T) {
	v := testVote(120)
	s := newFakeStore(v)

	invalidated := false
	m := NewMachine(s, &fakeReader{}, &fakeProber{can: false},
		WithInvalidate(func() { invalidated = true }))

	d, err := m.HandleFailure(context.Background(), v, "quorum is not reachable")
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, StateRemoved, d.State)
	assert.NotContains(t, s.votes, "v1")
	assert.True(t, invalidated)
}

func TestInsufficientFundsStaysEligible(t *testing.T) {
	v := testVote(120)
	s := newFakeStore(v)
	r := &fakeReader{data: map[string]uint64{"minOracleReward": 5, "committeeSize": 100}}

	m := NewMachine(s, r, &fakeProber{})

	d, err := m.HandleFailure(context.Background(), v, "insufficient funds")
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, StateEligible, d.State)
	assert.Contains(t, s.votes, "v1")

	// min balance recomputed from the voting's own fields: 5 * 100
	assert.Equal(t, "Insufficient funds. Minimum voting balance required: 500", d.Message)
}

func TestInsufficientFundsReadFailureOmitsAmount(t *testing.T) {
	v := testVote(120)
	s := newFakeStore(v)

	m := NewMachine(s, &fakeReader{err: errors.New("node unavailable")}, &fakeProber{})

	d, err := m.HandleFailure(context.Background(), v, "insufficient funds")
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, StateEligible, d.State)
	assert.Equal(t, "Insufficient funds to vote in this voting", d.Message)
}

func TestUnknownCodeRemoves(t *testing.T) {
	v := testVote(120)
	s := newFakeStore(v)

	m := NewMachine(s, &fakeReader{}, &fakeProber{})

	d, err := m.HandleFailure(context.Background(), v, "some brand new error")
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, StateRemoved, d.State)
	assert.Equal(t, "some brand new error", d.Message)
	assert.NotContains(t, s.votes, "v1")
}

func TestHandleSuccess(t *testing.T) {
	v := testVote(120)
	s := newFakeStore(v)

	invalidated := false
	m := NewMachine(s, &fakeReader{}, &fakeProber{}, WithInvalidate(func() { invalidated = true }))

	if err := m.HandleSuccess(context.Background(), v, "0xtxhash"); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, ResultSuccess, s.votes["v1"].Result)
	assert.Equal(t, "0xtxhash", s.votes["v1"].TxHash)
	assert.True(t, invalidated)
}

func TestVoteState(t *testing.T) {
	v := testVote(120)

	assert.Equal(t, StatePending, v.State(100))
	assert.Equal(t, StateEligible, v.State(120))
	assert.Equal(t, StateEligible, v.State(500))

	v.Result = ResultSuccess
	assert.Equal(t, StateSuccess, v.State(500))
}
