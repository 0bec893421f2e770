package deferred

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ovote/ovote/pkg/contract"
)

type fakeSubmitter struct {
	hash      string
	err       error
	submitted []string
}

func (f *fakeSubmitter) SubmitVote(_ context.Context, v *Vote) (string, error) {
	f.submitted = append(f.submitted, v.ID)
	return f.hash, f.err
}

func TestSweepSubmitsEligibleOnly(t *testing.T) {
	eligible := testVote(100)
	pending := &Vote{ID: "v2", Coinbase: "0xcoinbase", ContractHash: "0xcontract", Block: 900}
	s := newFakeStore(eligible, pending)
	r := &fakeReader{head: 500}

	sub := &fakeSubmitter{hash: "0xtxhash"}
	m := NewMachine(s, r, &fakeProber{})
	sw := NewSweeper(s, m, sub, r, "0xcoinbase")

	if err := sw.Sweep(context.Background()); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, []string{"v1"}, sub.submitted)
	assert.Equal(t, ResultSuccess, s.votes["v1"].Result)
	assert.Equal(t, "0xtxhash", s.votes["v1"].TxHash)
	assert.Equal(t, ResultNone, s.votes["v2"].Result)
}

func TestSweepRoutesSimulationErrors(t *testing.T) {
	v := testVote(100)
	s := newFakeStore(v)
	r := &fakeReader{head: 500}

	sub := &fakeSubmitter{err: &contract.SimulationError{
		Receipt: &contract.TxReceipt{Error: "unexpected failure"},
	}}
	m := NewMachine(s, r, &fakeProber{})
	sw := NewSweeper(s, m, sub, r, "0xcoinbase")

	if err := sw.Sweep(context.Background()); err != nil {
		t.Fatal(err)
	}

	// unknown code resolves to removal
	assert.NotContains(t, s.votes, "v1")
}

func TestSweepLeavesTransportFailuresQueued(t *testing.T) {
	v := testVote(100)
	s := newFakeStore(v)
	r := &fakeReader{head: 500}

	sub := &fakeSubmitter{err: &contract.TransportError{Op: "bcn_sendRawTx", Err: context.DeadlineExceeded}}
	m := NewMachine(s, r, &fakeProber{})
	sw := NewSweeper(s, m, sub, r, "0xcoinbase")

	if err := sw.Sweep(context.Background()); err != nil {
		t.Fatal(err)
	}

	// transport failures resolve nothing; the vote waits for the next sweep
	assert.Contains(t, s.votes, "v1")
	assert.Equal(t, ResultNone, s.votes["v1"].Result)
}

func TestSweepSkipsSucceededVotes(t *testing.T) {
	v := testVote(100)
	v.Result = ResultSuccess
	s := newFakeStore(v)
	r := &fakeReader{head: 500}

	sub := &fakeSubmitter{hash: "0xtxhash"}
	m := NewMachine(s, r, &fakeProber{})
	sw := NewSweeper(s, m, sub, r, "0xcoinbase")

	if err := sw.Sweep(context.Background()); err != nil {
		t.Fatal(err)
	}

	assert.Empty(t, sub.submitted)
}
