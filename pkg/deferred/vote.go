package deferred

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ovote/ovote/pkg/args"
)

var (
	ErrNotFound = errors.New("deferred vote not found")
)

// Result is the terminal outcome recorded on a deferred vote.
type Result uint8

const (
	ResultNone Result = iota
	ResultSuccess
	ResultFailed
)

// Vote is a vote submission queued locally until its eligible block. Amount
// is kept in its decimal string form so the record round-trips byte-exact
// through the store.
type Vote struct {
	ID           string          `msgpack:"i"`
	Coinbase     string          `msgpack:"c"`
	ContractHash string          `msgpack:"h"`
	Amount       string          `msgpack:"a"`
	Args         []args.Argument `msgpack:"g"`
	Block        uint64          `msgpack:"b"`
	Result       Result          `msgpack:"r"`
	TxHash       string          `msgpack:"t"`
}

// State is where a deferred vote sits in its lifecycle.
type State uint8

const (
	StatePending State = iota
	StateEligible
	StateSuccess
	StateRemoved
	StateRescheduled
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateEligible:
		return "eligible"
	case StateSuccess:
		return "success"
	case StateRemoved:
		return "removed"
	case StateRescheduled:
		return "rescheduled"
	}

	return "unknown"
}

// State reports the vote's position relative to the chain head. Removed
// votes no longer exist in the store, so only the other states are
// derivable from a record.
func (v *Vote) State(head uint64) State {
	switch {
	case v.Result == ResultSuccess:
		return StateSuccess
	case v.Block > head:
		return StatePending
	default:
		return StateEligible
	}
}

// Store is the durable queue of deferred votes. Implementations must make
// single-record updates atomic; the machine never holds cross-record locks.
type Store interface {
	Put(ctx context.Context, v *Vote) error
	Get(ctx context.Context, id string) (*Vote, error)
	Update(ctx context.Context, v *Vote) error
	Delete(ctx context.Context, id string) error
	ByCoinbase(ctx context.Context, coinbase string) ([]*Vote, error)
}
