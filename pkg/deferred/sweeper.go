package deferred

import (
	"context"
	"time"

	"github.com/jpillora/backoff"
	"github.com/pkg/errors"

	"github.com/ovote/ovote/internal/utils/logging"
	"github.com/ovote/ovote/pkg/contract"
	"github.com/ovote/ovote/pkg/oracle"
)

// Sweeper walks the queue once per block interval and submits every vote
// whose scheduled block has been reached. Submissions run strictly one at a
// time, which gives the machine its at-most-one-in-flight guarantee.
type Sweeper struct {
	store     Store
	machine   *Machine
	submitter Submitter
	reader    contract.ChainReader
	coinbase  string

	interval time.Duration
}

func NewSweeper(store Store, machine *Machine, submitter Submitter, reader contract.ChainReader, coinbase string) *Sweeper {
	return &Sweeper{
		store:     store,
		machine:   machine,
		submitter: submitter,
		reader:    reader,
		coinbase:  coinbase,
		interval:  oracle.SecondsPerBlock * time.Second,
	}
}

// Run sweeps until the context is cancelled. Sweep failures back off
// exponentially; a clean sweep resets the cadence to the block interval.
func (s *Sweeper) Run(ctx context.Context) error {
	b := &backoff.Backoff{
		Min:    time.Second,
		Max:    2 * time.Minute,
		Factor: 2,
		Jitter: true,
	}

	for {
		wait := s.interval

		if err := s.Sweep(ctx); err != nil {
			logging.WithError(err).Warn("sweeping deferred votes")
			wait = b.Duration()
		} else {
			b.Reset()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// Sweep runs a single pass over the queue.
func (s *Sweeper) Sweep(ctx context.Context) error {
	head, err := s.reader.LastBlock(ctx)
	if err != nil {
		return errors.Wrap(err, "reading chain head")
	}

	votes, err := s.store.ByCoinbase(ctx, s.coinbase)
	if err != nil {
		return errors.Wrap(err, "listing deferred votes")
	}

	for _, v := range votes {
		if v.State(head) != StateEligible {
			continue
		}

		s.submit(ctx, v)
	}

	return nil
}

func (s *Sweeper) submit(ctx context.Context, v *Vote) {
	hash, err := s.submitter.SubmitVote(ctx, v)
	if err == nil {
		if err := s.machine.HandleSuccess(ctx, v, hash); err != nil {
			logging.WithError(err).WithField("vote", v.ID).Error("finalizing vote")
		}
		return
	}

	var sim *contract.SimulationError
	if !errors.As(err, &sim) {
		// transport failures are left for the next sweep
		logging.WithError(err).WithField("vote", v.ID).Warn("submitting vote")
		return
	}

	d, err := s.machine.HandleFailure(ctx, v, sim.Reason())
	if err != nil {
		logging.WithError(err).WithField("vote", v.ID).Error("resolving vote failure")
		return
	}

	logging.WithFields(logging.Fields{
		"vote":    v.ID,
		"state":   d.State,
		"block":   d.NextBlock,
		"message": d.Message,
	}).Info("deferred vote resolved")
}
