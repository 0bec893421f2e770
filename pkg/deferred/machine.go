package deferred

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"

	"github.com/ovote/ovote/internal/utils/logging"
	"github.com/ovote/ovote/pkg/contract"
	"github.com/ovote/ovote/pkg/oracle"
)

// ProlongProber dry-runs a prolong-voting call to see whether the voting
// window could be reopened. Zero risk: nothing is broadcast.
type ProlongProber interface {
	CanProlong(ctx context.Context, from, contractHash string) bool
}

// Decision is the machine's verdict on one submission attempt. Message is
// user-facing text; PromptProlong asks the host to offer the prolong-voting
// UI instead of resolving the vote.
type Decision struct {
	State         State
	NextBlock     uint64
	Message       string
	PromptProlong bool
}

// Machine governs retry/prolong/abandon transitions for queued votes. It
// assumes at most one in-flight submission per vote; serializing submissions
// is the host's job.
type Machine struct {
	store  Store
	reader contract.ChainReader
	prober ProlongProber

	locale     oracle.Locale
	invalidate func()
}

type MachineOption func(*Machine)

// WithLocale sets the locale used for user-facing messages.
func WithLocale(l oracle.Locale) MachineOption {
	return func(m *Machine) { m.locale = l }
}

// WithInvalidate registers a hook run whenever the persisted queue changes,
// so downstream consumers re-read it.
func WithInvalidate(f func()) MachineOption {
	return func(m *Machine) { m.invalidate = f }
}

func NewMachine(store Store, reader contract.ChainReader, prober ProlongProber, opts ...MachineOption) *Machine {
	m := &Machine{
		store:      store,
		reader:     reader,
		prober:     prober,
		locale:     oracle.LocaleEN,
		invalidate: func() {},
	}

	for _, o := range opts {
		o(m)
	}

	return m
}

// HandleSuccess records the broadcast hash and finalizes the vote.
func (m *Machine) HandleSuccess(ctx context.Context, v *Vote, txHash string) error {
	v.Result = ResultSuccess
	v.TxHash = txHash

	if err := m.store.Update(ctx, v); err != nil {
		return errors.Wrap(err, "recording vote result")
	}

	m.invalidate()

	return nil
}

// HandleFailure decides what happens to a queued vote after its submission
// was rejected with the given on-chain error code.
func (m *Machine) HandleFailure(ctx context.Context, v *Vote, code string) (*Decision, error) {
	switch oracle.ErrorCode(code) {
	case oracle.ErrTooEarly:
		return m.reschedule(ctx, v, code)

	case oracle.ErrTooLate, oracle.ErrQuorumNotReachable:
		if m.prober.CanProlong(ctx, v.Coinbase, v.ContractHash) {
			return &Decision{
				State:         StateEligible,
				Message:       m.human(code),
				PromptProlong: true,
			}, nil
		}

		return m.remove(ctx, v, code)

	case oracle.ErrInsufficientFunds:
		// stays eligible; funds may arrive before the next sweep
		return &Decision{State: StateEligible, Message: m.insufficientFunds(ctx, v)}, nil

	default:
		return m.remove(ctx, v, code)
	}
}

// reschedule recomputes the true open-vote block from contract storage. Both
// reads complete before any decision is taken. A secondary read failure is
// swallowed so the user still sees the original rejection.
func (m *Machine) reschedule(ctx context.Context, v *Vote, code string) (*Decision, error) {
	start, err := m.readUint(ctx, v.ContractHash, "startBlock")
	if err != nil {
		logging.WithError(err).WithField("vote", v.ID).Warn("reading voting start block")
		return &Decision{State: StateEligible, Message: m.human(code)}, nil
	}

	duration, err := m.readUint(ctx, v.ContractHash, "votingDuration")
	if err != nil {
		logging.WithError(err).WithField("vote", v.ID).Warn("reading voting duration")
		return &Decision{State: StateEligible, Message: m.human(code)}, nil
	}

	next := start + duration
	if next <= v.Block {
		return &Decision{State: StateEligible, Message: m.human(code)}, nil
	}

	v.Block = next
	if err := m.store.Update(ctx, v); err != nil {
		return nil, errors.Wrap(err, "rescheduling vote")
	}

	m.invalidate()

	return &Decision{
		State:     StateRescheduled,
		NextBlock: next,
		Message:   m.human(code),
	}, nil
}

func (m *Machine) remove(ctx context.Context, v *Vote, code string) (*Decision, error) {
	if err := m.store.Delete(ctx, v.ID); err != nil {
		return nil, errors.Wrap(err, "removing vote")
	}

	m.invalidate()

	return &Decision{State: StateRemoved, Message: m.human(code)}, nil
}

// insufficientFunds renders the rejection with the voting's actual minimum
// balance, read back from contract storage. The reads are best-effort; when
// they fail the message omits the number instead of showing a wrong one.
func (m *Machine) insufficientFunds(ctx context.Context, v *Vote) string {
	code := string(oracle.ErrInsufficientFunds)

	reward, err := m.readFloat(ctx, v.ContractHash, "minOracleReward")
	if err != nil {
		logging.WithError(err).WithField("vote", v.ID).Warn("reading min oracle reward")
		return m.human(code)
	}

	size, err := m.readUint(ctx, v.ContractHash, "committeeSize")
	if err != nil {
		logging.WithError(err).WithField("vote", v.ID).Warn("reading committee size")
		return m.human(code)
	}

	return oracle.HumanError(code, oracle.ErrorContext{
		MinReward:     reward,
		CommitteeSize: size,
	}, m.locale)
}

func (m *Machine) readUint(ctx context.Context, contractHash, key string) (uint64, error) {
	raw, err := m.reader.ReadContractData(ctx, contractHash, key, "uint64")
	if err != nil {
		return 0, err
	}

	var n uint64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, errors.Wrapf(err, "decoding %s", key)
	}

	return n, nil
}

func (m *Machine) readFloat(ctx context.Context, contractHash, key string) (float64, error) {
	raw, err := m.reader.ReadContractData(ctx, contractHash, key, "dna")
	if err != nil {
		return 0, err
	}

	// nodes report dna amounts as decimal strings; tolerate plain numbers too
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseFloat(s, 64)
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, errors.Wrapf(err, "decoding %s", key)
	}

	return f, nil
}

func (m *Machine) human(code string) string {
	return oracle.HumanError(code, oracle.ErrorContext{}, m.locale)
}
