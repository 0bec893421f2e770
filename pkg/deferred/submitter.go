package deferred

import (
	"context"
	"crypto/ecdsa"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/ovote/ovote/internal/utils/logging"
	"github.com/ovote/ovote/pkg/contract"
)

const (
	methodSendVote      = "sendVote"
	methodProlongVoting = "prolongVoting"
)

// Submitter pushes one queued vote to the chain.
type Submitter interface {
	SubmitVote(ctx context.Context, v *Vote) (string, error)
}

// ContractSubmitter sends queued votes through the transaction assembler.
// Each attempt estimates first so VM rejections surface as SimulationError
// before anything is signed, then sends with the estimate-derived max fee.
type ContractSubmitter struct {
	asm *contract.Assembler
	key *ecdsa.PrivateKey
}

var (
	_ Submitter     = (*ContractSubmitter)(nil)
	_ ProlongProber = (*ContractSubmitter)(nil)
)

func NewContractSubmitter(asm *contract.Assembler, key *ecdsa.PrivateKey) *ContractSubmitter {
	return &ContractSubmitter{asm: asm, key: key}
}

func (s *ContractSubmitter) SubmitVote(ctx context.Context, v *Vote) (string, error) {
	p := contract.CallParams{
		From:     v.Coinbase,
		Contract: v.ContractHash,
		Method:   methodSendVote,
		Args:     v.Args,
	}

	if v.Amount != "" {
		amount, err := decimal.NewFromString(v.Amount)
		if err != nil {
			return "", errors.Wrap(err, "parsing vote amount")
		}
		p.Amount = &amount
	}

	r, err := s.asm.EstimateCall(ctx, p)
	if err != nil {
		return "", err
	}

	maxFee := contract.MaxFee(r.GasCost, r.TxFee)
	p.MaxFee = &maxFee

	return s.asm.Call(ctx, s.key, p)
}

// CanProlong dry-runs a prolong-voting call. Any failure means the voting
// cannot currently be prolonged.
func (s *ContractSubmitter) CanProlong(ctx context.Context, from, contractHash string) bool {
	_, err := s.asm.EstimateCall(ctx, contract.CallParams{
		From:     from,
		Contract: contractHash,
		Method:   methodProlongVoting,
	})
	if err != nil {
		logging.WithError(err).WithField("contract", contractHash).Debug("prolong probe failed")
		return false
	}

	return true
}
