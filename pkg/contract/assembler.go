package contract

import (
	"context"
	"crypto/ecdsa"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/ovote/ovote/pkg/args"
	"github.com/ovote/ovote/pkg/attachment"
)

// maxFeeMargin is the safety margin applied over the estimated cost.
var maxFeeMargin = decimal.RequireFromString("1.1")

// MaxFee computes the fee ceiling for a transaction from its estimated gas
// cost and fee: ceil((gasCost + txFee) * 1.1). Always rounds up.
func MaxFee(gasCost, txFee decimal.Decimal) decimal.Decimal {
	return gasCost.Add(txFee).Mul(maxFeeMargin).Ceil()
}

// Assembler merges attachment payloads with transaction metadata into raw
// transactions and routes them to the signer/broadcaster or the estimator.
// Every send builds a fresh transaction; nothing is reused across attempts.
type Assembler struct {
	provider    RawTxProvider
	signer      Signer
	broadcaster Broadcaster
	estimator   Estimator
}

func NewAssembler(provider RawTxProvider, signer Signer, broadcaster Broadcaster, estimator Estimator) *Assembler {
	return &Assembler{
		provider:    provider,
		signer:      signer,
		broadcaster: broadcaster,
		estimator:   estimator,
	}
}

type DeployParams struct {
	From     string
	CodeHash byte
	Amount   *decimal.Decimal
	MaxFee   *decimal.Decimal
	Args     []args.Argument
}

type CallParams struct {
	From     string
	Contract string
	Method   string
	Amount   *decimal.Decimal
	MaxFee   *decimal.Decimal
	Args     []args.Argument
}

type TerminateParams struct {
	From     string
	Contract string
	MaxFee   *decimal.Decimal
	Args     []args.Argument
}

func (p DeployParams) txParams() (TxParams, error) {
	slice, err := args.BuildSlice(p.Args)
	if err != nil {
		return TxParams{}, err
	}

	payload, err := attachment.Hex(attachment.NewDeployContract(p.CodeHash, slice))
	if err != nil {
		return TxParams{}, err
	}

	return TxParams{
		Type:    DeployContractTx,
		From:    p.From,
		Amount:  p.Amount,
		MaxFee:  p.MaxFee,
		Payload: payload,
	}, nil
}

func (p CallParams) txParams() (TxParams, error) {
	slice, err := args.BuildSlice(p.Args)
	if err != nil {
		return TxParams{}, err
	}

	call, err := attachment.NewCallContract(p.Method, slice)
	if err != nil {
		return TxParams{}, err
	}

	payload, err := attachment.Hex(call)
	if err != nil {
		return TxParams{}, err
	}

	return TxParams{
		Type:    CallContractTx,
		From:    p.From,
		To:      p.Contract,
		Amount:  p.Amount,
		MaxFee:  p.MaxFee,
		Payload: payload,
	}, nil
}

func (p TerminateParams) txParams() (TxParams, error) {
	slice, err := args.BuildSlice(p.Args)
	if err != nil {
		return TxParams{}, err
	}

	payload, err := attachment.Hex(attachment.NewTerminateContract(slice))
	if err != nil {
		return TxParams{}, err
	}

	return TxParams{
		Type:    TerminateContractTx,
		From:    p.From,
		To:      p.Contract,
		MaxFee:  p.MaxFee,
		Payload: payload,
	}, nil
}

func (a *Assembler) Deploy(ctx context.Context, key *ecdsa.PrivateKey, p DeployParams) (string, error) {
	tp, err := p.txParams()
	if err != nil {
		return "", err
	}

	return a.send(ctx, key, tp)
}

func (a *Assembler) EstimateDeploy(ctx context.Context, p DeployParams) (*TxReceipt, error) {
	tp, err := p.txParams()
	if err != nil {
		return nil, err
	}

	return a.estimate(ctx, tp)
}

func (a *Assembler) Call(ctx context.Context, key *ecdsa.PrivateKey, p CallParams) (string, error) {
	tp, err := p.txParams()
	if err != nil {
		return "", err
	}

	return a.send(ctx, key, tp)
}

func (a *Assembler) EstimateCall(ctx context.Context, p CallParams) (*TxReceipt, error) {
	tp, err := p.txParams()
	if err != nil {
		return nil, err
	}

	return a.estimate(ctx, tp)
}

func (a *Assembler) Terminate(ctx context.Context, key *ecdsa.PrivateKey, p TerminateParams) (string, error) {
	tp, err := p.txParams()
	if err != nil {
		return "", err
	}

	return a.send(ctx, key, tp)
}

func (a *Assembler) EstimateTerminate(ctx context.Context, p TerminateParams) (*TxReceipt, error) {
	tp, err := p.txParams()
	if err != nil {
		return nil, err
	}

	return a.estimate(ctx, tp)
}

func (a *Assembler) send(ctx context.Context, key *ecdsa.PrivateKey, p TxParams) (string, error) {
	raw, err := a.provider.GetRawTx(ctx, p)
	if err != nil {
		return "", errors.Wrap(err, "building raw tx")
	}

	signed, err := a.signer.SignTx(raw, key)
	if err != nil {
		return "", errors.Wrap(err, "signing tx")
	}

	return a.broadcaster.SendRawTx(ctx, signed)
}

func (a *Assembler) estimate(ctx context.Context, p TxParams) (*TxReceipt, error) {
	// dry-run fee is unknown ahead of the estimate itself
	p.MaxFee = nil

	raw, err := a.provider.GetRawTx(ctx, p)
	if err != nil {
		return nil, errors.Wrap(err, "building raw tx")
	}

	r, err := a.estimator.EstimateRawTx(ctx, raw, p.From)
	if err != nil {
		return nil, err
	}

	if r.Error != "" {
		return nil, &SimulationError{Receipt: r}
	}

	return r, nil
}
