package contract

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// TxType discriminates contract transactions on the wire. Values are fixed
// by the chain protocol.
type TxType uint16

const (
	DeployContractTx    TxType = 0xF
	CallContractTx      TxType = 0x10
	TerminateContractTx TxType = 0x11
)

// TxParams is the metadata handed to the node when constructing a raw
// transaction. To, Amount and MaxFee are optional; nil means "not set",
// which the estimate path relies on for MaxFee.
type TxParams struct {
	Type    TxType
	From    string
	To      string
	Amount  *decimal.Decimal
	MaxFee  *decimal.Decimal
	Payload string
}

// TxReceipt is the result of a dry-run execution. A populated Error is a
// simulated VM rejection, not a transport failure.
type TxReceipt struct {
	Contract string          `json:"contract"`
	Method   string          `json:"method"`
	Success  bool            `json:"success"`
	GasUsed  uint64          `json:"gasUsed"`
	GasCost  decimal.Decimal `json:"gasCost"`
	TxFee    decimal.Decimal `json:"txFee"`
	TxHash   string          `json:"txHash"`
	Error    string          `json:"error"`
}

// RawTxProvider constructs an unsigned raw transaction on the node side.
type RawTxProvider interface {
	GetRawTx(ctx context.Context, p TxParams) (string, error)
}

// Signer attaches a signature to a raw transaction with the caller-supplied
// key and returns the broadcastable hex.
type Signer interface {
	SignTx(rawTx string, key *ecdsa.PrivateKey) (string, error)
}

// Broadcaster submits a signed transaction and returns its hash.
type Broadcaster interface {
	SendRawTx(ctx context.Context, signedTx string) (string, error)
}

// Estimator dry-runs an unsigned transaction against the VM.
type Estimator interface {
	EstimateRawTx(ctx context.Context, rawTx, from string) (*TxReceipt, error)
}

// ChainReader exposes contract storage and chain head reads.
type ChainReader interface {
	ReadContractData(ctx context.Context, contract, key, format string) (json.RawMessage, error)
	LastBlock(ctx context.Context) (uint64, error)
}

// ReadonlyCaller invokes a contract method without a transaction.
type ReadonlyCaller interface {
	Call(ctx context.Context, contract, method, format string, args [][]byte) (json.RawMessage, error)
}
