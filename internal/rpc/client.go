package rpc

import (
	"context"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/ovote/ovote/pkg/contract"
)

// Client talks JSON-RPC to a node and implements the transaction pipeline's
// external collaborators.
type Client struct {
	c *gethrpc.Client
}

var (
	_ contract.RawTxProvider  = (*Client)(nil)
	_ contract.Broadcaster    = (*Client)(nil)
	_ contract.Estimator      = (*Client)(nil)
	_ contract.ChainReader    = (*Client)(nil)
	_ contract.ReadonlyCaller = (*Client)(nil)
)

func Dial(ctx context.Context, url, apiKey string) (*Client, error) {
	c, err := gethrpc.DialContext(ctx, url)
	if err != nil {
		return nil, errors.Wrap(err, "dialing node")
	}

	if apiKey != "" {
		c.SetHeader("Authorization", "Bearer "+apiKey)
	}

	return &Client{c: c}, nil
}

func (c *Client) Close() {
	c.c.Close()
}

type rawTxArgs struct {
	Type    contract.TxType  `json:"type"`
	From    string           `json:"from"`
	To      string           `json:"to,omitempty"`
	Amount  *decimal.Decimal `json:"amount,omitempty"`
	MaxFee  *decimal.Decimal `json:"maxFee,omitempty"`
	Payload string           `json:"payload,omitempty"`
}

func (c *Client) GetRawTx(ctx context.Context, p contract.TxParams) (string, error) {
	var raw string

	err := c.c.CallContext(ctx, &raw, "bcn_getRawTx", &rawTxArgs{
		Type:    p.Type,
		From:    p.From,
		To:      p.To,
		Amount:  p.Amount,
		MaxFee:  p.MaxFee,
		Payload: p.Payload,
	})
	if err != nil {
		return "", &contract.TransportError{Op: "bcn_getRawTx", Err: err}
	}

	return raw, nil
}

func (c *Client) SendRawTx(ctx context.Context, signedTx string) (string, error) {
	var hash string

	if err := c.c.CallContext(ctx, &hash, "bcn_sendRawTx", signedTx); err != nil {
		return "", &contract.TransportError{Op: "bcn_sendRawTx", Err: err}
	}

	return hash, nil
}

type estimateResult struct {
	Receipt *contract.TxReceipt `json:"receipt"`
}

func (c *Client) EstimateRawTx(ctx context.Context, rawTx, from string) (*contract.TxReceipt, error) {
	var res estimateResult

	if err := c.c.CallContext(ctx, &res, "bcn_estimateRawTx", rawTx, from); err != nil {
		return nil, &contract.TransportError{Op: "bcn_estimateRawTx", Err: err}
	}

	if res.Receipt == nil {
		return nil, &contract.TransportError{Op: "bcn_estimateRawTx", Err: errors.New("estimate returned no receipt")}
	}

	return res.Receipt, nil
}

func (c *Client) ReadContractData(ctx context.Context, contractHash, key, format string) (json.RawMessage, error) {
	var out json.RawMessage

	if err := c.c.CallContext(ctx, &out, "contract_readData", contractHash, key, format); err != nil {
		return nil, &contract.TransportError{Op: "contract_readData", Err: err}
	}

	return out, nil
}

type lastBlockResult struct {
	Height uint64 `json:"height"`
}

func (c *Client) LastBlock(ctx context.Context) (uint64, error) {
	var res lastBlockResult

	if err := c.c.CallContext(ctx, &res, "bcn_lastBlock"); err != nil {
		return 0, &contract.TransportError{Op: "bcn_lastBlock", Err: err}
	}

	return res.Height, nil
}

type readonlyCallArgs struct {
	Contract string          `json:"contract"`
	Method   string          `json:"method"`
	Format   string          `json:"format"`
	Args     []hexutil.Bytes `json:"args"`
}

func (c *Client) Call(ctx context.Context, contractHash, method, format string, args [][]byte) (json.RawMessage, error) {
	hexArgs := make([]hexutil.Bytes, len(args))
	for i, a := range args {
		hexArgs[i] = hexutil.Bytes(a)
	}

	var out json.RawMessage

	err := c.c.CallContext(ctx, &out, "contract_readonlyCall", &readonlyCallArgs{
		Contract: contractHash,
		Method:   method,
		Format:   format,
		Args:     hexArgs,
	})
	if err != nil {
		return nil, &contract.TransportError{Op: "contract_readonlyCall", Err: err}
	}

	return out, nil
}
