package attachment

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// ClientType tags payloads with the producing client family so the node can
// distinguish wallet traffic from test tooling.
type ClientType uint16

const (
	ClientTypeWallet ClientType = 1
)

// Attachment is the contract-specific payload embedded in a transaction.
// Field sets and ordering are fixed by the VM wire format; the byte layout
// itself is owned by the codec.
type Attachment interface {
	Bytes() ([]byte, error)
}

type DeployContract struct {
	CodeHash   byte       `msgpack:"c"`
	Args       [][]byte   `msgpack:"a"`
	ClientType ClientType `msgpack:"t"`
}

type CallContract struct {
	Method     string     `msgpack:"m"`
	Args       [][]byte   `msgpack:"a"`
	ClientType ClientType `msgpack:"t"`
}

type TerminateContract struct {
	Args       [][]byte   `msgpack:"a"`
	ClientType ClientType `msgpack:"t"`
}

func NewDeployContract(codeHash byte, args [][]byte) *DeployContract {
	return &DeployContract{CodeHash: codeHash, Args: args, ClientType: ClientTypeWallet}
}

// NewCallContract validates structural shape only; argument semantics belong
// to the contract.
func NewCallContract(method string, args [][]byte) (*CallContract, error) {
	if method == "" {
		return nil, errors.New("contract call requires a method name")
	}

	return &CallContract{Method: method, Args: args, ClientType: ClientTypeWallet}, nil
}

func NewTerminateContract(args [][]byte) *TerminateContract {
	return &TerminateContract{Args: args, ClientType: ClientTypeWallet}
}

func (a *DeployContract) Bytes() ([]byte, error) {
	b, err := msgpack.Marshal(a)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling deploy attachment")
	}

	return b, nil
}

func (a *CallContract) Bytes() ([]byte, error) {
	b, err := msgpack.Marshal(a)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling call attachment")
	}

	return b, nil
}

func (a *TerminateContract) Bytes() ([]byte, error) {
	b, err := msgpack.Marshal(a)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling terminate attachment")
	}

	return b, nil
}

// Hex serializes an attachment to the 0x-prefixed form carried in raw
// transaction requests.
func Hex(a Attachment) (string, error) {
	b, err := a.Bytes()
	if err != nil {
		return "", err
	}

	return hexutil.Encode(b), nil
}
