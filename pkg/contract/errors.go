package contract

import (
	"fmt"

	"github.com/pkg/errors"
)

// SimulationError is a receipt-level rejection from an estimate call. The
// call itself succeeded structurally; the VM refused the transaction.
type SimulationError struct {
	Receipt *TxReceipt
}

func (e *SimulationError) Error() string {
	return e.Receipt.Error
}

// Reason returns the raw on-chain rejection code for domain-error mapping.
func (e *SimulationError) Reason() string {
	return e.Receipt.Error
}

// TransportError wraps a network or RPC failure. It is surfaced verbatim
// and never retried here.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("rpc %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func IsSimulation(err error) bool {
	var se *SimulationError
	return errors.As(err, &se)
}

func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
