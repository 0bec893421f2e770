package contract

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// signedEnvelope carries the raw transaction bytes and the recoverable
// signature over their keccak-256 digest.
type signedEnvelope struct {
	Tx        []byte `msgpack:"x"`
	Signature []byte `msgpack:"s"`
}

// SecpSigner signs raw transactions with a secp256k1 key.
type SecpSigner struct{}

var _ Signer = (*SecpSigner)(nil)

func (SecpSigner) SignTx(rawTx string, key *ecdsa.PrivateKey) (string, error) {
	if key == nil {
		return "", errors.New("no signing key")
	}

	b, err := hexutil.Decode(rawTx)
	if err != nil {
		return "", errors.Wrap(err, "decoding raw tx")
	}

	sig, err := crypto.Sign(crypto.Keccak256(b), key)
	if err != nil {
		return "", errors.Wrap(err, "signing digest")
	}

	signed, err := msgpack.Marshal(&signedEnvelope{Tx: b, Signature: sig})
	if err != nil {
		return "", errors.Wrap(err, "marshaling signed tx")
	}

	return hexutil.Encode(signed), nil
}
