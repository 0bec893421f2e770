package contract

import (
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/vmihailenco/msgpack/v5"
)

func TestSecpSignerSignTx(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}

	raw := hexutil.Encode([]byte{0x01, 0x02, 0x03})

	signed, err := SecpSigner{}.SignTx(raw, key)
	if err != nil {
		t.Fatal(err)
	}

	d, err := hexutil.Decode(signed)
	if err != nil {
		t.Fatal(err)
	}

	env := &signedEnvelope{}
	if err := msgpack.Unmarshal(d, env); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, []byte{0x01, 0x02, 0x03}, env.Tx)
	assert.Len(t, env.Signature, 65)

	pub, err := crypto.SigToPub(crypto.Keccak256(env.Tx), env.Signature)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), crypto.PubkeyToAddress(*pub))
}

func TestSecpSignerRejectsBadInput(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}

	_, err = SecpSigner{}.SignTx("not-hex", key)
	assert.Error(t, err)

	_, err = SecpSigner{}.SignTx("0x01", nil)
	assert.Error(t, err)
}
