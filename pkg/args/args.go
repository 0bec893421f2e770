package args

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// dnaDecimals is the fixed-point scale of the chain's base unit.
const dnaDecimals = 18

// Argument is one indexed, typed value of a contract call. A nil Value is
// dropped during slice construction and never reaches the encoder.
type Argument struct {
	Index  int     `msgpack:"i" json:"index"`
	Format Format  `msgpack:"f" json:"format"`
	Value  *string `msgpack:"v" json:"value"`
}

// New builds an argument with a set value.
func New(index int, format Format, value string) Argument {
	return Argument{Index: index, Format: format, Value: &value}
}

// Null builds an argument without a value. It occupies no slot.
func Null(index int, format Format) Argument {
	return Argument{Index: index, Format: format}
}

// EncodingError reports a malformed argument value along with the index and
// format it was supplied for.
type EncodingError struct {
	Index  int
	Format Format
	Err    error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding argument %d as %s: %v", e.Index, e.Format, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

func encodingErr(index int, format Format, err error) error {
	return &EncodingError{Index: index, Format: format, Err: err}
}

var maxUint64Mask = new(big.Int).SetUint64(^uint64(0))

// Encode converts value into the byte representation of format. The index is
// carried only for error context. Output is all-or-nothing; a failed encode
// never yields partial bytes.
func Encode(format Format, value string, index int) ([]byte, error) {
	switch format {
	case FormatByte, FormatInt8:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, encodingErr(index, format, errors.Errorf("%q is not a base-10 integer", value))
		}
		if n < 0 || n > 255 {
			return nil, encodingErr(index, format, errors.Errorf("%d out of range [0,255]", n))
		}

		return []byte{byte(n)}, nil

	case FormatUint64:
		n, ok := new(big.Int).SetString(value, 10)
		if !ok {
			return nil, encodingErr(index, format, errors.Errorf("%q is not a base-10 integer", value))
		}
		if n.Sign() < 0 {
			return nil, encodingErr(index, format, errors.New("negative value for uint64"))
		}

		return littleEndian8(n), nil

	case FormatInt64:
		n, ok := new(big.Int).SetString(value, 10)
		if !ok {
			return nil, encodingErr(index, format, errors.Errorf("%q is not a base-10 integer", value))
		}

		return littleEndian8(n), nil

	case FormatString:
		return []byte(value), nil

	case FormatBigint:
		n, ok := new(big.Int).SetString(value, 10)
		if !ok {
			return nil, encodingErr(index, format, errors.Errorf("%q is not a base-10 integer", value))
		}
		// the big-endian encoding is unsigned; a sign would be lost
		if n.Sign() < 0 {
			return nil, encodingErr(index, format, errors.New("negative value for bigint"))
		}

		return n.Bytes(), nil

	case FormatDna:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return nil, encodingErr(index, format, errors.Errorf("%q is not a decimal amount", value))
		}
		if d.IsNegative() {
			return nil, encodingErr(index, format, errors.New("negative amount"))
		}

		return d.Shift(dnaDecimals).BigInt().Bytes(), nil

	case FormatHex, FormatDefault:
		b, err := decodeHex(value)
		if err != nil {
			return nil, encodingErr(index, format, err)
		}

		return b, nil
	}

	return nil, encodingErr(index, format, errors.New("unsupported format"))
}

// littleEndian8 reduces n to its low 64 bits and emits them little-endian.
// big.Int bitwise ops follow two's-complement semantics, so negatives come
// out as their 8-byte two's-complement form. Wider values are truncated,
// matching the established slice format.
func littleEndian8(n *big.Int) []byte {
	u := new(big.Int).And(n, maxUint64Mask).Uint64()

	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(u >> (8 * i))
	}

	return b
}

func decodeHex(value string) ([]byte, error) {
	if value == "" {
		return nil, errors.New("empty hex string")
	}

	if !strings.HasPrefix(value, "0x") {
		value = "0x" + value
	}

	b, err := hexutil.Decode(value)
	if err != nil {
		return nil, err
	}

	return b, nil
}
