package args

import "github.com/pkg/errors"

// Format selects the byte representation of a single contract call argument.
type Format uint8

const (
	// FormatDefault decodes the value as a hex string. Unspecified formats
	// have always been treated this way by the VM tooling, so the behaviour
	// is kept even though it can mask caller mistakes.
	FormatDefault Format = iota
	FormatByte
	FormatInt8
	FormatUint64
	FormatInt64
	FormatString
	FormatBigint
	FormatHex
	FormatDna
)

var formatNames = map[Format]string{
	FormatDefault: "default",
	FormatByte:    "byte",
	FormatInt8:    "int8",
	FormatUint64:  "uint64",
	FormatInt64:   "int64",
	FormatString:  "string",
	FormatBigint:  "bigint",
	FormatHex:     "hex",
	FormatDna:     "dna",
}

func (f Format) String() string {
	if n, ok := formatNames[f]; ok {
		return n
	}

	return "unknown"
}

// ParseFormat maps a format name onto the closed Format set. The empty
// string maps to FormatDefault; anything else unrecognised is an error
// rather than silently falling back to hex.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatDefault, nil
	}

	for f, n := range formatNames {
		if n == s {
			return f, nil
		}
	}

	return FormatDefault, errors.Errorf("unknown argument format %q", s)
}
