package args

import (
	"encoding/binary"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeByteRoundTrip(t *testing.T) {
	for v := 0; v <= 255; v++ {
		b, err := Encode(FormatByte, big.NewInt(int64(v)).String(), 0)
		if err != nil {
			t.Fatal(err)
		}

		assert.Equal(t, []byte{byte(v)}, b)
	}
}

func TestEncodeByteOutOfRange(t *testing.T) {
	for _, v := range []string{"-1", "256", "abc", ""} {
		_, err := Encode(FormatByte, v, 3)
		if err == nil {
			t.Fatalf("expected error for %q", v)
		}

		encErr, ok := err.(*EncodingError)
		if !ok {
			t.Fatalf("expected EncodingError, got %T", err)
		}

		assert.Equal(t, 3, encErr.Index)
		assert.Equal(t, FormatByte, encErr.Format)
	}
}

func TestEncodeUint64RoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 255, 1 << 32, ^uint64(0)} {
		b, err := Encode(FormatUint64, new(big.Int).SetUint64(v).String(), 0)
		if err != nil {
			t.Fatal(err)
		}

		assert.Len(t, b, 8)
		assert.Equal(t, v, binary.LittleEndian.Uint64(b))
	}
}

func TestEncodeUint64Negative(t *testing.T) {
	_, err := Encode(FormatUint64, "-5", 0)
	assert.Error(t, err)
}

func TestEncodeUint64Truncates(t *testing.T) {
	// 2^64 + 5 truncates to its low 64 bits
	v := new(big.Int).Lsh(big.NewInt(1), 64)
	v.Add(v, big.NewInt(5))

	b, err := Encode(FormatUint64, v.String(), 0)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, uint64(5), binary.LittleEndian.Uint64(b))
}

func TestEncodeInt64(t *testing.T) {
	b, err := Encode(FormatInt64, "-1", 0)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, b)

	b, err = Encode(FormatInt64, "1", 0)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0}, b)
}

func TestEncodeString(t *testing.T) {
	b, err := Encode(FormatString, "héllo", 0)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, []byte("héllo"), b)
}

func TestEncodeBigint(t *testing.T) {
	b, err := Encode(FormatBigint, "66052", 0)
	if err != nil {
		t.Fatal(err)
	}

	// minimal big-endian, no fixed width
	assert.Equal(t, []byte{0x01, 0x02, 0x04}, b)
}

func TestEncodeBigintNegative(t *testing.T) {
	// the encoding carries no sign; -66052 must not alias 66052
	_, err := Encode(FormatBigint, "-66052", 2)
	if err == nil {
		t.Fatal("expected error")
	}

	encErr, ok := err.(*EncodingError)
	if !ok {
		t.Fatalf("expected EncodingError, got %T", err)
	}

	assert.Equal(t, 2, encErr.Index)
	assert.Equal(t, FormatBigint, encErr.Format)
}

func TestEncodeHex(t *testing.T) {
	for _, v := range []string{"0x0102ff", "0102ff"} {
		b, err := Encode(FormatHex, v, 0)
		if err != nil {
			t.Fatal(err)
		}

		assert.Equal(t, []byte{0x01, 0x02, 0xFF}, b)
	}

	for _, v := range []string{"0x123", "zz", ""} {
		_, err := Encode(FormatHex, v, 0)
		assert.Error(t, err, v)
	}
}

func TestEncodeDefaultIsHex(t *testing.T) {
	b, err := Encode(FormatDefault, "ff00", 0)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, []byte{0xFF, 0x00}, b)
}

func TestEncodeDna(t *testing.T) {
	b, err := Encode(FormatDna, "1.5", 0)
	if err != nil {
		t.Fatal(err)
	}

	want, ok := new(big.Int).SetString("1500000000000000000", 10)
	if !ok {
		t.Fatal("bad test constant")
	}

	// exact integer comparison, not approximate
	assert.Equal(t, want.Bytes(), b)
	assert.Equal(t, 0, want.Cmp(new(big.Int).SetBytes(b)))
}

func TestEncodeDnaSmallest(t *testing.T) {
	b, err := Encode(FormatDna, "0.000000000000000001", 0)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, []byte{1}, b)
}

func TestEncodeDnaRejectsNonDecimal(t *testing.T) {
	for _, v := range []string{"", "NaN", "1.5.5"} {
		_, err := Encode(FormatDna, v, 0)
		assert.Error(t, err, v)
	}
}

func TestEncodeDnaRejectsNegative(t *testing.T) {
	// -1.5 would otherwise encode byte-identical to 1.5
	_, err := Encode(FormatDna, "-1.5", 0)
	if err == nil {
		t.Fatal("expected error")
	}

	encErr, ok := err.(*EncodingError)
	if !ok {
		t.Fatalf("expected EncodingError, got %T", err)
	}

	assert.Equal(t, FormatDna, encErr.Format)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("dna")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, FormatDna, f)

	f, err = ParseFormat("")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, FormatDefault, f)

	_, err = ParseFormat("float")
	assert.Error(t, err)
}
