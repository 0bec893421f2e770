package args

import "github.com/pkg/errors"

// BuildSlice assembles the canonical argument slice: a dense sequence of
// encoded values indexed 0..maxIndex. Slots with no supplied argument stay
// nil, which the attachment codec writes as "no value"; a nil slot is
// structurally distinct from an encoded zero-length value. Duplicate indices
// resolve to the last argument in input order.
func BuildSlice(arguments []Argument) ([][]byte, error) {
	supplied := make([]Argument, 0, len(arguments))
	maxIndex := 0

	for _, a := range arguments {
		if a.Value == nil {
			continue
		}
		if a.Index < 0 {
			return nil, encodingErr(a.Index, a.Format, errors.New("negative argument index"))
		}

		if a.Index > maxIndex {
			maxIndex = a.Index
		}

		supplied = append(supplied, a)
	}

	if len(supplied) == 0 {
		return [][]byte{}, nil
	}

	out := make([][]byte, maxIndex+1)

	for _, a := range supplied {
		b, err := Encode(a.Format, *a.Value, a.Index)
		if err != nil {
			return nil, err
		}

		out[a.Index] = b
	}

	return out, nil
}
