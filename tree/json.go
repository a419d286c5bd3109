package tree

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// Decode parses a single JSON document into native values. Integral numbers
// become int64 and other numbers float64, so that decoded integers render
// without a fractional part.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	// reject trailing content after the first document
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("invalid character after top-level value")
	}

	return Normalize(v), nil
}

// Normalize rewrites json.Number values inside v (in place for maps and
// slices) to int64 when integral and float64 otherwise.
func Normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, e := range val {
			val[k] = Normalize(e)
		}

		return val

	case []any:
		for i, e := range val {
			val[i] = Normalize(e)
		}

		return val

	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}

		if f, err := val.Float64(); err == nil {
			return f
		}

		return val.String()

	default:
		return v
	}
}

// Roundtrip converts an arbitrary Go value (structs, typed maps) into native
// values by encoding it as JSON and decoding it with [Decode].
func Roundtrip(v any) (any, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return Decode(buf)
}
