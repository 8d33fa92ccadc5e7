package model

import (
	"bytes"
	"strconv"
)

// Value is a single indicator observation that is either a defined float or
// explicitly undefined (warm-up region, 0/0 ratio, flat window). Undefined
// values never flow through arithmetic as NaN — every consumer must check
// Defined before touching V.
type Value struct {
	V       float64
	Defined bool
}

// Def wraps a defined float.
func Def(v float64) Value { return Value{V: v, Defined: true} }

// Undef returns the undefined marker.
func Undef() Value { return Value{} }

// MarshalJSON encodes undefined values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Defined {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v.V, 'g', -1, 64), nil
}

// UnmarshalJSON decodes null as undefined, anything else as a float.
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*v = Value{V: f, Defined: true}
	return nil
}
