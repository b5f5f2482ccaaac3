package models

import (
	"encoding/json"
	"math"
)

// Float is an optional float64. Indicator columns produce an invalid Float
// during warm-up and on degenerate division; consumers must branch on Valid
// instead of relying on NaN arithmetic.
type Float struct {
	Val   float64
	Valid bool
}

// F wraps a defined value.
func F(v float64) Float { return Float{Val: v, Valid: true} }

// Undefined is the "no value" Float.
func Undefined() Float { return Float{} }

// Or returns the value, or def when undefined.
func (f Float) Or(def float64) float64 {
	if f.Valid {
		return f.Val
	}
	return def
}

// Round returns the value rounded to n decimals, still undefined if f is.
func (f Float) Round(n int) Float {
	if !f.Valid {
		return f
	}
	p := math.Pow(10, float64(n))
	return F(math.Round(f.Val*p) / p)
}

// MarshalJSON encodes undefined as null so API clients see "no value"
// rather than a fake zero.
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Val)
}

// UnmarshalJSON accepts null as undefined.
func (f *Float) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = Float{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = F(v)
	return nil
}
