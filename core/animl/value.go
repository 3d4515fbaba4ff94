package animl

import (
	"fmt"
	"strconv"
)

// Value is a single decoded datum of a series or parameter. Exactly one of
// the payload fields is meaningful, selected by Type: Int for Int32/Int64,
// Real for Float32/Float64, Text for String, Bool for Boolean.
type Value struct {
	Type SeriesType
	Int  int64
	Real float64
	Text string
	Bool bool
}

// IntValue creates an Int32 or Int64 value.
func IntValue(t SeriesType, v int64) Value {
	return Value{Type: t, Int: v}
}

// FloatValue creates a Float32 or Float64 value.
func FloatValue(t SeriesType, v float64) Value {
	return Value{Type: t, Real: v}
}

// StringValue creates a String value.
func StringValue(v string) Value {
	return Value{Type: SeriesString, Text: v}
}

// BoolValue creates a Boolean value.
func BoolValue(v bool) Value {
	return Value{Type: SeriesBoolean, Bool: v}
}

// Float returns the numeric payload widened to float64. String and Boolean
// values return 0; callers applying unit transforms are expected to hold
// numeric series.
func (v Value) Float() float64 {
	switch v.Type {
	case SeriesInt32, SeriesInt64:
		return float64(v.Int)
	case SeriesFloat32, SeriesFloat64:
		return v.Real
	}
	return 0
}

// String renders the value the way it would appear as document text.
func (v Value) String() string {
	switch v.Type {
	case SeriesInt32, SeriesInt64:
		return strconv.FormatInt(v.Int, 10)
	case SeriesFloat32:
		return strconv.FormatFloat(v.Real, 'g', -1, 32)
	case SeriesFloat64:
		return strconv.FormatFloat(v.Real, 'g', -1, 64)
	case SeriesString:
		return v.Text
	case SeriesBoolean:
		return strconv.FormatBool(v.Bool)
	}
	return fmt.Sprintf("<%s?>", string(v.Type))
}

// parseValue parses one literal into a value of the given type. The
// returned error distinguishes literals outside the declared width
// (ValueRangeError) from literals that do not belong to the type's domain
// at all (InvalidValueError).
func parseValue(path string, t SeriesType, literal string) (Value, error) {
	switch t {
	case SeriesInt32, SeriesInt64:
		bits := 32
		if t == SeriesInt64 {
			bits = 64
		}
		n, err := strconv.ParseInt(literal, 10, bits)
		if err != nil {
			if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
				return Value{}, &ValueRangeError{Path: path, Literal: literal, Type: t}
			}
			return Value{}, &InvalidValueError{Path: path, Field: "value", Got: literal, Want: string(t)}
		}
		return IntValue(t, n), nil

	case SeriesFloat32, SeriesFloat64:
		bits := 32
		if t == SeriesFloat64 {
			bits = 64
		}
		f, err := strconv.ParseFloat(literal, bits)
		if err != nil {
			if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
				return Value{}, &ValueRangeError{Path: path, Literal: literal, Type: t}
			}
			return Value{}, &InvalidValueError{Path: path, Field: "value", Got: literal, Want: string(t)}
		}
		return FloatValue(t, f), nil

	case SeriesString:
		return StringValue(literal), nil

	case SeriesBoolean:
		b, err := strconv.ParseBool(literal)
		if err != nil {
			return Value{}, &InvalidValueError{Path: path, Field: "value", Got: literal, Want: string(t)}
		}
		return BoolValue(b), nil
	}
	return Value{}, &InvalidValueError{Path: path, Field: "value", Got: literal, Want: "known series type"}
}
