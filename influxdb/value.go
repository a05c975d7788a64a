/*
 The MIT License

 Permission is hereby granted, free of charge, to any person obtaining a copy
 of this software and associated documentation files (the "Software"), to deal
 in the Software without restriction, including without limitation the rights
 to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 copies of the Software, and to permit persons to whom the Software is
 furnished to do so, subject to the following conditions:

 The above copyright notice and this permission notice shall be included in
 all copies or substantial portions of the Software.

 THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
 THE SOFTWARE.
*/

package influxdb

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/influxdata/line-protocol/v2/lineprotocol"
)

// Kind identifies which of the five line protocol scalar types a Value holds.
type Kind uint8

const (
	// Unknown is the Kind of the zero Value.
	Unknown Kind = iota
	Boolean
	Float
	SignedInteger
	UnsignedInteger
	Text
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case Boolean:
		return "boolean"
	case Float:
		return "float"
	case SignedInteger:
		return "integer"
	case UnsignedInteger:
		return "uinteger"
	case Text:
		return "string"
	default:
		return "unknown"
	}
}

// Value is an immutable line protocol scalar: a boolean, a float, a signed or
// unsigned 64-bit integer or a text string. The zero Value has Kind Unknown
// and is never stored in a WriteQuery.
type Value struct {
	kind Kind
	b    bool
	f    float64
	i    int64
	u    uint64
	s    string
}

// BooleanValue returns a Value holding v.
func BooleanValue(v bool) Value {
	return Value{kind: Boolean, b: v}
}

// FloatValue returns a Value holding v.
func FloatValue(v float64) Value {
	return Value{kind: Float, f: v}
}

// IntegerValue returns a Value holding v.
func IntegerValue(v int64) Value {
	return Value{kind: SignedInteger, i: v}
}

// UIntegerValue returns a Value holding v.
func UIntegerValue(v uint64) Value {
	return Value{kind: UnsignedInteger, u: v}
}

// TextValue returns a Value holding v.
func TextValue(v string) Value {
	return Value{kind: Text, s: v}
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// BoolV returns the value as a bool. It panics if v.Kind() is not Boolean.
func (v Value) BoolV() bool {
	v.mustBe(Boolean)
	return v.b
}

// FloatV returns the value as a float64. It panics if v.Kind() is not Float.
func (v Value) FloatV() float64 {
	v.mustBe(Float)
	return v.f
}

// IntV returns the value as an int64. It panics if v.Kind() is not SignedInteger.
func (v Value) IntV() int64 {
	v.mustBe(SignedInteger)
	return v.i
}

// UintV returns the value as a uint64. It panics if v.Kind() is not UnsignedInteger.
func (v Value) UintV() uint64 {
	v.mustBe(UnsignedInteger)
	return v.u
}

// StringV returns the value as a string. It panics if v.Kind() is not Text.
func (v Value) StringV() string {
	v.mustBe(Text)
	return v.s
}

func (v Value) mustBe(k Kind) {
	if v.kind != k {
		panic(fmt.Errorf("value has kind %v, not %v", v.kind, k))
	}
}

// Interface returns the value as the matching native Go type
// (bool, float64, int64, uint64 or string), or nil for the zero Value.
func (v Value) Interface() any {
	switch v.kind {
	case Boolean:
		return v.b
	case Float:
		return v.f
	case SignedInteger:
		return v.i
	case UnsignedInteger:
		return v.u
	case Text:
		return v.s
	default:
		return nil
	}
}

// String renders the value without any escaping or type suffix.
// Floats never use exponent notation.
func (v Value) String() string {
	switch v.kind {
	case Boolean:
		return strconv.FormatBool(v.b)
	case Float:
		return formatFloat(v.f)
	case SignedInteger:
		return strconv.FormatInt(v.i, 10)
	case UnsignedInteger:
		return strconv.FormatUint(v.u, 10)
	case Text:
		return v.s
	default:
		return ""
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// LineProtocol converts the value to a [lineprotocol.Value]. The second result
// is false for the zero Value, non-finite floats and text that is not valid UTF-8.
//
// [lineprotocol.Value]: https://pkg.go.dev/github.com/influxdata/line-protocol/v2/lineprotocol#Value
func (v Value) LineProtocol() (lineprotocol.Value, bool) {
	switch v.kind {
	case Boolean:
		return lineprotocol.BoolValue(v.b), true
	case Float:
		return lineprotocol.FloatValue(v.f)
	case SignedInteger:
		return lineprotocol.IntValue(v.i), true
	case UnsignedInteger:
		return lineprotocol.UintValue(v.u), true
	case Text:
		return lineprotocol.StringValue(v.s)
	default:
		return lineprotocol.Value{}, false
	}
}

// NewValueFromLineProtocol converts a [lineprotocol.Value] into a Value.
//
// [lineprotocol.Value]: https://pkg.go.dev/github.com/influxdata/line-protocol/v2/lineprotocol#Value
func NewValueFromLineProtocol(v lineprotocol.Value) Value {
	// The zero lineprotocol.Value reports itself as an empty string.
	if reflect.ValueOf(v).IsZero() {
		return Value{}
	}
	switch v.Kind() {
	case lineprotocol.Bool:
		return BooleanValue(v.BoolV())
	case lineprotocol.Float:
		return FloatValue(v.FloatV())
	case lineprotocol.Int:
		return IntegerValue(v.IntV())
	case lineprotocol.Uint:
		return UIntegerValue(v.UintV())
	case lineprotocol.String:
		return TextValue(v.StringV())
	default:
		return Value{}
	}
}

// NativeType are unions of type sets that can be converted by [NewValueFromNative].
type NativeType interface {
	float64 | int64 | uint64 | string | []byte | bool
}

// FloatType is IEEE-754 64-bit floating-point numbers, the default numerical type.
type FloatType interface {
	~float32 | ~float64
}

// IntegerType is signed 64-bit integers.
type IntegerType interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// UIntegerType is unsigned 64-bit integers. InfluxDB 1.x has no unsigned
// type, see [WriteQuery.BuildWithOpts].
type UIntegerType interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// StringType is plain text.
type StringType interface {
	~string | ~[]byte
}

// BooleanType is true or false values.
type BooleanType interface {
	~bool
}

// NewValueFromNative is a convenient function for creating a Value from NativeType.
//
// Parameters:
//   - v: The native value.
//
// Returns:
//   - The created Value.
func NewValueFromNative[N NativeType](v N) Value {
	switch x := any(v).(type) {
	case float64:
		return FloatValue(x)
	case int64:
		return IntegerValue(x)
	case uint64:
		return UIntegerValue(x)
	case string:
		return TextValue(x)
	case []byte:
		return TextValue(string(x))
	default:
		return BooleanValue(any(v).(bool))
	}
}

// NewValueFromFloat is a convenient function for creating a Value from FloatType.
// Non-finite values (+/- infinity and NaN) are rejected with a panic since
// InfluxDB cannot store them.
//
// Parameters:
//   - v: The float value.
//
// Returns:
//   - The created Value.
func NewValueFromFloat[F FloatType](v F) Value {
	f := float64(v)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		panic(fmt.Errorf("invalid float value for NewValueFromFloat: %T (%#v)", v, v))
	}
	return FloatValue(f)
}

// NewValueFromInt is a convenient function for creating a Value from IntegerType.
func NewValueFromInt[I IntegerType](v I) Value {
	return IntegerValue(int64(v))
}

// NewValueFromUInt is a convenient function for creating a Value from UIntegerType.
// Every unsigned width widens to uint64.
func NewValueFromUInt[U UIntegerType](v U) Value {
	return UIntegerValue(uint64(v))
}

// NewValueFromString is a convenient function for creating a Value from StringType.
func NewValueFromString[S StringType](v S) Value {
	return TextValue(string(v))
}

// NewValueFromStringer is a convenient function for creating a Value from [fmt.Stringer].
func NewValueFromStringer[S fmt.Stringer](v S) Value {
	return TextValue(v.String())
}

// NewValueFromBoolean is a convenient function for creating a Value from BooleanType.
func NewValueFromBoolean[B BooleanType](v B) Value {
	return BooleanValue(bool(v))
}

// NewValueFromTime is a convenient function for creating a text Value from [time.Time].
func NewValueFromTime(v time.Time) Value {
	return TextValue(v.Format(time.RFC3339Nano))
}

// ValueOf converts any Go value into a Value. Signed integers widen to int64,
// unsigned integers to uint64 and float32 to float64. Pointers are followed;
// a nil pointer or a nil interface yields false, which builders treat as an
// absent optional value. Types with no line protocol counterpart are rendered
// as text.
func ValueOf(v any) (Value, bool) {
	switch v := v.(type) {
	case nil:
		return Value{}, false
	case Value:
		return v, v.kind != Unknown
	case lineprotocol.Value:
		val := NewValueFromLineProtocol(v)
		return val, val.kind != Unknown
	case bool:
		return BooleanValue(v), true
	case float64:
		return FloatValue(v), true
	case float32:
		return FloatValue(float64(v)), true
	case int:
		return IntegerValue(int64(v)), true
	case int8:
		return IntegerValue(int64(v)), true
	case int16:
		return IntegerValue(int64(v)), true
	case int32:
		return IntegerValue(int64(v)), true
	case int64:
		return IntegerValue(v), true
	case uint:
		return UIntegerValue(uint64(v)), true
	case uint8:
		return UIntegerValue(uint64(v)), true
	case uint16:
		return UIntegerValue(uint64(v)), true
	case uint32:
		return UIntegerValue(uint64(v)), true
	case uint64:
		return UIntegerValue(v), true
	case string:
		return TextValue(v), true
	case []byte:
		return TextValue(string(v)), true
	case time.Time:
		return NewValueFromTime(v), true
	case time.Duration:
		return TextValue(v.String()), true
	case fmt.Stringer:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return Value{}, false
		}
		return TextValue(v.String()), true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return Value{}, false
		}
		return ValueOf(rv.Elem().Interface())
	}
	switch rv.Kind() {
	case reflect.Bool:
		return BooleanValue(rv.Bool()), true
	case reflect.Float32, reflect.Float64:
		return FloatValue(rv.Float()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return IntegerValue(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return UIntegerValue(rv.Uint()), true
	case reflect.String:
		return TextValue(rv.String()), true
	}
	return TextValue(fmt.Sprintf("%v", v)), true
}
