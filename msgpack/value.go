// Package msgpack encodes command payloads for the lamp in a small
// MessagePack-compatible subset: nil, booleans, 32-bit integers, strings,
// arrays and string-keyed maps. There is no decoder.
package msgpack

import (
	"fmt"
	"math"
	"reflect"
)

// Value is one of Nil, Bool, Int, Text, List or Map.
type Value interface {
	msgpackValue()
}

type Nil struct{}

type Bool bool

// Int covers -2^31 .. 2^32-1. Anything outside fails to encode.
type Int int64

type Text string

// List elements that are a nil interface are encoded as Nil.
type List []Value

// Map keeps its pairs in order. A pair whose Value is a nil interface is
// absent and is left out of the encoding altogether.
type Map []Pair

type Pair struct {
	Key   string
	Value Value
}

func (Nil) msgpackValue()  {}
func (Bool) msgpackValue() {}
func (Int) msgpackValue()  {}
func (Text) msgpackValue() {}
func (List) msgpackValue() {}
func (Map) msgpackValue()  {}

// Len reports the number of pairs that will actually be encoded.
func (m Map) Len() int {
	n := 0
	for _, p := range m {
		if p.Value != nil {
			n++
		}
	}
	return n
}

// FromGo converts loosely typed Go data into a Value.
func FromGo(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Nil{}, nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case int:
		return Int(v), nil
	case int8:
		return Int(v), nil
	case int16:
		return Int(v), nil
	case int32:
		return Int(v), nil
	case int64:
		return Int(v), nil
	case uint:
		return fromUint(uint64(v))
	case uint8:
		return Int(v), nil
	case uint16:
		return Int(v), nil
	case uint32:
		return Int(v), nil
	case uint64:
		return fromUint(v)
	case string:
		return Text(v), nil
	case []Pair:
		return Map(v), nil
	case []string:
		out := make(List, len(v))
		for i, s := range v {
			out[i] = Text(s)
		}
		return out, nil
	case []int:
		out := make(List, len(v))
		for i, n := range v {
			out[i] = Int(n)
		}
		return out, nil
	case []any:
		out := make(List, len(v))
		for i, item := range v {
			conv, err := FromGo(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = conv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, reflect.TypeOf(x))
	}
}

func fromUint(v uint64) (Value, error) {
	if v > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d", ErrIntegerOutOfRange, v)
	}
	return Int(v), nil
}
