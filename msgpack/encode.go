package msgpack

import (
	"bytes"
	"fmt"
	"math"

	vm "github.com/vmihailenco/msgpack/v5"
)

const (
	minInt   = math.MinInt32
	maxInt   = math.MaxUint32
	maxLen16 = math.MaxUint16
)

// Encode returns the complete encoding of v. On error no bytes are returned.
func Encode(v Value) ([]byte, error) {
	var buf bytes.Buffer
	e := encoder{enc: vm.NewEncoder(&buf)}
	if err := e.value(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encoder validates every value against the subset's limits before handing
// it to the msgpack encoder, which always picks the smallest wire form.
type encoder struct {
	enc *vm.Encoder
}

func (e *encoder) value(v Value) error {
	switch v := v.(type) {
	case nil, Nil:
		return e.write(e.enc.EncodeNil())
	case Bool:
		return e.write(e.enc.EncodeBool(bool(v)))
	case Int:
		return e.int(int64(v))
	case Text:
		return e.text(string(v))
	case List:
		return e.list(v)
	case Map:
		return e.mapping(v)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedKind, v)
	}
}

func (e *encoder) write(err error) error {
	if err != nil {
		return fmt.Errorf("msgpack: write: %w", err)
	}
	return nil
}

func (e *encoder) int(v int64) error {
	if v < minInt || v > maxInt {
		return fmt.Errorf("%w: %d exceeds 32 bits", ErrIntegerOutOfRange, v)
	}
	return e.write(e.enc.EncodeInt(v))
}

func (e *encoder) text(s string) error {
	if len(s) > maxLen16 {
		return fmt.Errorf("%w: string too long (%d bytes)", ErrLengthOverflow, len(s))
	}
	return e.write(e.enc.EncodeString(s))
}

func (e *encoder) list(l List) error {
	if len(l) > maxLen16 {
		return fmt.Errorf("%w: array too long (%d items)", ErrLengthOverflow, len(l))
	}
	if err := e.write(e.enc.EncodeArrayLen(len(l))); err != nil {
		return err
	}
	for i, item := range l {
		if err := e.value(item); err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
	}
	return nil
}

func (e *encoder) mapping(m Map) error {
	n := m.Len()
	if n > maxLen16 {
		return fmt.Errorf("%w: map too large (%d entries)", ErrLengthOverflow, n)
	}
	if err := e.write(e.enc.EncodeMapLen(n)); err != nil {
		return err
	}
	for _, p := range m {
		if p.Value == nil {
			continue
		}
		if err := e.text(p.Key); err != nil {
			return fmt.Errorf("key %q: %w", p.Key, err)
		}
		if err := e.value(p.Value); err != nil {
			return fmt.Errorf("key %q: %w", p.Key, err)
		}
	}
	return nil
}
