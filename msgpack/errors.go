package msgpack

import "errors"

var (
	ErrUnsupportedKind   = errors.New("msgpack: unsupported value kind")
	ErrIntegerOutOfRange = errors.New("msgpack: integer out of range")
	ErrLengthOverflow    = errors.New("msgpack: length overflow")
)
