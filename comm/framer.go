package comm

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/thiefmaster/flowerlight/msgpack"
)

const (
	HeaderLen = 6
	// MaxPayload is the transport's cap even though the length field could
	// address more.
	MaxPayload = 255
)

// Framer prefixes payloads with the packet header and owns the message id
// counter. The counter lives as long as the Framer, so reuse one Framer
// across reconnects.
type Framer struct {
	mu     sync.Mutex
	nextID uint16
}

func NewFramer() *Framer {
	return &Framer{nextID: 1}
}

// NextID returns the message id the next successful Build will use.
func (f *Framer) NextID() uint16 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nextID
}

// Build returns header+payload. The id only advances when a packet is
// actually produced.
func (f *Framer) Build(code uint16, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrPayloadTooLarge, len(payload), MaxPayload)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	buf := make([]byte, HeaderLen+len(payload))
	binary.BigEndian.PutUint16(buf[0:2], code)
	binary.BigEndian.PutUint16(buf[2:4], f.nextID)
	binary.BigEndian.PutUint16(buf[4:6], uint16(len(payload)))
	copy(buf[HeaderLen:], payload)
	f.nextID++
	return buf, nil
}

// Frame encodes cmd's payload and builds the packet.
func (f *Framer) Frame(cmd Command) ([]byte, error) {
	var payload []byte
	if cmd.Payload != nil {
		var err error
		payload, err = msgpack.Encode(cmd.Payload)
		if err != nil {
			return nil, fmt.Errorf("%s payload: %w", cmd.Code, err)
		}
	}
	pkt, err := f.Build(uint16(cmd.Code), payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cmd.Code, err)
	}
	return pkt, nil
}
