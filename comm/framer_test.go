package comm

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/thiefmaster/flowerlight/msgpack"
)

func TestBuildEmptyPayloadAdvancesID(t *testing.T) {
	f := NewFramer()
	first, err := f.Build(64, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if want := []byte{0x00, 0x40, 0x00, 0x01, 0x00, 0x00}; !bytes.Equal(first, want) {
		t.Fatalf("first packet % x want % x", first, want)
	}
	second, err := f.Build(64, []byte{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if want := []byte{0x00, 0x40, 0x00, 0x02, 0x00, 0x00}; !bytes.Equal(second, want) {
		t.Fatalf("second packet % x want % x", second, want)
	}
}

func TestBuildCopiesPayload(t *testing.T) {
	f := NewFramer()
	payload := []byte{0x81, 0xa1, 'a', 0x03}
	pkt, err := f.Build(uint16(PlayAnimation), payload)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := []byte{0x00, 0x45, 0x00, 0x01, 0x00, 0x04, 0x81, 0xa1, 'a', 0x03}
	if !bytes.Equal(pkt, want) {
		t.Fatalf("packet % x want % x", pkt, want)
	}
	payload[0] = 0
	if pkt[HeaderLen] != 0x81 {
		t.Fatalf("packet aliases caller payload")
	}
}

func TestBuildMessageIDWraps(t *testing.T) {
	f := NewFramer()
	f.nextID = 0xffff
	pkt, err := f.Build(1, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if pkt[2] != 0xff || pkt[3] != 0xff {
		t.Fatalf("expected id 0xffff, got % x", pkt[2:4])
	}
	pkt, err = f.Build(1, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if pkt[2] != 0x00 || pkt[3] != 0x00 {
		t.Fatalf("expected id 0 after wrap, got % x", pkt[2:4])
	}
	if got := f.NextID(); got != 1 {
		t.Fatalf("NextID after wrap = %d", got)
	}
}

func TestBuildRejectsLargePayloadWithoutUsingID(t *testing.T) {
	f := NewFramer()
	_, err := f.Build(64, make([]byte, 256))
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
	if got := f.NextID(); got != 1 {
		t.Fatalf("rejected build consumed an id: next=%d", got)
	}

	pkt, err := f.Build(64, make([]byte, MaxPayload))
	if err != nil {
		t.Fatalf("255 byte payload: %v", err)
	}
	if len(pkt) != HeaderLen+MaxPayload || pkt[4] != 0x00 || pkt[5] != 0xff {
		t.Fatalf("unexpected header % x", pkt[:HeaderLen])
	}
}

func TestFrameNilPayloadIsEmpty(t *testing.T) {
	f := NewFramer()
	pkt, err := f.Frame(NewOTACommand())
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	if want := []byte{0x00, 0x46, 0x00, 0x01, 0x00, 0x00}; !bytes.Equal(pkt, want) {
		t.Fatalf("packet % x want % x", pkt, want)
	}
}

func TestFrameTakeover(t *testing.T) {
	f := NewFramer()
	pkt, err := f.Frame(NewTakeoverCommand())
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	if want := []byte{0x00, 0x43, 0x00, 0x01, 0x00, 0x01, 0x80}; !bytes.Equal(pkt, want) {
		t.Fatalf("packet % x want % x", pkt, want)
	}
}

func TestFrameErrorsKeepID(t *testing.T) {
	f := NewFramer()

	_, err := f.Frame(NewNameCommand(strings.Repeat("x", 300)))
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}

	_, err = f.Frame(Command{Code: WriteCustomization, Payload: msgpack.Map{{Key: "spd", Value: msgpack.Int(1 << 40)}}})
	if !errors.Is(err, msgpack.ErrIntegerOutOfRange) {
		t.Fatalf("expected ErrIntegerOutOfRange, got %v", err)
	}

	if got := f.NextID(); got != 1 {
		t.Fatalf("failed frames consumed ids: next=%d", got)
	}
}

func TestBuildConcurrentIDsAreUnique(t *testing.T) {
	f := NewFramer()
	const workers, per = 8, 500
	ids := make(chan uint16, workers*per)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < per; j++ {
				pkt, err := f.Build(64, nil)
				if err != nil {
					t.Errorf("build: %v", err)
					return
				}
				ids <- uint16(pkt[2])<<8 | uint16(pkt[3])
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint16]bool, workers*per)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate message id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != workers*per {
		t.Fatalf("got %d ids", len(seen))
	}
}
