package comm

import (
	"errors"
	"testing"

	"github.com/thiefmaster/flowerlight/color"
)

func TestDecodeState(t *testing.T) {
	s, err := DecodeState([]byte{50, 255, 0, 128, 0xaa})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Petals != 50 || s.Color != (color.RGB{R: 255, G: 0, B: 128}) {
		t.Fatalf("unexpected state %+v", s)
	}
	if got := s.String(); got != "petals=50% color=#ff0080" {
		t.Fatalf("String() = %q", got)
	}

	s, err = DecodeState([]byte{0xff, 0, 0, 0})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Petals != -1 || s.Level() != 0 {
		t.Fatalf("signed petals: %+v level=%d", s, s.Level())
	}

	if _, err := DecodeState([]byte{1, 2, 3}); !errors.Is(err, ErrShortField) {
		t.Fatalf("expected ErrShortField, got %v", err)
	}
}

func TestDecodeUint8AndText(t *testing.T) {
	v, err := DecodeUint8([]byte{42, 1})
	if err != nil || v != 42 {
		t.Fatalf("DecodeUint8 = %d, %v", v, err)
	}
	if _, err := DecodeUint8(nil); !errors.Is(err, ErrShortField) {
		t.Fatalf("expected ErrShortField, got %v", err)
	}
	if got := DecodeText([]byte("Flower\x00\x00")); got != "Flower" {
		t.Fatalf("DecodeText = %q", got)
	}
	if got := DecodeText([]byte{'o', 'k', 0xff}); got != "ok\uFFFD" {
		t.Fatalf("DecodeText invalid utf8 = %q", got)
	}
}

func TestWifiStatusAndBattery(t *testing.T) {
	if got := WifiCloudConnected.String(); got != "Floud connected (4)" {
		t.Fatalf("got %q", got)
	}
	if got := WifiStatus(9).String(); got != "Unknown (9)" {
		t.Fatalf("got %q", got)
	}
	if got := (Battery{Level: 85, Power: 0b00111011}).String(); got != "85% (charging)" {
		t.Fatalf("got %q", got)
	}
	if got := (Battery{Level: 20, Power: 0x2f}).String(); got != "20% (battery)" {
		t.Fatalf("got %q", got)
	}
}

func TestDecodeColorScheme(t *testing.T) {
	got := DecodeColorScheme([]byte{0x00, 0x64, 0x78, 0x64, 0x01})
	if len(got) != 2 || got[0] != "#ff0000" || got[1] != "#0000ff" {
		t.Fatalf("got %v", got)
	}
}
