package comm

import (
	"fmt"
	"strings"

	"github.com/thiefmaster/flowerlight/color"
)

// StateSize is the length of the state characteristic record.
const StateSize = 4

// State is the lamp's live state: petal opening and LED color.
type State struct {
	Petals int8
	Color  color.RGB
}

// Level returns the petal opening clamped to 0-100.
func (s State) Level() int {
	return clamp(int(s.Petals), 0, 100)
}

func (s State) String() string {
	return fmt.Sprintf("petals=%d%% color=%s", s.Level(), s.Color.Hex())
}

// DecodeState reads petals (signed) and r, g, b from the first four bytes.
func DecodeState(b []byte) (State, error) {
	if len(b) < StateSize {
		return State{}, fmt.Errorf("%w: state needs %d bytes, got %d", ErrShortField, StateSize, len(b))
	}
	return State{
		Petals: int8(b[0]),
		Color:  color.RGB{R: b[1], G: b[2], B: b[3]},
	}, nil
}

// DecodeUint8 reads one-byte fields such as speed, brightness, max open,
// battery level and wifi status.
func DecodeUint8(b []byte) (uint8, error) {
	if len(b) < 1 {
		return 0, fmt.Errorf("%w: empty value", ErrShortField)
	}
	return b[0], nil
}

// DecodeText reads a text characteristic, dropping NUL padding.
func DecodeText(b []byte) string {
	return strings.Trim(strings.ToValidUTF8(string(b), "\uFFFD"), "\x00")
}

// DecodeColorScheme reads the color scheme characteristic.
func DecodeColorScheme(b []byte) []string {
	return color.DecodeScheme(b)
}

type WifiStatus uint8

const (
	WifiDisabled WifiStatus = iota
	WifiNotConfigured
	WifiFailed
	WifiCloudUnauthorized
	WifiCloudConnected
	WifiConnecting
)

var wifiStatusText = map[WifiStatus]string{
	WifiDisabled:          "Disabled",
	WifiNotConfigured:     "Not configured",
	WifiFailed:            "Failed",
	WifiCloudUnauthorized: "Floud unauthorized",
	WifiCloudConnected:    "Floud connected",
	WifiConnecting:        "Connecting",
}

func (s WifiStatus) String() string {
	text, ok := wifiStatusText[s]
	if !ok {
		text = "Unknown"
	}
	return fmt.Sprintf("%s (%d)", text, uint8(s))
}

// PowerState is the raw battery power state byte.
type PowerState uint8

const powerStateCharging PowerState = 0b00111011

func (p PowerState) Charging() bool {
	return p == powerStateCharging
}

// Battery combines the two battery characteristics.
type Battery struct {
	Level uint8
	Power PowerState
}

func (b Battery) String() string {
	mode := "battery"
	if b.Power.Charging() {
		mode = "charging"
	}
	return fmt.Sprintf("%d%% (%s)", b.Level, mode)
}
