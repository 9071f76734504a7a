package comm

import (
	"fmt"
	"strings"
	"time"

	"github.com/thiefmaster/flowerlight/color"
	"github.com/thiefmaster/flowerlight/msgpack"
)

// MaxTransition is the longest fade the lamp accepts.
const MaxTransition = 60 * time.Second

func NewPetalsCommand(level int, transition time.Duration) Command {
	return Command{Code: WritePetals, Payload: msgpack.Map{
		{Key: "l", Value: levelValue(level)},
		{Key: "t", Value: transitionValue(transition)},
	}}
}

func NewRGBColorCommand(c color.RGB, transition time.Duration) Command {
	return Command{Code: WriteRGBColor, Payload: msgpack.Map{
		{Key: "r", Value: msgpack.Int(c.R)},
		{Key: "g", Value: msgpack.Int(c.G)},
		{Key: "b", Value: msgpack.Int(c.B)},
		{Key: "t", Value: transitionValue(transition)},
	}}
}

func NewStateCommand(level int, c color.RGB, transition time.Duration) Command {
	return Command{Code: WriteState, Payload: msgpack.Map{
		{Key: "l", Value: levelValue(level)},
		{Key: "r", Value: msgpack.Int(c.R)},
		{Key: "g", Value: msgpack.Int(c.G)},
		{Key: "b", Value: msgpack.Int(c.B)},
		{Key: "t", Value: transitionValue(transition)},
	}}
}

// NewTakeoverCommand is an empty state write. The firmware treats it as
// remote control taking over and leaves pairing mode without changing
// petals or color.
func NewTakeoverCommand() Command {
	return Command{Code: WriteState, Payload: msgpack.Map{}}
}

func NewPlayAnimationCommand(id int) (Command, error) {
	if id < 0 || id > 255 {
		return Command{}, fmt.Errorf("%w: %d", ErrInvalidAnimation, id)
	}
	return Command{Code: PlayAnimation, Payload: msgpack.Map{
		{Key: "a", Value: msgpack.Int(id)},
	}}, nil
}

func NewOTACommand() Command {
	return Command{Code: RunOTAUpdate}
}

// WifiCredentials also carries the cloud pairing for the lamp. All four
// fields are always sent, empty or not.
type WifiCredentials struct {
	SSID     string `yaml:"ssid"`
	Password string `yaml:"password"`
	DeviceID string `yaml:"device_id"`
	Token    string `yaml:"token"`
}

func NewWifiCommand(c WifiCredentials) Command {
	return Command{Code: WriteWifi, Payload: msgpack.Map{
		{Key: "ssid", Value: msgpack.Text(c.SSID)},
		{Key: "pwd", Value: msgpack.Text(c.Password)},
		{Key: "dvc", Value: msgpack.Text(c.DeviceID)},
		{Key: "tkn", Value: msgpack.Text(c.Token)},
	}}
}

func NewNameCommand(name string) Command {
	return Command{Code: WriteName, Payload: msgpack.Map{
		{Key: "n", Value: msgpack.Text(strings.TrimSpace(name))},
	}}
}

// Customization holds the lamp's tuning parameters. Nil fields are left
// out of the payload and keep their current value on the device.
type Customization struct {
	Speed      *int `yaml:"speed"`
	Brightness *int `yaml:"brightness"`
	MaxOpen    *int `yaml:"max_open"`
}

func NewCustomizationCommand(c Customization) Command {
	return Command{Code: WriteCustomization, Payload: msgpack.Map{
		{Key: "spd", Value: optional(c.Speed, 5, 255)},
		{Key: "brg", Value: optional(c.Brightness, 0, 100)},
		{Key: "mol", Value: optional(c.MaxOpen, 0, 100)},
	}}
}

// NewColorSchemeCommand sends the scheme as a list of HS words.
func NewColorSchemeCommand(colors []string) (Command, error) {
	if len(colors) < 1 || len(colors) > color.MaxSchemeColors {
		return Command{}, fmt.Errorf("%w: got %d", ErrSchemeSize, len(colors))
	}
	words, err := color.EncodeScheme(colors)
	if err != nil {
		return Command{}, err
	}
	list := make(msgpack.List, len(words))
	for i, w := range words {
		list[i] = msgpack.Int(w)
	}
	return Command{Code: WriteColorScheme, Payload: list}, nil
}

func levelValue(level int) msgpack.Value {
	return msgpack.Int(clamp(level, 0, 100))
}

func transitionValue(d time.Duration) msgpack.Value {
	return msgpack.Int(clamp(int(d.Milliseconds()), 0, int(MaxTransition.Milliseconds())))
}

func optional(v *int, lo, hi int) msgpack.Value {
	if v == nil {
		return nil
	}
	return msgpack.Int(clamp(*v, lo, hi))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
