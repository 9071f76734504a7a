package comm

import (
	"fmt"

	"github.com/thiefmaster/flowerlight/msgpack"
)

// CommandCode is the first header field of every packet.
type CommandCode uint16

const (
	WritePetals        CommandCode = 64
	WriteRGBColor      CommandCode = 65
	WriteState         CommandCode = 67
	PlayAnimation      CommandCode = 69
	RunOTAUpdate       CommandCode = 70
	WriteWifi          CommandCode = 71
	WriteName          CommandCode = 74
	WriteCustomization CommandCode = 75
	WriteColorScheme   CommandCode = 77
)

var commandNames = map[CommandCode]string{
	WritePetals:        "write-petals",
	WriteRGBColor:      "write-rgb-color",
	WriteState:         "write-state",
	PlayAnimation:      "play-animation",
	RunOTAUpdate:       "run-ota-update",
	WriteWifi:          "write-wifi",
	WriteName:          "write-name",
	WriteCustomization: "write-customization",
	WriteColorScheme:   "write-color-scheme",
}

func (c CommandCode) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command-%d", uint16(c))
}

// Command is one request for the lamp. A nil Payload is sent as an empty
// payload, not as an encoded nil.
type Command struct {
	Code    CommandCode
	Payload msgpack.Value
}

func (c Command) String() string {
	return c.Code.String()
}
