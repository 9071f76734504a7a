package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/thiefmaster/flowerlight/color"
	"github.com/thiefmaster/flowerlight/comm"
	"github.com/thiefmaster/flowerlight/msgpack"
)

var errUsage = errors.New("invalid arguments")

func printUsage(flagSet *pflag.FlagSet) {
	fmt.Fprint(os.Stderr, `Usage:
  flowerlight [flags]                  run the controller
  flowerlight [flags] COMMAND [ARGS]   send one command and exit

Commands:
  petals N                  open the petals to N percent
  color HEX                 set the LED color
  state N HEX               set petals and color together
  off                       close the petals and turn the LEDs off
  animation N               play animation N (0-255)
  ota                       start a firmware update
  name TEXT                 rename the lamp
  tune [spd=N] [brg=N] [mol=N]
                            set speed, brightness and max opening
  wifi SSID PWD [DEVICE TOKEN]
                            configure wifi and cloud pairing
  scheme HEX...             set the color scheme (1-10 colors)
  show-scheme HEXBYTES      decode a color scheme characteristic value
  raw CODE [key=value...]   send an arbitrary command

Flags:
`)
	fmt.Fprint(os.Stderr, flagSet.FlagUsages())
}

func runOneShot(cfg *appConfig, args []string, out io.Writer) error {
	if args[0] == "show-scheme" {
		if len(args) != 2 {
			return fmt.Errorf("%w: show-scheme HEXBYTES", errUsage)
		}
		raw, err := hex.DecodeString(strings.TrimPrefix(strings.ReplaceAll(args[1], " ", ""), "0x"))
		if err != nil {
			return fmt.Errorf("show-scheme: %w", err)
		}
		fmt.Fprintln(out, renderSwatches(color.DecodeScheme(raw)))
		return nil
	}

	cmds, err := parseCommand(cfg, args)
	if err != nil {
		return err
	}
	if args[0] == "scheme" {
		fmt.Fprintln(out, renderSchemePreview(args[1:]))
	}

	port, err := openPort(cfg)
	if err != nil {
		return err
	}
	defer port.Close()
	framer := comm.NewFramer()
	for _, cmd := range cmds {
		if err := comm.Send(port, framer, cmd); err != nil {
			return err
		}
	}
	return nil
}

// parseCommand turns one-shot CLI arguments into the commands to send.
func parseCommand(cfg *appConfig, args []string) ([]comm.Command, error) {
	name, rest := args[0], args[1:]
	one := func(cmd comm.Command) ([]comm.Command, error) { return []comm.Command{cmd}, nil }

	switch name {
	case "petals":
		if len(rest) != 1 {
			return nil, fmt.Errorf("%w: petals N", errUsage)
		}
		level, err := parsePetals(rest[0])
		if err != nil {
			return nil, err
		}
		return one(comm.NewPetalsCommand(level, cfg.transition()))
	case "color":
		if len(rest) != 1 {
			return nil, fmt.Errorf("%w: color HEX", errUsage)
		}
		rgb, err := color.ParseHex(rest[0])
		if err != nil {
			return nil, err
		}
		return one(comm.NewRGBColorCommand(rgb.Scale(cfg.Brightness), cfg.transition()))
	case "state":
		if len(rest) != 2 {
			return nil, fmt.Errorf("%w: state N HEX", errUsage)
		}
		level, err := parsePetals(rest[0])
		if err != nil {
			return nil, err
		}
		rgb, err := color.ParseHex(rest[1])
		if err != nil {
			return nil, err
		}
		return one(comm.NewStateCommand(level, rgb.Scale(cfg.Brightness), cfg.transition()))
	case "off":
		return one(comm.NewStateCommand(0, color.RGB{}, cfg.transition()))
	case "animation":
		if len(rest) != 1 {
			return nil, fmt.Errorf("%w: animation N", errUsage)
		}
		id, err := strconv.Atoi(rest[0])
		if err != nil {
			return nil, fmt.Errorf("animation: %w", err)
		}
		cmd, err := comm.NewPlayAnimationCommand(id)
		if err != nil {
			return nil, err
		}
		return one(cmd)
	case "ota":
		return one(comm.NewOTACommand())
	case "name":
		text := strings.TrimSpace(strings.Join(rest, " "))
		if text == "" {
			return nil, fmt.Errorf("%w: name TEXT", errUsage)
		}
		return one(comm.NewNameCommand(text))
	case "tune":
		c, err := parseCustomization(rest)
		if err != nil {
			return nil, err
		}
		return one(comm.NewCustomizationCommand(c))
	case "wifi":
		if len(rest) != 2 && len(rest) != 4 {
			return nil, fmt.Errorf("%w: wifi SSID PWD [DEVICE TOKEN]", errUsage)
		}
		creds := comm.WifiCredentials{SSID: rest[0], Password: rest[1]}
		if len(rest) == 4 {
			creds.DeviceID, creds.Token = rest[2], rest[3]
		}
		return one(comm.NewWifiCommand(creds))
	case "scheme":
		colors, err := color.ParseList(strings.Join(rest, " "))
		if err != nil {
			return nil, err
		}
		cmd, err := comm.NewColorSchemeCommand(colors)
		if err != nil {
			return nil, err
		}
		return one(cmd)
	case "raw":
		if len(rest) < 1 {
			return nil, fmt.Errorf("%w: raw CODE [key=value...]", errUsage)
		}
		cmd, err := parseRaw(rest[0], rest[1:])
		if err != nil {
			return nil, err
		}
		return one(cmd)
	}
	return nil, fmt.Errorf("%w: unknown command %q", errUsage, name)
}

func parsePetals(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("petals: %w", err)
	}
	if n < 0 || n > 100 {
		return 0, fmt.Errorf("petals must be 0-100, got %d", n)
	}
	return n, nil
}

func parseCustomization(args []string) (comm.Customization, error) {
	var c comm.Customization
	if len(args) == 0 {
		return c, fmt.Errorf("%w: tune [spd=N] [brg=N] [mol=N]", errUsage)
	}
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return c, fmt.Errorf("%w: expected key=value, got %q", errUsage, arg)
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c, fmt.Errorf("%s: %w", key, err)
		}
		switch key {
		case "spd":
			c.Speed = &n
		case "brg":
			c.Brightness = &n
		case "mol":
			c.MaxOpen = &n
		default:
			return c, fmt.Errorf("%w: unknown setting %q", errUsage, key)
		}
	}
	return c, nil
}

// parseRaw builds a command from a numeric code and key=value pairs. With
// no pairs the payload is empty.
func parseRaw(code string, pairs []string) (comm.Command, error) {
	n, err := strconv.ParseUint(code, 0, 16)
	if err != nil {
		return comm.Command{}, fmt.Errorf("raw code: %w", err)
	}
	cmd := comm.Command{Code: comm.CommandCode(n)}
	if len(pairs) == 0 {
		return cmd, nil
	}
	payload := make([]msgpack.Pair, 0, len(pairs))
	for _, p := range pairs {
		key, raw, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return comm.Command{}, fmt.Errorf("%w: expected key=value, got %q", errUsage, p)
		}
		v, err := msgpack.FromGo(parseLiteral(raw))
		if err != nil {
			return comm.Command{}, fmt.Errorf("%s: %w", key, err)
		}
		payload = append(payload, msgpack.Pair{Key: key, Value: v})
	}
	v, err := msgpack.FromGo(payload)
	if err != nil {
		return comm.Command{}, err
	}
	cmd.Payload = v
	return cmd, nil
}

// parseLiteral reads nil, booleans, integers and floats; anything else is a
// string. Quotes force a string.
func parseLiteral(raw string) any {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		return raw[1 : len(raw)-1]
	}
	switch raw {
	case "nil", "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if strings.ContainsAny(raw, ".eE") {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	return raw
}
