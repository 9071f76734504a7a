package comm

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tarm/serial"
)

// Port is the link to the lamp. In practice a BLE-UART bridge that writes
// every packet it receives to the command characteristic and relays state
// notifications back as raw 4-byte records.
type Port interface {
	io.ReadWriteCloser
}

// PortConfig describes the serial side of the bridge.
type PortConfig struct {
	Device        string `yaml:"device"`
	Baud          int    `yaml:"baud"`
	ReadTimeoutMS int    `yaml:"read_timeout_ms"`
}

func DefaultPortConfig(device string) PortConfig {
	return PortConfig{
		Device:        device,
		Baud:          115200,
		ReadTimeoutMS: 100,
	}
}

// OpenSerial opens the bridge on a serial device.
func OpenSerial(cfg PortConfig) (Port, error) {
	if cfg.Device == "" {
		return nil, errors.New("comm: no serial device configured")
	}
	log.Info().Str("device", cfg.Device).Int("baud", cfg.Baud).Msg("opening serial port")
	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: time.Duration(cfg.ReadTimeoutMS) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("comm: open %s: %w", cfg.Device, err)
	}
	return port, nil
}

// Send frames one command and writes it as a single packet.
func Send(w io.Writer, framer *Framer, cmd Command) error {
	pkt, err := framer.Frame(cmd)
	if err != nil {
		return err
	}
	if _, err := w.Write(pkt); err != nil {
		return fmt.Errorf("comm: write %s: %w", cmd.Code, err)
	}
	log.Debug().Stringer("cmd", cmd.Code).Int("payload", len(pkt)-HeaderLen).
		Str("packet", hex.EncodeToString(pkt)).Msg("sent command")
	return nil
}

// readStates assembles 4-byte state records. tarm/serial reports a read
// timeout as io.EOF, so EOF only means "nothing yet"; a partial record is
// kept across timeouts. The reader stops once the port is being closed or a
// read fails for any other reason.
func readStates(port Port, closing <-chan struct{}, stateChan chan<- State) {
	defer close(stateChan)
	buf := make([]byte, StateSize)
	n := 0
	for {
		m, err := port.Read(buf[n:])
		n += m
		if n == StateSize {
			n = 0
			state, derr := DecodeState(buf)
			if derr != nil {
				log.Warn().Err(derr).Msg("dropping state record")
			} else {
				stateChan <- state
			}
		}
		if err == nil {
			continue
		}
		select {
		case <-closing:
			log.Debug().Msg("port closed, state reader exiting")
			return
		default:
		}
		switch {
		case errors.Is(err, io.EOF):
			continue
		case isClosed(err):
			log.Debug().Err(err).Msg("port closed, state reader exiting")
		default:
			log.Error().Err(err).Msg("state read failed")
		}
		return
	}
}

func writeCommands(port Port, framer *Framer, cmdChan <-chan Command, closing chan<- struct{}) {
	defer func() {
		close(closing)
		port.Close()
	}()
	for cmd := range cmdChan {
		if err := Send(port, framer, cmd); err != nil {
			log.Error().Err(err).Stringer("cmd", cmd.Code).Msg("dropping command")
		}
	}
}

// Run starts the port workers. Commands are written in the order they are
// received, one packet each; a command that cannot be framed is logged and
// dropped without using up a message id. Closing the command channel closes
// the port, which in turn closes the state channel. Read timeouts leave the
// state channel open; a failed read closes it.
func Run(port Port, framer *Framer) (<-chan State, chan<- Command) {
	stateChan := make(chan State, 8)
	cmdChan := make(chan Command, 8)
	closing := make(chan struct{})
	go readStates(port, closing, stateChan)
	go writeCommands(port, framer, cmdChan, closing)
	return stateChan, cmdChan
}

func isClosed(err error) bool {
	return errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, os.ErrClosed)
}
