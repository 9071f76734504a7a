package comm

import (
	"encoding/hex"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
)

// LogPort is a Port that logs every packet instead of sending it. Reads
// block until the port is closed.
type LogPort struct {
	once sync.Once
	done chan struct{}
}

func NewLogPort() *LogPort {
	return &LogPort{done: make(chan struct{})}
}

func (p *LogPort) Write(b []byte) (int, error) {
	select {
	case <-p.done:
		return 0, io.ErrClosedPipe
	default:
	}
	log.Info().Str("packet", hex.EncodeToString(b)).Msg("dry run")
	return len(b), nil
}

func (p *LogPort) Read([]byte) (int, error) {
	<-p.done
	return 0, io.EOF
}

func (p *LogPort) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}
