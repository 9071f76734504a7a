package apis

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	TubeRemoteStateOffline = "offline"
	TubeRemoteStateStopped = "stopped"
	TubeRemoteStatePlaying = "playing"
	TubeRemoteStatePaused  = "paused"
)

const tubeRemotePollInterval = 250 * time.Millisecond

type TubeRemoteState struct {
	State        string
	Volume       int
	ActionFailed bool
}

func (s TubeRemoteState) Playing() bool {
	return s.State == TubeRemoteStatePlaying
}

func (s TubeRemoteState) Offline() bool {
	return s.State == TubeRemoteStateOffline
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header["Origin"]
		if len(origin) == 0 {
			return true
		}
		u, err := url.Parse(origin[0])
		if err != nil {
			return false
		}
		return u.Scheme == "moz-extension"
	},
}

// TubeRemote accepts the browser extension's websocket and polls it for
// playback state. Only the most recent connection is used.
type TubeRemote struct {
	mu               sync.Mutex
	activeConn       *websocket.Conn
	lastState        TubeRemoteState
	initialStateSent bool
	events           chan TubeRemoteState
}

func NewTubeRemote() *TubeRemote {
	return &TubeRemote{events: make(chan TubeRemoteState)}
}

// Events delivers playback state whenever it changes. A disconnect is
// reported as offline.
func (t *TubeRemote) Events() <-chan TubeRemoteState {
	return t.events
}

func (t *TubeRemote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("tuberemote: websocket upgrade failed")
		return
	}
	t.mu.Lock()
	if t.activeConn != nil {
		log.Debug().Msg("tuberemote: closing previous connection")
		t.activeConn.Close()
	}
	t.activeConn = c
	t.mu.Unlock()

	done := make(chan struct{})
	go t.poll(c, done)
	defer func() {
		close(done)
		c.Close()
		t.mu.Lock()
		current := c == t.activeConn
		if current {
			t.activeConn = nil
		}
		t.mu.Unlock()
		if current {
			t.publish(TubeRemoteState{State: TubeRemoteStateOffline})
		}
	}()

	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Msg("tuberemote: websocket read ended")
			return
		}
		var newState TubeRemoteState
		if err := json.Unmarshal(message, &newState); err != nil {
			log.Warn().Err(err).Msg("tuberemote: could not unmarshal message")
			continue
		}
		t.publish(newState)
	}
}

func (t *TubeRemote) publish(s TubeRemoteState) {
	t.mu.Lock()
	changed := s != t.lastState || !t.initialStateSent
	t.lastState = s
	t.initialStateSent = true
	t.mu.Unlock()
	if changed {
		t.events <- s
	}
}

// poll is the connection's only writer.
func (t *TubeRemote) poll(c *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(tubeRemotePollInterval)
	defer ticker.Stop()
	for {
		if err := c.WriteMessage(websocket.TextMessage, []byte(`{"action": "getStatus"}`)); err != nil {
			log.Debug().Err(err).Msg("tuberemote: websocket write failed")
			return
		}
		select {
		case <-done:
			return
		case <-ticker.C:
		}
	}
}
