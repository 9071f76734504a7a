package apis

import (
	"context"
	"encoding/json"
	stdlog "log"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/thiefmaster/eventsource"
)

// NotHubState is one snapshot from the NotHub /updates stream.
type NotHubState struct {
	ChanHL  bool
	ChanMsg bool
	Commit  bool
	PrivMsg bool
}

// Mentioned reports a highlight or private message.
func (s NotHubState) Mentioned() bool {
	return s.ChanHL || s.PrivMsg
}

// SubscribeNotHubState streams state changes until ctx is done. A stream
// error counts as "nothing pending" so a dead NotHub does not leave the lamp
// stuck in a notification scene.
func SubscribeNotHubState(ctx context.Context, credentials HTTPCredentials) (<-chan NotHubState, error) {
	if _, err := newRequest(ctx, http.MethodGet, "/updates", nil, credentials); err != nil {
		return nil, err
	}
	eventChan := make(chan NotHubState)
	go func() {
		defer close(eventChan)
		for ctx.Err() == nil {
			subscribeNotHubState(ctx, eventChan, credentials)
			select {
			case <-ctx.Done():
			case <-time.After(1 * time.Second):
			}
		}
	}()
	return eventChan, nil
}

func subscribeNotHubState(ctx context.Context, eventChan chan<- NotHubState, credentials HTTPCredentials) {
	logger := log.With().Str("source", "nothub").Logger()
	req, err := newRequest(ctx, http.MethodGet, "/updates", nil, credentials)
	if err != nil {
		logger.Error().Err(err).Msg("could not build request")
		return
	}

	stream, err := eventsource.SubscribeWithRequest("", req)
	if err != nil {
		logger.Warn().Err(err).Msg("subscribe failed")
		return
	}
	defer stream.Close()

	stream.InitialRetryDelay = 500 * time.Millisecond
	stream.MaxRetryDelay = 5 * time.Second
	stream.Logger = stdlog.New(logger, "", 0)

	var lastState NotHubState
	initialStateSent := false
	publish := func(s NotHubState) bool {
		select {
		case eventChan <- s:
			lastState = s
			initialStateSent = true
			return true
		case <-ctx.Done():
			return false
		}
	}
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-stream.Events:
			var newState NotHubState
			if err := json.Unmarshal([]byte(event.Data()), &newState); err != nil {
				logger.Warn().Err(err).Msg("could not unmarshal event")
			} else if newState != lastState || !initialStateSent {
				if !publish(newState) {
					return
				}
			}
		case err := <-stream.Errors:
			logger.Warn().Err(err).Msg("event stream error")
			if (NotHubState{}) != lastState {
				if !publish(NotHubState{}) {
					return
				}
			}
		}
	}
}
