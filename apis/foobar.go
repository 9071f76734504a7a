package apis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	FoobarStateStopped = "stopped"
	FoobarStatePlaying = "playing"
	FoobarStatePaused  = "paused"
)

// FoobarPlayerInfo is the part of the beefweb player status the lamp cares
// about.
type FoobarPlayerInfo struct {
	State  string `json:"playbackState"`
	Volume struct {
		Min     float64 `json:"min"`
		Max     float64 `json:"max"`
		Current float64 `json:"value"`
	} `json:"volume"`
}

func (p FoobarPlayerInfo) Playing() bool {
	return p.State == FoobarStatePlaying
}

func GetFoobarState(ctx context.Context, credentials HTTPCredentials) (FoobarPlayerInfo, error) {
	var status struct {
		Player FoobarPlayerInfo `json:"player"`
	}
	req, err := newRequest(ctx, http.MethodGet, "/api/player", nil, credentials)
	if err != nil {
		return status.Player, fmt.Errorf("could not build foobar request: %w", err)
	}
	body, err := doRequest(req, "foobar")
	if err != nil {
		return status.Player, err
	}
	if err := json.Unmarshal(body, &status); err != nil {
		return status.Player, fmt.Errorf("could not parse foobar json: %w", err)
	}
	return status.Player, nil
}
