package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/thiefmaster/flowerlight/apis"
	"github.com/thiefmaster/flowerlight/color"
	"github.com/thiefmaster/flowerlight/comm"
)

func TestScenePriority(t *testing.T) {
	cases := []struct {
		state appState
		want  scene
	}{
		{appState{}, sceneIdle},
		{appState{tubePlaying: true}, scenePlaying},
		{appState{foobarPlaying: true, nothub: apis.NotHubState{ChanMsg: true}}, sceneMessage},
		{appState{mattermost: apis.MattermostState{HasMessages: true}, nothub: apis.NotHubState{PrivMsg: true}}, sceneMention},
		{appState{mattermost: apis.MattermostState{HasMessages: true, HasMentions: true}}, sceneMention},
		{appState{nothub: apis.NotHubState{Commit: true}}, sceneIdle},
	}
	for i, tc := range cases {
		if got := tc.state.scene(); got != tc.want {
			t.Errorf("case %d: got %s want %s", i, got, tc.want)
		}
	}
}

func TestApplySceneOnlyOnChange(t *testing.T) {
	cfg := testConfig(t)
	cmdChan := make(chan comm.Command, 16)
	state := &appState{}

	applyScene(state, &cfg, cmdChan)
	applyScene(state, &cfg, cmdChan)
	if len(cmdChan) != 1 {
		t.Fatalf("expected one command for the initial scene, got %d", len(cmdChan))
	}
	<-cmdChan

	state.mattermost.HasMentions = true
	applyScene(state, &cfg, cmdChan)
	if len(cmdChan) != 1 {
		t.Fatalf("expected one command after mention, got %d", len(cmdChan))
	}
	got := <-cmdChan
	want := comm.NewStateCommand(100, color.RGB{R: 255}, time.Second)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
	if state.current != sceneMention {
		t.Fatalf("current scene %s", state.current)
	}
}

func TestSceneCommandsWithAnimation(t *testing.T) {
	cfg := testConfig(t)
	anim := 3
	cfg.Brightness = 50
	cfg.Scenes.Playing.Animation = &anim

	cmds := sceneCommands(&cfg, scenePlaying)
	if len(cmds) != 2 {
		t.Fatalf("expected state and animation, got %v", cmds)
	}
	if want := comm.NewStateCommand(20, color.RGB{G: 127}, time.Second); !reflect.DeepEqual(cmds[0], want) {
		t.Fatalf("state %#v want %#v", cmds[0], want)
	}
	if cmds[1].Code != comm.PlayAnimation {
		t.Fatalf("second command %v", cmds[1].Code)
	}
}

func TestCommitCommands(t *testing.T) {
	cfg := testConfig(t)
	if cmds := commitCommands(&cfg); cmds != nil {
		t.Fatalf("expected nothing without a commit animation, got %v", cmds)
	}
	anim := 9
	cfg.CommitAnimation = &anim
	cmds := commitCommands(&cfg)
	if len(cmds) != 1 || cmds[0].Code != comm.PlayAnimation {
		t.Fatalf("got %v", cmds)
	}
}

// failingPort fails every read, like a bridge that was unplugged.
type failingPort struct {
	once   sync.Once
	closed chan struct{}
}

func (p *failingPort) Read([]byte) (int, error)    { return 0, errors.New("input/output error") }
func (p *failingPort) Write(b []byte) (int, error) { return len(b), nil }
func (p *failingPort) Close() error {
	p.once.Do(func() { close(p.closed) })
	return nil
}

func TestRunControllerClosesPortWhenLampGoesAway(t *testing.T) {
	cfg := testConfig(t)
	port := &failingPort{closed: make(chan struct{})}

	err := runController(context.Background(), &cfg, port)
	if err == nil {
		t.Fatal("expected an error when the lamp connection closes")
	}
	select {
	case <-port.closed:
	case <-time.After(5 * time.Second):
		t.Fatal("command writer left running, port never closed")
	}
}

func TestTrackFoobarStateStopsDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	playing := trackFoobarState(ctx, apis.HTTPCredentials{BaseURL: srv.URL})

	select {
	case p := <-playing:
		if p {
			t.Fatal("unreachable player reported as playing")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no initial foobar state")
	}

	// three failed polls put the tracker into its two second backoff
	time.Sleep(1800 * time.Millisecond)
	cancel()
	select {
	case _, ok := <-playing:
		if ok {
			t.Fatal("unexpected foobar state after cancel")
		}
	case <-time.After(1 * time.Second):
		t.Fatal("tracker ignored cancellation while backing off")
	}
}
