package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/thiefmaster/flowerlight/apis"
	"github.com/thiefmaster/flowerlight/comm"
)

type scene int

const (
	sceneIdle scene = iota
	scenePlaying
	sceneMessage
	sceneMention
)

func (s scene) String() string {
	switch s {
	case scenePlaying:
		return "playing"
	case sceneMessage:
		return "message"
	case sceneMention:
		return "mention"
	}
	return "idle"
}

type appState struct {
	mattermost    apis.MattermostState
	nothub        apis.NotHubState
	foobarPlaying bool
	tubePlaying   bool

	current scene
	applied bool
}

// scene picks what the lamp should show. Mentions beat messages beat
// playback.
func (s *appState) scene() scene {
	switch {
	case s.mattermost.HasMentions || s.nothub.Mentioned():
		return sceneMention
	case s.mattermost.HasMessages || s.nothub.ChanMsg:
		return sceneMessage
	case s.foobarPlaying || s.tubePlaying:
		return scenePlaying
	}
	return sceneIdle
}

// applyScene sends the scene's commands if it differs from what is showing.
func applyScene(state *appState, cfg *appConfig, cmdChan chan<- comm.Command) {
	sc := state.scene()
	if state.applied && sc == state.current {
		return
	}
	log.Info().Stringer("scene", sc).Msg("switching scene")
	for _, cmd := range sceneCommands(cfg, sc) {
		cmdChan <- cmd
	}
	state.current = sc
	state.applied = true
}

func trackFoobarState(ctx context.Context, credentials apis.HTTPCredentials) <-chan bool {
	playingChan := make(chan bool)
	go func() {
		defer close(playingChan)
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		errCount := 0
		var last *bool
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			info, err := apis.GetFoobarState(ctx, credentials)
			if err != nil {
				log.Debug().Err(err).Msg("could not get foobar state")
				errCount++
				if errCount > 2 {
					select {
					case <-ctx.Done():
						return
					case <-time.After(2 * time.Second):
					}
				}
				// an unreachable player is not playing
				info = apis.FoobarPlayerInfo{State: apis.FoobarStateStopped}
			} else {
				errCount = 0
			}

			playing := info.Playing()
			if last != nil && *last == playing {
				continue
			}
			select {
			case playingChan <- playing:
				last = &playing
			case <-ctx.Done():
				return
			}
		}
	}()
	return playingChan
}

func runTubeRemote(port int) <-chan apis.TubeRemoteState {
	tr := apis.NewTubeRemote()
	mux := http.NewServeMux()
	mux.Handle("/ws", tr)
	go func() {
		addr := fmt.Sprintf("127.0.0.1:%d", port)
		log.Info().Str("addr", addr).Msg("tuberemote listening")
		err := http.ListenAndServe(addr, mux)
		log.Error().Err(err).Msg("tuberemote server exited")
	}()
	return tr.Events()
}

func openPort(cfg *appConfig) (comm.Port, error) {
	if cfg.DryRun {
		log.Info().Msg("dry run, packets are logged instead of sent")
		return comm.NewLogPort(), nil
	}
	return comm.OpenSerial(cfg.Port)
}

func runController(ctx context.Context, cfg *appConfig, port comm.Port) error {
	states, cmdChan := comm.Run(port, comm.NewFramer())
	shutdown := func() {
		close(cmdChan)
		for range states {
		}
	}

	startup, err := startupCommands(cfg)
	if err != nil {
		shutdown()
		return err
	}
	for _, cmd := range startup {
		cmdChan <- cmd
	}
	showBloomIntro(cmdChan, 150*time.Millisecond)

	var (
		mmChan     <-chan apis.MattermostState
		nothubChan <-chan apis.NotHubState
		foobarChan <-chan bool
		tubeChan   <-chan apis.TubeRemoteState
	)
	if cfg.Mattermost != nil {
		mmChan = apis.SubscribeMattermostState(ctx, *cfg.Mattermost)
	}
	if cfg.NotHub != nil {
		if nothubChan, err = apis.SubscribeNotHubState(ctx, *cfg.NotHub); err != nil {
			shutdown()
			return fmt.Errorf("nothub: %w", err)
		}
	}
	if cfg.Foobar != nil {
		foobarChan = trackFoobarState(ctx, *cfg.Foobar)
	}
	if cfg.TubeRemotePort != 0 {
		tubeChan = runTubeRemote(cfg.TubeRemotePort)
	}

	state := &appState{}
	applyScene(state, cfg, cmdChan)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			shutdown()
			return nil
		case st, ok := <-states:
			if !ok {
				close(cmdChan)
				return errors.New("lamp connection closed")
			}
			log.Info().Int("petals", st.Level()).Str("color", st.Color.Hex()).Msg("lamp state")
			continue
		case s, ok := <-mmChan:
			if !ok {
				mmChan = nil
				continue
			}
			state.mattermost = s
		case s, ok := <-nothubChan:
			if !ok {
				nothubChan = nil
				continue
			}
			if s.Commit && !state.nothub.Commit {
				for _, cmd := range commitCommands(cfg) {
					cmdChan <- cmd
				}
			}
			state.nothub = s
		case playing, ok := <-foobarChan:
			if !ok {
				foobarChan = nil
				continue
			}
			state.foobarPlaying = playing
		case s := <-tubeChan:
			state.tubePlaying = s.Playing()
		}
		applyScene(state, cfg, cmdChan)
	}
}

func main() {
	var configPath string
	var dryRun, verbose bool

	flagSet := pflag.NewFlagSet("flowerlight", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to the yaml config file")
	flagSet.BoolVarP(&dryRun, "dry-run", "n", false, "log packets instead of sending them")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flagSet.Usage = func() { printUsage(flagSet) }
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	initLogger(verbose)

	cfg := defaultConfig()
	if configPath != "" {
		if err := cfg.load(configPath); err != nil {
			log.Fatal().Err(err).Msg("invalid config")
		}
	} else if err := cfg.validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid default config")
	}
	if dryRun {
		cfg.DryRun = true
	}

	args := flagSet.Args()
	if len(args) > 0 {
		if err := runOneShot(&cfg, args, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	port, err := openPort(&cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("could not open port")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := runController(ctx, &cfg, port); err != nil {
		log.Fatal().Err(err).Msg("controller stopped")
	}
}
