package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thiefmaster/flowerlight/comm"
)

// showBloomIntro opens the petals step by step and closes them again.
func showBloomIntro(cmdChan chan<- comm.Command, delay time.Duration) {
	for level := 25; level <= 100; level += 25 {
		cmdChan <- comm.NewPetalsCommand(level, delay)
		time.Sleep(delay)
	}
	cmdChan <- comm.NewPetalsCommand(0, 2*delay)
	time.Sleep(2 * delay)
}

// startupCommands takes over the lamp and pushes the configured tuning and
// color scheme.
func startupCommands(cfg *appConfig) ([]comm.Command, error) {
	cmds := []comm.Command{comm.NewTakeoverCommand()}
	c := cfg.Customization
	if c.Speed != nil || c.Brightness != nil || c.MaxOpen != nil {
		cmds = append(cmds, comm.NewCustomizationCommand(c))
	}
	if len(cfg.Scheme) > 0 {
		cmd, err := comm.NewColorSchemeCommand(cfg.Scheme)
		if err != nil {
			return nil, fmt.Errorf("scheme: %w", err)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

func (c *appConfig) sceneFor(sc scene) sceneConfig {
	switch sc {
	case scenePlaying:
		return c.Scenes.Playing
	case sceneMessage:
		return c.Scenes.Message
	case sceneMention:
		return c.Scenes.Mention
	}
	return c.Scenes.Idle
}

func sceneCommands(cfg *appConfig, sc scene) []comm.Command {
	s := cfg.sceneFor(sc)
	cmds := []comm.Command{
		comm.NewStateCommand(s.Petals, s.rgb.Scale(cfg.Brightness), cfg.transition()),
	}
	if s.Animation != nil {
		cmd, err := comm.NewPlayAnimationCommand(*s.Animation)
		if err != nil {
			log.Error().Err(err).Stringer("scene", sc).Msg("skipping animation")
			return cmds
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

// commitCommands plays the commit animation, if one is configured.
func commitCommands(cfg *appConfig) []comm.Command {
	if cfg.CommitAnimation == nil {
		return nil
	}
	cmd, err := comm.NewPlayAnimationCommand(*cfg.CommitAnimation)
	if err != nil {
		log.Error().Err(err).Msg("skipping commit animation")
		return nil
	}
	log.Info().Msg("commit, playing animation")
	return []comm.Command{cmd}
}
