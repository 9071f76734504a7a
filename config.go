package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"

	"github.com/thiefmaster/flowerlight/apis"
	"github.com/thiefmaster/flowerlight/color"
	"github.com/thiefmaster/flowerlight/comm"
)

type sceneConfig struct {
	Petals    int    `yaml:"petals"`
	Color     string `yaml:"color"`
	Animation *int   `yaml:"animation"`

	rgb color.RGB
}

type scenesConfig struct {
	Idle    sceneConfig `yaml:"idle"`
	Message sceneConfig `yaml:"message"`
	Mention sceneConfig `yaml:"mention"`
	Playing sceneConfig `yaml:"playing"`
}

type appConfig struct {
	Port            comm.PortConfig    `yaml:"port"`
	DryRun          bool               `yaml:"dry_run"`
	TransitionMS    int                `yaml:"transition"`
	Brightness      int                `yaml:"brightness"`
	Scheme          []string           `yaml:"scheme"`
	Customization   comm.Customization `yaml:"customization"`
	Scenes          scenesConfig       `yaml:"scenes"`
	CommitAnimation *int               `yaml:"commit_animation"`

	Mattermost     *apis.MattermostSettings `yaml:"mattermost"`
	NotHub         *apis.HTTPCredentials    `yaml:"nothub"`
	Foobar         *apis.HTTPCredentials    `yaml:"foobar"`
	TubeRemotePort int                      `yaml:"tuberemote_port"`
}

func defaultConfig() appConfig {
	return appConfig{
		Port:         comm.DefaultPortConfig(""),
		TransitionMS: 1000,
		Brightness:   100,
		Scenes: scenesConfig{
			Idle:    sceneConfig{Petals: 0, Color: "#000000"},
			Message: sceneConfig{Petals: 40, Color: "#0000ff"},
			Mention: sceneConfig{Petals: 100, Color: "#ff0000"},
			Playing: sceneConfig{Petals: 20, Color: "#00ff00"},
		},
	}
}

func (c *appConfig) load(path string) error {
	log.Info().Str("path", path).Msg("loading config file")
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not open config file: %w", err)
	}
	if err = yaml.UnmarshalStrict(yamlFile, c); err != nil {
		return fmt.Errorf("could not parse config file: %w", err)
	}
	return c.validate()
}

func (c *appConfig) validate() error {
	if c.TransitionMS < 0 || time.Duration(c.TransitionMS)*time.Millisecond > comm.MaxTransition {
		return fmt.Errorf("transition must be 0-%d ms, got %d", comm.MaxTransition.Milliseconds(), c.TransitionMS)
	}
	if c.Brightness < 0 || c.Brightness > 100 {
		return fmt.Errorf("brightness must be 0-100, got %d", c.Brightness)
	}
	if len(c.Scheme) > 0 {
		scheme, err := color.ParseList(strings.Join(c.Scheme, " "))
		if err != nil {
			return fmt.Errorf("scheme: %w", err)
		}
		c.Scheme = scheme
	}
	if c.CommitAnimation != nil && (*c.CommitAnimation < 0 || *c.CommitAnimation > 255) {
		return fmt.Errorf("commit_animation: %w: %d", comm.ErrInvalidAnimation, *c.CommitAnimation)
	}
	scenes := map[string]*sceneConfig{
		"idle":    &c.Scenes.Idle,
		"message": &c.Scenes.Message,
		"mention": &c.Scenes.Mention,
		"playing": &c.Scenes.Playing,
	}
	var errs []error
	for name, s := range scenes {
		if err := s.validate(); err != nil {
			errs = append(errs, fmt.Errorf("scene %s: %w", name, err))
		}
	}
	if c.Mattermost != nil && (c.Mattermost.ServerURL == "" || c.Mattermost.TeamName == "" || c.Mattermost.ChannelName == "") {
		errs = append(errs, errors.New("mattermost: url, team and channel are required"))
	}
	return errors.Join(errs...)
}

func (s *sceneConfig) validate() error {
	if s.Petals < 0 || s.Petals > 100 {
		return fmt.Errorf("petals must be 0-100, got %d", s.Petals)
	}
	rgb, err := color.ParseHex(s.Color)
	if err != nil {
		return err
	}
	s.rgb = rgb
	if s.Animation != nil && (*s.Animation < 0 || *s.Animation > 255) {
		return fmt.Errorf("%w: %d", comm.ErrInvalidAnimation, *s.Animation)
	}
	return nil
}

func (c *appConfig) transition() time.Duration {
	return time.Duration(c.TransitionMS) * time.Millisecond
}

