package apis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mm "github.com/mattermost/mattermost/server/public/model"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type MattermostSettings struct {
	ServerURL   string `yaml:"url"`
	AccessToken string `yaml:"token"`
	TeamName    string `yaml:"team"`
	ChannelName string `yaml:"channel"`
}

type MattermostState struct {
	HasMessages bool
	HasMentions bool
}

// unreadTracker keeps the set of channels with unread messages and
// mentions. Only the watched channel and direct/group channels count.
type unreadTracker struct {
	userID    string
	channelID string
	messages  map[string]bool
	mentions  map[string]bool
}

func newUnreadTracker(userID, channelID string) *unreadTracker {
	return &unreadTracker{
		userID:    userID,
		channelID: channelID,
		messages:  make(map[string]bool),
		mentions:  make(map[string]bool),
	}
}

func (t *unreadTracker) state() MattermostState {
	return MattermostState{
		HasMessages: len(t.messages) > 0,
		HasMentions: len(t.mentions) > 0,
	}
}

func (t *unreadTracker) viewed(channelIDs ...string) {
	for _, id := range channelIDs {
		delete(t.messages, id)
		delete(t.mentions, id)
	}
}

func (t *unreadTracker) posted(post *mm.Post, channelType mm.ChannelType, mentions []string) {
	isDirect := channelType == mm.ChannelTypeDirect || channelType == mm.ChannelTypeGroup
	if post.UserId == t.userID || (post.ChannelId != t.channelID && !isDirect) {
		return
	}
	t.messages[post.ChannelId] = true
	for _, id := range mentions {
		if id == t.userID {
			t.mentions[post.ChannelId] = true
			break
		}
	}
}

// handle applies one websocket event.
func (t *unreadTracker) handle(ev *mm.WebSocketEvent) error {
	data := ev.GetData()
	switch ev.EventType() {
	case mm.WebsocketEventChannelViewed:
		// older servers only
		if id, ok := data["channel_id"].(string); ok {
			t.viewed(id)
		}
	case mm.WebsocketEventMultipleChannelsViewed:
		times, ok := data["channel_times"].(map[string]any)
		if !ok {
			return errors.New("channel_times missing")
		}
		for id := range times {
			t.viewed(id)
		}
	case mm.WebsocketEventPosted:
		raw, ok := data["post"].(string)
		if !ok {
			return errors.New("post missing")
		}
		var post mm.Post
		if err := json.Unmarshal([]byte(raw), &post); err != nil {
			return fmt.Errorf("could not unmarshal post: %w", err)
		}
		channelType, _ := data["channel_type"].(string)
		var mentions []string
		if s, ok := data["mentions"].(string); ok {
			mentions = mm.ArrayFromJSON(strings.NewReader(s))
		}
		t.posted(&post, mm.ChannelType(channelType), mentions)
	}
	return nil
}

// SubscribeMattermostState reports unread state changes, reconnecting after
// a second whenever the connection drops.
func SubscribeMattermostState(ctx context.Context, settings MattermostSettings) <-chan MattermostState {
	eventChan := make(chan MattermostState)
	go func() {
		defer close(eventChan)
		for ctx.Err() == nil {
			subscribeMattermostState(ctx, eventChan, settings)
			select {
			case <-ctx.Done():
			case <-time.After(1 * time.Second):
			}
		}
	}()
	return eventChan
}

func subscribeMattermostState(ctx context.Context, eventChan chan<- MattermostState, settings MattermostSettings) {
	logger := log.With().Str("source", "mattermost").Logger()

	client := mm.NewAPIv4Client(settings.ServerURL)
	client.SetToken(settings.AccessToken)

	me, _, err := client.GetMe(ctx, "")
	if err != nil {
		logger.Warn().Err(err).Msg("could not get user info")
		return
	}
	channel, _, err := client.GetChannelByNameForTeamName(ctx, settings.ChannelName, settings.TeamName, "")
	if err != nil {
		logger.Warn().Err(err).Msg("could not get channel")
		return
	}

	tracker := newUnreadTracker(me.Id, channel.Id)
	if err := loadCurrentUnreads(ctx, client, settings.TeamName, tracker); err != nil {
		logger.Warn().Err(err).Msg("could not load unreads")
	}
	state := tracker.state()
	select {
	case eventChan <- state:
	case <-ctx.Done():
		return
	}

	ws, err := mm.NewWebSocketClient(strings.Replace(settings.ServerURL, "http", "ws", 1), client.AuthToken)
	if err != nil {
		logger.Warn().Err(err).Msg("could not connect to websocket")
		return
	}
	defer ws.Close()
	ws.Listen()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ws.PingTimeoutChannel:
			logger.Warn().Msg("websocket ping timeout")
			return
		case ev := <-ws.EventChannel:
			if ev == nil {
				logger.Warn().Msg("websocket event channel closed")
				return
			}
			if err := tracker.handle(ev); err != nil {
				logger.Warn().Err(err).Str("event", string(ev.EventType())).Msg("bad websocket event")
				continue
			}
			if newState := tracker.state(); newState != state {
				logStateChange(logger, newState)
				select {
				case eventChan <- newState:
					state = newState
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

func logStateChange(logger zerolog.Logger, s MattermostState) {
	logger.Debug().Bool("messages", s.HasMessages).Bool("mentions", s.HasMentions).Msg("unread state changed")
}

func loadCurrentUnreads(ctx context.Context, client *mm.Client4, teamName string, tracker *unreadTracker) error {
	team, _, err := client.GetTeamByName(ctx, teamName, "")
	if err != nil {
		return fmt.Errorf("could not get team: %w", err)
	}

	channelsByID := make(map[string]*mm.Channel)
	channels, _, err := client.GetChannelsForTeamForUser(ctx, team.Id, "me", false, "")
	if err != nil {
		return fmt.Errorf("could not get channels: %w", err)
	}
	for _, channel := range channels {
		channelsByID[channel.Id] = channel
	}

	// membership carries the unread counts
	members, _, err := client.GetChannelMembersForUser(ctx, "me", team.Id, "")
	if err != nil {
		return fmt.Errorf("could not get channel members: %w", err)
	}
	for _, member := range members {
		channel := channelsByID[member.ChannelId]
		if channel == nil {
			// other team
			continue
		}
		if channel.Id != tracker.channelID && !channel.IsGroupOrDirect() {
			continue
		}
		if channel.TotalMsgCount-member.MsgCount > 0 {
			tracker.messages[member.ChannelId] = true
		}
		if member.MentionCount > 0 {
			tracker.mentions[member.ChannelId] = true
		}
	}
	return nil
}
