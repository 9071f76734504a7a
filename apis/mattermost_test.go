package apis

import (
	"testing"

	mm "github.com/mattermost/mattermost/server/public/model"
)

func TestUnreadTrackerPosted(t *testing.T) {
	tr := newUnreadTracker("me", "watched")

	tr.posted(&mm.Post{UserId: "me", ChannelId: "watched"}, mm.ChannelTypeOpen, nil)
	if got := tr.state(); got != (MattermostState{}) {
		t.Fatalf("own post counted: %+v", got)
	}

	tr.posted(&mm.Post{UserId: "bob", ChannelId: "other"}, mm.ChannelTypeOpen, []string{"me"})
	if got := tr.state(); got != (MattermostState{}) {
		t.Fatalf("unwatched channel counted: %+v", got)
	}

	tr.posted(&mm.Post{UserId: "bob", ChannelId: "watched"}, mm.ChannelTypeOpen, nil)
	if got := tr.state(); got != (MattermostState{HasMessages: true}) {
		t.Fatalf("after message: %+v", got)
	}

	tr.posted(&mm.Post{UserId: "bob", ChannelId: "dm"}, mm.ChannelTypeDirect, []string{"alice", "me"})
	if got := tr.state(); got != (MattermostState{HasMessages: true, HasMentions: true}) {
		t.Fatalf("after mention: %+v", got)
	}

	tr.viewed("dm")
	if got := tr.state(); got != (MattermostState{HasMessages: true}) {
		t.Fatalf("after viewing dm: %+v", got)
	}
	tr.viewed("watched", "unknown")
	if got := tr.state(); got != (MattermostState{}) {
		t.Fatalf("after viewing all: %+v", got)
	}
}
