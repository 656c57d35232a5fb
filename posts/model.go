package posts

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// Mode tells where the registration card for a post lives.
type Mode string

const (
	ModeEditChannel      Mode = "edit_channel"
	ModeDiscussionThread Mode = "discussion_thread"
	ModeChannelReplyPost Mode = "channel_reply_post"
)

// Modes lists all placement modes in default fallback order.
var Modes = []Mode{ModeEditChannel, ModeDiscussionThread, ModeChannelReplyPost}

func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if s == string(m) {
			return m, nil
		}
	}
	return "", errors.Errorf("unknown registration mode: %v", s)
}

// Key identifies the source announcement a registration tracks.
type Key struct {
	ChannelID int64
	MessageID int
}

func (k Key) String() string {
	return fmt.Sprintf("%v/%v", k.ChannelID, k.MessageID)
}

// Post is one tracked announcement and the location of its registration card.
// Registration fields stay nil until a placement strategy succeeds.
type Post struct {
	ChannelID             int64 `bun:",pk"`
	ChannelMessageID      int   `bun:",pk"`
	Mode                  Mode
	RegistrationChatID    *int64
	RegistrationMessageID *int
	VotersMessageID       *int
	DiscussionMessageID   *int
	MediaGroupID          *string
	CreatedAt             time.Time
}

func (p Post) Key() Key {
	return Key{ChannelID: p.ChannelID, MessageID: p.ChannelMessageID}
}

// Placed reports whether the registration card has been published somewhere.
func (p Post) Placed() bool {
	return p.RegistrationChatID != nil && p.RegistrationMessageID != nil
}
