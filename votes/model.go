package votes

import (
	"time"

	"github.com/pkg/errors"
)

// Status is a user's current stance on a post.
type Status string

const (
	StatusJoin    Status = "join"
	StatusMaybe   Status = "maybe"
	StatusDecline Status = "decline"
)

// Statuses lists all statuses in the order they are rendered.
var Statuses = []Status{StatusJoin, StatusMaybe, StatusDecline}

func ParseStatus(s string) (Status, error) {
	for _, status := range Statuses {
		if s == string(status) {
			return status, nil
		}
	}
	return "", errors.Errorf("unknown vote status: %v", s)
}

// Vote is one user's recorded stance on one post. FirstStatus never changes
// after the row is created; EverJoined only ever flips from false to true.
type Vote struct {
	ChannelID        int64 `bun:",pk"`
	ChannelMessageID int   `bun:",pk"`
	UserID           int64 `bun:",pk"`
	Status           Status
	FirstStatus      Status
	EverJoined       bool
	UpdatedAt        time.Time
}

// VoteCounts is the per-status tally for one post, computed on demand.
// ChangedMind counts voters who ever joined but currently do not.
type VoteCounts struct {
	Join        int
	Maybe       int
	Decline     int
	ChangedMind int
}

func (c VoteCounts) Total() int {
	return c.Join + c.Maybe + c.Decline
}
