package votes

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"ride-registration-bot/posts"
)

var ErrNotFound = errors.New("vote not found")

// Store persists one row per (post, user) pair. It does not validate that
// the post itself is tracked; an unknown key yields empty results.
type Store interface {
	// UpsertVote creates the row on a user's first vote, recording
	// FirstStatus, or updates Status and UpdatedAt on later votes.
	// EverJoined becomes true as soon as the status is join and stays true.
	UpsertVote(ctx context.Context, key posts.Key, userID int64, status Status, now time.Time) (Vote, error)
	GetVoteCounts(ctx context.Context, key posts.Key) (VoteCounts, error)
	// GetVotersByStatus groups voter ids by current status, ordered by
	// UpdatedAt ascending with UserID as tiebreaker.
	GetVotersByStatus(ctx context.Context, key posts.Key) (map[Status][]int64, error)
	GetLastVoteTime(ctx context.Context, key posts.Key, userID int64) (time.Time, error)
	GetVote(ctx context.Context, key posts.Key, userID int64) (Vote, error)
}
