package votes

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/pkg/errors"

	"ride-registration-bot/metrics"
	"ride-registration-bot/posts"
)

// Locker serializes vote casting for one (post, user) pair across handlers.
type Locker interface {
	LockVote(key posts.Key, userID int64) (unlock func(), err error)
}

// RateLimitedError is returned when a user votes again before the cooldown
// elapsed. Remaining is how long they still have to wait.
type RateLimitedError struct {
	Remaining time.Duration
}

func (e RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry in %vs", e.RemainingSeconds())
}

// RemainingSeconds rounds the wait up to whole seconds for user messages.
func (e RateLimitedError) RemainingSeconds() int {
	return int(math.Ceil(e.Remaining.Seconds()))
}

// Service orchestrates vote casting: cooldown check, upsert, aggregation.
type Service struct {
	store    Store
	locker   Locker
	cooldown time.Duration
	now      func() time.Time
}

// NewService creates a vote service. A zero cooldown disables rate limiting,
// a nil locker means concurrent votes by the same user are not serialized.
func NewService(store Store, cooldown time.Duration, locker Locker) *Service {
	return &Service{
		store:    store,
		locker:   locker,
		cooldown: cooldown,
		now:      time.Now,
	}
}

// Cast records a vote. The cooldown applies even when the new status equals
// the previous one; a rate-limited attempt leaves storage untouched.
func (s *Service) Cast(ctx context.Context, key posts.Key, userID int64, status Status) (Vote, error) {
	if s.locker != nil {
		unlock, err := s.locker.LockVote(key, userID)
		if err != nil {
			// Same fallback as running without a locker: the cooldown
			// check may race, at most one extra vote lands in the window.
			log.Printf("unable to acquire vote lock for %v user %v: %v", key, userID, err.Error())
		} else {
			defer unlock()
		}
	}

	now := s.now()
	if s.cooldown > 0 {
		last, err := s.store.GetLastVoteTime(ctx, key, userID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return Vote{}, errors.Wrap(err, "unable to check vote cooldown")
		}
		if err == nil {
			if since := now.Sub(last); since < s.cooldown {
				metrics.VotesRateLimited.Inc()
				return Vote{}, RateLimitedError{Remaining: s.cooldown - since}
			}
		}
	}

	vote, err := s.store.UpsertVote(ctx, key, userID, status, now)
	if err != nil {
		return Vote{}, errors.Wrap(err, "unable to save vote")
	}
	metrics.VotesCast.WithLabelValues(string(status)).Inc()
	log.Printf("vote cast: post=%v user=%v status=%v", key, userID, status)
	return vote, nil
}

// Counts always reflects the persisted state, there is no caching.
func (s *Service) Counts(ctx context.Context, key posts.Key) (VoteCounts, error) {
	return s.store.GetVoteCounts(ctx, key)
}

func (s *Service) VotersByStatus(ctx context.Context, key posts.Key) (map[Status][]int64, error) {
	return s.store.GetVotersByStatus(ctx, key)
}

func (s *Service) HasVoted(ctx context.Context, key posts.Key, userID int64) (bool, error) {
	_, err := s.store.GetLastVoteTime(ctx, key, userID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SetClock overrides the time source, tests use it to drive the cooldown.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}
