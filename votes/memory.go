package votes

import (
	"context"
	"sort"
	"sync"
	"time"

	"ride-registration-bot/posts"
)

// MemoryStore is a map-backed Store, the in-memory counterpart of the
// SQLite-backed one. Tests run against it.
type MemoryStore struct {
	mu    sync.Mutex
	votes map[posts.Key]map[int64]Vote
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{votes: make(map[posts.Key]map[int64]Vote)}
}

func (s *MemoryStore) UpsertVote(_ context.Context, key posts.Key, userID int64, status Status, now time.Time) (Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byUser, ok := s.votes[key]
	if !ok {
		byUser = make(map[int64]Vote)
		s.votes[key] = byUser
	}
	vote, ok := byUser[userID]
	if !ok {
		vote = Vote{
			ChannelID:        key.ChannelID,
			ChannelMessageID: key.MessageID,
			UserID:           userID,
			FirstStatus:      status,
		}
	}
	vote.Status = status
	vote.EverJoined = vote.EverJoined || status == StatusJoin
	vote.UpdatedAt = now
	byUser[userID] = vote
	return vote, nil
}

func (s *MemoryStore) GetVoteCounts(_ context.Context, key posts.Key) (VoteCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var counts VoteCounts
	for _, vote := range s.votes[key] {
		switch vote.Status {
		case StatusJoin:
			counts.Join++
		case StatusMaybe:
			counts.Maybe++
		case StatusDecline:
			counts.Decline++
		}
		if vote.EverJoined && vote.Status != StatusJoin {
			counts.ChangedMind++
		}
	}
	return counts, nil
}

func (s *MemoryStore) GetVotersByStatus(_ context.Context, key posts.Key) (map[Status][]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ordered := make([]Vote, 0, len(s.votes[key]))
	for _, vote := range s.votes[key] {
		ordered = append(ordered, vote)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].UpdatedAt.Equal(ordered[j].UpdatedAt) {
			return ordered[i].UpdatedAt.Before(ordered[j].UpdatedAt)
		}
		return ordered[i].UserID < ordered[j].UserID
	})
	voters := map[Status][]int64{}
	for _, vote := range ordered {
		voters[vote.Status] = append(voters[vote.Status], vote.UserID)
	}
	return voters, nil
}

func (s *MemoryStore) GetLastVoteTime(_ context.Context, key posts.Key, userID int64) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vote, ok := s.votes[key][userID]
	if !ok {
		return time.Time{}, ErrNotFound
	}
	return vote.UpdatedAt, nil
}

func (s *MemoryStore) GetVote(_ context.Context, key posts.Key, userID int64) (Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vote, ok := s.votes[key][userID]
	if !ok {
		return Vote{}, ErrNotFound
	}
	return vote, nil
}
