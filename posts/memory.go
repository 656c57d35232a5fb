package posts

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is a map-backed Store used by tests and single-shot tools.
type MemoryStore struct {
	mu    sync.Mutex
	posts map[Key]Post
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{posts: make(map[Key]Post)}
}

func (s *MemoryStore) CreatePost(_ context.Context, post Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[post.Key()]; ok {
		return ErrAlreadyExists
	}
	s.posts[post.Key()] = post
	return nil
}

func (s *MemoryStore) GetPost(_ context.Context, key Key) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[key]
	if !ok {
		return Post{}, ErrNotFound
	}
	return post, nil
}

func (s *MemoryStore) GetPostByMediaGroup(_ context.Context, channelID int64, mediaGroupID string) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []Post
	for _, post := range s.posts {
		if post.ChannelID == channelID && post.MediaGroupID != nil && *post.MediaGroupID == mediaGroupID {
			matches = append(matches, post)
		}
	}
	if len(matches) == 0 {
		return Post{}, ErrNotFound
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	return matches[0], nil
}

func (s *MemoryStore) SetRegistration(_ context.Context, key Key, chatID int64, messageID int) error {
	return s.update(key, func(p *Post) {
		p.RegistrationChatID = &chatID
		p.RegistrationMessageID = &messageID
	})
}

func (s *MemoryStore) SetVotersMessage(_ context.Context, key Key, messageID int) error {
	return s.update(key, func(p *Post) {
		p.VotersMessageID = &messageID
	})
}

func (s *MemoryStore) SetDiscussionMessage(_ context.Context, key Key, messageID int) error {
	return s.update(key, func(p *Post) {
		p.DiscussionMessageID = &messageID
	})
}

func (s *MemoryStore) update(key Key, apply func(*Post)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[key]
	if !ok {
		return ErrNotFound
	}
	apply(&post)
	s.posts[key] = post
	return nil
}
