package posts

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrNotFound      = errors.New("post not found")
	ErrAlreadyExists = errors.New("post already exists")
)

// Store persists one record per tracked announcement. At most one Post
// exists per Key; all messages of a media group resolve to the same Post.
type Store interface {
	CreatePost(ctx context.Context, post Post) error
	GetPost(ctx context.Context, key Key) (Post, error)
	GetPostByMediaGroup(ctx context.Context, channelID int64, mediaGroupID string) (Post, error)
	SetRegistration(ctx context.Context, key Key, chatID int64, messageID int) error
	SetVotersMessage(ctx context.Context, key Key, messageID int) error
	SetDiscussionMessage(ctx context.Context, key Key, messageID int) error
}
