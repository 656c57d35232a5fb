package db_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ride-registration-bot/db"
	"ride-registration-bot/posts"
	"ride-registration-bot/votes"
)

var testKey = posts.Key{ChannelID: -1001234567890, MessageID: 42}

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	store, err := db.New(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	require.NoError(t, store.Init(context.Background()))
	return store
}

func newPost(messageID int, createdAt time.Time) posts.Post {
	return posts.Post{
		ChannelID:        testKey.ChannelID,
		ChannelMessageID: messageID,
		Mode:             posts.ModeEditChannel,
		CreatedAt:        createdAt,
	}
}

func TestInitIsIdempotent(t *testing.T) {
	store := newTestDB(t)
	require.NoError(t, store.Init(context.Background()))
}

func TestPostLifecycle(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.CreatePost(ctx, newPost(testKey.MessageID, time.Now().UTC())))
	assert.ErrorIs(t, store.CreatePost(ctx, newPost(testKey.MessageID, time.Now().UTC())), posts.ErrAlreadyExists)

	post, err := store.GetPost(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, posts.ModeEditChannel, post.Mode)
	assert.False(t, post.Placed())

	require.NoError(t, store.SetRegistration(ctx, testKey, testKey.ChannelID, testKey.MessageID))
	require.NoError(t, store.SetDiscussionMessage(ctx, testKey, 77))
	require.NoError(t, store.SetVotersMessage(ctx, testKey, 78))

	post, err = store.GetPost(ctx, testKey)
	require.NoError(t, err)
	require.True(t, post.Placed())
	assert.Equal(t, testKey.ChannelID, *post.RegistrationChatID)
	assert.Equal(t, testKey.MessageID, *post.RegistrationMessageID)
	assert.Equal(t, 77, *post.DiscussionMessageID)
	assert.Equal(t, 78, *post.VotersMessageID)
}

func TestUnknownPost(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	unknown := posts.Key{ChannelID: -1, MessageID: 1}

	_, err := store.GetPost(ctx, unknown)
	assert.ErrorIs(t, err, posts.ErrNotFound)
	assert.ErrorIs(t, store.SetRegistration(ctx, unknown, -1, 1), posts.ErrNotFound)
	assert.ErrorIs(t, store.SetDiscussionMessage(ctx, unknown, 1), posts.ErrNotFound)
	assert.ErrorIs(t, store.SetVotersMessage(ctx, unknown, 1), posts.ErrNotFound)
}

func TestMediaGroupReturnsEarliestPost(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	album := "album-1"

	for i, offset := range []time.Duration{2 * time.Minute, 0, time.Minute} {
		post := newPost(100+i, base.Add(offset))
		post.MediaGroupID = &album
		require.NoError(t, store.CreatePost(ctx, post))
	}

	post, err := store.GetPostByMediaGroup(ctx, testKey.ChannelID, album)
	require.NoError(t, err)
	assert.Equal(t, 101, post.ChannelMessageID)

	_, err = store.GetPostByMediaGroup(ctx, testKey.ChannelID, "album-2")
	assert.ErrorIs(t, err, posts.ErrNotFound)
}

func TestUpsertVoteKeepsFirstStatus(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	vote, err := store.UpsertVote(ctx, testKey, 1, votes.StatusMaybe, now)
	require.NoError(t, err)
	assert.Equal(t, votes.StatusMaybe, vote.FirstStatus)
	assert.False(t, vote.EverJoined)

	vote, err = store.UpsertVote(ctx, testKey, 1, votes.StatusJoin, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, votes.StatusMaybe, vote.FirstStatus)
	assert.True(t, vote.EverJoined)

	vote, err = store.UpsertVote(ctx, testKey, 1, votes.StatusDecline, now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, votes.StatusMaybe, vote.FirstStatus)
	assert.Equal(t, votes.StatusDecline, vote.Status)
	assert.True(t, vote.EverJoined)

	stored, err := store.GetVote(ctx, testKey, 1)
	require.NoError(t, err)
	assert.Equal(t, votes.StatusDecline, stored.Status)
	assert.Equal(t, votes.StatusMaybe, stored.FirstStatus)
	assert.True(t, stored.EverJoined)
}

func TestVoteCounts(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	_, err := store.UpsertVote(ctx, testKey, 1, votes.StatusJoin, now)
	require.NoError(t, err)
	_, err = store.UpsertVote(ctx, testKey, 2, votes.StatusJoin, now)
	require.NoError(t, err)
	_, err = store.UpsertVote(ctx, testKey, 3, votes.StatusMaybe, now)
	require.NoError(t, err)
	// User 2 changes their mind after joining.
	_, err = store.UpsertVote(ctx, testKey, 2, votes.StatusDecline, now.Add(time.Minute))
	require.NoError(t, err)

	counts, err := store.GetVoteCounts(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, votes.VoteCounts{Join: 1, Maybe: 1, Decline: 1, ChangedMind: 1}, counts)
	assert.Equal(t, 3, counts.Total())
}

func TestVoteCountsEmptyPost(t *testing.T) {
	store := newTestDB(t)
	counts, err := store.GetVoteCounts(context.Background(), testKey)
	require.NoError(t, err)
	assert.Equal(t, votes.VoteCounts{}, counts)
}

func TestVotersOrderedByUpdateTime(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i, userID := range []int64{10, 20, 30} {
		_, err := store.UpsertVote(ctx, testKey, userID, votes.StatusJoin, now.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}
	// Re-voting moves user 10 to the end of the listing.
	_, err := store.UpsertVote(ctx, testKey, 10, votes.StatusJoin, now.Add(time.Hour))
	require.NoError(t, err)

	voters, err := store.GetVotersByStatus(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, []int64{20, 30, 10}, voters[votes.StatusJoin])
	assert.Empty(t, voters[votes.StatusMaybe])
}

func TestGetLastVoteTime(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	_, err := store.GetLastVoteTime(ctx, testKey, 1)
	assert.ErrorIs(t, err, votes.ErrNotFound)

	_, err = store.UpsertVote(ctx, testKey, 1, votes.StatusJoin, now)
	require.NoError(t, err)

	last, err := store.GetLastVoteTime(ctx, testKey, 1)
	require.NoError(t, err)
	assert.True(t, last.Equal(now))
}
