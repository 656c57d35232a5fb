package db

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"ride-registration-bot/posts"
)

func (d *DB) CreatePost(ctx context.Context, post posts.Post) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	exists, err := d.db.NewSelect().
		Model(&post).
		WherePK().
		Exists(ctx)
	if err != nil {
		return errors.Wrap(err, "unable to check if post exists")
	}
	if exists {
		return posts.ErrAlreadyExists
	}
	_, err = d.db.NewInsert().Model(&post).Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "unable to add post")
	}
	return nil
}

func (d *DB) GetPost(ctx context.Context, key posts.Key) (posts.Post, error) {
	p := posts.Post{ChannelID: key.ChannelID, ChannelMessageID: key.MessageID}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	err := d.db.NewSelect().Model(&p).WherePK().Scan(ctx)
	if err != nil && errors.Is(err, sql.ErrNoRows) {
		return posts.Post{}, posts.ErrNotFound
	}
	if err != nil {
		return posts.Post{}, errors.Wrap(err, "unable to query post")
	}
	return p, nil
}

func (d *DB) GetPostByMediaGroup(ctx context.Context, channelID int64, mediaGroupID string) (posts.Post, error) {
	var p posts.Post
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	err := d.db.NewSelect().
		Model(&p).
		Where("channel_id = ?", channelID).
		Where("media_group_id = ?", mediaGroupID).
		Order("created_at ASC").
		Limit(1).
		Scan(ctx)
	if err != nil && errors.Is(err, sql.ErrNoRows) {
		return posts.Post{}, posts.ErrNotFound
	}
	if err != nil {
		return posts.Post{}, errors.Wrap(err, "unable to query post by media group")
	}
	return p, nil
}

func (d *DB) SetRegistration(ctx context.Context, key posts.Key, chatID int64, messageID int) error {
	p := posts.Post{ChannelID: key.ChannelID, ChannelMessageID: key.MessageID}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	res, err := d.db.NewUpdate().
		Model(&p).
		Set("registration_chat_id = ?", chatID).
		Set("registration_message_id = ?", messageID).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "unable to update registration location")
	}
	return requireAffected(res)
}

func (d *DB) SetVotersMessage(ctx context.Context, key posts.Key, messageID int) error {
	p := posts.Post{ChannelID: key.ChannelID, ChannelMessageID: key.MessageID}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	res, err := d.db.NewUpdate().
		Model(&p).
		Set("voters_message_id = ?", messageID).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "unable to update voters message")
	}
	return requireAffected(res)
}

func (d *DB) SetDiscussionMessage(ctx context.Context, key posts.Key, messageID int) error {
	p := posts.Post{ChannelID: key.ChannelID, ChannelMessageID: key.MessageID}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	res, err := d.db.NewUpdate().
		Model(&p).
		Set("discussion_message_id = ?", messageID).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "unable to update discussion message")
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "unable to read affected rows")
	}
	if affected == 0 {
		return posts.ErrNotFound
	}
	return nil
}
