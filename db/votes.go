package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"ride-registration-bot/posts"
	"ride-registration-bot/votes"
)

func (d *DB) UpsertVote(ctx context.Context, key posts.Key, userID int64, status votes.Status, now time.Time) (votes.Vote, error) {
	v := votes.Vote{
		ChannelID:        key.ChannelID,
		ChannelMessageID: key.MessageID,
		UserID:           userID,
	}
	existing, err := d.GetVote(ctx, key, userID)
	if err != nil && !errors.Is(err, votes.ErrNotFound) {
		return votes.Vote{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	if err == nil {
		v = existing
		v.Status = status
		v.EverJoined = v.EverJoined || status == votes.StatusJoin
		v.UpdatedAt = now
		_, err := d.db.NewUpdate().
			Model(&v).
			Set("status = ?", v.Status).
			Set("ever_joined = ?", v.EverJoined).
			Set("updated_at = ?", v.UpdatedAt).
			WherePK().
			Exec(ctx)
		if err != nil {
			return votes.Vote{}, errors.Wrap(err, "unable to update vote")
		}
		return v, nil
	}
	v.Status = status
	v.FirstStatus = status
	v.EverJoined = status == votes.StatusJoin
	v.UpdatedAt = now
	if _, err := d.db.NewInsert().Model(&v).Exec(ctx); err != nil {
		return votes.Vote{}, errors.Wrap(err, "unable to add vote")
	}
	return v, nil
}

func (d *DB) GetVoteCounts(ctx context.Context, key posts.Key) (votes.VoteCounts, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	var rows []struct {
		Status votes.Status `bun:"status"`
		Count  int          `bun:"count"`
	}
	err := d.db.NewSelect().
		Model((*votes.Vote)(nil)).
		ColumnExpr("status").
		ColumnExpr("COUNT(*) AS count").
		Where("channel_id = ?", key.ChannelID).
		Where("channel_message_id = ?", key.MessageID).
		GroupExpr("status").
		Scan(ctx, &rows)
	if err != nil {
		return votes.VoteCounts{}, errors.Wrap(err, "unable to count votes")
	}
	var counts votes.VoteCounts
	for _, row := range rows {
		switch row.Status {
		case votes.StatusJoin:
			counts.Join = row.Count
		case votes.StatusMaybe:
			counts.Maybe = row.Count
		case votes.StatusDecline:
			counts.Decline = row.Count
		}
	}
	changedMind, err := d.db.NewSelect().
		Model((*votes.Vote)(nil)).
		Where("channel_id = ?", key.ChannelID).
		Where("channel_message_id = ?", key.MessageID).
		Where("ever_joined = ?", true).
		Where("status != ?", votes.StatusJoin).
		Count(ctx)
	if err != nil {
		return votes.VoteCounts{}, errors.Wrap(err, "unable to count changed minds")
	}
	counts.ChangedMind = changedMind
	return counts, nil
}

func (d *DB) GetVotersByStatus(ctx context.Context, key posts.Key) (map[votes.Status][]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	var rows []votes.Vote
	err := d.db.NewSelect().
		Model(&rows).
		Column("status", "user_id").
		Where("channel_id = ?", key.ChannelID).
		Where("channel_message_id = ?", key.MessageID).
		Order("updated_at ASC", "user_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "unable to query voters")
	}
	voters := map[votes.Status][]int64{}
	for _, row := range rows {
		voters[row.Status] = append(voters[row.Status], row.UserID)
	}
	return voters, nil
}

func (d *DB) GetLastVoteTime(ctx context.Context, key posts.Key, userID int64) (time.Time, error) {
	vote, err := d.GetVote(ctx, key, userID)
	if err != nil {
		return time.Time{}, err
	}
	return vote.UpdatedAt, nil
}

func (d *DB) GetVote(ctx context.Context, key posts.Key, userID int64) (votes.Vote, error) {
	v := votes.Vote{
		ChannelID:        key.ChannelID,
		ChannelMessageID: key.MessageID,
		UserID:           userID,
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	err := d.db.NewSelect().Model(&v).WherePK().Scan(ctx)
	if err != nil && errors.Is(err, sql.ErrNoRows) {
		return votes.Vote{}, votes.ErrNotFound
	}
	if err != nil {
		return votes.Vote{}, errors.Wrap(err, "unable to query vote")
	}
	return v, nil
}
