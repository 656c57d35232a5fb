package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"

	"ride-registration-bot/posts"
	"ride-registration-bot/votes"
)

// DB is the SQLite-backed store for posts and votes.
type DB struct {
	db      *bun.DB
	timeout time.Duration
}

const defaultTimeout = time.Minute

func New(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "unable to create database directory")
		}
	}
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open database")
	}
	// SQLite allows a single writer; one connection avoids SQLITE_BUSY.
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	return &DB{db: db, timeout: defaultTimeout}, nil
}

func (d *DB) SetTimeout(duration time.Duration) {
	d.timeout = duration
}

func (d *DB) EnableDebug() {
	d.db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Init creates the schema. Safe to call on every start.
func (d *DB) Init(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	for _, model := range []interface{}{(*posts.Post)(nil), (*votes.Vote)(nil)} {
		if _, err := d.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return errors.Wrap(err, "unable to create table")
		}
	}
	indexes := []struct {
		name    string
		model   interface{}
		columns []string
	}{
		{"idx_votes_user", (*votes.Vote)(nil), []string{"user_id"}},
		{"idx_votes_status", (*votes.Vote)(nil), []string{"status"}},
		{"idx_posts_created", (*posts.Post)(nil), []string{"created_at"}},
		{"idx_posts_media_group", (*posts.Post)(nil), []string{"media_group_id"}},
	}
	for _, idx := range indexes {
		_, err := d.db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.columns...).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return errors.Wrapf(err, "unable to create index %v", idx.name)
		}
	}
	return nil
}
