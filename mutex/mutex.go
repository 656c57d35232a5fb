package mutex

import (
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis"

	"ride-registration-bot/posts"
)

const (
	voteLockExpiration = time.Second * 30
	voteKeyPattern     = "post:%v:%v:user:%v"
)

// Builder hands out redis-backed locks serializing the cooldown
// check-then-write for a single voter on a single post.
type Builder struct {
	rs *redsync.Redsync
}

func NewBuilder(address string) *Builder {
	client := redis.NewClient(&redis.Options{Addr: address})
	pool := goredis.NewPool(client)
	rs := redsync.New(pool)
	return &Builder{rs: rs}
}

func (b *Builder) LockVote(key posts.Key, userID int64) (func(), error) {
	name := fmt.Sprintf(voteKeyPattern, key.ChannelID, key.MessageID, userID)
	mutex := b.rs.NewMutex(name, redsync.WithExpiry(voteLockExpiration))
	if err := mutex.Lock(); err != nil {
		return nil, err
	}
	return func() {
		if _, err := mutex.Unlock(); err != nil {
			log.Printf("unable to release vote lock %v: %v", name, err.Error())
		}
	}, nil
}
