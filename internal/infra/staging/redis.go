package staging

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
)

const tombstone = "__unstaged__"

// unstageScript removes the element at an index atomically. LREM by value
// alone would drop the wrong copy when the same URL is staged twice.
var unstageScript = redis.NewScript(`
local v = redis.call('LINDEX', KEYS[1], ARGV[1])
if not v then
	return 0
end
redis.call('LSET', KEYS[1], ARGV[1], ARGV[2])
redis.call('LREM', KEYS[1], 1, ARGV[2])
return 1
`)

// RedisBuffer shares staged photos between API instances. Each list expires
// after ttl of inactivity so abandoned sessions clean themselves up.
type RedisBuffer struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisBuffer(rdb *redis.Client, ttl time.Duration) *RedisBuffer {
	return &RedisBuffer{rdb: rdb, ttl: ttl}
}

func (b *RedisBuffer) Stage(ctx context.Context, appointmentID, workerID uint, ref string) (int, error) {
	k := key(appointmentID, workerID)

	var push *redis.IntCmd
	_, err := b.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		push = p.RPush(ctx, k, ref)
		p.Expire(ctx, k, b.ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(push.Val()) - 1, nil
}

func (b *RedisBuffer) Unstage(ctx context.Context, appointmentID, workerID uint, index int) error {
	if index < 0 {
		return domain.ErrStagedPhotoNotFound
	}

	removed, err := unstageScript.Run(ctx, b.rdb, []string{key(appointmentID, workerID)}, index, tombstone).Int()
	if err != nil {
		return err
	}
	if removed == 0 {
		return domain.ErrStagedPhotoNotFound
	}
	return nil
}

func (b *RedisBuffer) Staged(ctx context.Context, appointmentID, workerID uint) ([]string, error) {
	refs, err := b.rdb.LRange(ctx, key(appointmentID, workerID), 0, -1).Result()
	if err == redis.Nil {
		return nil, nil
	}
	return refs, err
}

// Drop removes the first occurrence of each ref. A photo staged while the
// submission was committing sits after them and survives.
func (b *RedisBuffer) Drop(ctx context.Context, appointmentID, workerID uint, refs []string) error {
	if len(refs) == 0 {
		return nil
	}
	k := key(appointmentID, workerID)

	_, err := b.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, ref := range refs {
			p.LRem(ctx, k, 1, ref)
		}
		return nil
	})
	return err
}

var _ domain.StagingBuffer = (*RedisBuffer)(nil)
