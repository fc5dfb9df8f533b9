package queue

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisQueue implements Queue with one redis list per channel.
type RedisQueue struct {
	opts   *Options
	client *redis.Client
}

// NewRedisQueue connects to redis. A failed ping is logged rather than
// returned so callers may start before redis does.
func NewRedisQueue(opts *Options) (*RedisQueue, error) {
	opts.SetDefaults()
	ropts, err := redisOptions(opts)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(ropts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err = client.Ping(ctx).Err()
	if err != nil {
		log.Warn().Err(err).Str("addr", ropts.Addr).Msg("failed to ping redis")
	}

	return &RedisQueue{opts: opts, client: client}, nil
}

// redisOptions accepts either a redis:// URL or a bare host:port
func redisOptions(opts *Options) (*redis.Options, error) {
	var ropts *redis.Options
	if strings.Contains(opts.URL, "://") {
		parsed, err := redis.ParseURL(opts.URL)
		if err != nil {
			return nil, err
		}
		ropts = parsed
	} else {
		ropts = &redis.Options{Addr: opts.URL}
	}
	if opts.TLSConfig != nil {
		ropts.TLSConfig = opts.TLSConfig
	}
	return ropts, nil
}

// Push appends the payload to the tail of the channel's list
func (q *RedisQueue) Push(ctx context.Context, channel, payload string) error {
	return q.client.RPush(ctx, q.key(channel), payload).Err()
}

// Pop takes from the head of the first non empty list
func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration, channels ...string) (*Message, error) {
	if len(channels) == 0 {
		return nil, nil
	}
	keys := make([]string, len(channels))
	for i, c := range channels {
		keys[i] = q.key(c)
	}

	// BLPOP treats 0 as "forever", we never want that
	if timeout < time.Second {
		timeout = time.Second
	}

	result, err := q.client.BLPop(ctx, timeout, keys...).Result()
	if stderrors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	if len(result) < 2 {
		return nil, nil
	}
	return &Message{Channel: strings.TrimPrefix(result[0], q.opts.Prefix), Payload: result[1]}, nil
}

func (q *RedisQueue) key(channel string) string {
	return q.opts.Prefix + channel
}

// Close shuts down the redis client
func (q *RedisQueue) Close() error {
	return q.client.Close()
}
