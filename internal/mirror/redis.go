package mirror

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Options configures the Redis mirror.
type Options struct {
	Addr     string
	Password string
	DB       int
	Key      string // hash holding room -> status
}

// Update is published on <key>:updates after every write.
type Update struct {
	Room   string `json:"room"`
	Status string `json:"status"`
}

// Redis mirrors room statuses into a hash and announces each change on a
// pub/sub channel for out-of-band viewers.
type Redis struct {
	rdb *redis.Client
	key string
}

// NewRedis connects to redis and verifies connectivity
func NewRedis(ctx context.Context, opts Options) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	r := NewRedisFromClient(rdb, opts.Key)
	if err := r.Ping(ctx); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return r, nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(rdb *redis.Client, key string) *Redis {
	if key == "" {
		key = "roomboard:status"
	}
	return &Redis{rdb: rdb, key: key}
}

// Write stores status for room and publishes the change.
func (r *Redis) Write(ctx context.Context, room, status string) error {
	raw, err := json.Marshal(Update{Room: room, Status: status})
	if err != nil {
		return err
	}
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, r.key, room, status)
	pipe.Publish(ctx, r.UpdatesChannel(), raw)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("mirror %s: %w", room, err)
	}
	return nil
}

// Snapshot reads back every mirrored room.
func (r *Redis) Snapshot(ctx context.Context) (map[string]string, error) {
	return r.rdb.HGetAll(ctx, r.key).Result()
}

// Subscribe calls fn for each published update until ctx is done.
func (r *Redis) Subscribe(ctx context.Context, fn func(Update)) error {
	pubsub := r.rdb.Subscribe(ctx, r.UpdatesChannel())
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var u Update
			if err := json.Unmarshal([]byte(msg.Payload), &u); err != nil || u.Room == "" {
				continue
			}
			fn(u)
		}
	}
}

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error { return r.rdb.Ping(ctx).Err() }

// UpdatesChannel is the pub/sub channel announcing writes.
func (r *Redis) UpdatesChannel() string { return r.key + ":updates" }

// Close shuts down the redis connection
func (r *Redis) Close() error { return r.rdb.Close() }
