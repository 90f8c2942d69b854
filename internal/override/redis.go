package override

import "context"

// redisKey is the hash holding one field per client id, "1" or "0".
const redisKey = "rate-limit:overrides"

// hashStore is the slice of the storage client the Redis-backed store needs.
type hashStore interface {
	HSet(ctx context.Context, key, field, value string) error
	HGet(ctx context.Context, key, field string) (string, bool, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// RedisStore keeps override flags in a hash in the shared store, so every
// gateway instance pointed at the same store sees the same flags.
type RedisStore struct {
	store hashStore
}

func NewRedisStore(store hashStore) *RedisStore {
	return &RedisStore{store: store}
}

func (r *RedisStore) Get(ctx context.Context, clientID string) (bool, error) {
	val, ok, err := r.store.HGet(ctx, redisKey, clientID)
	if err != nil {
		return false, err
	}
	return ok && val == "1", nil
}

func (r *RedisStore) Set(ctx context.Context, clientID string, enabled bool) error {
	val := "0"
	if enabled {
		val = "1"
	}
	return r.store.HSet(ctx, redisKey, clientID, val)
}

func (r *RedisStore) All(ctx context.Context) (map[string]bool, error) {
	vals, err := r.store.HGetAll(ctx, redisKey)
	if err != nil {
		return nil, err
	}

	out := make(map[string]bool, len(vals))
	for id, val := range vals {
		out[id] = val == "1"
	}
	return out, nil
}
