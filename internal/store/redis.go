package store

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisMaxRetries = 16

// Redis хранит каждую запись отдельной строкой prefix:collection:id и
// ведет индекс идентификаторов коллекции в sorted set prefix:idx:collection.
// Update - оптимистичная транзакция WATCH/MULTI/EXEC с повтором при конфликте.
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "casino"
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(k Key) string {
	return r.prefix + ":" + k.Collection + ":" + k.ID
}

func (r *Redis) index(collection string) string {
	return r.prefix + ":idx:" + collection
}

func (r *Redis) Get(ctx context.Context, key Key) ([]byte, error) {
	return redisGet(ctx, r.client, r.key(key))
}

func redisGet(ctx context.Context, c redis.Cmdable, key string) ([]byte, error) {
	v, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *Redis) List(ctx context.Context, collection string) ([]Record, error) {
	// одинаковый score: порядок лексикографический по id
	ids, err := r.client.ZRange(ctx, r.index(collection), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(Key{Collection: collection, ID: id})
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(ids))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		records = append(records, Record{ID: ids[i], Value: []byte(s)})
	}
	return records, nil
}

func (r *Redis) Update(ctx context.Context, keys []Key, fn func(Tx) error) error {
	keys = sortedKeys(keys)
	watched := make([]string, len(keys))
	for i, k := range keys {
		watched[i] = r.key(k)
	}

	txf := func(tx *redis.Tx) error {
		buf := newTxBuffer(keys, func(k Key) ([]byte, error) {
			return redisGet(ctx, tx, r.key(k))
		})
		if err := fn(buf); err != nil {
			return err
		}
		if len(buf.order) == 0 {
			return nil
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return buf.each(func(k Key, v []byte) error {
				pipe.Set(ctx, r.key(k), v, 0)
				pipe.ZAdd(ctx, r.index(k.Collection), redis.Z{Score: 0, Member: k.ID})
				return nil
			})
		})
		return err
	}

	for attempt := 0; attempt < redisMaxRetries; attempt++ {
		err := r.client.Watch(ctx, txf, watched...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		// кто-то изменил ключ между WATCH и EXEC
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(rand.Intn(5)+1) * time.Millisecond):
		}
	}
	return fmt.Errorf("%w: %d attempts", ErrConflict, redisMaxRetries)
}

// Close не закрывает клиент: он принадлежит вызывающему и может быть общим
func (r *Redis) Close() error {
	return nil
}
