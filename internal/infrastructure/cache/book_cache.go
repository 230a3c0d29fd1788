package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/library-catalog/internal/domain/entity"
	"github.com/oksasatya/library-catalog/pkg/helpers"
)

const (
	listKey       = "books:all"
	bookKeyPrefix = "books:id:"

	listGenKey       = "books:gen:all"
	bookGenKeyPrefix = "books:gen:id:"
	// bookGenTTL bounds the per-book counters; a fill that outlives it is
	// dropped as stale, never stored.
	bookGenTTL = 24 * time.Hour
)

// BookCache is a read-through cache for book reads backed by Redis. Fills
// carry the generation read before the store query and are discarded when a
// write has bumped it since.
type BookCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewBookCache(rdb *redis.Client, ttl time.Duration) *BookCache {
	return &BookCache{rdb: rdb, ttl: ttl}
}

func bookKey(id string) string { return bookKeyPrefix + id }

func bookGenKey(id string) string { return bookGenKeyPrefix + id }

// GetList reports false on a miss.
func (c *BookCache) GetList(ctx context.Context) ([]entity.Book, bool, error) {
	var books []entity.Book
	ok, err := helpers.RedisGetJSON(ctx, c.rdb, listKey, &books)
	if err != nil || !ok {
		return nil, false, err
	}
	if books == nil {
		books = []entity.Book{}
	}
	return books, true, nil
}

func (c *BookCache) ListGeneration(ctx context.Context) (int64, error) {
	return helpers.RedisGeneration(ctx, c.rdb, listGenKey)
}

// SetList stores books unless the list was invalidated after gen was read.
func (c *BookCache) SetList(ctx context.Context, books []entity.Book, gen int64) error {
	_, err := helpers.RedisSetJSONIfGeneration(ctx, c.rdb, listGenKey, gen, listKey, books, c.ttl)
	return err
}

func (c *BookCache) GetBook(ctx context.Context, id string) (*entity.Book, bool, error) {
	var b entity.Book
	ok, err := helpers.RedisGetJSON(ctx, c.rdb, bookKey(id), &b)
	if err != nil || !ok {
		return nil, false, err
	}
	return &b, true, nil
}

func (c *BookCache) BookGeneration(ctx context.Context, id string) (int64, error) {
	return helpers.RedisGeneration(ctx, c.rdb, bookGenKey(id))
}

// SetBook stores b unless it was invalidated after gen was read.
func (c *BookCache) SetBook(ctx context.Context, b *entity.Book, gen int64) error {
	_, err := helpers.RedisSetJSONIfGeneration(ctx, c.rdb, bookGenKey(b.ID), gen, bookKey(b.ID), b, c.ttl)
	return err
}

// Invalidate bumps the generations of the list and the given books, then
// drops their entries, in one transaction.
func (c *BookCache) Invalidate(ctx context.Context, ids ...string) error {
	keys := make([]string, 0, len(ids)+1)
	keys = append(keys, listKey)
	for _, id := range ids {
		keys = append(keys, bookKey(id))
	}
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, listGenKey)
		for _, id := range ids {
			p.Incr(ctx, bookGenKey(id))
			p.Expire(ctx, bookGenKey(id), bookGenTTL)
		}
		p.Del(ctx, keys...)
		return nil
	})
	return err
}
