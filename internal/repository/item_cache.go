package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const itemListCacheKey = "items:all"

func itemCacheKey(id uint) string { return fmt.Sprintf("item:%d", id) }

// cachedItemRepo is a Redis read-through cache in front of the catalog.
// Cache failures are logged and fall back to the database.
type cachedItemRepo struct {
	next ItemRepository
	rdb  *redis.Client
	ttl  time.Duration
}

// NewCachedItemRepository wraps next with a read-through cache. A nil rdb or
// a non-positive ttl returns next unchanged.
func NewCachedItemRepository(next ItemRepository, rdb *redis.Client, ttl time.Duration) ItemRepository {
	if rdb == nil || ttl <= 0 {
		return next
	}
	return &cachedItemRepo{next: next, rdb: rdb, ttl: ttl}
}

func (r *cachedItemRepo) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*model.Item, error) {
	key := itemCacheKey(id)
	var cached model.Item
	if r.get(ctx, key, &cached) {
		return &cached, nil
	}
	it, err := r.next.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	r.set(ctx, key, it)
	return it, nil
}

func (r *cachedItemRepo) List(ctx context.Context) ([]model.Item, error) {
	var cached []model.Item
	if r.get(ctx, itemListCacheKey, &cached) {
		return cached, nil
	}
	items, err := r.next.List(ctx)
	if err != nil {
		return nil, err
	}
	r.set(ctx, itemListCacheKey, items)
	return items, nil
}

// ListNotInInvoice depends on invoice lines, which change constantly.
func (r *cachedItemRepo) ListNotInInvoice(ctx context.Context, invoiceID uint) ([]model.Item, error) {
	return r.next.ListNotInInvoice(ctx, invoiceID)
}

func (r *cachedItemRepo) get(ctx context.Context, key string, dst any) bool {
	b, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", key).Msg("item cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("item cache entry corrupt")
		return false
	}
	return true
}

func (r *cachedItemRepo) set(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("item cache write failed")
	}
}
