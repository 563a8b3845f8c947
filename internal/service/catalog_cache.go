package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fixmore/mall/internal/cache"
	"github.com/fixmore/mall/internal/logger"
)

const (
	catalogProductPrefix  = "catalog:product"
	catalogCategoryPrefix = "catalog:category"
	catalogListPrefix     = "catalog:product:list"
)

// CatalogCache is a read-through cache over catalog reads. Redis failures
// degrade to database reads and are logged, never surfaced.
type CatalogCache struct {
	TTL time.Duration
}

// NewCatalogCache creates a catalog cache with the given TTL.
func NewCatalogCache(ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CatalogCache{TTL: ttl}
}

// GetProduct reads a cached product detail into dest.
func (c *CatalogCache) GetProduct(ctx context.Context, productID uint, dest interface{}) bool {
	if c == nil {
		return false
	}
	hit, err := cache.GetJSON(ctx, c.productKey(productID), dest)
	if err != nil {
		logger.Warnw("catalog_cache_read_failed", "key", c.productKey(productID), "error", err)
		return false
	}
	return hit
}

// SetProduct caches a product detail.
func (c *CatalogCache) SetProduct(ctx context.Context, productID uint, value interface{}) {
	if c == nil {
		return
	}
	if err := cache.SetJSON(ctx, c.productKey(productID), value, c.TTL); err != nil {
		logger.Warnw("catalog_cache_write_failed", "key", c.productKey(productID), "error", err)
	}
}

// GetProductList reads a cached product listing page into dest.
func (c *CatalogCache) GetProductList(ctx context.Context, listKey string, dest interface{}) bool {
	if c == nil {
		return false
	}
	key := fmt.Sprintf("%s:%s", catalogListPrefix, listKey)
	hit, err := cache.GetJSON(ctx, key, dest)
	if err != nil {
		logger.Warnw("catalog_cache_read_failed", "key", key, "error", err)
		return false
	}
	return hit
}

// SetProductList caches a product listing page.
func (c *CatalogCache) SetProductList(ctx context.Context, listKey string, value interface{}) {
	if c == nil {
		return
	}
	key := fmt.Sprintf("%s:%s", catalogListPrefix, listKey)
	if err := cache.SetJSON(ctx, key, value, c.TTL); err != nil {
		logger.Warnw("catalog_cache_write_failed", "key", key, "error", err)
	}
}

// GetCategories reads the cached category list into dest.
func (c *CatalogCache) GetCategories(ctx context.Context, dest interface{}) bool {
	if c == nil {
		return false
	}
	hit, err := cache.GetJSON(ctx, catalogCategoryPrefix, dest)
	if err != nil {
		logger.Warnw("catalog_cache_read_failed", "key", catalogCategoryPrefix, "error", err)
		return false
	}
	return hit
}

// SetCategories caches the category list.
func (c *CatalogCache) SetCategories(ctx context.Context, value interface{}) {
	if c == nil {
		return
	}
	if err := cache.SetJSON(ctx, catalogCategoryPrefix, value, c.TTL); err != nil {
		logger.Warnw("catalog_cache_write_failed", "key", catalogCategoryPrefix, "error", err)
	}
}

// InvalidateProduct drops one product plus every cached listing page.
func (c *CatalogCache) InvalidateProduct(productID uint) {
	if c == nil {
		return
	}
	ctx := context.Background()
	if err := cache.Del(ctx, c.productKey(productID)); err != nil {
		logger.Warnw("catalog_cache_invalidate_failed", "key", c.productKey(productID), "error", err)
	}
	c.InvalidateProducts()
}

// InvalidateProducts drops every cached product entry and listing page.
func (c *CatalogCache) InvalidateProducts() {
	if c == nil {
		return
	}
	if err := cache.DelByPrefix(context.Background(), catalogProductPrefix); err != nil {
		logger.Warnw("catalog_cache_invalidate_failed", "prefix", catalogProductPrefix, "error", err)
	}
}

// InvalidateCategories drops the cached category list.
func (c *CatalogCache) InvalidateCategories() {
	if c == nil {
		return
	}
	if err := cache.Del(context.Background(), catalogCategoryPrefix); err != nil {
		logger.Warnw("catalog_cache_invalidate_failed", "key", catalogCategoryPrefix, "error", err)
	}
}

func (c *CatalogCache) productKey(productID uint) string {
	return fmt.Sprintf("%s:%d", catalogProductPrefix, productID)
}
