package cache

import (
	"context"
	"time"
)

type Cache interface {
	Get(ctx context.Context, key string, value any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

func Key(prefix string, id string) string {
	return prefix + ":" + id
}

const (
	ProductSlugKeyPrefix = "product:slug"
	// LatestProductsKey holds the storefront's newest products list.
	LatestProductsKey = "products:latest"
)

func ProductSlugKey(slug string) string {
	return Key(ProductSlugKeyPrefix, slug)
}
