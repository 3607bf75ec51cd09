package cache

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// CacheManager groups the cache helpers used by the repositories.
type CacheManager struct {
	Project *CacheHelper
}

func NewCacheManager(client *redis.Client) *CacheManager {
	return &CacheManager{
		Project: NewCacheHelper(client, ProjectListCacheConfig.Prefix),
	}
}

// HealthCheck pings the cache backing the manager.
func (cm *CacheManager) HealthCheck(ctx context.Context) error {
	return cm.Project.HealthCheck(ctx)
}

// SafeInvalidatePattern invalidates a cache pattern, logging failures
// instead of propagating them.
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete deletes cache keys, logging failures instead of propagating
// them.
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateProjectListings drops every cached project listing. Called on
// each project write (submission or decision) so listings never serve a
// stale status.
func InvalidateProjectListings(ctx context.Context, cm *CacheManager) {
	SafeInvalidatePattern(ctx, cm.Project, "list:*")
}
