package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	postKeyPrefix = "post:%d"
	userKeyPrefix = "user:%s"
)

// TTLs are short on purpose: every write path also invalidates, the TTL only
// bounds staleness when an invalidation is lost.
const (
	PostTTL = 5 * time.Minute
	UserTTL = 5 * time.Minute
)

// PostKey returns the cache key for a post detail document.
func PostKey(postID uint) string {
	return fmt.Sprintf(postKeyPrefix, postID)
}

// UserKey returns the cache key for a user looked up by email.
func UserKey(email string) string {
	return fmt.Sprintf(userKeyPrefix, email)
}

// Invalidate removes the key; a no-op when the cache is disabled.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidatePost removes the cached detail document for a post.
func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

// InvalidateUser removes the cached user for an email.
func InvalidateUser(ctx context.Context, email string) {
	Invalidate(ctx, UserKey(email))
}
