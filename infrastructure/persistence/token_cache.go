package persistence

import (
	"context"
	"fmt"

	"youtube-auto-post/domain/model"
	"youtube-auto-post/domain/repository"
)

const tokenLockKey = "oauth_token:" + model.PlatformYouTube

// GuardedTokenCache serialises read-modify-write cycles on a token store
// through a locker, so concurrent refreshers cannot overwrite each other.
type GuardedTokenCache struct {
	store  repository.IOAuthTokenStore
	locker repository.ILocker
}

func NewGuardedTokenCache(store repository.IOAuthTokenStore, locker repository.ILocker) *GuardedTokenCache {
	return &GuardedTokenCache{store: store, locker: locker}
}

func (c *GuardedTokenCache) Load(ctx context.Context) (*model.OAuthToken, error) {
	return c.store.Load(ctx)
}

func (c *GuardedTokenCache) Save(ctx context.Context, t *model.OAuthToken) error {
	release, err := c.locker.Lock(ctx, tokenLockKey)
	if err != nil {
		return fmt.Errorf("failed to lock token cache: %w", err)
	}
	defer release()
	return c.store.Save(ctx, t)
}

func (c *GuardedTokenCache) RefreshUnderLock(ctx context.Context, fn repository.TokenRefreshFunc) (*model.OAuthToken, error) {
	release, err := c.locker.Lock(ctx, tokenLockKey)
	if err != nil {
		return nil, fmt.Errorf("failed to lock token cache: %w", err)
	}
	defer release()

	current, err := c.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	next, err := fn(ctx, current)
	if err != nil {
		return nil, err
	}
	if next == nil || next.SameCredential(current) {
		return current, nil
	}
	if err := c.store.Save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}
