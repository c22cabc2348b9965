package repository

import (
	"context"

	"youtube-auto-post/domain/model"
)

// IOAuthTokenStore persists the cached token. Load returns nil, nil when
// nothing is stored yet.
type IOAuthTokenStore interface {
	Load(ctx context.Context) (*model.OAuthToken, error)
	Save(ctx context.Context, t *model.OAuthToken) error
}

// TokenRefreshFunc receives the currently stored token (possibly nil) and
// returns the token that should be stored.
type TokenRefreshFunc func(ctx context.Context, current *model.OAuthToken) (*model.OAuthToken, error)

type IOAuthTokenCache interface {
	IOAuthTokenStore
	// RefreshUnderLock runs fn with exclusive access to the stored token and
	// saves its result when it differs from what was loaded.
	RefreshUnderLock(ctx context.Context, fn TokenRefreshFunc) (*model.OAuthToken, error)
}

type ILocker interface {
	// Lock blocks until the key is held or ctx is done.
	Lock(ctx context.Context, key string) (release func(), err error)
	// TryLock returns ok=false without waiting when the key is held elsewhere.
	TryLock(ctx context.Context, key string) (release func(), ok bool, err error)
}
