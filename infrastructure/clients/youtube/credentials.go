package youtube

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"youtube-auto-post/domain/model"
	"youtube-auto-post/domain/repository"
	"youtube-auto-post/infrastructure/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"
)

var ErrAuthorizationRequired = errors.New("interactive authorization required: open /auth/youtube to grant upload access")

// Authorizer obtains a brand new token from the account owner.
type Authorizer interface {
	Authorize(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error)
}

// OAuthConfigFromSecrets parses a client_secrets.json document, scoped to
// video uploads only.
func OAuthConfigFromSecrets(secrets []byte, redirectURL string) (*oauth2.Config, error) {
	cfg, err := google.ConfigFromJSON(secrets, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client secrets: %w", err)
	}
	if redirectURL != "" {
		cfg.RedirectURL = redirectURL
	}
	return cfg, nil
}

// CredentialManager owns the cached token lifecycle: reuse while valid,
// refresh when possible, otherwise ask the authorizer.
type CredentialManager struct {
	cache      repository.IOAuthTokenCache
	authorizer Authorizer
}

func NewCredentialManager(cache repository.IOAuthTokenCache, authorizer Authorizer) *CredentialManager {
	return &CredentialManager{cache: cache, authorizer: authorizer}
}

// Token returns a valid token, refreshing or authorizing under the cache lock.
func (m *CredentialManager) Token(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	saved, err := m.cache.RefreshUnderLock(ctx, func(ctx context.Context, current *model.OAuthToken) (*model.OAuthToken, error) {
		tok := toOAuth2Token(current)
		switch {
		case tok != nil && tok.Valid():
			return current, nil
		case tok != nil && tok.RefreshToken != "":
			refreshed, err := cfg.TokenSource(ctx, tok).Token()
			if err != nil {
				return nil, fmt.Errorf("failed to refresh youtube token: %w", err)
			}
			logger.GetLogger().WithField("expiry", refreshed.Expiry).Info("youtube token refreshed")
			return fromOAuth2Token(refreshed, cfg.Scopes), nil
		}
		if m.authorizer == nil {
			return nil, ErrAuthorizationRequired
		}
		fresh, err := m.authorizer.Authorize(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("youtube authorization failed: %w", err)
		}
		logger.GetLogger().Info("youtube token obtained through interactive authorization")
		return fromOAuth2Token(fresh, cfg.Scopes), nil
	})
	if err != nil {
		return nil, err
	}
	return toOAuth2Token(saved), nil
}

// AuthCodeURL returns the consent page URL for the web flow.
func (m *CredentialManager) AuthCodeURL(secrets []byte, redirectURL, state string) (string, error) {
	cfg, err := OAuthConfigFromSecrets(secrets, redirectURL)
	if err != nil {
		return "", err
	}
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// Exchange trades an authorization code for a token and stores it. A
// missing refresh token in the response keeps the previously stored one.
func (m *CredentialManager) Exchange(ctx context.Context, secrets []byte, redirectURL, code string) (*model.OAuthToken, error) {
	cfg, err := OAuthConfigFromSecrets(secrets, redirectURL)
	if err != nil {
		return nil, err
	}
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	return m.cache.RefreshUnderLock(ctx, func(_ context.Context, current *model.OAuthToken) (*model.OAuthToken, error) {
		next := fromOAuth2Token(tok, cfg.Scopes)
		if next.RefreshToken == "" && current != nil {
			next.RefreshToken = current.RefreshToken
		}
		return next, nil
	})
}

func (m *CredentialManager) Status(ctx context.Context) (*model.OAuthToken, error) {
	return m.cache.Load(ctx)
}

func toOAuth2Token(t *model.OAuthToken) *oauth2.Token {
	if t == nil {
		return nil
	}
	tok := &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
	}
	if t.ExpiresAt != nil {
		tok.Expiry = *t.ExpiresAt
	}
	return tok
}

func fromOAuth2Token(t *oauth2.Token, scopes []string) *model.OAuthToken {
	out := &model.OAuthToken{
		AccountID:    model.DefaultTokenAccountID,
		Platform:     model.PlatformYouTube,
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Scopes:       strings.Join(scopes, " "),
	}
	if !t.Expiry.IsZero() {
		exp := t.Expiry.UTC().Truncate(time.Second)
		out.ExpiresAt = &exp
	}
	return out
}
