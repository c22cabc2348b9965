package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"youtube-auto-post/domain/dto"
	"youtube-auto-post/domain/model"
)

// YouTubeAuthFlow is the web OAuth flow of the credential manager.
type YouTubeAuthFlow interface {
	AuthCodeURL(secrets []byte, redirectURL, state string) (string, error)
	Exchange(ctx context.Context, secrets []byte, redirectURL, code string) (*model.OAuthToken, error)
	Status(ctx context.Context) (*model.OAuthToken, error)
}

type IAuthUsecase interface {
	BeginYouTubeAuth(ctx context.Context, state string) (string, error)
	CompleteYouTubeAuth(ctx context.Context, code string) (*dto.OAuthStatus, error)
	YouTubeAuthStatus(ctx context.Context) (*dto.OAuthStatus, error)
}

type authUsecase struct {
	settings    ISettingsUsecase
	flow        YouTubeAuthFlow
	redirectURL string
	now         func() time.Time
}

func NewAuthUsecase(settings ISettingsUsecase, flow YouTubeAuthFlow, redirectURL string) IAuthUsecase {
	return &authUsecase{settings: settings, flow: flow, redirectURL: redirectURL, now: time.Now}
}

func (a *authUsecase) BeginYouTubeAuth(ctx context.Context, state string) (string, error) {
	secrets, err := a.settings.ClientSecrets(ctx)
	if err != nil {
		return "", err
	}
	return a.flow.AuthCodeURL(secrets, a.redirectURL, state)
}

func (a *authUsecase) CompleteYouTubeAuth(ctx context.Context, code string) (*dto.OAuthStatus, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: authorization code not found", model.ErrValidation)
	}
	secrets, err := a.settings.ClientSecrets(ctx)
	if err != nil {
		return nil, err
	}
	tok, err := a.flow.Exchange(ctx, secrets, a.redirectURL, code)
	if err != nil {
		return nil, err
	}
	return a.status(tok), nil
}

func (a *authUsecase) YouTubeAuthStatus(ctx context.Context) (*dto.OAuthStatus, error) {
	tok, err := a.flow.Status(ctx)
	if err != nil {
		return nil, err
	}
	return a.status(tok), nil
}

func (a *authUsecase) status(tok *model.OAuthToken) *dto.OAuthStatus {
	if tok == nil || tok.AccessToken == "" {
		return &dto.OAuthStatus{}
	}
	st := &dto.OAuthStatus{
		Connected:       true,
		HasRefreshToken: tok.RefreshToken != "",
		ExpiresAt:       tok.ExpiresAt,
	}
	if tok.ExpiresAt != nil && !tok.ExpiresAt.After(a.now()) {
		st.Expired = true
	}
	return st
}
