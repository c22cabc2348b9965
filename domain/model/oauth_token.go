package model

import "time"

const (
	PlatformYouTube       = "youtube"
	DefaultTokenAccountID = "default"
)

// OAuthToken is the cached platform credential shared by every upload.
type OAuthToken struct {
	ID           int64      `json:"id"`
	AccountID    string     `json:"account_id"`
	Platform     string     `json:"platform"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	TokenType    string     `json:"token_type"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Scopes       string     `json:"scopes"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// SameCredential reports whether two tokens carry the same secrets and expiry.
func (t *OAuthToken) SameCredential(o *OAuthToken) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.AccessToken != o.AccessToken || t.RefreshToken != o.RefreshToken || t.TokenType != o.TokenType {
		return false
	}
	switch {
	case t.ExpiresAt == nil && o.ExpiresAt == nil:
		return true
	case t.ExpiresAt == nil || o.ExpiresAt == nil:
		return false
	}
	return t.ExpiresAt.Equal(*o.ExpiresAt)
}
