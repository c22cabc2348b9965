package youtube_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"youtube-auto-post/domain/dto"
	"youtube-auto-post/domain/model"
	"youtube-auto-post/domain/repository"
	"youtube-auto-post/infrastructure/clients/youtube"
)

type memTokenCache struct {
	mu    sync.Mutex
	tok   *model.OAuthToken
	saves int
}

func (c *memTokenCache) Load(_ context.Context) (*model.OAuthToken, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tok, nil
}

func (c *memTokenCache) Save(_ context.Context, t *model.OAuthToken) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tok = t
	c.saves++
	return nil
}

func (c *memTokenCache) RefreshUnderLock(ctx context.Context, fn repository.TokenRefreshFunc) (*model.OAuthToken, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := fn(ctx, c.tok)
	if err != nil {
		return nil, err
	}
	if next == nil || next.SameCredential(c.tok) {
		return c.tok, nil
	}
	c.tok = next
	c.saves++
	return next, nil
}

type fakeAuthorizer struct {
	token *oauth2.Token
	err   error
	calls int
}

func (a *fakeAuthorizer) Authorize(_ context.Context, _ *oauth2.Config) (*oauth2.Token, error) {
	a.calls++
	return a.token, a.err
}

type tokenEndpoint struct {
	srv    *httptest.Server
	calls  atomic.Int32
	grants chan string
}

func newTokenEndpoint(t *testing.T, body string) *tokenEndpoint {
	t.Helper()
	te := &tokenEndpoint{grants: make(chan string, 8)}
	te.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		te.calls.Add(1)
		_ = r.ParseForm()
		te.grants <- r.PostForm.Get("grant_type")
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(te.srv.Close)
	return te
}

func clientSecrets(tokenURL string) []byte {
	return []byte(fmt.Sprintf(`{"installed":{"client_id":"cid.apps.googleusercontent.com","client_secret":"csecret",`+
		`"auth_uri":"https://accounts.example.com/o/oauth2/auth","token_uri":%q,"redirect_uris":["http://localhost"]}}`, tokenURL))
}

func future(d time.Duration) *time.Time {
	t := time.Now().Add(d).UTC()
	return &t
}

func TestOAuthConfigFromSecrets(t *testing.T) {
	cfg, err := youtube.OAuthConfigFromSecrets(clientSecrets("https://oauth2.example.com/token"), "http://localhost:9999/cb")
	require.NoError(t, err)
	assert.Equal(t, "cid.apps.googleusercontent.com", cfg.ClientID)
	assert.Equal(t, "https://oauth2.example.com/token", cfg.Endpoint.TokenURL)
	assert.Equal(t, "http://localhost:9999/cb", cfg.RedirectURL)
	assert.Equal(t, []string{"https://www.googleapis.com/auth/youtube.upload"}, cfg.Scopes)

	_, err = youtube.OAuthConfigFromSecrets([]byte("not json"), "")
	assert.Error(t, err)
}

func TestCredentialManager_ReusesValidToken(t *testing.T) {
	te := newTokenEndpoint(t, `{}`)
	cache := &memTokenCache{tok: &model.OAuthToken{AccessToken: "cached", RefreshToken: "r1", TokenType: "Bearer", ExpiresAt: future(time.Hour)}}
	auth := &fakeAuthorizer{}
	cfg, err := youtube.OAuthConfigFromSecrets(clientSecrets(te.srv.URL), "")
	require.NoError(t, err)

	tok, err := youtube.NewCredentialManager(cache, auth).Token(context.Background(), cfg)

	require.NoError(t, err)
	assert.Equal(t, "cached", tok.AccessToken)
	assert.Zero(t, te.calls.Load())
	assert.Zero(t, auth.calls)
	assert.Zero(t, cache.saves)
}

func TestCredentialManager_RefreshesExpiredToken(t *testing.T) {
	te := newTokenEndpoint(t, `{"access_token":"fresh","token_type":"Bearer","expires_in":3600}`)
	cache := &memTokenCache{tok: &model.OAuthToken{AccessToken: "stale", RefreshToken: "r1", TokenType: "Bearer", ExpiresAt: future(-time.Hour)}}
	auth := &fakeAuthorizer{}
	cfg, err := youtube.OAuthConfigFromSecrets(clientSecrets(te.srv.URL), "")
	require.NoError(t, err)

	tok, err := youtube.NewCredentialManager(cache, auth).Token(context.Background(), cfg)

	require.NoError(t, err)
	assert.Equal(t, "fresh", tok.AccessToken)
	assert.Equal(t, "refresh_token", <-te.grants)
	assert.Zero(t, auth.calls)
	assert.Equal(t, 1, cache.saves)
	assert.Equal(t, "fresh", cache.tok.AccessToken)
	assert.Equal(t, "r1", cache.tok.RefreshToken)
	assert.Equal(t, model.PlatformYouTube, cache.tok.Platform)
	require.NotNil(t, cache.tok.ExpiresAt)
	assert.True(t, cache.tok.ExpiresAt.After(time.Now()))
}

func TestCredentialManager_NoTokenNoAuthorizer(t *testing.T) {
	cfg, err := youtube.OAuthConfigFromSecrets(clientSecrets("https://oauth2.example.com/token"), "")
	require.NoError(t, err)

	_, err = youtube.NewCredentialManager(&memTokenCache{}, nil).Token(context.Background(), cfg)

	assert.ErrorIs(t, err, youtube.ErrAuthorizationRequired)
}

func TestCredentialManager_AuthorizesWhenNothingCached(t *testing.T) {
	cache := &memTokenCache{}
	auth := &fakeAuthorizer{token: &oauth2.Token{AccessToken: "granted", RefreshToken: "r9", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}}
	cfg, err := youtube.OAuthConfigFromSecrets(clientSecrets("https://oauth2.example.com/token"), "")
	require.NoError(t, err)

	tok, err := youtube.NewCredentialManager(cache, auth).Token(context.Background(), cfg)

	require.NoError(t, err)
	assert.Equal(t, "granted", tok.AccessToken)
	assert.Equal(t, 1, auth.calls)
	assert.Equal(t, "r9", cache.tok.RefreshToken)
}

func TestCredentialManager_AuthorizerFailure(t *testing.T) {
	auth := &fakeAuthorizer{err: errors.New("user closed the browser")}
	cfg, err := youtube.OAuthConfigFromSecrets(clientSecrets("https://oauth2.example.com/token"), "")
	require.NoError(t, err)

	_, err = youtube.NewCredentialManager(&memTokenCache{}, auth).Token(context.Background(), cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "user closed the browser")
}

func TestCredentialManager_ExchangeKeepsRefreshToken(t *testing.T) {
	te := newTokenEndpoint(t, `{"access_token":"exchanged","token_type":"Bearer","expires_in":3600}`)
	cache := &memTokenCache{tok: &model.OAuthToken{AccessToken: "old", RefreshToken: "keep-me", TokenType: "Bearer"}}
	m := youtube.NewCredentialManager(cache, nil)

	saved, err := m.Exchange(context.Background(), clientSecrets(te.srv.URL), "http://localhost:8080/auth/youtube/callback", "code-1")

	require.NoError(t, err)
	assert.Equal(t, "authorization_code", <-te.grants)
	assert.Equal(t, "exchanged", saved.AccessToken)
	assert.Equal(t, "keep-me", saved.RefreshToken)

	status, err := m.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "exchanged", status.AccessToken)
}

func TestCredentialManager_AuthCodeURL(t *testing.T) {
	m := youtube.NewCredentialManager(&memTokenCache{}, nil)

	raw, err := m.AuthCodeURL(clientSecrets("https://oauth2.example.com/token"), "http://localhost:8080/auth/youtube/callback", "st-1")

	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "st-1", q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "http://localhost:8080/auth/youtube/callback", q.Get("redirect_uri"))
}

func TestLocalServerAuthorizer_CompletesFlow(t *testing.T) {
	te := newTokenEndpoint(t, `{"access_token":"loopback","refresh_token":"r-loop","token_type":"Bearer","expires_in":3600}`)
	cfg, err := youtube.OAuthConfigFromSecrets(clientSecrets(te.srv.URL), "")
	require.NoError(t, err)

	var callbackStatus int
	a := youtube.NewLocalServerAuthorizer(0, 5*time.Second, youtube.WithAuthURLHandler(func(authURL string) {
		u, err := url.Parse(authURL)
		require.NoError(t, err)
		q := u.Query()
		resp, err := http.Get(q.Get("redirect_uri") + "?code=c-1&state=" + url.QueryEscape(q.Get("state")))
		require.NoError(t, err)
		callbackStatus = resp.StatusCode
		_ = resp.Body.Close()
	}))

	tok, err := a.Authorize(context.Background(), cfg)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, callbackStatus)
	assert.Equal(t, "loopback", tok.AccessToken)
	assert.Equal(t, "r-loop", tok.RefreshToken)
	assert.Equal(t, "authorization_code", <-te.grants)
}

func TestLocalServerAuthorizer_Denied(t *testing.T) {
	cfg, err := youtube.OAuthConfigFromSecrets(clientSecrets("https://oauth2.example.com/token"), "")
	require.NoError(t, err)

	a := youtube.NewLocalServerAuthorizer(0, 5*time.Second, youtube.WithAuthURLHandler(func(authURL string) {
		u, _ := url.Parse(authURL)
		resp, err := http.Get(u.Query().Get("redirect_uri") + "?error=access_denied")
		if err == nil {
			_ = resp.Body.Close()
		}
	}))

	_, err = a.Authorize(context.Background(), cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_denied")
}

func TestLocalServerAuthorizer_TimesOut(t *testing.T) {
	cfg, err := youtube.OAuthConfigFromSecrets(clientSecrets("https://oauth2.example.com/token"), "")
	require.NoError(t, err)

	a := youtube.NewLocalServerAuthorizer(0, 50*time.Millisecond, youtube.WithAuthURLHandler(func(string) {}))

	_, err = a.Authorize(context.Background(), cfg)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConnector_UploadsWithCachedToken(t *testing.T) {
	var captured capturedInsert
	srv := fakeYouTube(t, http.StatusOK, `{"id":"abc123"}`, &captured)
	cache := &memTokenCache{tok: &model.OAuthToken{AccessToken: "cached", RefreshToken: "r1", TokenType: "Bearer", ExpiresAt: future(time.Hour)}}
	connector := youtube.NewConnector(youtube.NewCredentialManager(cache, nil), 8<<20, option.WithEndpoint(srv.URL+"/"))

	uploader, err := connector.Connect(context.Background(), clientSecrets("https://oauth2.example.com/token"))
	require.NoError(t, err)

	id, err := uploader.UploadVideo(context.Background(), &dto.YouTubeVideoUploadRequest{
		Title:    "Demo",
		Privacy:  "private",
		Media:    bytes.NewReader([]byte("video")),
		MimeType: "video/mp4",
	})

	require.NoError(t, err)
	assert.Equal(t, "abc123", id)
	assert.Equal(t, "Bearer cached", captured.auth)
}

func TestConnector_BadSecrets(t *testing.T) {
	connector := youtube.NewConnector(youtube.NewCredentialManager(&memTokenCache{}, nil), 8<<20)

	_, err := connector.Connect(context.Background(), []byte(`{"web":{}}`))

	assert.Error(t, err)
}
